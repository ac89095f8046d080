// Package report renders backtest results into standalone HTML files: a
// summary table, the trade log, and an inline SVG of the close series
// with entry and exit markers.
package report

import (
	"fmt"
	"html/template"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vitos/crypto_strategy_bot/internal/domain"
)

type HTMLReporter struct {
	outputDir string
	tmpl      *template.Template
}

func NewHTMLReporter(outputDir string) (*HTMLReporter, error) {
	if outputDir == "" {
		outputDir = "results"
	}
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &HTMLReporter{outputDir: outputDir, tmpl: tmpl}, nil
}

type chartMarker struct {
	X, Y  float64
	Class string
	Title string
}

type tradeRow struct {
	Timestamp string
	Action    string
	Price     string
	Size      string
	Amount    string
	PNL       string
	Reason    string
	Result    string
}

type reportData struct {
	Strategy       string
	Symbol         string
	Interval       string
	ParentInterval string
	Duration       int
	GeneratedAt    string

	TotalTrades  int
	WinTrades    int
	LossTrades   int
	WinRate      string
	ProfitFactor string
	TotalPNL     string
	TotalPNLPct  string
	FinalBalance string

	ChartWidth  int
	ChartHeight int
	Polyline    string
	Markers     []chartMarker

	Trades []tradeRow
}

// Render writes the report for one finished backtest and returns the
// path of the generated file.
func (r *HTMLReporter) Render(series *domain.Series, res *domain.BacktestResult) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", err
	}

	data := &reportData{
		Strategy:       res.StrategyName,
		Symbol:         res.Symbol,
		Interval:       string(res.Interval),
		ParentInterval: string(res.ParentInterval),
		Duration:       res.Duration,
		GeneratedAt:    res.FinishedAt.Format(time.RFC3339),
		TotalTrades:    res.Metrics.TotalTrades,
		WinTrades:      res.Metrics.WinTrades,
		LossTrades:     res.Metrics.LossTrades,
		WinRate:        fmt.Sprintf("%.2f%%", res.Metrics.WinRate*100),
		ProfitFactor:   formatProfitFactor(res.Metrics.ProfitFactor),
		TotalPNL:       fmt.Sprintf("%.2f", res.Metrics.TotalProfitLoss),
		TotalPNLPct:    fmt.Sprintf("%.2f%%", res.Metrics.TotalProfitLossPct),
		FinalBalance:   fmt.Sprintf("%.2f", res.FinalBalance),
		ChartWidth:     960,
		ChartHeight:    320,
	}
	r.buildChart(series, data)
	buildTradeRows(series, data)

	name := fmt.Sprintf("%s_%s_%s.html",
		res.StrategyName, sanitize(res.Symbol), res.FinishedAt.Format("20060102T150405"))
	path := filepath.Join(r.outputDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := r.tmpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return path, nil
}

// buildChart projects the close series onto the SVG viewport and places
// one marker per annotated candle.
func (r *HTMLReporter) buildChart(series *domain.Series, data *reportData) {
	if series == nil || series.Len() < 2 {
		return
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range series.Candles {
		lo = math.Min(lo, c.Close)
		hi = math.Max(hi, c.Close)
	}
	if hi == lo {
		hi = lo + 1
	}

	const pad = 10.0
	w := float64(data.ChartWidth) - 2*pad
	h := float64(data.ChartHeight) - 2*pad
	n := float64(series.Len() - 1)

	project := func(i int, price float64) (float64, float64) {
		x := pad + float64(i)/n*w
		y := pad + (1-(price-lo)/(hi-lo))*h
		return x, y
	}

	var points strings.Builder
	for i, c := range series.Candles {
		x, y := project(i, c.Close)
		if i > 0 {
			points.WriteByte(' ')
		}
		fmt.Fprintf(&points, "%.1f,%.1f", x, y)
	}
	data.Polyline = points.String()

	for i, c := range series.Candles {
		for _, m := range []struct {
			rec   *domain.TradeRecord
			class string
		}{
			{series.Entry(c.Timestamp), "entry"},
			{series.Exit(c.Timestamp), "exit"},
			{series.PartialClose(c.Timestamp), "partial"},
		} {
			if m.rec == nil {
				continue
			}
			x, y := project(i, m.rec.Price)
			data.Markers = append(data.Markers, chartMarker{
				X:     x,
				Y:     y,
				Class: m.class,
				Title: fmt.Sprintf("%s @ %.4f", m.rec.Action, m.rec.Price),
			})
		}
	}
}

func buildTradeRows(series *domain.Series, data *reportData) {
	if series == nil {
		return
	}
	for _, c := range series.Candles {
		for _, rec := range []*domain.TradeRecord{
			series.Entry(c.Timestamp),
			series.PartialClose(c.Timestamp),
			series.Exit(c.Timestamp),
		} {
			if rec == nil {
				continue
			}
			row := tradeRow{
				Timestamp: rec.Timestamp.Format("2006-01-02 15:04"),
				Action:    string(rec.Action),
				Price:     fmt.Sprintf("%.4f", rec.Price),
				Size:      fmt.Sprintf("%.6f", rec.Size),
				Amount:    fmt.Sprintf("%.2f", rec.Amount),
				Reason:    rec.Reason,
				Result:    string(rec.Result),
			}
			if rec.IsClosing() {
				row.PNL = fmt.Sprintf("%.2f (%.2f%%)", rec.ProfitLoss, rec.PercentGainLoss)
			}
			data.Trades = append(data.Trades, row)
		}
	}
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", pf)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, s)
}

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Strategy}} — {{.Symbol}} {{.Interval}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2em; color: #222; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: right; }
th { background: #f4f4f4; }
td:first-child, th:first-child { text-align: left; }
.chart { border: 1px solid #ccc; background: #fafafa; }
.close-line { fill: none; stroke: #3366cc; stroke-width: 1.5; }
.entry { fill: #2a9d2a; }
.exit { fill: #cc3333; }
.partial { fill: #e8a000; }
</style>
</head>
<body>
<h1>{{.Strategy}} — {{.Symbol}} {{.Interval}}{{if .ParentInterval}} (parent {{.ParentInterval}}){{end}}</h1>
<p>Backtest over {{.Duration}} candles, generated {{.GeneratedAt}}</p>

<table>
<tr><th>Total trades</th><th>Wins</th><th>Losses</th><th>Win rate</th><th>Profit factor</th><th>P&amp;L</th><th>P&amp;L %</th><th>Final balance</th></tr>
<tr>
<td>{{.TotalTrades}}</td><td>{{.WinTrades}}</td><td>{{.LossTrades}}</td>
<td>{{.WinRate}}</td><td>{{.ProfitFactor}}</td>
<td>{{.TotalPNL}}</td><td>{{.TotalPNLPct}}</td><td>{{.FinalBalance}}</td>
</tr>
</table>

{{if .Polyline}}
<svg class="chart" width="{{.ChartWidth}}" height="{{.ChartHeight}}" viewBox="0 0 {{.ChartWidth}} {{.ChartHeight}}">
<polyline class="close-line" points="{{.Polyline}}"/>
{{range .Markers}}<circle class="{{.Class}}" cx="{{.X}}" cy="{{.Y}}" r="4"><title>{{.Title}}</title></circle>
{{end}}</svg>
{{end}}

{{if .Trades}}
<table>
<tr><th>Time</th><th>Action</th><th>Price</th><th>Size</th><th>Amount</th><th>P&amp;L</th><th>Reason</th><th>Result</th></tr>
{{range .Trades}}<tr>
<td>{{.Timestamp}}</td><td>{{.Action}}</td><td>{{.Price}}</td><td>{{.Size}}</td>
<td>{{.Amount}}</td><td>{{.PNL}}</td><td>{{.Reason}}</td><td>{{.Result}}</td>
</tr>
{{end}}</table>
{{else}}
<p>No trades were executed.</p>
{{end}}
</body>
</html>
`
