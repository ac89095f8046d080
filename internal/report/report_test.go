package report

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/vitos/crypto_strategy_bot/internal/domain"
)

func testResult() *domain.BacktestResult {
	return &domain.BacktestResult{
		StrategyName:   "rsi_sma",
		Symbol:         "XBTUSD",
		Interval:       domain.Interval1h,
		ParentInterval: domain.Interval4h,
		Duration:       3,
		Metrics: domain.PerformanceMetrics{
			TotalTrades:        1,
			WinTrades:          1,
			WinRate:            1,
			TotalProfitLoss:    250,
			TotalProfitLossPct: 2.5,
		},
		FinalBalance: 10250,
		FinishedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func testSeries() *domain.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]domain.Candle, 4)
	for i := range candles {
		c := 100 + float64(i)*5
		candles[i] = domain.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c, High: c + 1, Low: c - 1, Close: c, Volume: 100,
		}
	}
	s := domain.NewSeries("XBTUSD", domain.Interval1h, candles)
	s.SetEntry(candles[1].Timestamp, &domain.TradeRecord{
		Action: domain.ActionLong, Timestamp: candles[1].Timestamp, Price: 105.1, Size: 1, Amount: 105.1,
	})
	s.SetExit(candles[3].Timestamp, &domain.TradeRecord{
		Action: domain.ActionClose, Timestamp: candles[3].Timestamp, Price: 114.8, Size: 1, Amount: 114.8,
		ProfitLoss: 250, PercentGainLoss: 2.5, Result: domain.ResultWin,
	})
	return s
}

func TestRenderWritesReport(t *testing.T) {
	dir := t.TempDir()
	r, err := NewHTMLReporter(dir)
	if err != nil {
		t.Fatalf("NewHTMLReporter: %v", err)
	}

	path, err := r.Render(testSeries(), testResult())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(path, dir) {
		t.Errorf("report written outside output dir: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	html := string(content)
	for _, want := range []string{"rsi_sma", "XBTUSD", "polyline", "long", "close", "10250.00"} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// One marker per annotated bar.
	if got := strings.Count(html, "<circle"); got != 2 {
		t.Errorf("marker count = %d, want 2", got)
	}
}

func TestRenderEmptySeries(t *testing.T) {
	r, err := NewHTMLReporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewHTMLReporter: %v", err)
	}
	res := testResult()
	res.Metrics = domain.PerformanceMetrics{}

	path, err := r.Render(domain.NewSeries("XBTUSD", domain.Interval1h, nil), res)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(content), "No trades were executed") {
		t.Error("empty report should state that no trades were executed")
	}
}
