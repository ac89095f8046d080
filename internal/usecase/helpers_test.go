package usecase

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/vitos/crypto_strategy_bot/internal/domain"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func candlesAt(start time.Time, step time.Duration, closes ...float64) []domain.Candle {
	out := make([]domain.Candle, len(closes))
	for i, c := range closes {
		out[i] = domain.Candle{
			Timestamp: start.Add(time.Duration(i) * step),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    100,
		}
	}
	return out
}

func hourlySeries(closes ...float64) *domain.Series {
	return domain.NewSeries("XBTUSD", domain.Interval1h, candlesAt(testStart, time.Hour, closes...))
}

// appendClose extends the series with one more bar at the next hour.
func appendClose(s *domain.Series, close float64) {
	next := testStart
	if last, ok := s.Last(); ok {
		next = last.Timestamp.Add(time.Hour)
	}
	s.Append([]domain.Candle{{
		Timestamp: next,
		Open:      close,
		High:      close + 1,
		Low:       close - 1,
		Close:     close,
		Volume:    100,
	}})
}

func approx(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// fakeProvider serves pre-canned candles per interval and counts fetches.
type fakeProvider struct {
	mu     sync.Mutex
	series map[domain.Interval][]domain.Candle
	calls  map[domain.Interval]int
	err    error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		series: make(map[domain.Interval][]domain.Candle),
		calls:  make(map[domain.Interval]int),
	}
}

func (p *fakeProvider) GetCandles(_ context.Context, _ string, interval domain.Interval, limit int) ([]domain.Candle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.calls[interval]++
	candles := p.series[interval]
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

func (p *fakeProvider) callCount(interval domain.Interval) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[interval]
}
