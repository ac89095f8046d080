package strategies

import (
	"github.com/thrasher-corp/gct-ta/indicators"
	"github.com/vitos/crypto_strategy_bot/internal/domain"
)

func closes(s *domain.Series) []float64 {
	out := make([]float64, s.Len())
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

func highs(s *domain.Series) []float64 {
	out := make([]float64, s.Len())
	for i, c := range s.Candles {
		out[i] = c.High
	}
	return out
}

func lows(s *domain.Series) []float64 {
	out := make([]float64, s.Len())
	for i, c := range s.Candles {
		out[i] = c.Low
	}
	return out
}

func volumes(s *domain.Series) []float64 {
	out := make([]float64, s.Len())
	for i, c := range s.Candles {
		out[i] = c.Volume
	}
	return out
}

// stochRSI derives the stochastic oscillator of the RSI series: %K is the
// smoothed position of RSI within its rolling min/max range, %D is the
// smoothed %K. Both slices are end-aligned with the input.
func stochRSI(close []float64, rsiPeriod, stochPeriod, kSmooth, dSmooth int) (k, d []float64) {
	rsi := indicators.RSI(close, rsiPeriod)
	raw := make([]float64, len(rsi))
	for i := range rsi {
		if i < stochPeriod-1 {
			continue
		}
		lo, hi := rsi[i], rsi[i]
		for j := i - stochPeriod + 1; j <= i; j++ {
			if rsi[j] < lo {
				lo = rsi[j]
			}
			if rsi[j] > hi {
				hi = rsi[j]
			}
		}
		if hi > lo {
			raw[i] = (rsi[i] - lo) / (hi - lo) * 100
		}
	}
	k = indicators.SMA(raw, kSmooth)
	d = indicators.SMA(k, dSmooth)
	return k, d
}

// crossedAbove reports a strict upward cross of a over b on the latest
// completed bar: previous a <= previous b and current a > current b.
// Equality on the current bar does not retrigger once already crossed.
// Slices are indexed from their own ends so differing warm-up lengths are
// irrelevant.
func crossedAbove(a, b []float64) bool {
	if len(a) < 2 || len(b) < 2 {
		return false
	}
	aCur, aPrev := a[len(a)-1], a[len(a)-2]
	bCur, bPrev := b[len(b)-1], b[len(b)-2]
	return aPrev <= bPrev && aCur > bCur
}

// crossedBelow mirrors crossedAbove for a downward cross.
func crossedBelow(a, b []float64) bool {
	if len(a) < 2 || len(b) < 2 {
		return false
	}
	aCur, aPrev := a[len(a)-1], a[len(a)-2]
	bCur, bPrev := b[len(b)-1], b[len(b)-2]
	return aPrev >= bPrev && aCur < bCur
}

func last(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}
