package usecase

import "github.com/vitos/crypto_strategy_bot/internal/domain"

// ComputeSupportResistance annotates the series with support/resistance
// levels found as smoothed local extrema, filtered by a minimum deviation
// from the previous level and by a volume spike confirmation.
func ComputeSupportResistance(s *domain.Series, window int, deviationThreshold float64, smoothingPeriods int, volumeFactor float64) {
	n := s.Len()
	if n == 0 || window <= 0 || smoothingPeriods <= 0 {
		return
	}

	highs := rollingMean(s.Candles, smoothingPeriods, func(c domain.Candle) float64 { return c.High })
	lows := rollingMean(s.Candles, smoothingPeriods, func(c domain.Candle) float64 { return c.Low })

	var avgVolume float64
	for _, c := range s.Candles {
		avgVolume += c.Volume
	}
	avgVolume /= float64(n)

	var lastResistance, lastSupport float64

	for i := window; i < n-window; i++ {
		if highs[i] != 0 && highs[i] > maxOf(highs[i-window:i]) && highs[i] > maxOf(highs[i+1:i+window+1]) {
			significant := lastResistance == 0 || abs(highs[i]-lastResistance)/lastResistance > deviationThreshold
			if significant && s.Candles[i].Volume > avgVolume*volumeFactor {
				lastResistance = highs[i]
				s.Resistance[s.Candles[i].Timestamp.Unix()] = highs[i]
			}
		}
		if lows[i] != 0 && lows[i] < minOf(lows[i-window:i]) && lows[i] < minOf(lows[i+1:i+window+1]) {
			significant := lastSupport == 0 || abs(lows[i]-lastSupport)/lastSupport > deviationThreshold
			if significant && s.Candles[i].Volume > avgVolume*volumeFactor {
				lastSupport = lows[i]
				s.Support[s.Candles[i].Timestamp.Unix()] = lows[i]
			}
		}
	}
}

// rollingMean leaves the first period-1 slots at zero, mirroring an
// undefined smoothed value during warm-up.
func rollingMean(candles []domain.Candle, period int, pick func(domain.Candle) float64) []float64 {
	out := make([]float64, len(candles))
	var sum float64
	for i, c := range candles {
		sum += pick(c)
		if i >= period {
			sum -= pick(candles[i-period])
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
