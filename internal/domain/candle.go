package domain

import "time"

// Candle is a single OHLCV bar. Immutable once fetched.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Series is an ordered candle sequence plus per-timestamp annotations.
// Insertion order is chronological order. Trade annotations are write-once
// per timestamp per kind; support/resistance levels are derived columns.
type Series struct {
	Symbol   string
	Interval Interval
	Candles  []Candle

	entries       map[int64]*TradeRecord
	exits         map[int64]*TradeRecord
	partialCloses map[int64]*TradeRecord

	Support    map[int64]float64
	Resistance map[int64]float64
}

func NewSeries(symbol string, interval Interval, candles []Candle) *Series {
	return &Series{
		Symbol:        symbol,
		Interval:      interval,
		Candles:       candles,
		entries:       make(map[int64]*TradeRecord),
		exits:         make(map[int64]*TradeRecord),
		partialCloses: make(map[int64]*TradeRecord),
		Support:       make(map[int64]float64),
		Resistance:    make(map[int64]float64),
	}
}

func (s *Series) Len() int { return len(s.Candles) }

// Last returns the most recent candle, false when the series is empty.
func (s *Series) Last() (Candle, bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

// Append adds only candles with a timestamp strictly greater than the last
// known one, so a redundant re-fetch never duplicates bars. Returns the
// number of candles actually appended.
func (s *Series) Append(candles []Candle) int {
	appended := 0
	for _, c := range candles {
		if len(s.Candles) > 0 && !c.Timestamp.After(s.Candles[len(s.Candles)-1].Timestamp) {
			continue
		}
		s.Candles = append(s.Candles, c)
		appended++
	}
	return appended
}

// Truncate returns the causally-valid prefix of the first n candles.
// Trade annotation maps start empty (the caller copies new annotations back
// onto the original series); derived level maps are shared since they are
// precomputed columns, not step output.
func (s *Series) Truncate(n int) *Series {
	if n > len(s.Candles) {
		n = len(s.Candles)
	}
	return &Series{
		Symbol:        s.Symbol,
		Interval:      s.Interval,
		Candles:       s.Candles[:n],
		entries:       make(map[int64]*TradeRecord),
		exits:         make(map[int64]*TradeRecord),
		partialCloses: make(map[int64]*TradeRecord),
		Support:       s.Support,
		Resistance:    s.Resistance,
	}
}

// TruncateByTime returns the prefix of candles with timestamp <= t.
func (s *Series) TruncateByTime(t time.Time) *Series {
	n := 0
	for n < len(s.Candles) && !s.Candles[n].Timestamp.After(t) {
		n++
	}
	return s.Truncate(n)
}

// SetEntry records an entry annotation for ts. Write-once: returns false
// and leaves the existing record untouched when one is already present.
func (s *Series) SetEntry(ts time.Time, rec *TradeRecord) bool {
	return setIfAbsent(s.entries, ts, rec)
}

func (s *Series) SetExit(ts time.Time, rec *TradeRecord) bool {
	return setIfAbsent(s.exits, ts, rec)
}

func (s *Series) SetPartialClose(ts time.Time, rec *TradeRecord) bool {
	return setIfAbsent(s.partialCloses, ts, rec)
}

func (s *Series) Entry(ts time.Time) *TradeRecord        { return s.entries[ts.Unix()] }
func (s *Series) Exit(ts time.Time) *TradeRecord         { return s.exits[ts.Unix()] }
func (s *Series) PartialClose(ts time.Time) *TradeRecord { return s.partialCloses[ts.Unix()] }

func setIfAbsent(m map[int64]*TradeRecord, ts time.Time, rec *TradeRecord) bool {
	key := ts.Unix()
	if _, ok := m[key]; ok {
		return false
	}
	m[key] = rec
	return true
}
