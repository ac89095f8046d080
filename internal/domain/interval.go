package domain

import (
	"fmt"
	"time"
)

// Interval is a symbolic candle timeframe name as accepted by the
// market data provider ("1m" .. "15d").
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
	Interval1w  Interval = "1w"
	Interval15d Interval = "15d"
)

var intervalMinutes = map[Interval]int{
	Interval1m:  1,
	Interval5m:  5,
	Interval15m: 15,
	Interval30m: 30,
	Interval1h:  60,
	Interval4h:  240,
	Interval1d:  1440,
	Interval1w:  10080,
	Interval15d: 21600,
}

// Minutes converts the interval to its duration in minutes.
func (i Interval) Minutes() (int, error) {
	m, ok := intervalMinutes[i]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, string(i))
	}
	return m, nil
}

// Duration converts the interval to a time.Duration.
func (i Interval) Duration() (time.Duration, error) {
	m, err := i.Minutes()
	if err != nil {
		return 0, err
	}
	return time.Duration(m) * time.Minute, nil
}

// ValidateRelationship checks that parent is a strictly coarser timeframe
// than base. A parent that is not an integer multiple of the base is legal
// but worth a warning; callers can detect that with IsAligned.
func ValidateRelationship(base, parent Interval) error {
	baseMin, err := base.Minutes()
	if err != nil {
		return err
	}
	parentMin, err := parent.Minutes()
	if err != nil {
		return err
	}
	if parentMin <= baseMin {
		return fmt.Errorf("%w: parent interval %s (%dm) must be greater than base interval %s (%dm)",
			ErrInvalidConfiguration, parent, parentMin, base, baseMin)
	}
	return nil
}

// IsAligned reports whether the parent duration is an integer multiple of
// the base duration. Both intervals must be valid.
func IsAligned(base, parent Interval) bool {
	baseMin, err := base.Minutes()
	if err != nil {
		return false
	}
	parentMin, err := parent.Minutes()
	if err != nil {
		return false
	}
	return parentMin%baseMin == 0
}

// ParentUpdatePeriod is the number of base bars between parent series
// refreshes: floor(parentMinutes / baseMinutes).
func ParentUpdatePeriod(base, parent Interval) (int, error) {
	if err := ValidateRelationship(base, parent); err != nil {
		return 0, err
	}
	baseMin, _ := base.Minutes()
	parentMin, _ := parent.Minutes()
	return parentMin / baseMin, nil
}
