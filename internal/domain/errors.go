package domain

import "errors"

var (
	// ErrInvalidInterval is returned for an unrecognized interval name.
	// Fatal at construction time.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrInvalidConfiguration is returned for an impossible strategy
	// configuration, e.g. a parent interval not coarser than the base.
	// Fatal at construction time.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInsufficientData means the provider returned no (or not enough)
	// history for an indicator or backtest window. Recoverable: the check
	// yields no signal, a backtest reports and stops gracefully.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidPercentage means a partial close percentage outside (0,100].
	// Recoverable: the operation is skipped and logged.
	ErrInvalidPercentage = errors.New("invalid percentage")

	// ErrNoOpenPosition means close/partial-close/trailing-stop was invoked
	// with no position. Recoverable: no-op, logged as a warning.
	ErrNoOpenPosition = errors.New("no open position")

	// ErrProviderFailure wraps market data fetch errors. The owning strategy
	// instance deactivates itself; other instances are unaffected.
	ErrProviderFailure = errors.New("market data provider failure")

	// ErrExecution wraps unexpected failures inside the position engine.
	// A backtest loop aborts early but still yields partial results.
	ErrExecution = errors.New("execution error")
)
