package strategies

import (
	"fmt"
	"sort"

	"github.com/vitos/crypto_strategy_bot/internal/domain"
	"github.com/vitos/crypto_strategy_bot/internal/usecase"
	"go.uber.org/zap"
)

// Params carries the optional per-strategy tuning knobs from configuration.
type Params struct {
	TakeProfitGainPct  float64
	TakeProfitClosePct float64
}

// Factory builds a strategy bound to one data manager and engine.
type Factory func(dm *usecase.DataManager, engine *usecase.Engine, logger *zap.Logger, params Params) usecase.Strategy

var registry = map[string]Factory{
	"rsi_sma": func(dm *usecase.DataManager, _ *usecase.Engine, logger *zap.Logger, _ Params) usecase.Strategy {
		return NewRSISMA(dm, logger)
	},
	"mfi_sma": func(dm *usecase.DataManager, engine *usecase.Engine, logger *zap.Logger, params Params) usecase.Strategy {
		s := NewMFISMA(dm, engine, logger)
		s.TakeProfitGainPct = params.TakeProfitGainPct
		s.TakeProfitClosePct = params.TakeProfitClosePct
		return s
	},
	"macd": func(dm *usecase.DataManager, engine *usecase.Engine, logger *zap.Logger, _ Params) usecase.Strategy {
		return NewMACDCross(dm, engine, logger)
	},
	"stoch_rsi": func(dm *usecase.DataManager, engine *usecase.Engine, logger *zap.Logger, _ Params) usecase.Strategy {
		return NewStochRSICross(dm, engine, logger)
	},
	"mfi_sma_parent_macd": func(dm *usecase.DataManager, engine *usecase.Engine, logger *zap.Logger, params Params) usecase.Strategy {
		s := NewMFISMAParentMACD(dm, engine, logger)
		s.TakeProfitGainPct = params.TakeProfitGainPct
		s.TakeProfitClosePct = params.TakeProfitClosePct
		return s
	},
}

// New builds a registered strategy by name.
func New(name string, dm *usecase.DataManager, engine *usecase.Engine, logger *zap.Logger, params Params) (usecase.Strategy, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown strategy %q (available: %v)",
			domain.ErrInvalidConfiguration, name, Names())
	}
	if name == "mfi_sma_parent_macd" && !dm.HasParent() {
		return nil, fmt.Errorf("%w: strategy %q requires a parent interval",
			domain.ErrInvalidConfiguration, name)
	}
	return factory(dm, engine, logger, params), nil
}

// Names lists the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
