package strategies

import (
	"github.com/vitos/crypto_strategy_bot/internal/domain"
	"github.com/vitos/crypto_strategy_bot/internal/usecase"
	"go.uber.org/zap"
)

const (
	stochRSIPeriod     = 14
	stochPeriod        = 14
	stochKSmooth       = 3
	stochDSmooth       = 3
	stochRSIMinHistory = 35
)

// StochRSICross trades %K/%D crosses of the stochastic RSI in both
// directions and exits on the opposite cross of the open side.
type StochRSICross struct {
	dm     *usecase.DataManager
	engine *usecase.Engine
	logger *zap.Logger
}

func NewStochRSICross(dm *usecase.DataManager, engine *usecase.Engine, logger *zap.Logger) *StochRSICross {
	return &StochRSICross{dm: dm, engine: engine, logger: logger}
}

func (s *StochRSICross) Name() string { return "stoch_rsi" }

func (s *StochRSICross) indicators() (k, d []float64, ok bool) {
	if s.dm.Data == nil || s.dm.Data.Len() < stochRSIMinHistory {
		return nil, nil, false
	}
	k, d = stochRSI(closes(s.dm.Data), stochRSIPeriod, stochPeriod, stochKSmooth, stochDSmooth)
	return k, d, true
}

func (s *StochRSICross) CheckEntry() usecase.Signal {
	k, d, ok := s.indicators()
	if !ok {
		return usecase.SignalNone
	}
	if crossedAbove(k, d) {
		s.logger.Debug("stochastic RSI %K crossed above %D, entering long",
			zap.String("symbol", s.dm.Symbol()))
		return usecase.SignalLong
	}
	if crossedBelow(k, d) {
		s.logger.Debug("stochastic RSI %K crossed below %D, entering short",
			zap.String("symbol", s.dm.Symbol()))
		return usecase.SignalShort
	}
	return usecase.SignalNone
}

func (s *StochRSICross) CheckExit() bool {
	k, d, ok := s.indicators()
	if !ok {
		return false
	}
	pos := s.engine.Position()
	if pos == nil {
		return false
	}
	if pos.Side == domain.SideLong {
		return crossedBelow(k, d)
	}
	return crossedAbove(k, d)
}

func (s *StochRSICross) CheckPartialClose() float64 { return 0 }
