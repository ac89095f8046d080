package strategies

import (
	"github.com/thrasher-corp/gct-ta/indicators"
	"github.com/vitos/crypto_strategy_bot/internal/domain"
	"github.com/vitos/crypto_strategy_bot/internal/usecase"
	"go.uber.org/zap"
)

const (
	macdFast       = 12
	macdSlow       = 26
	macdSignal     = 9
	macdMinHistory = 35
)

// MACDCross trades both directions on MACD(12,26,9) line/signal crosses:
// long on an upward cross, short on a downward cross, and exits on the
// opposite cross of the open side.
type MACDCross struct {
	dm     *usecase.DataManager
	engine *usecase.Engine
	logger *zap.Logger
}

func NewMACDCross(dm *usecase.DataManager, engine *usecase.Engine, logger *zap.Logger) *MACDCross {
	return &MACDCross{dm: dm, engine: engine, logger: logger}
}

func (s *MACDCross) Name() string { return "macd" }

func (s *MACDCross) indicators() (line, signal []float64, ok bool) {
	if s.dm.Data == nil || s.dm.Data.Len() < macdMinHistory {
		return nil, nil, false
	}
	line, signal, _ = indicators.MACD(closes(s.dm.Data), macdFast, macdSlow, macdSignal)
	return line, signal, true
}

func (s *MACDCross) CheckEntry() usecase.Signal {
	line, signal, ok := s.indicators()
	if !ok {
		return usecase.SignalNone
	}
	if crossedAbove(line, signal) {
		s.logger.Debug("MACD crossed above its signal line, entering long",
			zap.String("symbol", s.dm.Symbol()))
		return usecase.SignalLong
	}
	if crossedBelow(line, signal) {
		s.logger.Debug("MACD crossed below its signal line, entering short",
			zap.String("symbol", s.dm.Symbol()))
		return usecase.SignalShort
	}
	return usecase.SignalNone
}

func (s *MACDCross) CheckExit() bool {
	line, signal, ok := s.indicators()
	if !ok {
		return false
	}
	pos := s.engine.Position()
	if pos == nil {
		return false
	}
	if pos.Side == domain.SideLong {
		return crossedBelow(line, signal)
	}
	return crossedAbove(line, signal)
}

func (s *MACDCross) CheckPartialClose() float64 { return 0 }
