package strategies

import (
	"github.com/thrasher-corp/gct-ta/indicators"
	"github.com/vitos/crypto_strategy_bot/internal/usecase"
	"go.uber.org/zap"
)

const (
	rsiPeriod     = 14
	rsiSMAPeriod  = 14
	rsiMinHistory = 28
)

// RSISMA enters long when RSI(14) crosses above its own SMA(14) and exits
// when it crosses back below.
type RSISMA struct {
	dm     *usecase.DataManager
	logger *zap.Logger
}

func NewRSISMA(dm *usecase.DataManager, logger *zap.Logger) *RSISMA {
	return &RSISMA{dm: dm, logger: logger}
}

func (s *RSISMA) Name() string { return "rsi_sma" }

func (s *RSISMA) indicators() (rsi, rsiSMA []float64, ok bool) {
	if s.dm.Data == nil || s.dm.Data.Len() < rsiMinHistory {
		return nil, nil, false
	}
	rsi = indicators.RSI(closes(s.dm.Data), rsiPeriod)
	rsiSMA = indicators.SMA(rsi, rsiSMAPeriod)
	return rsi, rsiSMA, true
}

func (s *RSISMA) CheckEntry() usecase.Signal {
	rsi, rsiSMA, ok := s.indicators()
	if !ok {
		return usecase.SignalNone
	}
	if crossedAbove(rsi, rsiSMA) {
		s.logger.Debug("RSI crossed above its SMA, entering long",
			zap.String("symbol", s.dm.Symbol()))
		return usecase.SignalLong
	}
	return usecase.SignalNone
}

func (s *RSISMA) CheckExit() bool {
	rsi, rsiSMA, ok := s.indicators()
	if !ok {
		return false
	}
	if crossedBelow(rsi, rsiSMA) {
		s.logger.Debug("RSI crossed below its SMA, exiting",
			zap.String("symbol", s.dm.Symbol()))
		return true
	}
	return false
}

func (s *RSISMA) CheckPartialClose() float64 { return 0 }
