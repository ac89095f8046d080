package strategies

import (
	"github.com/thrasher-corp/gct-ta/indicators"
	"github.com/vitos/crypto_strategy_bot/internal/usecase"
	"go.uber.org/zap"
)

// MFISMAParentMACD is the multi-timeframe variant of MFISMA: the entry
// cross on the base timeframe is gated by the parent-timeframe trend, long
// entries being permitted only while the parent MACD line is positive.
type MFISMAParentMACD struct {
	*MFISMA
}

func NewMFISMAParentMACD(dm *usecase.DataManager, engine *usecase.Engine, logger *zap.Logger) *MFISMAParentMACD {
	return &MFISMAParentMACD{MFISMA: NewMFISMA(dm, engine, logger)}
}

func (s *MFISMAParentMACD) Name() string { return "mfi_sma_parent_macd" }

func (s *MFISMAParentMACD) CheckEntry() usecase.Signal {
	signal := s.MFISMA.CheckEntry()
	if signal == usecase.SignalNone {
		return usecase.SignalNone
	}

	parent := s.dm.ParentData
	if parent == nil || parent.Len() < macdMinHistory {
		return usecase.SignalNone
	}
	line, _, _ := indicators.MACD(closes(parent), macdFast, macdSlow, macdSignal)
	if last(line) <= 0 {
		s.logger.Debug("parent MACD is not positive, suppressing entry",
			zap.String("symbol", s.dm.Symbol()),
			zap.String("parent_interval", string(s.dm.ParentInterval())))
		return usecase.SignalNone
	}
	return signal
}
