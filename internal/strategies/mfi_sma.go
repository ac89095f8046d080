package strategies

import (
	"github.com/thrasher-corp/gct-ta/indicators"
	"github.com/vitos/crypto_strategy_bot/internal/domain"
	"github.com/vitos/crypto_strategy_bot/internal/usecase"
	"go.uber.org/zap"
)

const (
	mfiPeriod     = 7
	mfiSMAPeriod  = 14
	mfiMinHistory = 35
)

// MFISMA enters long when MFI(7) crosses above its SMA(14) and exits on the
// downward cross. When a take-profit threshold is configured it partially
// closes the position once, after the unrealized gain exceeds the
// threshold.
type MFISMA struct {
	dm     *usecase.DataManager
	engine *usecase.Engine
	logger *zap.Logger

	// Optional partial take-profit: close TakeProfitClosePct percent of
	// the position once the unrealized gain exceeds TakeProfitGainPct.
	// Zero values disable it.
	TakeProfitGainPct  float64
	TakeProfitClosePct float64
}

func NewMFISMA(dm *usecase.DataManager, engine *usecase.Engine, logger *zap.Logger) *MFISMA {
	return &MFISMA{dm: dm, engine: engine, logger: logger}
}

func (s *MFISMA) Name() string { return "mfi_sma" }

func (s *MFISMA) indicators() (mfi, mfiSMA []float64, ok bool) {
	if s.dm.Data == nil || s.dm.Data.Len() < mfiMinHistory {
		return nil, nil, false
	}
	series := s.dm.Data
	mfi = indicators.MFI(highs(series), lows(series), closes(series), volumes(series), mfiPeriod)
	mfiSMA = indicators.SMA(mfi, mfiSMAPeriod)
	return mfi, mfiSMA, true
}

func (s *MFISMA) CheckEntry() usecase.Signal {
	mfi, mfiSMA, ok := s.indicators()
	if !ok {
		return usecase.SignalNone
	}
	if crossedAbove(mfi, mfiSMA) {
		s.logger.Debug("MFI crossed above its SMA, entering long",
			zap.String("symbol", s.dm.Symbol()))
		return usecase.SignalLong
	}
	return usecase.SignalNone
}

func (s *MFISMA) CheckExit() bool {
	mfi, mfiSMA, ok := s.indicators()
	if !ok {
		return false
	}
	if crossedBelow(mfi, mfiSMA) {
		s.logger.Debug("MFI crossed below its SMA, exiting",
			zap.String("symbol", s.dm.Symbol()))
		return true
	}
	return false
}

func (s *MFISMA) CheckPartialClose() float64 {
	if s.TakeProfitGainPct <= 0 || s.TakeProfitClosePct <= 0 {
		return 0
	}
	pos := s.engine.Position()
	if pos == nil || s.dm.Data == nil {
		return 0
	}
	last, ok := s.dm.Data.Last()
	if !ok {
		return 0
	}
	if s.alreadyPartiallyClosed() {
		return 0
	}

	var gainPct float64
	if pos.Side == domain.SideLong {
		gainPct = (last.Close/pos.EntryPrice - 1) * 100
	} else {
		gainPct = (pos.EntryPrice/last.Close - 1) * 100
	}
	if gainPct >= s.TakeProfitGainPct {
		s.logger.Debug("take-profit threshold reached, partially closing",
			zap.String("symbol", s.dm.Symbol()),
			zap.Float64("gain_pct", gainPct))
		return s.TakeProfitClosePct
	}
	return 0
}

// alreadyPartiallyClosed reports whether the current position has had a
// partial close since its entry, so the take-profit fires at most once per
// position.
func (s *MFISMA) alreadyPartiallyClosed() bool {
	history := s.engine.History()
	for i := len(history) - 1; i >= 0; i-- {
		switch history[i].Action {
		case domain.ActionPartialClose:
			return true
		case domain.ActionLong, domain.ActionShort:
			return false
		}
	}
	return false
}
