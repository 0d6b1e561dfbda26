package strategy

import (
	"math"

	"CoinSentinel/internal/calculator"
	"CoinSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// MinHistory is the number of prices needed before any scoring happens.
const MinHistory = 20

// strongMargin is how far one score must lead the other for a strong label.
const strongMargin = 2.0

// Action hints prefixed to the rationale.
const (
	HintBuy        = "consider buying"
	HintSell       = "consider taking profit"
	HintHold       = "wait and see"
	NoStrongSignal = "no strong signal"
	CollectingData = "collecting data"
)

// Warmup returns the fixed neutral result used until MinHistory prices exist.
func Warmup() *model.SignalResult {
	return &model.SignalResult{
		Label:      model.LabelHold,
		Confidence: 0,
		RSI:        50,
		Rationale:  CollectingData,
		Warmup:     true,
	}
}

// classify maps the two scores to a label. Strong labels need a margin
// larger than strongMargin.
func classify(buyScore, sellScore float64) model.SignalLabel {
	switch {
	case buyScore > sellScore+strongMargin:
		return model.LabelStrongBuy
	case buyScore > sellScore:
		return model.LabelBuy
	case sellScore > buyScore+strongMargin:
		return model.LabelStrongSell
	case sellScore > buyScore:
		return model.LabelSell
	default:
		return model.LabelHold
	}
}

func actionHint(label model.SignalLabel) string {
	switch {
	case label.IsBuy():
		return HintBuy
	case label.IsSell():
		return HintSell
	default:
		return HintHold
	}
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Analyze scores a price series (oldest first) plus the 24h change percent.
// volume is accepted alongside the quote but does not affect the score.
func Analyze(prices []float64, change24h, volume float64) *model.SignalResult {
	_ = volume
	if len(prices) < MinHistory {
		return Warmup()
	}

	snap := calculator.Snapshot(prices)

	factors := []factor{
		scoreRSI(snap.RSI.Value),
		scoreMACD(snap.MACD),
		scoreMovingAverages(snap.Price, snap.SMA20, snap.SMA50),
		scoreChange(change24h),
	}

	var buyScore, sellScore float64
	var reasons []string
	scores := make([]model.FactorScore, 0, len(factors))
	for _, f := range factors {
		switch f.score.Side {
		case model.SideBuy:
			buyScore += f.score.Weight
		case model.SideSell:
			sellScore += f.score.Weight
		}
		if f.reason != "" {
			reasons = append(reasons, f.reason)
		}
		scores = append(scores, f.score)
	}

	label := classify(buyScore, sellScore)
	confidence := math.Min((buyScore+sellScore)/10*100, 100)

	rationale := actionHint(label)
	if len(reasons) > 0 {
		rationale += " (" + reasons[0] + ")"
	} else {
		rationale += " (" + NoStrongSignal + ")"
	}

	return &model.SignalResult{
		Label:      label,
		Confidence: round(confidence, 0),
		RSI:        round(snap.RSI.Value, 1),
		MACD:       round(snap.MACD.MACD, 2),
		SMA20:      round(snap.SMA20.Value, 2),
		SMA20Ready: snap.SMA20.Ready,
		BuyScore:   buyScore,
		SellScore:  sellScore,
		Factors:    scores,
		Reasons:    reasons,
		Rationale:  rationale,
	}
}
