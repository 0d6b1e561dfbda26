package strategy

import (
	"reflect"
	"strings"
	"testing"

	"CoinSentinel/internal/model"
)

// zigzagUp rises by +5 then falls by -4, ending on a high.
func zigzagUp(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		k := float64(i / 2)
		if i%2 == 0 {
			prices[i] = 100 + k
		} else {
			prices[i] = 105 + k
		}
	}
	return prices
}

func mirror(prices []float64, c float64) []float64 {
	out := make([]float64, len(prices))
	for i, p := range prices {
		out[i] = c - p
	}
	return out
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestAnalyze_WarmupGuard(t *testing.T) {
	for _, n := range []int{0, 1, 14, 15, 19} {
		for _, change := range []float64{-50, 0, 50} {
			sig := Analyze(linear(n, 100, 1), change, 1e9)
			if !reflect.DeepEqual(sig, Warmup()) {
				t.Errorf("n=%d change=%.0f: expected neutral warm-up result, got %+v", n, change, sig)
			}
		}
	}
	w := Warmup()
	if w.Label != model.LabelHold || w.Confidence != 0 || w.RSI != 50 || w.Rationale != CollectingData {
		t.Errorf("unexpected warm-up result: %+v", w)
	}
}

func TestAnalyze_StrongBuyProfile(t *testing.T) {
	sig := Analyze(zigzagUp(30), 10, 0)
	if sig.Label != model.LabelStrongBuy {
		t.Fatalf("expected strong-buy, got %s (buy=%.1f sell=%.1f)", sig.Label, sig.BuyScore, sig.SellScore)
	}
	if sig.BuyScore != 4.5 || sig.SellScore != 0 {
		t.Errorf("expected buy=4.5 sell=0, got buy=%.1f sell=%.1f", sig.BuyScore, sig.SellScore)
	}
	if sig.Confidence != 45 {
		t.Errorf("expected confidence 45, got %.0f", sig.Confidence)
	}
	if sig.RSI != 55.6 {
		t.Errorf("expected display RSI 55.6, got %v", sig.RSI)
	}
	if sig.Rationale != HintBuy+" ("+ReasonGoldenCross+")" {
		t.Errorf("unexpected rationale: %q", sig.Rationale)
	}
	if len(sig.Factors) != 4 {
		t.Errorf("expected 4 factor scores, got %d", len(sig.Factors))
	}
}

func TestAnalyze_SymmetricUnderNegation(t *testing.T) {
	cases := []struct {
		name   string
		prices []float64
		change float64
	}{
		{"zigzag", zigzagUp(30), 10},
		{"zigzag mild change", zigzagUp(40), 5},
		{"linear", linear(30, 100, 1), 9},
		{"long zigzag", zigzagUp(100), -4},
	}
	for _, tc := range cases {
		up := Analyze(tc.prices, tc.change, 0)
		down := Analyze(mirror(tc.prices, 1000), -tc.change, 0)

		if up.BuyScore != down.SellScore || up.SellScore != down.BuyScore {
			t.Errorf("%s: scores not mirrored: up=(%.1f,%.1f) down=(%.1f,%.1f)",
				tc.name, up.BuyScore, up.SellScore, down.BuyScore, down.SellScore)
		}
		if up.Label.Rank()+down.Label.Rank() != 4 {
			t.Errorf("%s: labels not mirrored: %s vs %s", tc.name, up.Label, down.Label)
		}
		if up.Confidence != down.Confidence {
			t.Errorf("%s: confidence differs: %.0f vs %.0f", tc.name, up.Confidence, down.Confidence)
		}
	}

	down := Analyze(mirror(zigzagUp(30), 300), -10, 0)
	if down.Label != model.LabelStrongSell {
		t.Errorf("expected strong-sell for the mirrored profile, got %s", down.Label)
	}
	if down.SellScore-down.BuyScore != 4.5 {
		t.Errorf("expected margin 4.5, got %.1f", down.SellScore-down.BuyScore)
	}
}

func TestAnalyze_ReasonOrderAndHint(t *testing.T) {
	sig := Analyze(linear(30, 200, -1), -2, 0)
	if sig.Label != model.LabelSell {
		t.Fatalf("expected sell, got %s (buy=%.1f sell=%.1f)", sig.Label, sig.BuyScore, sig.SellScore)
	}
	want := []string{ReasonOversold, ReasonDeathCross}
	if !reflect.DeepEqual(sig.Reasons, want) {
		t.Errorf("expected reasons %v, got %v", want, sig.Reasons)
	}
	if sig.Rationale != HintSell+" ("+ReasonOversold+")" {
		t.Errorf("unexpected rationale: %q", sig.Rationale)
	}
	if sig.Confidence != 55 {
		t.Errorf("expected confidence 55, got %.0f", sig.Confidence)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	script := []float64{
		4900000, 4920000, 4890000, 4950000, 4970000, 4940000, 5010000, 5030000, 4990000, 5050000,
		5080000, 5060000, 5100000, 5090000, 5120000, 5150000, 5130000, 5170000, 5160000, 5200000,
		5180000, 5210000, 5250000, 5230000, 5270000, 5260000, 5300000, 5290000, 5320000, 5350000,
	}
	first := Analyze(script, 4.2, 123456)
	for i := 0; i < 5; i++ {
		again := Analyze(script, 4.2, 123456)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestClassify_AllBoundaries(t *testing.T) {
	tests := []struct {
		buy, sell float64
		label     model.SignalLabel
	}{
		{4.5, 2.0, model.LabelStrongBuy},
		{4.0, 2.0, model.LabelBuy},
		{2.5, 2.5, model.LabelHold},
		{0, 0, model.LabelHold},
		{1.0, 1.5, model.LabelSell},
		{1.0, 3.0, model.LabelSell},
		{1.0, 3.5, model.LabelStrongSell},
	}
	for _, tt := range tests {
		if got := classify(tt.buy, tt.sell); got != tt.label {
			t.Errorf("buy=%.1f sell=%.1f: expected %s, got %s", tt.buy, tt.sell, tt.label, got)
		}
	}
}

func TestScoreRSI_Bands(t *testing.T) {
	tests := []struct {
		rsi    float64
		side   model.Side
		weight float64
		reason string
	}{
		{10, model.SideBuy, 2.5, ReasonOversold},
		{29.99, model.SideBuy, 2.5, ReasonOversold},
		{30, model.SideBuy, 1.5, ReasonLeaningOversold},
		{39.9, model.SideBuy, 1.5, ReasonLeaningOversold},
		{40, model.SideNone, 0, ""},
		{60, model.SideNone, 0, ""},
		{60.1, model.SideSell, 1.5, ReasonLeaningOverbought},
		{70, model.SideSell, 1.5, ReasonLeaningOverbought},
		{70.1, model.SideSell, 2.5, ReasonOverbought},
		{100, model.SideSell, 2.5, ReasonOverbought},
	}
	for _, tt := range tests {
		f := scoreRSI(tt.rsi)
		if f.score.Side != tt.side || f.score.Weight != tt.weight || f.reason != tt.reason {
			t.Errorf("rsi=%.2f: got side=%q weight=%.1f reason=%q", tt.rsi, f.score.Side, f.score.Weight, f.reason)
		}
	}
}

func TestScoreChange_Bands(t *testing.T) {
	tests := []struct {
		change float64
		side   model.Side
		weight float64
	}{
		{8.5, model.SideBuy, 1.5},
		{8, model.SideBuy, 0.5},
		{3.1, model.SideBuy, 0.5},
		{3, model.SideNone, 0},
		{-3, model.SideNone, 0},
		{-3.1, model.SideSell, 0.5},
		{-8, model.SideSell, 0.5},
		{-8.5, model.SideSell, 1.5},
	}
	for _, tt := range tests {
		f := scoreChange(tt.change)
		if f.score.Side != tt.side || f.score.Weight != tt.weight {
			t.Errorf("change=%.1f: got side=%q weight=%.1f", tt.change, f.score.Side, f.score.Weight)
		}
	}
}

func TestScoreMACD_ZeroCountsAsSell(t *testing.T) {
	if f := scoreMACD(model.MACDResult{}); f.score.Side != model.SideSell || f.score.Weight != 1 {
		t.Errorf("expected zero histogram to add 1 to sell, got %+v", f.score)
	}
	if f := scoreMACD(model.MACDResult{Histogram: 0.01}); f.score.Side != model.SideBuy {
		t.Errorf("expected positive histogram to add to buy, got %+v", f.score)
	}
}

func TestScoreMovingAverages_RequiresBoth(t *testing.T) {
	f := scoreMovingAverages(120, model.Indicator{Value: 110, Ready: true}, model.Indicator{})
	if f.score.Side != model.SideNone || f.reason != "" {
		t.Errorf("expected no contribution without SMA50, got %+v", f)
	}
	if !strings.Contains(f.score.Commentary, "unavailable") {
		t.Errorf("unexpected commentary: %q", f.score.Commentary)
	}
	f = scoreMovingAverages(90, model.Indicator{Value: 100, Ready: true}, model.Indicator{Value: 110, Ready: true})
	if f.reason != ReasonDeathCross || f.score.Weight != 2 {
		t.Errorf("expected death cross, got %+v", f)
	}
}
