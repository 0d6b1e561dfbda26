package notifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"CoinSentinel/internal/model"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"jpy": "¥",
	"usd": "$",
	"eur": "€",
}

// FormatPrice renders a price with thousands separators and the currency
// symbol. Large prices drop the fraction, sub-unit prices keep four places.
func FormatPrice(price float64, currency string) string {
	places := int32(2)
	switch {
	case price >= 100:
		places = 0
	case price < 1:
		places = 4
	}
	s := decimal.NewFromFloat(price).StringFixed(places)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	if sym, ok := currencySymbols[strings.ToLower(currency)]; ok {
		return sym + out
	}
	return out + " " + strings.ToUpper(currency)
}

// FormatPercent renders a signed percent with two decimals.
func FormatPercent(change float64) string {
	return fmt.Sprintf("%+.2f%%", change)
}

// FormatAlert renders the title and body for a fired alert.
func FormatAlert(a model.Alert, assetName, currency string) (title, body string) {
	switch a.Kind {
	case model.AlertTarget:
		title = fmt.Sprintf("🎯 %s price alert", assetName)
		body = fmt.Sprintf("Target reached: %s (%s %s)", FormatPrice(a.Price, currency), a.Direction, FormatPrice(a.Target, currency))
	default:
		direction := "Up"
		if a.Change24h < 0 {
			direction = "Down"
		}
		title = fmt.Sprintf("📊 %s price move", assetName)
		body = fmt.Sprintf("%s: %.2f%%", direction, math.Abs(a.Change24h))
	}
	return title, body
}

// FormatBackgroundChange renders the body of a background sync change alert.
func FormatBackgroundChange(assetID string, change float64) string {
	return fmt.Sprintf("%s: %s", assetID, FormatPercent(change))
}

// FormatFailure renders the notification sent when a cycle exhausts its retries.
func FormatFailure(err error) (title, body string) {
	return "❌ Price update failed", fmt.Sprintf("%v\nScheduled updates are paused until /reload.", err)
}

// FormatSummary renders the cycle summary.
func FormatSummary(sum model.Summary, snap *model.Snapshot, currency string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>CoinSentinel</b> | %s\n\n", snap.CycleAt.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("Status: %s (%d/%d assets)\n", snap.Status, snap.Received, snap.Expected))
	if snap.LastError != "" {
		b.WriteString(fmt.Sprintf("Last error: %s\n", snap.LastError))
	}
	b.WriteString(fmt.Sprintf("🟢 Buy: %d | ⚪ Hold: %d | 🔴 Sell: %d\n", sum.Buy, sum.Hold, sum.Sell))
	if m := sum.TopMover; m != nil {
		b.WriteString(fmt.Sprintf("Top mover: %s %s at %s\n", m.Asset.Name, FormatPercent(m.Change24h), FormatPrice(m.Price, currency)))
	}
	return b.String()
}

// FormatSignals renders one line per coin.
func FormatSignals(rows []model.CoinView, currency string) string {
	if len(rows) == 0 {
		return "No coins match."
	}
	var b strings.Builder
	for _, r := range rows {
		star := ""
		if r.IsFavorite {
			star = "⭐"
		}
		b.WriteString(fmt.Sprintf("%s<b>%s</b> %s %s", star, strings.ToUpper(r.Asset.Symbol), FormatPrice(r.Price, currency), FormatPercent(r.Change24h)))
		if s := r.Signal; s != nil {
			b.WriteString(fmt.Sprintf(" | %s %.0f%% RSI %.1f | %s", labelIcon(s.Label), s.Confidence, s.RSI, s.Rationale))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func labelIcon(l model.SignalLabel) string {
	switch l {
	case model.LabelStrongBuy:
		return "🟢🟢 STRONG BUY"
	case model.LabelBuy:
		return "🟢 BUY"
	case model.LabelSell:
		return "🔴 SELL"
	case model.LabelStrongSell:
		return "🔴🔴 STRONG SELL"
	}
	return "⚪ HOLD"
}

// FormatAlertConfig describes an asset's alert settings for the /status reply.
func FormatAlertConfig(assetID string, cfg *model.AlertConfig, currency string) string {
	var parts []string
	if cfg.HasTarget() {
		state := "armed"
		if cfg.TargetFired {
			state = "fired"
		}
		parts = append(parts, fmt.Sprintf("%s %s (%s)", cfg.Direction, FormatPrice(cfg.TargetPrice, currency), state))
	}
	if cfg.ChangeAlert {
		p := fmt.Sprintf("±%.2f%%", cfg.ChangeThreshold)
		if !cfg.LastChangeNotification.IsZero() {
			p += " last " + cfg.LastChangeNotification.Format(time.Kitchen)
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return assetID + ": none"
	}
	return assetID + ": " + strings.Join(parts, ", ")
}
