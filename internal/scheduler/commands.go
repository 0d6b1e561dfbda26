package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CoinSentinel/internal/alert"
	"CoinSentinel/internal/dashboard"
	"CoinSentinel/internal/model"
	"CoinSentinel/internal/monitor"
	"CoinSentinel/internal/notifier"
)

const usage = "Commands:\n" +
	"/status\n" +
	"/signals [buy|sell|favorites|all] [name|change|signal|volume]\n" +
	"/fav <coin>\n" +
	"/alert <coin> above|below <price>\n" +
	"/change <coin> <percent>\n" +
	"/clear <coin>\n" +
	"/interval 15|30|60\n" +
	"/notify [on|off|test]\n" +
	"/refresh\n" +
	"/reload"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return usage
	}
	name := strings.ToLower(fields[0])
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i] // "/status@MyBot" in group chats
	}
	args := fields[1:]

	switch name {
	case "/status":
		return s.statusReply()
	case "/signals":
		return s.signalsReply(args)
	case "/fav":
		return s.favReply(args)
	case "/alert":
		return s.alertReply(args)
	case "/change":
		return s.changeReply(args)
	case "/clear":
		return s.clearReply(args)
	case "/interval":
		return s.intervalReply(args)
	case "/notify":
		return s.notifyReply(args)
	case "/refresh":
		if err := s.RefreshNow(); err != nil {
			return "❌ Refresh failed: " + err.Error()
		}
		return s.summary()
	case "/reload":
		if err := s.Monitor.Reload(s.Ctx); err != nil {
			return "❌ Reload failed: " + err.Error()
		}
		return "🔄 Reloaded\n\n" + s.summary()
	default:
		return usage
	}
}

func (s *Scheduler) summary() string {
	snap := s.Monitor.Snapshot(dashboard.SortName, dashboard.FilterAll)
	return notifier.FormatSummary(s.Monitor.Summary(), snap, s.Monitor.Currency())
}

func (s *Scheduler) statusReply() string {
	var b strings.Builder
	b.WriteString(s.summary())
	b.WriteString(fmt.Sprintf("Interval: %v | Notifications: %s\n", s.Interval(), s.Monitor.Notifier().Permission()))
	if favs := s.Monitor.Favorites(); len(favs) > 0 {
		b.WriteString("Favorites: " + strings.Join(favs, ", ") + "\n")
	}
	alerts := s.Monitor.Alerts()
	if len(alerts) > 0 {
		b.WriteString("Alerts:\n")
		for _, a := range s.Monitor.Assets() {
			if cfg, ok := alerts[a.ID]; ok {
				b.WriteString("  " + notifier.FormatAlertConfig(a.ID, &cfg, s.Monitor.Currency()) + "\n")
			}
		}
	}
	return b.String()
}

func (s *Scheduler) signalsReply(args []string) string {
	filter, sortMode := dashboard.FilterAll, dashboard.SortSignal
	for _, a := range args {
		switch a = strings.ToLower(a); a {
		case dashboard.FilterAll, dashboard.FilterBuy, dashboard.FilterSell, dashboard.FilterFavorites:
			filter = a
		case dashboard.SortName, dashboard.SortChange, dashboard.SortSignal, dashboard.SortVolume:
			sortMode = a
		default:
			return "Usage: /signals [buy|sell|favorites|all] [name|change|signal|volume]"
		}
	}
	snap := s.Monitor.Snapshot(sortMode, filter)
	return notifier.FormatSignals(snap.Coins, s.Monitor.Currency())
}

func (s *Scheduler) favReply(args []string) string {
	if len(args) != 1 {
		return "Usage: /fav <coin>"
	}
	on, err := s.Monitor.ToggleFavorite(s.Ctx, strings.ToLower(args[0]))
	if err != nil {
		return replyError(err)
	}
	if on {
		return fmt.Sprintf("⭐ %s added to favorites", args[0])
	}
	return fmt.Sprintf("☆ %s removed from favorites", args[0])
}

func (s *Scheduler) alertReply(args []string) string {
	const u = "Usage: /alert <coin> above|below <price>"
	if len(args) != 3 {
		return u
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(args[2], ",", ""), 64)
	if err != nil {
		return u
	}
	id := strings.ToLower(args[0])
	dir := model.Direction(strings.ToLower(args[1]))
	if err := s.Monitor.SetTargetAlert(s.Ctx, id, price, dir); err != nil {
		return replyError(err)
	}
	return fmt.Sprintf("🔔 Price alert set: %s %s %s", id, dir, notifier.FormatPrice(price, s.Monitor.Currency()))
}

func (s *Scheduler) changeReply(args []string) string {
	const u = "Usage: /change <coin> <percent>"
	if len(args) != 2 {
		return u
	}
	pct, err := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
	if err != nil {
		return u
	}
	id := strings.ToLower(args[0])
	if err := s.Monitor.SetChangeAlert(s.Ctx, id, pct); err != nil {
		return replyError(err)
	}
	return fmt.Sprintf("🔔 Change alert set: %s ±%.2f%%", id, pct)
}

func (s *Scheduler) clearReply(args []string) string {
	if len(args) != 1 {
		return "Usage: /clear <coin>"
	}
	id := strings.ToLower(args[0])
	if err := s.Monitor.ClearAlert(s.Ctx, id); err != nil {
		return replyError(err)
	}
	return fmt.Sprintf("🔕 Alerts cleared for %s", id)
}

func (s *Scheduler) intervalReply(args []string) string {
	if len(args) != 1 {
		return "Usage: /interval 15|30|60"
	}
	sec, err := strconv.Atoi(strings.TrimSuffix(args[0], "s"))
	if err != nil {
		return "Usage: /interval 15|30|60"
	}
	if err := s.SetInterval(time.Duration(sec) * time.Second); err != nil {
		return "❌ " + err.Error()
	}
	return fmt.Sprintf("⏱ Updating every %ds", sec)
}

func (s *Scheduler) notifyReply(args []string) string {
	gate := s.Monitor.Notifier()
	if len(args) == 0 {
		return fmt.Sprintf("Notifications: %s", gate.Permission())
	}
	if len(args) != 1 {
		return "Usage: /notify [on|off|test]"
	}
	switch strings.ToLower(args[0]) {
	case "on":
		gate.SetPermission(model.PermissionGranted)
	case "off":
		gate.SetPermission(model.PermissionDenied)
	case "test":
		err := gate.Notify(s.Ctx, "🔔 Test notification", "Price alerts will be delivered here.")
		if errors.Is(err, notifier.ErrPermission) {
			return "❌ Notifications are off, send /notify on first"
		}
		if err != nil {
			return "❌ Test notification failed: " + err.Error()
		}
		return "✅ Test notification sent"
	default:
		return "Usage: /notify [on|off|test]"
	}
	return fmt.Sprintf("Notifications: %s", gate.Permission())
}

func replyError(err error) string {
	for _, userErr := range []error{
		monitor.ErrUnknownAsset, monitor.ErrNoAlert,
		alert.ErrInvalidTarget, alert.ErrInvalidDirection, alert.ErrInvalidThreshold,
	} {
		if errors.Is(err, userErr) {
			return "❌ " + err.Error()
		}
	}
	return "❌ internal error: " + err.Error()
}
