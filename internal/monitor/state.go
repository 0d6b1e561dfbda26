package monitor

import (
	"context"
	"fmt"
	"log"
	"sort"

	"CoinSentinel/internal/alert"
	"CoinSentinel/internal/model"
)

// ToggleFavorite flips an asset's favorite flag and persists it.
func (m *Monitor) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownAsset, id)
	}
	prev := append([]string(nil), m.state.Favorites...)
	on := m.state.ToggleFavorite(id)
	if err := m.saveLocked(ctx); err != nil {
		m.state.Favorites = prev
		return !on, err
	}
	return on, nil
}

// SetTargetAlert configures a one-shot target alert, re-arming the latch.
// An existing change trigger on the asset is kept. Repeating the current
// target and direction only re-arms it.
func (m *Monitor) SetTargetAlert(ctx context.Context, id string, target float64, dir model.Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, id)
	}
	cfg, err := alert.NewTargetAlert(target, dir, m.now())
	if err != nil {
		return err
	}
	prev := m.state.Alerts[id]
	if prev != nil && prev.TargetPrice == target && prev.Direction == dir {
		c := *prev
		alert.Reset(&c)
		return m.putAlertLocked(ctx, id, &c)
	}
	if prev != nil {
		cfg.ChangeAlert = prev.ChangeAlert
		cfg.ChangeThreshold = prev.ChangeThreshold
		cfg.LastChangeNotification = prev.LastChangeNotification
	}
	return m.putAlertLocked(ctx, id, cfg)
}

// SetChangeAlert enables the change trigger for an asset.
func (m *Monitor) SetChangeAlert(ctx context.Context, id string, threshold float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, id)
	}
	var cfg *model.AlertConfig
	if prev := m.state.Alerts[id]; prev != nil {
		c := *prev
		if err := alert.EnableChange(&c, threshold); err != nil {
			return err
		}
		cfg = &c
	} else {
		c, err := alert.NewChangeAlert(threshold, m.now())
		if err != nil {
			return err
		}
		cfg = c
	}
	return m.putAlertLocked(ctx, id, cfg)
}

// ClearAlert removes every trigger configured for an asset.
func (m *Monitor) ClearAlert(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.state.Alerts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoAlert, id)
	}
	delete(m.state.Alerts, id)
	if err := m.saveLocked(ctx); err != nil {
		m.state.Alerts[id] = prev
		return err
	}
	log.Printf("[INFO] alert cleared: %s", id)
	return nil
}

// Alerts returns a copy of the configured alerts, keyed by asset id.
func (m *Monitor) Alerts() map[string]model.AlertConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]model.AlertConfig, len(m.state.Alerts))
	for id, cfg := range m.state.Alerts {
		out[id] = *cfg
	}
	return out
}

// Favorites returns the favorited asset ids, sorted.
func (m *Monitor) Favorites() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.state.Favorites...)
	sort.Strings(out)
	return out
}

func (m *Monitor) putAlertLocked(ctx context.Context, id string, cfg *model.AlertConfig) error {
	prev, had := m.state.Alerts[id]
	m.state.Alerts[id] = cfg
	if err := m.saveLocked(ctx); err != nil {
		if had {
			m.state.Alerts[id] = prev
		} else {
			delete(m.state.Alerts, id)
		}
		return err
	}
	log.Printf("[INFO] alert configured: %s", id)
	return nil
}

func (m *Monitor) saveLocked(ctx context.Context) error {
	if err := m.store.Save(ctx, m.state); err != nil {
		return fmt.Errorf("persist user state: %w", err)
	}
	return nil
}
