// Package alert decides when a price or change alert should fire and
// updates the latch and cooldown fields of the alert config accordingly.
package alert

import (
	"errors"
	"math"
	"time"

	"CoinSentinel/internal/model"
)

// ChangeCooldown is the minimum gap between two change alerts for one asset.
const ChangeCooldown = 5 * time.Minute

var (
	ErrInvalidTarget    = errors.New("target price must be a positive number")
	ErrInvalidDirection = errors.New("direction must be above or below")
	ErrInvalidThreshold = errors.New("change threshold must be a positive percentage")
)

// NewTargetAlert validates user input for a one-shot target-price alert.
func NewTargetAlert(target float64, direction model.Direction, now time.Time) (*model.AlertConfig, error) {
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return nil, ErrInvalidTarget
	}
	if direction != model.DirectionAbove && direction != model.DirectionBelow {
		return nil, ErrInvalidDirection
	}
	return &model.AlertConfig{TargetPrice: target, Direction: direction, CreatedAt: now}, nil
}

// ValidateThreshold checks a change-alert threshold in percent.
func ValidateThreshold(threshold float64) error {
	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return ErrInvalidThreshold
	}
	return nil
}

// NewChangeAlert validates user input for a repeating change alert.
func NewChangeAlert(threshold float64, now time.Time) (*model.AlertConfig, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	return &model.AlertConfig{ChangeAlert: true, ChangeThreshold: threshold, CreatedAt: now}, nil
}

// EnableChange turns on the change trigger of cfg after validating threshold.
// The cooldown timestamp is kept so reconfiguring does not re-fire at once.
func EnableChange(cfg *model.AlertConfig, threshold float64) error {
	if err := ValidateThreshold(threshold); err != nil {
		return err
	}
	cfg.ChangeAlert = true
	cfg.ChangeThreshold = threshold
	return nil
}

// Reset re-arms the target latch.
func Reset(cfg *model.AlertConfig) {
	if cfg != nil {
		cfg.TargetFired = false
	}
}

// Evaluate checks both triggers of cfg against the current quote and returns
// the alerts to fire. It mutates cfg: TargetFired latches after the target
// trigger fires and LastChangeNotification moves to now after the change
// trigger fires. Not safe for concurrent use on the same cfg.
func Evaluate(assetID string, price, change24h float64, cfg *model.AlertConfig, now time.Time) []model.Alert {
	if cfg == nil {
		return nil
	}
	var fired []model.Alert

	if cfg.HasTarget() && !cfg.TargetFired && targetReached(cfg, price) {
		cfg.TargetFired = true
		fired = append(fired, model.Alert{
			AssetID:   assetID,
			Kind:      model.AlertTarget,
			Price:     price,
			Change24h: change24h,
			Target:    cfg.TargetPrice,
			Direction: cfg.Direction,
			At:        now,
		})
	}

	if cfg.ChangeAlert && cfg.ChangeThreshold > 0 && math.Abs(change24h) >= cfg.ChangeThreshold {
		if cfg.LastChangeNotification.IsZero() || now.Sub(cfg.LastChangeNotification) > ChangeCooldown {
			cfg.LastChangeNotification = now
			fired = append(fired, model.Alert{
				AssetID:   assetID,
				Kind:      model.AlertChange,
				Price:     price,
				Change24h: change24h,
				At:        now,
			})
		}
	}

	return fired
}

func targetReached(cfg *model.AlertConfig, price float64) bool {
	switch cfg.Direction {
	case model.DirectionAbove:
		return price >= cfg.TargetPrice
	case model.DirectionBelow:
		return price <= cfg.TargetPrice
	}
	return false
}
