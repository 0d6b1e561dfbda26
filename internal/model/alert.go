package model

import "time"

// Direction of a target-price alert.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// Permission mirrors the notification permission states.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// AlertConfig is the user-authored alert for one asset. TargetFired and
// LastChangeNotification are the only fields the evaluator mutates.
type AlertConfig struct {
	TargetPrice float64   `json:"target_price,omitempty"`
	Direction   Direction `json:"direction,omitempty"`
	TargetFired bool      `json:"target_fired"`

	ChangeAlert            bool      `json:"change_alert"`
	ChangeThreshold        float64   `json:"change_threshold,omitempty"`
	LastChangeNotification time.Time `json:"last_change_notification"`

	CreatedAt time.Time `json:"created_at"`
}

// HasTarget reports whether a target-price trigger is configured.
func (c *AlertConfig) HasTarget() bool {
	return c.TargetPrice > 0 && (c.Direction == DirectionAbove || c.Direction == DirectionBelow)
}

// AlertKind distinguishes the two independent triggers.
type AlertKind string

const (
	AlertTarget AlertKind = "target"
	AlertChange AlertKind = "change"
)

// Alert is a notification decided by the evaluator.
type Alert struct {
	AssetID   string
	Kind      AlertKind
	Price     float64
	Change24h float64
	Target    float64
	Direction Direction
	At        time.Time
}
