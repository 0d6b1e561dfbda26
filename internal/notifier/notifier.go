// Package notifier delivers alert notifications and answers chat commands.
package notifier

import (
	"context"
	"errors"
	"log"
	"sync"

	"CoinSentinel/internal/model"
)

// ErrPermission is returned by Gate when notifications are not granted.
var ErrPermission = errors.New("notification permission not granted")

// Notifier delivers a titled message.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Gate forwards to the wrapped Notifier only while permission is granted.
type Gate struct {
	mu         sync.RWMutex
	next       Notifier
	permission model.Permission
}

// NewGate wraps next. An empty permission means default.
func NewGate(next Notifier, permission model.Permission) *Gate {
	if permission == "" {
		permission = model.PermissionDefault
	}
	return &Gate{next: next, permission: permission}
}

// Permission returns the current permission state.
func (g *Gate) Permission() model.Permission {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.permission
}

// Granted reports whether notifications may be sent.
func (g *Gate) Granted() bool { return g.Permission() == model.PermissionGranted }

// SetPermission changes the permission state.
func (g *Gate) SetPermission(p model.Permission) {
	g.mu.Lock()
	g.permission = p
	g.mu.Unlock()
	log.Printf("[INFO] notification permission set to %s", p)
}

func (g *Gate) Notify(ctx context.Context, title, body string) error {
	if !g.Granted() {
		return ErrPermission
	}
	return g.next.Notify(ctx, title, body)
}

// LogNotifier writes notifications to the log. Used when Telegram is not configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, title, body string) error {
	log.Printf("[INFO] notification: %s | %s", title, body)
	return nil
}
