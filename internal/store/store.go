// Package store persists the user's favorites and alert configs across runs.
package store

import (
	"context"

	"CoinSentinel/internal/model"
)

// Store loads and saves the local user state.
type Store interface {
	Load(ctx context.Context) (*model.UserState, error)
	Save(ctx context.Context, state *model.UserState) error
	Close() error
}

// normalize makes sure a loaded state has its maps initialized.
func normalize(state *model.UserState) *model.UserState {
	if state == nil {
		return model.NewUserState()
	}
	if state.Alerts == nil {
		state.Alerts = make(map[string]*model.AlertConfig)
	}
	return state
}
