package model

import "time"

// UserState is the locally persisted state: favorites and per-asset alerts.
type UserState struct {
	Favorites []string                `json:"favorites"`
	Alerts    map[string]*AlertConfig `json:"alerts"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// NewUserState returns an empty state with initialized maps.
func NewUserState() *UserState {
	return &UserState{Alerts: make(map[string]*AlertConfig)}
}

// IsFavorite reports whether id is favorited.
func (s *UserState) IsFavorite(id string) bool {
	for _, f := range s.Favorites {
		if f == id {
			return true
		}
	}
	return false
}

// ToggleFavorite adds or removes id and returns the new membership.
func (s *UserState) ToggleFavorite(id string) bool {
	for i, f := range s.Favorites {
		if f == id {
			s.Favorites = append(s.Favorites[:i], s.Favorites[i+1:]...)
			return false
		}
	}
	s.Favorites = append(s.Favorites, id)
	return true
}
