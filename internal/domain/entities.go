package domain

import (
	"encoding/json"
	"time"
)

// InfoSource binds a Game to one store's listing for it. The data column
// holds the latest resolved snapshot; its shape always matches Type.
type InfoSource struct {
	ID           string          `json:"id"`
	GameID       string          `json:"game_id"`
	Type         SourceType      `json:"type"`
	RemoteGameID string          `json:"remote_game_id"`
	Disabled     bool            `json:"disabled"`
	Data         json.RawMessage `json:"data,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Game is a tracked title owning at most one InfoSource per store.
type Game struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserState distinguishes trial accounts from registered ones.
type UserState string

const (
	UserStateTrial      UserState = "trial"
	UserStateRegistered UserState = "registered"
)

// User is read-only from this core's perspective: it is consulted to decide
// whether a notification gets mailed, and never mutated here.
type User struct {
	ID                       string       `json:"id"`
	Email                    string       `json:"email,omitempty"`
	EnableEmailNotifications bool         `json:"enable_email_notifications"`
	InterestedInSources      []SourceType `json:"interested_in_sources"`
	Country                  string       `json:"country"`
	State                    UserState    `json:"state"`
}

// WantsEmail reports whether mail dispatch applies for this user.
func (u *User) WantsEmail() bool {
	return u.EnableEmailNotifications && u.Email != ""
}
