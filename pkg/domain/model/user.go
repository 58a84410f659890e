package model

import (
	"time"

	"github.com/taskdeck/taskdeck/pkg/domain/types"
)

// User represents a person known to the dashboard. A user may originate from
// web registration (email set) or from first Slack contact (SlackID set); the
// two paths must converge on a single record per person.
type User struct {
	ID        types.UserID
	SlackID   types.SlackUserID
	Email     string
	Name      string
	AvatarURL string
	TeamID    types.TeamID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates a user with a fresh internal ID
func NewUser(name string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        types.NewUserID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Merge applies profile fields from other onto u without clobbering existing
// values with empty ones. Identity fields (ID, SlackID) are never changed.
func (u *User) Merge(other *User) {
	if other == nil {
		return
	}
	if other.Name != "" {
		u.Name = other.Name
	}
	if other.Email != "" {
		u.Email = other.Email
	}
	if other.AvatarURL != "" {
		u.AvatarURL = other.AvatarURL
	}
	if other.TeamID != "" {
		u.TeamID = other.TeamID
	}
	u.UpdatedAt = time.Now().UTC()
}
