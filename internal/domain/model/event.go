package model

import "time"

type EventType string

const (
	EventUserSignedUp      EventType = "user.signed_up"
	EventUserRoleUpdated   EventType = "user.role_updated"
	EventUserPasswordReset EventType = "user.password_reset"
)

// Event is a broadcast notification for the real-time channel.
type Event struct {
	Type   EventType `json:"type"`
	UserID string    `json:"user_id"`
	Role   string    `json:"role,omitempty"`
	At     time.Time `json:"at"`
}
