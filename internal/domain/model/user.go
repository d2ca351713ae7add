package model

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleVolunteer = "volunteer"
	RoleResponder = "responder"
)

// ValidRoles is the declared role set. A stored role is always one of these.
var ValidRoles = []string{RoleUser, RoleAdmin, RoleVolunteer, RoleResponder}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	HashedPassword string     `json:"-"` // Not exposed
	Role           string     `json:"role"`
	ResetTokenHash *string    `json:"-"`
	ResetExpiresAt *time.Time `json:"-"`
	Profession     string     `json:"profession"`
	Experience     string     `json:"experience"`
	City           string     `json:"city"`
	Age            *int       `json:"age,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SetResetToken stores a reset token digest with its expiry. Both are always
// set or cleared together.
func (u *User) SetResetToken(digest string, expiresAt time.Time) {
	u.ResetTokenHash = &digest
	u.ResetExpiresAt = &expiresAt
}

func (u *User) ClearResetToken() {
	u.ResetTokenHash = nil
	u.ResetExpiresAt = nil
}

// PublicUser is the view returned by sign-up and sign-in.
type PublicUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role}
}

// Identity is the authenticated caller, attached by the session middleware
// and passed explicitly to the operations that need it.
type Identity struct {
	UserID string
}
