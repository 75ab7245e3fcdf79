package domain

import "time"

// Role is the closed set of authorization levels embedded in signed tokens.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
)

// Valid reports whether the role belongs to the closed enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleModerator:
		return true
	}
	return false
}

// User is the domain model for registered accounts. PasswordHash carries the
// PHC-encoded argon2id string as raw bytes; the hash embeds its own salt and
// parameters.
type User struct {
	ID           string
	Title        string
	Email        string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
