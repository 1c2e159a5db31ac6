package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or pin")
	ErrAccountLocked      = errors.New("account locked")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
)

// Identity models one authenticatable principal. Usernames are stored in
// canonical lowercase form; lookups lowercase their input so the handle is
// effectively case-insensitive.
type Identity struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	PINHash          string     `json:"-"` // empty means no PIN set yet
	FailedAttempts   int        `json:"-"`
	IsLocked         bool       `json:"-"`
	LastLoginAttempt *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
}

// HasPIN reports whether a PIN has ever been provisioned for this identity.
// An identity without one adopts the first PIN presented at login.
func (i *Identity) HasPIN() bool {
	return i.PINHash != ""
}
