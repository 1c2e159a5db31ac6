package domain

import (
	"errors"
	"time"
)

// InviteStatus is the lifecycle state of a single-use invite code.
type InviteStatus string

const (
	InviteAvailable InviteStatus = "available"
	InviteUsed      InviteStatus = "used"
	InviteExpired   InviteStatus = "expired"
)

var (
	ErrInviteNotFound = errors.New("invite code not found")
	ErrInviteConsumed = errors.New("invite code already used or expired")
	ErrInviteConflict = errors.New("invite code bound to another user")
)

// Invite is a single-use registration token. A code transitions
// available → used exactly once; UsedBy is attached best-effort after the
// invited identity exists and never re-opens the code.
type Invite struct {
	ID        string       `json:"id"`
	Code      string       `json:"code"`
	Role      Role         `json:"role"`
	Status    InviteStatus `json:"status"`
	CreatedBy string       `json:"created_by,omitempty"`
	UsedBy    string       `json:"used_by,omitempty"`
	UsedAt    *time.Time   `json:"used_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
