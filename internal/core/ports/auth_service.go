package ports

import (
	"context"

	"github.com/darktech/marketplace-auth/internal/core/domain"
)

type AuthService interface {
	// Login exchanges username+PIN for a session. Unknown usernames and
	// wrong PINs fail identically with domain.ErrInvalidCredentials.
	Login(ctx context.Context, username, pin string) (*domain.Session, error)
	// Register redeems an invite code, creates the identity with the granted
	// role, and returns a fresh session.
	Register(ctx context.Context, username, pin, inviteCode string) (*domain.Session, error)
	// Logout revokes the server-side session record for the given session ID.
	Logout(ctx context.Context, sessionID string) error
}

// LoginAttempt is one unit of lockout bookkeeping, queued per real attempt.
type LoginAttempt struct {
	Username string
	Success  bool
}

// AttemptResult reports the counter state after recording an attempt.
// Known is false for usernames that do not exist; nothing is mutated then
// and callers must not reveal the difference.
type AttemptResult struct {
	Known    bool
	Attempts int
	Locked   bool
}

type LockoutService interface {
	RecordAttempt(ctx context.Context, attempt LoginAttempt) (*AttemptResult, error)
}

type InviteService interface {
	// Redeem consumes an available code and returns the role it grants.
	Redeem(ctx context.Context, code string) (domain.Role, error)
	// Link attaches the created identity to a consumed code, idempotently.
	Link(ctx context.Context, code, userID string) error
	// Generate creates a fresh available code granting role.
	Generate(ctx context.Context, role domain.Role, createdBy string) (*domain.Invite, error)
}
