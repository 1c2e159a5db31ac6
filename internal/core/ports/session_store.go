package ports

import (
	"context"
	"time"

	"github.com/darktech/marketplace-auth/internal/core/domain"
)

// SessionStore is the server-side session record keyed by the token's jti,
// giving issued tokens a revocation point independent of their signature.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, user domain.SessionUser, ttl time.Duration) error
	// Get returns nil with no error when the record is absent or expired.
	Get(ctx context.Context, sessionID string) (*domain.SessionUser, error)
	Delete(ctx context.Context, sessionID string) error
}
