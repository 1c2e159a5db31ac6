package ports

import (
	"context"
	"time"

	"github.com/darktech/marketplace-auth/internal/core/domain"
)

// IdentityRepository persists identities, their lockout counters, and their
// role assignments.
type IdentityRepository interface {
	// FindByUsername resolves an identity by case-insensitive handle.
	FindByUsername(ctx context.Context, username string) (*domain.Identity, error)
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)

	// ProvisionPINHash stores hash for the identity only while no hash is set.
	// It must never overwrite an existing PIN; a concurrent provision that
	// loses the race reports provisioned=false with no error.
	ProvisionPINHash(ctx context.Context, id, hash string) (provisioned bool, err error)

	// ResetLockout zeroes failed_attempts, clears the lock, and stamps the
	// attempt time. Idempotent.
	ResetLockout(ctx context.Context, id string, at time.Time) error
	// RecordFailure writes the new counter value, the lock flag, and the
	// attempt time computed by the caller.
	RecordFailure(ctx context.Context, id string, attempts int, locked bool, at time.Time) error

	ListRoles(ctx context.Context, userID string) ([]domain.Role, error)
	AssignRole(ctx context.Context, userID string, role domain.Role) error
}
