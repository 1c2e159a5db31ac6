package ports

import (
	"context"
	"time"

	"github.com/darktech/marketplace-auth/internal/core/domain"
)

// InviteRepository persists single-use invite codes.
type InviteRepository interface {
	FindByCode(ctx context.Context, code string) (*domain.Invite, error)

	// Consume transitions the code available → used, stamping usedAt. The
	// update must be conditional on the code still being available at write
	// time; losing that race returns domain.ErrInviteConsumed.
	Consume(ctx context.Context, code string, usedAt time.Time) (*domain.Invite, error)

	// Link attaches userID to an already-consumed code. Succeeds only when
	// used_by is unset or already equal to userID (idempotent); otherwise
	// domain.ErrInviteConflict.
	Link(ctx context.Context, code, userID string) error

	Create(ctx context.Context, invite *domain.Invite) (*domain.Invite, error)
}
