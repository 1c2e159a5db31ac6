package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/darktech/marketplace-auth/internal/core/domain"
	"github.com/darktech/marketplace-auth/internal/core/ports"
)

// DefaultLockoutThreshold is the failed-attempt count at which an identity
// is locked.
const DefaultLockoutThreshold = 6

// LockoutService maintains the per-identity failed-attempt counter. It must
// be invoked exactly once per real login attempt; a success resets the
// counter, a failure increments it and locks the identity at the threshold.
type LockoutService struct {
	identities ports.IdentityRepository
	threshold  int
	logger     zerolog.Logger
}

func NewLockoutService(identities ports.IdentityRepository, threshold int, logger zerolog.Logger) *LockoutService {
	if threshold <= 0 {
		threshold = DefaultLockoutThreshold
	}
	return &LockoutService{identities: identities, threshold: threshold, logger: logger}
}

// RecordAttempt updates the lockout counters for username. Unknown usernames
// report Known=false and mutate nothing, so the endpoint never reveals
// whether a handle exists. The increment is read-then-write; undercounting
// under concurrent failures is acceptable, the threshold crossing is not.
func (s *LockoutService) RecordAttempt(ctx context.Context, attempt ports.LoginAttempt) (*ports.AttemptResult, error) {
	username := strings.TrimSpace(strings.ToLower(attempt.Username))
	if username == "" {
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := s.identities.FindByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return &ports.AttemptResult{Known: false}, nil
		}
		return nil, err
	}

	now := time.Now().UTC()

	if attempt.Success {
		if err := s.identities.ResetLockout(ctx, identity.ID, now); err != nil {
			return nil, err
		}
		return &ports.AttemptResult{Known: true, Attempts: 0, Locked: false}, nil
	}

	attempts := identity.FailedAttempts + 1
	locked := attempts >= s.threshold
	if err := s.identities.RecordFailure(ctx, identity.ID, attempts, locked, now); err != nil {
		return nil, err
	}

	if locked && !identity.IsLocked {
		s.logger.Warn().
			Str("user_id", identity.ID).
			Int("attempts", attempts).
			Msg("identity locked after repeated failures")
	}

	return &ports.AttemptResult{Known: true, Attempts: attempts, Locked: locked}, nil
}
