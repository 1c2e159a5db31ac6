package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/darktech/marketplace-auth/internal/core/domain"
	"github.com/darktech/marketplace-auth/internal/core/ports"
)

// InviteService redeems, links, and generates single-use invite codes.
type InviteService struct {
	invites ports.InviteRepository
	logger  zerolog.Logger
}

func NewInviteService(invites ports.InviteRepository, logger zerolog.Logger) *InviteService {
	return &InviteService{invites: invites, logger: logger}
}

// Redeem consumes an available code and returns the role it grants. The
// store-level transition is conditional on the code still being available,
// so two concurrent redemptions yield exactly one success.
func (s *InviteService) Redeem(ctx context.Context, code string) (domain.Role, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", domain.ErrInviteNotFound
	}

	invite, err := s.invites.FindByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if invite.Status != domain.InviteAvailable {
		return "", domain.ErrInviteConsumed
	}

	consumed, err := s.invites.Consume(ctx, code, time.Now().UTC())
	if err != nil {
		return "", err
	}

	s.logger.Info().Str("code", consumed.Code).Str("role", string(consumed.Role)).Msg("invite redeemed")
	return consumed.Role, nil
}

// Link attaches userID to an already-consumed code. The code's status is not
// re-validated; only a conflicting used_by fails. Safe to retry.
func (s *InviteService) Link(ctx context.Context, code, userID string) error {
	code = strings.TrimSpace(code)
	userID = strings.TrimSpace(userID)
	if code == "" || userID == "" {
		return domain.ErrInviteNotFound
	}
	return s.invites.Link(ctx, code, userID)
}

// Generate creates a fresh available code granting role.
func (s *InviteService) Generate(ctx context.Context, role domain.Role, createdBy string) (*domain.Invite, error) {
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	invite := &domain.Invite{
		Code:      generateInviteCode(),
		Role:      role,
		Status:    domain.InviteAvailable,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.invites.Create(ctx, invite)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("code", created.Code).Str("role", string(role)).Msg("invite generated")
	return created, nil
}

// generateInviteCode returns a code in the format DARK-XXXXXXXX.
func generateInviteCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("DARK-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("DARK-%08X", b)
}
