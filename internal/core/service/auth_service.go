package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/darktech/marketplace-auth/internal/core/domain"
	"github.com/darktech/marketplace-auth/internal/core/ports"
)

const (
	minPINLength = 4
	maxPINLength = 10
)

// AuthService implements the username+PIN credential exchange.
type AuthService struct {
	identities ports.IdentityRepository
	invites    ports.InviteService
	sessions   ports.SessionStore
	logger     zerolog.Logger

	jwtSecret    string
	tokenTTL     time.Duration
	baselineRole domain.Role
}

func NewAuthService(
	identities ports.IdentityRepository,
	invites ports.InviteService,
	sessions ports.SessionStore,
	jwtSecret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		identities:   identities,
		invites:      invites,
		sessions:     sessions,
		logger:       logger,
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
		baselineRole: domain.RoleClient,
	}
}

// Login verifies the PIN against the stored bcrypt hash and issues a session.
// An identity that has never set a PIN adopts the first one presented; the
// provisioning write is conditional on the hash still being unset, so it can
// never overwrite an existing PIN.
func (s *AuthService) Login(ctx context.Context, username, pin string) (*domain.Session, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	pin = strings.TrimSpace(pin)
	if username == "" || len(pin) < minPINLength || len(pin) > maxPINLength {
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := s.identities.FindByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			// Same error as a wrong PIN so callers cannot enumerate handles.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if identity.IsLocked {
		return nil, domain.ErrAccountLocked
	}

	if !identity.HasPIN() {
		hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		provisioned, err := s.identities.ProvisionPINHash(ctx, identity.ID, string(hash))
		if err != nil {
			return nil, err
		}
		if !provisioned {
			// A concurrent login provisioned a PIN first; this attempt no
			// longer knows whether its PIN matches the stored one.
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Info().Str("user_id", identity.ID).Msg("pin adopted on first login")
	} else if bcrypt.CompareHashAndPassword([]byte(identity.PINHash), []byte(pin)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	role, err := s.resolveRole(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	return s.issueSession(ctx, domain.SessionUser{
		ID:       identity.ID,
		Username: identity.Username,
		Role:     role,
	})
}

// Register redeems an invite code, creates the identity with a hashed PIN,
// assigns the granted role, and issues a session. Linking the invite to the
// new identity is best-effort and never fails the registration.
func (s *AuthService) Register(ctx context.Context, username, pin, inviteCode string) (*domain.Session, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	pin = strings.TrimSpace(pin)
	if username == "" || len(pin) < minPINLength || len(pin) > maxPINLength {
		return nil, domain.ErrInvalidCredentials
	}

	role, err := s.invites.Redeem(ctx, inviteCode)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	identity, err := s.identities.Create(ctx, &domain.Identity{
		Username:  username,
		PINHash:   string(hash),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.identities.AssignRole(ctx, identity.ID, role); err != nil {
		return nil, err
	}

	if err := s.invites.Link(ctx, inviteCode, identity.ID); err != nil {
		s.logger.Warn().Err(err).
			Str("user_id", identity.ID).
			Msg("invite linking failed, registration kept")
	}

	s.logger.Info().Str("user_id", identity.ID).Str("role", string(role)).Msg("identity registered")

	return s.issueSession(ctx, domain.SessionUser{
		ID:       identity.ID,
		Username: identity.Username,
		Role:     role,
	})
}

// Logout revokes the server-side session record. Revoked tokens keep a valid
// signature but fail the session check in GET /auth/session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *AuthService) resolveRole(ctx context.Context, userID string) (domain.Role, error) {
	held, err := s.identities.ListRoles(ctx, userID)
	if err != nil {
		return "", err
	}
	return domain.EffectiveRole(held, s.baselineRole), nil
}

func (s *AuthService) issueSession(ctx context.Context, user domain.SessionUser) (*domain.Session, error) {
	sessionID := uuid.NewString()

	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"jti":      sessionID,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Save(ctx, sessionID, user, s.tokenTTL); err != nil {
		return nil, err
	}

	return &domain.Session{Token: token, User: user}, nil
}
