package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/darktech/marketplace-auth/internal/core/domain"
)

// stubInviteRepo mimics the store-level conditional write: Consume only
// succeeds while the code is still available, under a single mutex.
type stubInviteRepo struct {
	mu      sync.Mutex
	byCode  map[string]*domain.Invite
	created int
}

func newStubInviteRepo() *stubInviteRepo {
	return &stubInviteRepo{byCode: make(map[string]*domain.Invite)}
}

func (r *stubInviteRepo) add(code string, role domain.Role, status domain.InviteStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCode[code] = &domain.Invite{ID: code + "-id", Code: code, Role: role, Status: status}
}

func (r *stubInviteRepo) FindByCode(_ context.Context, code string) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invite, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrInviteNotFound
	}
	clone := *invite
	return &clone, nil
}

func (r *stubInviteRepo) Consume(_ context.Context, code string, usedAt time.Time) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invite, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrInviteNotFound
	}
	if invite.Status != domain.InviteAvailable {
		return nil, domain.ErrInviteConsumed
	}
	invite.Status = domain.InviteUsed
	invite.UsedAt = &usedAt
	clone := *invite
	return &clone, nil
}

func (r *stubInviteRepo) Link(_ context.Context, code, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	invite, ok := r.byCode[code]
	if !ok {
		return domain.ErrInviteNotFound
	}
	if invite.UsedBy != "" && invite.UsedBy != userID {
		return domain.ErrInviteConflict
	}
	invite.UsedBy = userID
	return nil
}

func (r *stubInviteRepo) Create(_ context.Context, invite *domain.Invite) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
	clone := *invite
	clone.ID = invite.Code + "-id"
	r.byCode[clone.Code] = &clone
	out := clone
	return &out, nil
}

func TestInviteService_Redeem_Success(t *testing.T) {
	repo := newStubInviteRepo()
	repo.add("DARK-1234", domain.RoleVendor, domain.InviteAvailable)
	svc := NewInviteService(repo, zerolog.Nop())

	role, err := svc.Redeem(context.Background(), " DARK-1234 ")
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if role != domain.RoleVendor {
		t.Fatalf("expected vendor, got %s", role)
	}

	stored, _ := repo.FindByCode(context.Background(), "DARK-1234")
	if stored.Status != domain.InviteUsed || stored.UsedAt == nil {
		t.Fatalf("expected code consumed with used_at stamped, got %+v", stored)
	}
}

func TestInviteService_Redeem_NotFound(t *testing.T) {
	svc := NewInviteService(newStubInviteRepo(), zerolog.Nop())

	if _, err := svc.Redeem(context.Background(), "DARK-NOPE"); err != domain.ErrInviteNotFound {
		t.Fatalf("expected ErrInviteNotFound, got %v", err)
	}
	if _, err := svc.Redeem(context.Background(), "   "); err != domain.ErrInviteNotFound {
		t.Fatalf("expected ErrInviteNotFound for blank code, got %v", err)
	}
}

func TestInviteService_Redeem_AlreadyConsumed(t *testing.T) {
	repo := newStubInviteRepo()
	repo.add("DARK-USED", domain.RoleClient, domain.InviteUsed)
	repo.add("DARK-EXP", domain.RoleClient, domain.InviteExpired)
	svc := NewInviteService(repo, zerolog.Nop())

	for _, code := range []string{"DARK-USED", "DARK-EXP"} {
		if _, err := svc.Redeem(context.Background(), code); err != domain.ErrInviteConsumed {
			t.Fatalf("%s: expected ErrInviteConsumed, got %v", code, err)
		}
	}
}

func TestInviteService_Redeem_ConcurrentSingleWinner(t *testing.T) {
	repo := newStubInviteRepo()
	repo.add("DARK-RACE", domain.RoleDriver, domain.InviteAvailable)
	svc := NewInviteService(repo, zerolog.Nop())

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Redeem(context.Background(), "DARK-RACE")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch err {
		case nil:
			wins++
		case domain.ErrInviteConsumed:
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one successful redemption, got %d", wins)
	}
}

func TestInviteService_Link_Idempotent(t *testing.T) {
	repo := newStubInviteRepo()
	repo.add("DARK-LINK", domain.RoleClient, domain.InviteUsed)
	svc := NewInviteService(repo, zerolog.Nop())

	if err := svc.Link(context.Background(), "DARK-LINK", "user-1"); err != nil {
		t.Fatalf("first link failed: %v", err)
	}
	if err := svc.Link(context.Background(), "DARK-LINK", "user-1"); err != nil {
		t.Fatalf("re-link with same user must succeed: %v", err)
	}
	if err := svc.Link(context.Background(), "DARK-LINK", "user-2"); err != domain.ErrInviteConflict {
		t.Fatalf("expected ErrInviteConflict for another user, got %v", err)
	}
}

func TestInviteService_Generate(t *testing.T) {
	repo := newStubInviteRepo()
	svc := NewInviteService(repo, zerolog.Nop())

	invite, err := svc.Generate(context.Background(), domain.RoleVendor, "admin-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.HasPrefix(invite.Code, "DARK-") {
		t.Fatalf("unexpected code format: %s", invite.Code)
	}
	if invite.Status != domain.InviteAvailable {
		t.Fatalf("expected available, got %s", invite.Status)
	}

	// A generated code is redeemable exactly once.
	if _, err := svc.Redeem(context.Background(), invite.Code); err != nil {
		t.Fatalf("redeem generated code: %v", err)
	}
	if _, err := svc.Redeem(context.Background(), invite.Code); err != domain.ErrInviteConsumed {
		t.Fatalf("expected ErrInviteConsumed on second redeem, got %v", err)
	}

	if _, err := svc.Generate(context.Background(), domain.Role("superuser"), "admin-1"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}
