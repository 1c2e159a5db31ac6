package session

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/darktech/marketplace-auth/internal/core/domain"
)

func testSession() *domain.Session {
	return &domain.Session{
		Token: "token123",
		User:  domain.SessionUser{ID: "id-1", Username: "alice", Role: domain.RoleVendor},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	want := testSession()
	if err := store.Save(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got := store.Load()
	if got == nil {
		t.Fatalf("expected session, got nil")
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestStore_SaveReplacesWholesale(t *testing.T) {
	store := NewStore(t.TempDir())

	_ = store.Save(testSession())
	second := &domain.Session{
		Token: "token456",
		User:  domain.SessionUser{ID: "id-2", Username: "bob", Role: domain.RoleDriver},
	}
	if err := store.Save(second); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got := store.Load()
	if got == nil || got.Token != "token456" || got.User.Username != "bob" {
		t.Fatalf("expected second session to fully replace the first, got %+v", got)
	}
}

func TestStore_LoadAbsent(t *testing.T) {
	store := NewStore(t.TempDir())
	if got := store.Load(); got != nil {
		t.Fatalf("expected nil for absent record, got %+v", got)
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := os.WriteFile(filepath.Join(dir, DefaultFileName), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt record: %v", err)
	}
	if got := store.Load(); got != nil {
		t.Fatalf("corrupt record must load as nil, got %+v", got)
	}
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(t.TempDir())

	_ = store.Save(testSession())
	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if got := store.Load(); got != nil {
		t.Fatalf("expected nil after clear, got %+v", got)
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear failed: %v", err)
	}
}

func TestStore_WatchSignalsOnChange(t *testing.T) {
	store := NewStore(t.TempDir())
	ch := store.Watch()

	if err := store.Save(testSession()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("expected a change signal after save")
	}

	store.NotifyExternalChange()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("expected a change signal after external notification")
	}
}

func TestResolver_Current(t *testing.T) {
	store := NewStore(t.TempDir())
	resolver := NewResolver(store)

	if _, _, ok := resolver.Current(); ok {
		t.Fatalf("expected no session initially")
	}

	_ = store.Save(testSession())
	user, role, ok := resolver.Current()
	if !ok {
		t.Fatalf("expected session after save")
	}
	if user.Username != "alice" || role != domain.RoleVendor {
		t.Fatalf("unexpected resolution: %+v %s", user, role)
	}

	_ = store.Clear()
	if _, _, ok := resolver.Current(); ok {
		t.Fatalf("expected no session after clear")
	}
}
