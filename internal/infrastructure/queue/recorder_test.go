package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/darktech/marketplace-auth/internal/core/ports"
)

type captureLockout struct {
	mu       sync.Mutex
	attempts []ports.LoginAttempt
}

func (s *captureLockout) RecordAttempt(_ context.Context, attempt ports.LoginAttempt) (*ports.AttemptResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt)
	return &ports.AttemptResult{Known: true, Attempts: len(s.attempts)}, nil
}

func (s *captureLockout) snapshot() []ports.LoginAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.LoginAttempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestRecorder_DeliversAttempts(t *testing.T) {
	lockout := &captureLockout{}
	r := NewRecorder(2, lockout, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	r.Record(ports.LoginAttempt{Username: "alice", Success: false})
	r.Record(ports.LoginAttempt{Username: "bob", Success: true})

	waitFor(t, func() bool { return len(lockout.snapshot()) == 2 })
}

func TestRecorder_PerUsernameOrdering(t *testing.T) {
	lockout := &captureLockout{}
	r := NewRecorder(4, lockout, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	// Failures first, then a success; the reset must be applied last.
	for i := 0; i < 3; i++ {
		r.Record(ports.LoginAttempt{Username: "carol", Success: false})
	}
	r.Record(ports.LoginAttempt{Username: "carol", Success: true})

	waitFor(t, func() bool { return len(lockout.snapshot()) == 4 })

	got := lockout.snapshot()
	for i, attempt := range got {
		wantSuccess := i == 3
		if attempt.Success != wantSuccess {
			t.Fatalf("attempt %d: expected success=%v, got %v (order broken)", i, wantSuccess, attempt.Success)
		}
	}
}

func TestRecorder_SameUsernameSameShard(t *testing.T) {
	r := NewRecorder(8, &captureLockout{}, zerolog.Nop())

	if r.shardIndex("Alice") != r.shardIndex("alice") {
		t.Fatalf("shard index must be case-insensitive")
	}
	if got := r.shardIndex("alice"); got < 0 || got >= 8 {
		t.Fatalf("shard index out of range: %d", got)
	}
}
