// Package session is the client-side half of the auth flow: it materialises
// a successful credential exchange into one durable local record and resolves
// the effective role driving UI routing from that record's snapshot.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/darktech/marketplace-auth/internal/core/domain"
)

// DefaultFileName is the well-known key the session record lives under.
const DefaultFileName = "darktech_session.json"

// Store holds at most one session as a JSON file. Save wholesale-replaces
// any prior record; Load treats a corrupt record the same as an absent one.
type Store struct {
	mu   sync.Mutex
	path string

	watchMu  sync.Mutex
	watchers []chan struct{}
}

// NewStore creates a Store persisting to dir/DefaultFileName.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, DefaultFileName)}
}

// Save serialises the full session, replacing any prior value. The write
// goes through a temp file and rename so readers never see a torn record.
func (s *Store) Save(session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}

	s.notify()
	return nil
}

// Load returns the current session, or nil when no record exists or the
// record does not parse. Corruption is not an error the caller can act on;
// it simply means nobody is logged in.
func (s *Store) Load() *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil
	}
	if session.Token == "" {
		return nil
	}
	return &session
}

// Clear removes the record. Clearing an absent record is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}

	s.notify()
	return nil
}

// Watch returns a channel that receives a signal whenever the record
// changes, so a UI can re-read the session when another window logs out.
// Notifications are advisory and coalesced; receivers must re-Load rather
// than assume any particular new state.
func (s *Store) Watch() <-chan struct{} {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	ch := make(chan struct{}, 1)
	s.watchers = append(s.watchers, ch)
	return ch
}

// NotifyExternalChange signals watchers that the record was modified by
// another process. The embedding application calls this from whatever
// cross-window change feed it has.
func (s *Store) NotifyExternalChange() {
	s.notify()
}

func (s *Store) notify() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
