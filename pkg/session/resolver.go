package session

import "github.com/darktech/marketplace-auth/internal/core/domain"

// Resolver answers "who is logged in, and as what" from the stored session.
// The role comes from the snapshot captured at login; a role change on the
// server takes effect on the next login, not before.
type Resolver struct {
	store *Store
}

func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Current returns the logged-in user and effective role. ok is false when
// no valid session exists.
func (r *Resolver) Current() (user domain.SessionUser, role domain.Role, ok bool) {
	session := r.store.Load()
	if session == nil {
		return domain.SessionUser{}, "", false
	}
	return session.User, session.User.Role, true
}
