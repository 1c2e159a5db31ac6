package domain

// SessionUser is the identity snapshot embedded in a session at login time.
// Role is captured once; server-side role changes take effect on next login.
type SessionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Session is the client-held proof of authentication: a signed token plus
// the user snapshot it was issued for.
type Session struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}
