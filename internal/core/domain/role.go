package domain

// Role is the closed set of capability tiers an identity can hold.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleVendor Role = "vendor"
	RoleClient Role = "client"
	RoleDriver Role = "driver"
)

// rolePriority is the total order used to pick a single effective role when
// an identity holds several assignments. Lower index wins.
var rolePriority = []Role{RoleAdmin, RoleVendor, RoleClient, RoleDriver}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	for _, known := range rolePriority {
		if r == known {
			return true
		}
	}
	return false
}

// EffectiveRole resolves the single role that drives routing for an identity
// holding the given assignments. The highest-priority held role wins; an
// unrecognised-but-held role is better than nothing, so the first assignment
// is the fallback. With no assignments at all, fallback is returned.
func EffectiveRole(held []Role, fallback Role) Role {
	if len(held) == 0 {
		return fallback
	}
	for _, p := range rolePriority {
		for _, h := range held {
			if h == p {
				return p
			}
		}
	}
	return held[0]
}
