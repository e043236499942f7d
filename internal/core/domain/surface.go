package domain

// Surface identifies which navigation tree the app should mount.
type Surface string

const (
	// SurfaceNone means session state is still loading; the caller is
	// expected to show a splash screen, not a navigable tree.
	SurfaceNone     Surface = "none"
	SurfaceGuest    Surface = "guest"
	SurfaceCustomer Surface = "customer"
	SurfaceStaff    Surface = "staff"
	SurfaceAgent    Surface = "agent"
	SurfaceAdmin    Surface = "admin"
)

// SurfaceFor derives the reachable navigation surface from a session
// snapshot. Pure function, recomputed on every session change. Unknown role
// values fall back to the guest surface rather than failing.
func SurfaceFor(s Session) Surface {
	if s.Loading {
		return SurfaceNone
	}
	if !s.Authenticated() {
		return SurfaceGuest
	}
	switch s.User.Role {
	case RoleUser:
		return SurfaceCustomer
	case RoleStaff:
		return SurfaceStaff
	case RoleAgent:
		return SurfaceAgent
	case RoleAdmin:
		return SurfaceAdmin
	default:
		return SurfaceGuest
	}
}
