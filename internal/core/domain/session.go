package domain

// Session is an immutable snapshot of the client's authentication state.
// Invariant: Token is non-empty exactly when User is non-nil.
type Session struct {
	User    *User
	Token   string
	Loading bool
}

// Authenticated reports whether the snapshot carries a full credential pair.
func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// HasRole reports whether the session belongs to a user with exactly the
// given role. Always false while unauthenticated.
func (s Session) HasRole(role string) bool {
	if s.User == nil {
		return false
	}
	return s.User.Role == role
}
