package domain

const (
	RoleUser  = "USER"
	RoleStaff = "STAFF"
	RoleAgent = "AGENT"
	RoleAdmin = "ADMIN"
)

// User models an authenticated account of the platform.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleStaff, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// Merge returns a copy of u with the non-nil fields of update applied.
// ID and Role are not touched: neither has an update operation.
func (u User) Merge(update ProfileUpdate) User {
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.PhoneNumber != nil {
		u.PhoneNumber = *update.PhoneNumber
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	return u
}

// ProfileUpdate carries a partial profile edit. Nil fields are left as-is.
type ProfileUpdate struct {
	FullName    *string `json:"fullName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Email       *string `json:"email,omitempty"`
}
