package domain

import "time"

// Account is the server-side record behind a User: the public profile plus
// the password hash and bookkeeping timestamps. Never serialized to clients.
type Account struct {
	User
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
