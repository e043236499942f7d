package ports

import "context"

// Keys used by the session manager in the credential store. Both entries are
// present for an authenticated session and absent otherwise; any other
// combination is treated as "no session".
const (
	KeyAuthToken = "authToken"
	KeyUser      = "user"
)

// CredentialStore is the durable key-value boundary that session credentials
// survive process restarts through.
type CredentialStore interface {
	// Get returns the stored raw value for key. A missing key is not an
	// error: ok is false and err is nil.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set durably writes value under key. When Set fails the caller must
	// not act as if the write happened.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the entry for key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string) error
}
