package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/servicelens/mobile-core/internal/core/domain"
	"github.com/servicelens/mobile-core/internal/core/ports"
)

// SessionManager is the single owner of the in-memory session and the only
// writer of the credential store. Mutating operations are mutually
// exclusive: a second mutation arriving while one is in flight fails fast
// with domain.ErrSessionBusy instead of interleaving storage writes.
type SessionManager struct {
	auth   ports.Authenticator
	api    ports.AuthAPI
	store  ports.CredentialStore
	logger zerolog.Logger

	opMu sync.Mutex // serializes Initialize/Login/Register/Logout/UpdateProfile/Refresh/Sync

	stateMu sync.RWMutex
	user    *domain.User
	token   string
	loading bool
}

// NewSessionManager returns a manager in the loading state; callers must run
// Initialize before trusting any snapshot or surface decision.
func NewSessionManager(auth ports.Authenticator, api ports.AuthAPI, store ports.CredentialStore, logger zerolog.Logger) *SessionManager {
	return &SessionManager{
		auth:    auth,
		api:     api,
		store:   store,
		logger:  logger,
		loading: true,
	}
}

// Initialize reconstructs the session from the credential store, once, at
// process start. A partial credential pair or an undecodable user record is
// treated as "no session" and cleaned up best-effort. The loading flag flips
// to false on every path.
func (m *SessionManager) Initialize(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	defer m.setLoading(false)

	token, tokenOK, err := m.store.Get(ctx, ports.KeyAuthToken)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	rawUser, userOK, err := m.store.Get(ctx, ports.KeyUser)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	if !tokenOK || !userOK {
		if tokenOK || userOK {
			m.logger.Warn().Msg("partial credential pair found, discarding")
			m.clearStore(ctx)
		}
		return nil
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		m.logger.Warn().Err(err).Msg("stored user record undecodable, discarding")
		m.clearStore(ctx)
		return nil
	}

	m.setSession(&user, token)
	m.logger.Info().Str("email", user.Email).Str("role", user.Role).Msg("session restored")
	return nil
}

// Login authenticates and persists the resulting credential pair before the
// in-memory session changes. On any failure the previous session is kept.
func (m *SessionManager) Login(ctx context.Context, email, password string) error {
	if !m.opMu.TryLock() {
		return domain.ErrSessionBusy
	}
	defer m.opMu.Unlock()

	m.setLoading(true)
	defer m.setLoading(false)

	creds, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.logger.Debug().Err(err).Str("email", email).Msg("login rejected")
		return err
	}

	if err := m.persist(ctx, creds.Token, creds.User); err != nil {
		return err
	}

	m.setSession(creds.User, creds.Token)
	m.logger.Info().Str("email", creds.User.Email).Str("role", creds.User.Role).Msg("login succeeded")
	return nil
}

// Register creates an account through the remote service and establishes a
// session with the same persistence discipline as Login.
func (m *SessionManager) Register(ctx context.Context, input ports.RegisterInput) error {
	if !m.opMu.TryLock() {
		return domain.ErrSessionBusy
	}
	defer m.opMu.Unlock()

	m.setLoading(true)
	defer m.setLoading(false)

	creds, err := m.auth.Register(ctx, input)
	if err != nil {
		m.logger.Debug().Err(err).Str("email", input.Email).Msg("registration rejected")
		return err
	}

	if err := m.persist(ctx, creds.Token, creds.User); err != nil {
		return err
	}

	m.setSession(creds.User, creds.Token)
	m.logger.Info().Str("email", creds.User.Email).Msg("registration succeeded")
	return nil
}

// Logout clears the session. Storage and remote cleanup are best-effort; the
// in-memory session is cleared no matter what, so the navigation surface
// always reflects "logged out". The only possible error is ErrSessionBusy.
func (m *SessionManager) Logout(ctx context.Context) error {
	if !m.opMu.TryLock() {
		return domain.ErrSessionBusy
	}
	defer m.opMu.Unlock()

	if token := m.Snapshot().Token; token != "" && m.api != nil {
		if err := m.api.Logout(ctx, token); err != nil {
			m.logger.Debug().Err(err).Msg("remote logout failed, continuing")
		}
	}

	m.clearStore(ctx)
	m.setSession(nil, "")
	m.logger.Info().Msg("logged out")
	return nil
}

// UpdateProfile merges the given fields into the current user, persists the
// merged record, then updates the in-memory session. The token is untouched.
// Calling it without an active session is programmer misuse and fails with
// ErrNoActiveSession.
func (m *SessionManager) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) error {
	if !m.opMu.TryLock() {
		return domain.ErrSessionBusy
	}
	defer m.opMu.Unlock()

	snap := m.Snapshot()
	if snap.User == nil {
		return domain.ErrNoActiveSession
	}

	merged := snap.User.Merge(update)
	if err := m.persistUser(ctx, &merged); err != nil {
		return err
	}

	m.setSession(&merged, snap.Token)
	return nil
}

// RefreshSession exchanges the current token for a fresh one and persists it.
// A rejection from the backend means the token is no longer honored, so the
// session is torn down rather than left holding a dead credential.
func (m *SessionManager) RefreshSession(ctx context.Context) error {
	if !m.opMu.TryLock() {
		return domain.ErrSessionBusy
	}
	defer m.opMu.Unlock()

	snap := m.Snapshot()
	if snap.User == nil {
		return domain.ErrNoActiveSession
	}

	newToken, err := m.api.Refresh(ctx, snap.Token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			m.logger.Warn().Msg("token refresh rejected, clearing session")
			m.clearStore(ctx)
			m.setSession(nil, "")
		}
		return err
	}

	if err := m.store.Set(ctx, ports.KeyAuthToken, newToken); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	m.setSession(snap.User, newToken)
	return nil
}

// SyncProfile replaces the local user record with the server's copy. Like
// RefreshSession, a credential rejection tears the session down.
func (m *SessionManager) SyncProfile(ctx context.Context) error {
	if !m.opMu.TryLock() {
		return domain.ErrSessionBusy
	}
	defer m.opMu.Unlock()

	snap := m.Snapshot()
	if snap.User == nil {
		return domain.ErrNoActiveSession
	}

	user, err := m.api.Profile(ctx, snap.Token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			m.logger.Warn().Msg("profile fetch rejected, clearing session")
			m.clearStore(ctx)
			m.setSession(nil, "")
		}
		return err
	}

	if err := m.persistUser(ctx, user); err != nil {
		return err
	}

	m.setSession(user, snap.Token)
	return nil
}

// HasRole reports whether the current user has exactly the given role.
func (m *SessionManager) HasRole(role string) bool {
	return m.Snapshot().HasRole(role)
}

// Surface derives the navigation surface from the current snapshot.
func (m *SessionManager) Surface() domain.Surface {
	return domain.SurfaceFor(m.Snapshot())
}

// Snapshot returns a copy of the current session. The user record is cloned
// so callers cannot mutate manager state through it.
func (m *SessionManager) Snapshot() domain.Session {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()

	var user *domain.User
	if m.user != nil {
		clone := *m.user
		user = &clone
	}
	return domain.Session{User: user, Token: m.token, Loading: m.loading}
}

// persist writes the credential pair token-first. If the user write fails the
// already-written token is rolled back so a restart can never observe a token
// without its user.
func (m *SessionManager) persist(ctx context.Context, token string, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%w: encode user: %v", domain.ErrStorageFailure, err)
	}

	if err := m.store.Set(ctx, ports.KeyAuthToken, token); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	if err := m.store.Set(ctx, ports.KeyUser, string(raw)); err != nil {
		if rbErr := m.store.Remove(ctx, ports.KeyAuthToken); rbErr != nil {
			m.logger.Error().Err(rbErr).Msg("token rollback failed, store may hold a partial pair")
		}
		return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	return nil
}

func (m *SessionManager) persistUser(ctx context.Context, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%w: encode user: %v", domain.ErrStorageFailure, err)
	}
	if err := m.store.Set(ctx, ports.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	return nil
}

// clearStore removes both credential keys, tolerating absence and failures.
func (m *SessionManager) clearStore(ctx context.Context) {
	if err := m.store.Remove(ctx, ports.KeyAuthToken); err != nil {
		m.logger.Warn().Err(err).Msg("failed to remove stored token")
	}
	if err := m.store.Remove(ctx, ports.KeyUser); err != nil {
		m.logger.Warn().Err(err).Msg("failed to remove stored user")
	}
}

func (m *SessionManager) setSession(user *domain.User, token string) {
	m.stateMu.Lock()
	m.user = user
	m.token = token
	m.stateMu.Unlock()
}

func (m *SessionManager) setLoading(v bool) {
	m.stateMu.Lock()
	m.loading = v
	m.stateMu.Unlock()
}
