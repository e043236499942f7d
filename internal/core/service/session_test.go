package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/servicelens/mobile-core/internal/core/domain"
	"github.com/servicelens/mobile-core/internal/core/ports"
)

// fakeStore is an in-memory CredentialStore with per-key failure injection.
type fakeStore struct {
	entries map[string]string
	failSet map[string]error
	failGet error
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]string), failSet: make(map[string]error)}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	if s.failGet != nil {
		return "", false, s.failGet
	}
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *fakeStore) Set(_ context.Context, key, value string) error {
	if err := s.failSet[key]; err != nil {
		return err
	}
	s.entries[key] = value
	return nil
}

func (s *fakeStore) Remove(_ context.Context, key string) error {
	delete(s.entries, key)
	return nil
}

type stubAuthenticator struct {
	loginFn    func(ctx context.Context, email, password string) (*ports.Credentials, error)
	registerFn func(ctx context.Context, input ports.RegisterInput) (*ports.Credentials, error)
}

func (s *stubAuthenticator) Login(ctx context.Context, email, password string) (*ports.Credentials, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthenticator) Register(ctx context.Context, input ports.RegisterInput) (*ports.Credentials, error) {
	return s.registerFn(ctx, input)
}

type stubAPI struct {
	refreshFn func(ctx context.Context, token string) (string, error)
	profileFn func(ctx context.Context, token string) (*domain.User, error)
	logoutFn  func(ctx context.Context, token string) error
}

func (s *stubAPI) Login(context.Context, string, string) (*ports.Credentials, error) {
	return nil, domain.ErrNetworkFailure
}

func (s *stubAPI) Register(context.Context, ports.RegisterInput) (*ports.Credentials, error) {
	return nil, domain.ErrNetworkFailure
}

func (s *stubAPI) Profile(ctx context.Context, token string) (*domain.User, error) {
	if s.profileFn == nil {
		return nil, domain.ErrNetworkFailure
	}
	return s.profileFn(ctx, token)
}

func (s *stubAPI) UpdateProfile(context.Context, string, domain.ProfileUpdate) (*domain.User, error) {
	return nil, domain.ErrNetworkFailure
}

func (s *stubAPI) Refresh(ctx context.Context, token string) (string, error) {
	if s.refreshFn == nil {
		return "", domain.ErrNetworkFailure
	}
	return s.refreshFn(ctx, token)
}

func (s *stubAPI) Logout(ctx context.Context, token string) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, token)
}

func testUser() *domain.User {
	return &domain.User{
		ID:          "1",
		Email:       "user@test.com",
		FullName:    "Nguyễn Văn A",
		PhoneNumber: "0901234567",
		Role:        domain.RoleUser,
	}
}

func okAuthenticator() *stubAuthenticator {
	return &stubAuthenticator{
		loginFn: func(_ context.Context, email, password string) (*ports.Credentials, error) {
			if email == "user@test.com" && password == "123456" {
				return &ports.Credentials{Token: "tok-1", User: testUser()}, nil
			}
			return nil, domain.ErrInvalidCredentials
		},
		registerFn: func(_ context.Context, input ports.RegisterInput) (*ports.Credentials, error) {
			return &ports.Credentials{Token: "tok-new", User: &domain.User{ID: "9", Email: input.Email, Role: domain.RoleUser}}, nil
		},
	}
}

func newManager(store ports.CredentialStore) *SessionManager {
	return NewSessionManager(okAuthenticator(), &stubAPI{}, store, zerolog.Nop())
}

// checkInvariant asserts user and token are present or absent together.
func checkInvariant(t *testing.T, m *SessionManager) {
	t.Helper()
	snap := m.Snapshot()
	if (snap.User == nil) != (snap.Token == "") {
		t.Fatalf("invariant broken: user=%v token=%q", snap.User, snap.Token)
	}
}

func TestSessionManager_StartsLoading(t *testing.T) {
	m := newManager(newFakeStore())

	if !m.Snapshot().Loading {
		t.Fatalf("expected loading before Initialize")
	}
	if got := m.Surface(); got != domain.SurfaceNone {
		t.Fatalf("expected no surface while loading, got %s", got)
	}
}

func TestSessionManager_InitializeEmptyStore(t *testing.T) {
	m := newManager(newFakeStore())

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	snap := m.Snapshot()
	if snap.Loading {
		t.Fatalf("loading must be false after Initialize")
	}
	if snap.User != nil || snap.Token != "" {
		t.Fatalf("expected unauthenticated session, got %+v", snap)
	}
	if got := m.Surface(); got != domain.SurfaceGuest {
		t.Fatalf("expected guest surface, got %s", got)
	}
}

func TestSessionManager_InitializeDiscardsPartialPair(t *testing.T) {
	store := newFakeStore()
	store.entries[ports.KeyAuthToken] = "orphan-token"

	m := newManager(store)
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if m.Snapshot().Authenticated() {
		t.Fatalf("partial pair must not authenticate")
	}
	if _, ok := store.entries[ports.KeyAuthToken]; ok {
		t.Fatalf("orphan token must be cleaned up")
	}
	checkInvariant(t, m)
}

func TestSessionManager_InitializeDiscardsCorruptUser(t *testing.T) {
	store := newFakeStore()
	store.entries[ports.KeyAuthToken] = "tok-1"
	store.entries[ports.KeyUser] = "{not json"

	m := newManager(store)
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if m.Snapshot().Authenticated() {
		t.Fatalf("corrupt user record must not authenticate")
	}
	if len(store.entries) != 0 {
		t.Fatalf("expected store cleared, got %v", store.entries)
	}
}

func TestSessionManager_LoginPersistsThenUpdatesMemory(t *testing.T) {
	store := newFakeStore()
	m := newManager(store)
	_ = m.Initialize(context.Background())

	if err := m.Login(context.Background(), "user@test.com", "123456"); err != nil {
		t.Fatalf("login: %v", err)
	}

	snap := m.Snapshot()
	if !snap.Authenticated() || snap.Token != "tok-1" {
		t.Fatalf("unexpected session: %+v", snap)
	}
	if snap.Loading {
		t.Fatalf("loading must be false after login")
	}
	if _, ok := store.entries[ports.KeyAuthToken]; !ok {
		t.Fatalf("token not persisted")
	}
	if _, ok := store.entries[ports.KeyUser]; !ok {
		t.Fatalf("user not persisted")
	}
	checkInvariant(t, m)
}

func TestSessionManager_LoginRejectionKeepsPriorSession(t *testing.T) {
	store := newFakeStore()
	m := newManager(store)
	_ = m.Initialize(context.Background())
	if err := m.Login(context.Background(), "user@test.com", "123456"); err != nil {
		t.Fatalf("login: %v", err)
	}

	err := m.Login(context.Background(), "user@test.com", "wrong-password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	snap := m.Snapshot()
	if !snap.Authenticated() || snap.Token != "tok-1" {
		t.Fatalf("prior session must survive a rejected login: %+v", snap)
	}
	if snap.Loading {
		t.Fatalf("loading must reset after a failed login")
	}
}

func TestSessionManager_LoginRollsBackTokenOnUserWriteFailure(t *testing.T) {
	store := newFakeStore()
	store.failSet[ports.KeyUser] = errors.New("disk full")

	m := newManager(store)
	_ = m.Initialize(context.Background())

	err := m.Login(context.Background(), "user@test.com", "123456")
	if !errors.Is(err, domain.ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure, got %v", err)
	}

	if _, ok := store.entries[ports.KeyAuthToken]; ok {
		t.Fatalf("token must be rolled back when the user write fails")
	}
	if m.Snapshot().Authenticated() {
		t.Fatalf("in-memory session must stay unauthenticated")
	}
	checkInvariant(t, m)
}

func TestSessionManager_RoundTripThroughRestart(t *testing.T) {
	store := newFakeStore()
	m := newManager(store)
	_ = m.Initialize(context.Background())
	if err := m.Login(context.Background(), "user@test.com", "123456"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// A fresh manager over the same store simulates a process restart.
	restarted := newManager(store)
	if err := restarted.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize after restart: %v", err)
	}

	snap := restarted.Snapshot()
	if snap.Token != "tok-1" {
		t.Fatalf("expected restored token, got %q", snap.Token)
	}
	if snap.User == nil || snap.User.Email != "user@test.com" || snap.User.Role != domain.RoleUser {
		t.Fatalf("unexpected restored user: %+v", snap.User)
	}
}

func TestSessionManager_LogoutIsIdempotent(t *testing.T) {
	store := newFakeStore()
	m := newManager(store)
	_ = m.Initialize(context.Background())
	if err := m.Login(context.Background(), "user@test.com", "123456"); err != nil {
		t.Fatalf("login: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := m.Logout(context.Background()); err != nil {
			t.Fatalf("logout %d: %v", i+1, err)
		}
		if m.Snapshot().Authenticated() {
			t.Fatalf("logout %d left an authenticated session", i+1)
		}
		if len(store.entries) != 0 {
			t.Fatalf("logout %d left store entries: %v", i+1, store.entries)
		}
	}
	if got := m.Surface(); got != domain.SurfaceGuest {
		t.Fatalf("expected guest surface after logout, got %s", got)
	}
}

func TestSessionManager_RegisterEstablishesSession(t *testing.T) {
	store := newFakeStore()
	m := newManager(store)
	_ = m.Initialize(context.Background())

	err := m.Register(context.Background(), ports.RegisterInput{Email: "new@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	snap := m.Snapshot()
	if snap.Token != "tok-new" || snap.User == nil || snap.User.Email != "new@example.com" {
		t.Fatalf("unexpected session after register: %+v", snap)
	}
	checkInvariant(t, m)
}

func TestSessionManager_UpdateProfileRequiresSession(t *testing.T) {
	m := newManager(newFakeStore())
	_ = m.Initialize(context.Background())

	name := "B"
	err := m.UpdateProfile(context.Background(), domain.ProfileUpdate{FullName: &name})
	if !errors.Is(err, domain.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestSessionManager_UpdateProfileMergesAndPersists(t *testing.T) {
	store := newFakeStore()
	m := newManager(store)
	_ = m.Initialize(context.Background())
	if err := m.Login(context.Background(), "user@test.com", "123456"); err != nil {
		t.Fatalf("login: %v", err)
	}

	name := "Renamed"
	if err := m.UpdateProfile(context.Background(), domain.ProfileUpdate{FullName: &name}); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	snap := m.Snapshot()
	if snap.User.FullName != "Renamed" {
		t.Fatalf("in-memory user not merged: %+v", snap.User)
	}
	if snap.User.PhoneNumber != "0901234567" {
		t.Fatalf("unrelated field changed: %+v", snap.User)
	}
	if snap.Token != "tok-1" {
		t.Fatalf("token must be untouched by a profile edit")
	}

	// Restart: the merged record must be what comes back.
	restarted := newManager(store)
	_ = restarted.Initialize(context.Background())
	if restarted.Snapshot().User.FullName != "Renamed" {
		t.Fatalf("merged profile not persisted")
	}
}

func TestSessionManager_UpdateProfileStorageFailureKeepsMemory(t *testing.T) {
	store := newFakeStore()
	m := newManager(store)
	_ = m.Initialize(context.Background())
	if err := m.Login(context.Background(), "user@test.com", "123456"); err != nil {
		t.Fatalf("login: %v", err)
	}

	store.failSet[ports.KeyUser] = errors.New("quota exceeded")
	name := "Renamed"
	err := m.UpdateProfile(context.Background(), domain.ProfileUpdate{FullName: &name})
	if !errors.Is(err, domain.ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure, got %v", err)
	}
	if m.Snapshot().User.FullName != "Nguyễn Văn A" {
		t.Fatalf("memory must keep the previous profile on storage failure")
	}
}

func TestSessionManager_HasRoleExactMatch(t *testing.T) {
	store := newFakeStore()
	m := NewSessionManager(&stubAuthenticator{
		loginFn: func(context.Context, string, string) (*ports.Credentials, error) {
			return &ports.Credentials{Token: "tok-s", User: &domain.User{ID: "2", Role: domain.RoleStaff}}, nil
		},
	}, &stubAPI{}, store, zerolog.Nop())
	_ = m.Initialize(context.Background())
	if err := m.Login(context.Background(), "staff@test.com", "123456"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if m.HasRole(domain.RoleAdmin) {
		t.Fatalf("staff session must not pass an admin check")
	}
	if !m.HasRole(domain.RoleStaff) {
		t.Fatalf("exact role match expected")
	}
}

func TestSessionManager_MutationsAreMutuallyExclusive(t *testing.T) {
	store := newFakeStore()
	release := make(chan struct{})
	started := make(chan struct{})

	auth := &stubAuthenticator{
		loginFn: func(context.Context, string, string) (*ports.Credentials, error) {
			close(started)
			<-release
			return &ports.Credentials{Token: "tok-1", User: testUser()}, nil
		},
	}
	m := NewSessionManager(auth, &stubAPI{}, store, zerolog.Nop())
	_ = m.Initialize(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- m.Login(context.Background(), "user@test.com", "123456")
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatalf("login never started")
	}

	if err := m.Logout(context.Background()); !errors.Is(err, domain.ErrSessionBusy) {
		t.Fatalf("expected ErrSessionBusy, got %v", err)
	}
	name := "X"
	if err := m.UpdateProfile(context.Background(), domain.ProfileUpdate{FullName: &name}); !errors.Is(err, domain.ErrSessionBusy) {
		t.Fatalf("expected ErrSessionBusy from UpdateProfile, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("login: %v", err)
	}

	// The in-flight login must have completed untouched by the rejected ops.
	if !m.Snapshot().Authenticated() {
		t.Fatalf("login result lost")
	}
	checkInvariant(t, m)
}

func TestSessionManager_RefreshRotatesToken(t *testing.T) {
	store := newFakeStore()
	api := &stubAPI{
		refreshFn: func(_ context.Context, token string) (string, error) {
			if token != "tok-1" {
				t.Fatalf("refresh got token %q", token)
			}
			return "tok-2", nil
		},
	}
	m := NewSessionManager(okAuthenticator(), api, store, zerolog.Nop())
	_ = m.Initialize(context.Background())
	if err := m.Login(context.Background(), "user@test.com", "123456"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := m.RefreshSession(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if m.Snapshot().Token != "tok-2" {
		t.Fatalf("token not rotated")
	}
	if store.entries[ports.KeyAuthToken] != "tok-2" {
		t.Fatalf("rotated token not persisted")
	}
}

func TestSessionManager_RefreshRejectionClearsSession(t *testing.T) {
	store := newFakeStore()
	api := &stubAPI{
		refreshFn: func(context.Context, string) (string, error) {
			return "", domain.ErrInvalidCredentials
		},
	}
	m := NewSessionManager(okAuthenticator(), api, store, zerolog.Nop())
	_ = m.Initialize(context.Background())
	if err := m.Login(context.Background(), "user@test.com", "123456"); err != nil {
		t.Fatalf("login: %v", err)
	}

	err := m.RefreshSession(context.Background())
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if m.Snapshot().Authenticated() {
		t.Fatalf("rejected refresh must tear the session down")
	}
	if len(store.entries) != 0 {
		t.Fatalf("store not cleared: %v", store.entries)
	}
	checkInvariant(t, m)
}

func TestSessionManager_SyncProfileReplacesLocalUser(t *testing.T) {
	store := newFakeStore()
	api := &stubAPI{
		profileFn: func(_ context.Context, token string) (*domain.User, error) {
			u := testUser()
			u.FullName = "Server Copy"
			return u, nil
		},
	}
	m := NewSessionManager(okAuthenticator(), api, store, zerolog.Nop())
	_ = m.Initialize(context.Background())
	if err := m.Login(context.Background(), "user@test.com", "123456"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := m.SyncProfile(context.Background()); err != nil {
		t.Fatalf("sync profile: %v", err)
	}
	if m.Snapshot().User.FullName != "Server Copy" {
		t.Fatalf("local user not replaced")
	}
}
