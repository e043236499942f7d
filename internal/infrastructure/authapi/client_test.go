package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/servicelens/mobile-core/internal/core/domain"
	"github.com/servicelens/mobile-core/internal/core/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL}, zerolog.Nop()), srv
}

func TestClient_Login_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["email"] != "a@example.com" || req["password"] != "pw" {
			t.Fatalf("unexpected body: %v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-1",
			"user":  map[string]string{"id": "1", "email": "a@example.com", "role": "USER"},
		})
	})

	creds, err := client.Login(context.Background(), "a@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if creds.Token != "tok-1" || creds.User.ID != "1" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}

func TestClient_Login_RejectionCarriesServerMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	})

	_, err := client.Login(context.Background(), "a@example.com", "bad")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "invalid credentials") {
		t.Fatalf("server message lost: %q", got)
	}
}

func TestClient_Login_ServerErrorIsNetworkFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Login(context.Background(), "a@example.com", "pw")
	if !errors.Is(err, domain.ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure, got %v", err)
	}
}

func TestClient_Login_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second}, zerolog.Nop())

	_, err := client.Login(context.Background(), "a@example.com", "pw")
	if !errors.Is(err, domain.ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure, got %v", err)
	}
}

func TestClient_Login_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{torn"))
	})

	_, err := client.Login(context.Background(), "a@example.com", "pw")
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestClient_Login_IncompletePayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Token without user: structurally valid JSON, unusable payload.
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	})

	_, err := client.Login(context.Background(), "a@example.com", "pw")
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestClient_Register_PostsAllFields(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["fullName"] != "Alice" || req["role"] != "USER" {
			t.Fatalf("unexpected body: %v", req)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-2",
			"user":  map[string]string{"id": "2", "email": "alice@example.com", "role": "USER"},
		})
	})

	creds, err := client.Register(context.Background(), ports.RegisterInput{
		Email:    "alice@example.com",
		Password: "pw",
		FullName: "Alice",
		Role:     "USER",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if creds.Token != "tok-2" {
		t.Fatalf("unexpected token: %s", creds.Token)
	}
}

func TestClient_Profile_SendsBearerToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("missing bearer token, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "1", "email": "a@example.com", "role": "USER"})
	})

	user, err := client.Profile(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if user.ID != "1" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestClient_Refresh(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["refreshToken"] != "tok-1" {
			t.Fatalf("unexpected body: %v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-2"})
	})

	token, err := client.Refresh(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if token != "tok-2" {
		t.Fatalf("unexpected token: %s", token)
	}
}

func TestClient_Refresh_EmptyTokenIsMalformed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})

	_, err := client.Refresh(context.Background(), "tok-1")
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestClient_Logout(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.URL.Path != "/auth/logout" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.Logout(context.Background(), "tok-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if !called {
		t.Fatalf("logout endpoint not called")
	}
}
