// Package authapi implements the HTTP client for the platform's remote
// authentication service: /auth/login, /auth/register, /auth/profile,
// /auth/refresh and /auth/logout.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/servicelens/mobile-core/internal/core/domain"
	"github.com/servicelens/mobile-core/internal/core/ports"
)

const defaultTimeout = 30 * time.Second

// Config captures the settings for reaching the authentication backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks JSON over HTTP to the authentication backend and maps every
// failure into the session error taxonomy: transport problems become
// ErrNetworkFailure, rejections become ErrInvalidCredentials (carrying the
// server's message when one is present) and undecodable or incomplete bodies
// become ErrMalformedResponse.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type credentialPayload struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*ports.Credentials, error) {
	var payload credentialPayload
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &payload)
	if err != nil {
		return nil, err
	}
	return credentialsFrom(payload)
}

func (c *Client) Register(ctx context.Context, input ports.RegisterInput) (*ports.Credentials, error) {
	req := registerRequest{
		Email:       input.Email,
		Password:    input.Password,
		FullName:    input.FullName,
		PhoneNumber: input.PhoneNumber,
		Role:        input.Role,
	}
	var payload credentialPayload
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", "", req, &payload); err != nil {
		return nil, err
	}
	return credentialsFrom(payload)
}

func (c *Client) Profile(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/profile", token, nil, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: profile without id", domain.ErrMalformedResponse)
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error) {
	var user domain.User
	if err := c.doJSON(ctx, http.MethodPut, "/auth/profile", token, update, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: profile without id", domain.ErrMalformedResponse)
	}
	return &user, nil
}

func (c *Client) Refresh(ctx context.Context, token string) (string, error) {
	var payload refreshResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", token, refreshRequest{RefreshToken: token}, &payload); err != nil {
		return "", err
	}
	if payload.Token == "" {
		return "", fmt.Errorf("%w: refresh without token", domain.ErrMalformedResponse)
	}
	return payload.Token, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", domain.ErrNetworkFailure, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("path", path).Msg("auth backend unreachable")
		return fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return c.errorFrom(resp, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}
	}
	return nil
}

// errorFrom maps a non-2xx response: client-side rejections carry the
// backend's message, server-side failures count as the backend being down.
func (c *Client) errorFrom(resp *http.Response, path string) error {
	var envelope struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&envelope)

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("auth backend error")
		return fmt.Errorf("%w: status %d", domain.ErrNetworkFailure, resp.StatusCode)
	}

	if envelope.Error != "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, envelope.Error)
	}
	return fmt.Errorf("%w: status %d", domain.ErrInvalidCredentials, resp.StatusCode)
}

func credentialsFrom(payload credentialPayload) (*ports.Credentials, error) {
	if payload.Token == "" || payload.User == nil {
		return nil, fmt.Errorf("%w: missing token or user", domain.ErrMalformedResponse)
	}
	return &ports.Credentials{Token: payload.Token, User: payload.User}, nil
}
