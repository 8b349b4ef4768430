package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/derickschaefer/pitwall/internal/model"
)

// ─── Session Endpoints ───────────────────────────────────────────────────────

// Login exchanges credentials for an access/refresh token pair.
func (c *Client) Login(ctx context.Context, email, password string) (model.Token, error) {
	data, err := c.post(ctx, pathLogin, map[string]string{"email": email, "password": password}, false)
	if err != nil {
		return model.Token{}, fmt.Errorf("login: %w", err)
	}
	return tokenFromData(data)
}

// RefreshToken obtains a new access token. The request is never
// authenticated with the bearer header.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (model.Token, error) {
	if refresh == "" {
		return model.Token{}, errors.New("refresh: no refresh token")
	}
	data, err := c.post(ctx, pathRefresh, map[string]string{"refresh_token": refresh}, false)
	if err != nil {
		return model.Token{}, fmt.Errorf("refresh: %w", err)
	}
	t, err := tokenFromData(data)
	if err != nil {
		return model.Token{}, err
	}
	if t.RefreshToken == "" {
		t.RefreshToken = refresh
	}
	return t, nil
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.post(ctx, pathLogout, map[string]string{}, true)
	return err
}

func tokenFromData(data any) (model.Token, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return model.Token{}, fmt.Errorf("token: expected object, got %T", data)
	}
	access := stringOf(m, "access_token", "access", "token")
	if access == "" {
		return model.Token{}, errors.New("token: response carries no access token")
	}
	return model.Token{
		AccessToken:  access,
		RefreshToken: stringOf(m, "refresh_token", "refresh"),
		Expiry:       TokenExpiry(access),
	}, nil
}

// TokenExpiry reads the exp claim of a JWT without verifying it. Opaque
// tokens and tokens without exp yield the zero time.
func TokenExpiry(access string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// ─── Token Source ────────────────────────────────────────────────────────────

// refreshSource refreshes the session through the API whenever the cached
// token has expired. Each refreshed token is handed to persist.
type refreshSource struct {
	client  *Client
	mu      sync.Mutex
	current model.Token
	persist func(model.Token) error
}

func (r *refreshSource) Token() (*oauth2.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timeout := r.client.httpClient.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	t, err := r.client.RefreshToken(ctx, r.current.RefreshToken)
	if err != nil {
		return nil, err
	}
	r.current = t
	if r.persist != nil {
		if err := r.persist(t); err != nil {
			r.client.log.Warn("persisting refreshed token", zap.Error(err))
		}
	}
	r.client.log.Debug("session refreshed", zap.Time("expiry", t.Expiry))
	return toOAuth(t), nil
}

// SessionTokens returns a TokenSource that serves t until it expires and
// then refreshes it, calling persist with every new token.
func SessionTokens(c *Client, t model.Token, persist func(model.Token) error) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(toOAuth(t), &refreshSource{client: c, current: t, persist: persist})
}

func toOAuth(t model.Token) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
	}
}
