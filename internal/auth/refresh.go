package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"apexrun/internal/store"
)

// RefreshBuffer is how long before expiry a token is refreshed
const RefreshBuffer = 60 * time.Second

// TokenStore persists tokens between runs
type TokenStore interface {
	GetAuth(ctx context.Context) (*store.Auth, error)
	SaveAuth(ctx context.Context, auth *store.Auth) error
	UpdateTokens(ctx context.Context, accessToken, refreshToken string, expiresAt time.Time) error
}

// TokenSource refreshes the stored token when it nears expiry and writes
// the new one back to the store
type TokenSource struct {
	ctx    context.Context
	config *oauth2.Config
	store  TokenStore
	token  *oauth2.Token
	mu     sync.Mutex
}

// NewTokenSource loads the stored token. Returns store.ErrNoAuth when the
// athlete has not authorized yet.
func NewTokenSource(ctx context.Context, cfg *oauth2.Config, ts TokenStore) (*TokenSource, error) {
	a, err := ts.GetAuth(ctx)
	if err != nil {
		return nil, err
	}
	return &TokenSource{
		ctx:    ctx,
		config: cfg,
		store:  ts,
		token: &oauth2.Token{
			AccessToken:  a.AccessToken,
			RefreshToken: a.RefreshToken,
			TokenType:    "Bearer",
			Expiry:       a.ExpiresAt,
		},
	}, nil
}

// Token returns a valid token, refreshing if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if time.Until(ts.token.Expiry) > RefreshBuffer {
		return ts.token, nil
	}

	// An already-expired copy forces the oauth2 source to refresh
	stale := *ts.token
	stale.Expiry = time.Now().Add(-time.Second)
	newToken, err := ts.config.TokenSource(ts.ctx, &stale).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	if err := ts.store.UpdateTokens(ts.ctx, newToken.AccessToken, newToken.RefreshToken, newToken.Expiry); err != nil {
		return nil, fmt.Errorf("saving refreshed token: %w", err)
	}

	ts.token = newToken
	return newToken, nil
}

// Save stores the result of a fresh authorization
func Save(ctx context.Context, ts TokenStore, r *Result) error {
	return ts.SaveAuth(ctx, &store.Auth{
		AthleteID:    r.AthleteID,
		AthleteName:  r.AthleteName,
		AccessToken:  r.Token.AccessToken,
		RefreshToken: r.Token.RefreshToken,
		ExpiresAt:    r.Token.Expiry,
	})
}
