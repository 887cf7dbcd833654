package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/florianilch/kintai/internal/apperror"
	"github.com/florianilch/kintai/internal/freee"
	"github.com/florianilch/kintai/internal/store"
)

// Refresher trades a refresh token for a new token record.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (store.Token, error)
}

// PersistentTokenSource hands out access tokens from a TokenStore and
// persists every refreshed record. An access token is never returned past
// its expiry without a refresh attempt.
type PersistentTokenSource struct {
	refresher  Refresher
	tokenStore store.TokenStore
	now        func() time.Time
}

// Compile-time check to ensure PersistentTokenSource implements freee.TokenProvider
var _ freee.TokenProvider = (*PersistentTokenSource)(nil)

// NewPersistentTokenSource creates a PersistentTokenSource.
// No I/O is performed until the first Token call.
func NewPersistentTokenSource(refresher Refresher, tokenStore store.TokenStore, now func() time.Time) (*PersistentTokenSource, error) {
	if refresher == nil {
		return nil, fmt.Errorf("missing refresher")
	}
	if tokenStore == nil {
		return nil, fmt.Errorf("missing token store")
	}
	if now == nil {
		now = time.Now
	}

	return &PersistentTokenSource{
		refresher:  refresher,
		tokenStore: tokenStore,
		now:        now,
	}, nil
}

// Token returns the stored access token, refreshing it first if it expired.
func (p *PersistentTokenSource) Token(ctx context.Context) (string, error) {
	token, err := p.load(ctx)
	if err != nil {
		return "", err
	}

	if token.AccessToken == "" || token.Expired(p.now()) {
		slog.DebugContext(ctx, "access token expired, refreshing", "expires_at", token.ExpiresAt)
		return p.refresh(ctx, token)
	}

	return token.AccessToken, nil
}

// Refresh obtains a new access token regardless of the recorded expiry.
func (p *PersistentTokenSource) Refresh(ctx context.Context) (string, error) {
	token, err := p.load(ctx)
	if err != nil {
		return "", err
	}
	return p.refresh(ctx, token)
}

func (p *PersistentTokenSource) load(ctx context.Context) (store.Token, error) {
	return loadToken(ctx, p.tokenStore)
}

// loadToken reads the stored token. A missing or empty record is an
// authentication error.
func loadToken(ctx context.Context, tokens store.TokenStore) (store.Token, error) {
	token, err := tokens.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return store.Token{}, apperror.Auth("not authenticated")
	}
	if err != nil {
		return store.Token{}, fmt.Errorf("reading token: %w", err)
	}

	if token.AccessToken == "" && token.RefreshToken == "" {
		return store.Token{}, apperror.Auth("stored token is empty")
	}
	return token, nil
}

func (p *PersistentTokenSource) refresh(ctx context.Context, current store.Token) (string, error) {
	if current.RefreshToken == "" {
		return "", apperror.Auth("access token expired and no refresh token is stored")
	}

	fresh, err := p.refresher.Refresh(ctx, current.RefreshToken)
	if err != nil {
		return "", err
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = current.RefreshToken
	}

	// The old refresh token is now spent; losing the new one means re-running auth
	if err := p.tokenStore.Save(ctx, fresh); err != nil {
		slog.ErrorContext(ctx, "failed to persist refreshed token", "error", err)
		return "", fmt.Errorf("persisting refreshed token: %w", err)
	}

	slog.DebugContext(ctx, "access token refreshed", "expires_at", fresh.ExpiresAt)
	return fresh.AccessToken, nil
}
