package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Load when nothing has been stored yet.
	ErrNotFound = errors.New("not found")

	// ErrReadOnly is returned by Save on backends that cannot be written.
	ErrReadOnly = errors.New("storage is read-only")
)

// ConfigStore loads and saves the client configuration.
type ConfigStore interface {
	// Load returns the stored configuration. Returns an error wrapping
	// ErrNotFound if nothing has been stored.
	Load(ctx context.Context) (Config, error)

	// Save persists the configuration, replacing any previous value.
	Save(ctx context.Context, cfg Config) error
}

// TokenStore loads and saves the OAuth token record.
type TokenStore interface {
	// Load returns the stored token. Returns an error wrapping ErrNotFound
	// if no token has been stored.
	Load(ctx context.Context) (Token, error)

	// Save persists the token, replacing any previous value.
	Save(ctx context.Context, token Token) error
}
