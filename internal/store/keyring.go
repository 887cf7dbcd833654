package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keyring service name used for the token record.
const DefaultKeyringService = "kintai-token"

// KeyringTokenStore provides OS-native secure credential storage for the
// token record, encoded as JSON.
// Uses macOS Keychain, Windows Credential Manager, or Linux Secret Service.
type KeyringTokenStore struct {
	service string
	user    string
}

// Compile-time check to ensure KeyringTokenStore implements TokenStore
var _ TokenStore = (*KeyringTokenStore)(nil)

// NewKeyringTokenStore creates a KeyringTokenStore using the given service
// and user identifiers.
func NewKeyringTokenStore(service, user string) (*KeyringTokenStore, error) {
	if service == "" {
		return nil, fmt.Errorf("service cannot be empty")
	}
	if user == "" {
		return nil, fmt.Errorf("user cannot be empty")
	}

	return &KeyringTokenStore{
		service: service,
		user:    user,
	}, nil
}

// Load returns the token from the system keyring.
func (k *KeyringTokenStore) Load(ctx context.Context) (Token, error) {
	if err := ctx.Err(); err != nil {
		return Token{}, err
	}

	secret, err := keyring.Get(k.service, k.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return Token{}, fmt.Errorf("%w: keyring service %s, user %s", ErrNotFound, k.service, k.user)
	}
	if err != nil {
		return Token{}, err
	}
	if secret == "" {
		return Token{}, fmt.Errorf("%w: empty token in keyring for service %s, user %s", ErrNotFound, k.service, k.user)
	}

	var token Token
	if err := json.Unmarshal([]byte(secret), &token); err != nil {
		return Token{}, fmt.Errorf("decoding keyring token: %w", err)
	}
	return token, nil
}

// Save persists the token to the system keyring, overwriting any existing value.
func (k *KeyringTokenStore) Save(ctx context.Context, token Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding keyring token: %w", err)
	}

	return keyring.Set(k.service, k.user, string(data))
}
