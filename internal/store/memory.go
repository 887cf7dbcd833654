package store

import (
	"context"
	"sync"
)

// MemoryConfigStore keeps the configuration in memory.
type MemoryConfigStore struct {
	mu  sync.Mutex
	cfg *Config
}

// Compile-time check to ensure MemoryConfigStore implements ConfigStore
var _ ConfigStore = (*MemoryConfigStore)(nil)

// NewMemoryConfigStore creates a store, optionally pre-populated.
func NewMemoryConfigStore(initial *Config) *MemoryConfigStore {
	s := &MemoryConfigStore{}
	if initial != nil {
		cfg := *initial
		s.cfg = &cfg
	}
	return s
}

func (s *MemoryConfigStore) Load(ctx context.Context) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return Config{}, ErrNotFound
	}
	return *s.cfg, nil
}

func (s *MemoryConfigStore) Save(ctx context.Context, cfg Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = &cfg
	return nil
}

// MemoryTokenStore keeps the token record in memory and counts saves.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token *Token
	saves int
}

// Compile-time check to ensure MemoryTokenStore implements TokenStore
var _ TokenStore = (*MemoryTokenStore)(nil)

// NewMemoryTokenStore creates a store, optionally pre-populated.
func NewMemoryTokenStore(initial *Token) *MemoryTokenStore {
	s := &MemoryTokenStore{}
	if initial != nil {
		token := *initial
		s.token = &token
	}
	return s
}

func (s *MemoryTokenStore) Load(ctx context.Context) (Token, error) {
	if err := ctx.Err(); err != nil {
		return Token{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return Token{}, ErrNotFound
	}
	return *s.token, nil
}

func (s *MemoryTokenStore) Save(ctx context.Context, token Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = &token
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (s *MemoryTokenStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
