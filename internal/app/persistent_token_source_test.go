package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florianilch/kintai/internal/apperror"
	"github.com/florianilch/kintai/internal/store"
)

type fakeRefresher struct {
	calls int
	next  store.Token
	err   error
}

func (f *fakeRefresher) Refresh(_ context.Context, refreshToken string) (store.Token, error) {
	f.calls++
	if f.err != nil {
		return store.Token{}, f.err
	}
	return f.next, nil
}

// failingTokenStore loads a fixed token and fails every save.
type failingTokenStore struct {
	token store.Token
	err   error
}

func (s *failingTokenStore) Load(context.Context) (store.Token, error) { return s.token, nil }
func (s *failingTokenStore) Save(context.Context, store.Token) error { return s.err }

func newSource(t *testing.T, refresher Refresher, tokens store.TokenStore) *PersistentTokenSource {
	t.Helper()
	source, err := NewPersistentTokenSource(refresher, tokens, func() time.Time { return testNow })
	require.NoError(t, err)
	return source
}

func TestToken_ValidTokenIsNotRefreshed(t *testing.T) {
	refresher := &fakeRefresher{}
	tokens := store.NewMemoryTokenStore(&store.Token{AccessToken: "a1", RefreshToken: "r1", ExpiresAt: testNow.Add(time.Hour)})

	token, err := newSource(t, refresher, tokens).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a1", token)
	assert.Zero(t, refresher.calls)
	assert.Zero(t, tokens.Saves())
}

func TestToken_RefreshesWithinExpiryDelta(t *testing.T) {
	refresher := &fakeRefresher{next: store.Token{AccessToken: "a2", RefreshToken: "r2", ExpiresAt: testNow.Add(6 * time.Hour)}}
	tokens := store.NewMemoryTokenStore(&store.Token{AccessToken: "a1", RefreshToken: "r1", ExpiresAt: testNow.Add(store.ExpiryDelta / 2)})

	token, err := newSource(t, refresher, tokens).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a2", token)
	assert.Equal(t, 1, refresher.calls)

	stored, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r2", stored.RefreshToken)
}

func TestToken_NotAuthenticated(t *testing.T) {
	tests := []struct {
		name   string
		tokens store.TokenStore
	}{
		{"missing", store.NewMemoryTokenStore(nil)},
		{"empty", store.NewMemoryTokenStore(&store.Token{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newSource(t, &fakeRefresher{}, tt.tokens).Token(context.Background())
			assert.True(t, apperror.Is(err, apperror.KindAuth), "got %v", err)
		})
	}
}

func TestToken_ExpiredWithoutRefreshToken(t *testing.T) {
	refresher := &fakeRefresher{}
	tokens := store.NewMemoryTokenStore(&store.Token{AccessToken: "a1", ExpiresAt: testNow.Add(-time.Minute)})

	_, err := newSource(t, refresher, tokens).Token(context.Background())
	assert.True(t, apperror.Is(err, apperror.KindAuth), "got %v", err)
	assert.Zero(t, refresher.calls)
}

func TestRefresh_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	refresher := &fakeRefresher{next: store.Token{AccessToken: "a2"}}
	tokens := store.NewMemoryTokenStore(&store.Token{AccessToken: "a1", RefreshToken: "r1"})

	token, err := newSource(t, refresher, tokens).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a2", token)

	stored, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r1", stored.RefreshToken)
}

func TestRefresh_RefresherErrorSavesNothing(t *testing.T) {
	revoked := apperror.Auth("refreshing access token: invalid_grant")
	refresher := &fakeRefresher{err: revoked}
	tokens := store.NewMemoryTokenStore(&store.Token{AccessToken: "a1", RefreshToken: "r1"})

	_, err := newSource(t, refresher, tokens).Refresh(context.Background())
	assert.ErrorIs(t, err, revoked)
	assert.Zero(t, tokens.Saves())
}

func TestRefresh_PersistFailureIsAnError(t *testing.T) {
	diskFull := errors.New("no space left on device")
	refresher := &fakeRefresher{next: store.Token{AccessToken: "a2", RefreshToken: "r2"}}
	tokens := &failingTokenStore{token: store.Token{AccessToken: "a1", RefreshToken: "r1"}, err: diskFull}

	_, err := newSource(t, refresher, tokens).Refresh(context.Background())
	assert.ErrorIs(t, err, diskFull)
}

func TestNewPersistentTokenSource_Validation(t *testing.T) {
	_, err := NewPersistentTokenSource(nil, store.NewMemoryTokenStore(nil), nil)
	assert.Error(t, err)

	_, err = NewPersistentTokenSource(&fakeRefresher{}, nil, nil)
	assert.Error(t, err)
}
