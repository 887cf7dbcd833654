package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/florianilch/kintai/internal/apperror"
)

// tokenServer fakes freee's token endpoint. It accepts one authorization
// code and one refresh token, rotating the refresh token on every use.
type tokenServer struct {
	*httptest.Server
	validCode    string
	validRefresh atomic.Value
	calls        atomic.Int32
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()
	ts := &tokenServer{validCode: "good-code"}
	ts.validRefresh.Store("refresh-0")

	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.calls.Add(1)

		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			writeTokenError(w, http.StatusUnauthorized, "invalid_client")
			return
		}
		if err := r.ParseForm(); err != nil {
			writeTokenError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		switch r.PostForm.Get("grant_type") {
		case "authorization_code":
			if r.PostForm.Get("code") != ts.validCode {
				writeTokenError(w, http.StatusBadRequest, "invalid_grant")
				return
			}
			if r.PostForm.Get("redirect_uri") != RedirectURIOutOfBand {
				writeTokenError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			writeToken(w, "access-1", "refresh-1")
		case "refresh_token":
			if r.PostForm.Get("refresh_token") != ts.validRefresh.Load().(string) {
				writeTokenError(w, http.StatusUnauthorized, "invalid_grant")
				return
			}
			writeToken(w, "access-2", "refresh-2")
		default:
			writeTokenError(w, http.StatusBadRequest, "unsupported_grant_type")
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func writeToken(w http.ResponseWriter, access, refresh string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  access,
		"token_type":    "bearer",
		"expires_in":    21600,
		"refresh_token": refresh,
		"scope":         "hr.time_clocks hr.employees offline_access",
	})
}

func writeTokenError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "error_description": code + " description"})
}

func newTestClient(t *testing.T, ts *tokenServer) *Client {
	t.Helper()
	endpoint := oauth2.Endpoint{
		AuthURL:   ts.URL + "/authorize",
		TokenURL:  ts.URL + "/token",
		AuthStyle: oauth2.AuthStyleInHeader,
	}
	c, err := NewClient("client-id", "client-secret", endpoint, WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestClient_Exchange(t *testing.T) {
	ts := newTokenServer(t)
	c := newTestClient(t, ts)

	before := time.Now()
	token, err := c.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}

	if token.AccessToken != "access-1" || token.RefreshToken != "refresh-1" {
		t.Errorf("Exchange() = %+v, want access-1/refresh-1", token)
	}
	if token.Scope != "hr.time_clocks hr.employees offline_access" {
		t.Errorf("Scope = %q", token.Scope)
	}
	if !token.ExpiresAt.After(before.Add(5 * time.Hour)) {
		t.Errorf("ExpiresAt = %v, want about 6h from now", token.ExpiresAt)
	}
}

func TestClient_ExchangeInvalidCode(t *testing.T) {
	ts := newTokenServer(t)
	c := newTestClient(t, ts)

	_, err := c.Exchange(context.Background(), "stale-code")
	if !apperror.Is(err, apperror.KindAuth) {
		t.Fatalf("Exchange() error = %v, want auth error", err)
	}
	if !strings.Contains(err.Error(), "invalid_grant") {
		t.Errorf("error %q should mention the provider's reason", err)
	}

	if _, err := c.Exchange(context.Background(), ""); !apperror.Is(err, apperror.KindAuth) {
		t.Errorf("Exchange(\"\") error = %v, want auth error", err)
	}
}

func TestClient_Refresh(t *testing.T) {
	ts := newTokenServer(t)
	c := newTestClient(t, ts)

	token, err := c.Refresh(context.Background(), "refresh-0")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if token.AccessToken != "access-2" || token.RefreshToken != "refresh-2" {
		t.Errorf("Refresh() = %+v, want rotated tokens", token)
	}
	if got := ts.calls.Load(); got != 1 {
		t.Errorf("token endpoint calls = %d, want 1", got)
	}
}

func TestClient_RefreshRevoked(t *testing.T) {
	ts := newTokenServer(t)
	c := newTestClient(t, ts)

	_, err := c.Refresh(context.Background(), "revoked")
	if !apperror.Is(err, apperror.KindAuth) {
		t.Fatalf("Refresh() error = %v, want auth error", err)
	}

	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		t.Error("expected the oauth2.RetrieveError to stay in the chain")
	}

	if _, err := c.Refresh(context.Background(), ""); !apperror.Is(err, apperror.KindAuth) {
		t.Errorf("Refresh(\"\") error = %v, want auth error", err)
	}
}

func TestClient_AuthCodeURL(t *testing.T) {
	c, err := NewClient("client-id", "client-secret", Endpoint)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	raw := c.AuthCodeURL("state-123")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}

	if !strings.HasPrefix(raw, DefaultAuthURL+"?") {
		t.Errorf("AuthCodeURL() = %q, want prefix %q", raw, DefaultAuthURL)
	}

	want := map[string]string{
		"response_type": "code",
		"client_id":     "client-id",
		"redirect_uri":  RedirectURIOutOfBand,
		"scope":         "hr.time_clocks hr.employees offline_access",
		"state":         "state-123",
		"prompt":        "select_company",
	}
	q := u.Query()
	for key, value := range want {
		if got := q.Get(key); got != value {
			t.Errorf("query %s = %q, want %q", key, got, value)
		}
	}
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	if _, err := NewClient("", "secret", Endpoint); !apperror.Is(err, apperror.KindConfig) {
		t.Errorf("NewClient() error = %v, want config error", err)
	}
}
