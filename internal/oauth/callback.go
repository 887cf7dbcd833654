package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/florianilch/kintai/internal/apperror"
)

// IsLoopbackRedirect reports whether redirectURI is a plain HTTP URL on this
// machine, so a CallbackServer can receive the authorization code.
func IsLoopbackRedirect(redirectURI string) bool {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Scheme != "http" {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

type callbackResult struct {
	code string
	err  error
}

// CallbackServer receives the authorization redirect on a loopback address.
type CallbackServer struct {
	mux     *http.ServeMux
	server  *http.Server
	address string
	state   string
	results chan callbackResult
}

// Compile-time check that CallbackServer implements http.Handler
var _ http.Handler = (*CallbackServer)(nil)

// NewCallbackServer creates a server for the given loopback redirect URI that
// accepts only redirects carrying the expected state.
func NewCallbackServer(redirectURI, state string) (*CallbackServer, error) {
	if !IsLoopbackRedirect(redirectURI) {
		return nil, fmt.Errorf("redirect URI %q is not a loopback http URL", redirectURI)
	}
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI: %w", err)
	}
	if u.Port() == "" {
		return nil, fmt.Errorf("redirect URI %q must include a port", redirectURI)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	s := &CallbackServer{
		mux:     http.NewServeMux(),
		address: u.Host,
		state:   state,
		results: make(chan callbackResult, 1),
	}

	s.mux.Handle("GET "+path, applyMiddlewares(http.HandlerFunc(s.handleCallback),
		redactQuery,
		Logging(slog.Default()),
		Recovery,
	))

	return s, nil
}

// ServeHTTP implements http.Handler interface
func (s *CallbackServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start starts the HTTP server in the background and returns immediately.
// Startup errors (port in use, permission denied) are returned immediately,
// runtime errors are sent to the returned channel.
//
// The caller is responsible for calling Shutdown() to stop the server.
func (s *CallbackServer) Start(ctx context.Context) (<-chan error, error) {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}

	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)

	go func() {
		err := s.server.Serve(listener)
		// Only report error if not from graceful shutdown
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh, nil
}

// Wait blocks until a valid redirect arrives, the server fails, or ctx ends.
func (s *CallbackServer) Wait(ctx context.Context, errCh <-chan error) (string, error) {
	select {
	case res := <-s.results:
		return res.code, res.err
	case err, ok := <-errCh:
		if ok && err != nil {
			return "", fmt.Errorf("callback server: %w", err)
		}
		return "", errors.New("callback server stopped before receiving a code")
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for authorization: %w", ctx.Err())
	}
}

// Shutdown performs graceful shutdown of the HTTP server.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	if err := s.server.Shutdown(ctx); err != nil {
		_ = s.server.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := callbackQuery(r)

	// A mismatched state may be a forged redirect; ignore it and keep waiting.
	if query.Get("state") != s.state {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	if reason := query.Get("error"); reason != "" {
		if desc := query.Get("error_description"); desc != "" {
			reason += ": " + desc
		}
		s.deliver(callbackResult{err: apperror.Auth("authorization denied: %s", reason)})
		http.Error(w, "Authorization was denied. You can close this window.", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	s.deliver(callbackResult{code: code})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintln(w, "Authorization complete. You can close this window and return to the terminal.")
}

// deliver keeps only the first result.
func (s *CallbackServer) deliver(res callbackResult) {
	select {
	case s.results <- res:
	default:
	}
}
