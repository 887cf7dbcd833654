package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/florianilch/kintai/internal/apperror"
	"github.com/florianilch/kintai/internal/store"
)

// Option configures a Client.
type Option func(*clientConfig)

// clientConfig holds configuration for NewClient.
type clientConfig struct {
	baseTransport http.RoundTripper
	timeout       time.Duration
	redirectURL   string
	scopes        []string
}

// WithTransport sets a custom base transport for token requests.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *clientConfig) {
		c.baseTransport = transport
	}
}

// WithTimeout bounds every token request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithRedirectURL sets the redirect URI registered for the app.
// Defaults to RedirectURIOutOfBand.
func WithRedirectURL(redirectURL string) Option {
	return func(c *clientConfig) {
		c.redirectURL = redirectURL
	}
}

// Client exchanges authorization codes and refresh tokens for token records.
type Client struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewClient creates a Client for the given app credentials and endpoint.
func NewClient(clientID, clientSecret string, endpoint oauth2.Endpoint, opts ...Option) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, apperror.Config("client id and client secret are required")
	}

	cfg := &clientConfig{
		baseTransport: http.DefaultTransport,
		timeout:       30 * time.Second,
		redirectURL:   RedirectURIOutOfBand,
		scopes:        Scopes,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cfg.redirectURL,
			Scopes:       cfg.scopes,
		},
		httpClient: &http.Client{
			Timeout:   cfg.timeout,
			Transport: cfg.baseTransport,
		},
	}, nil
}

// AuthCodeURL returns the URL the user opens to grant access. freee asks
// which company to authorize for.
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_company"))
}

// Exchange trades an authorization code for a token record.
func (c *Client) Exchange(ctx context.Context, code string) (store.Token, error) {
	if code == "" {
		return store.Token{}, apperror.Auth("authorization code is empty")
	}

	token, err := c.config.Exchange(c.context(ctx), code)
	if err != nil {
		return store.Token{}, classify("exchanging authorization code", err)
	}

	return fromOAuth2(token), nil
}

// Refresh trades a refresh token for a new token record. If freee does not
// rotate the refresh token, the given one is kept.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (store.Token, error) {
	if refreshToken == "" {
		return store.Token{}, apperror.Auth("no refresh token stored")
	}

	// An empty access token forces the token source to refresh immediately.
	source := c.config.TokenSource(c.context(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return store.Token{}, classify("refreshing access token", err)
	}

	return fromOAuth2(token), nil
}

// context injects the client's HTTP client, per oauth2's documented API.
func (c *Client) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// classify maps token endpoint rejections to authentication errors.
// Server-side failures stay API errors since re-authenticating won't help.
func classify(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	status := 0
	if retrieveErr.Response != nil {
		status = retrieveErr.Response.StatusCode
	}
	if status >= http.StatusInternalServerError {
		return apperror.API(status, "%s: %w", op, err)
	}

	reason := retrieveErr.ErrorCode
	if retrieveErr.ErrorDescription != "" {
		reason = retrieveErr.ErrorDescription
	}
	if reason == "" {
		return apperror.Auth("%s: %w", op, err)
	}
	return apperror.Auth("%s: %s: %w", op, reason, err)
}

func fromOAuth2(token *oauth2.Token) store.Token {
	record := store.Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
	}
	if scope, ok := token.Extra("scope").(string); ok {
		record.Scope = scope
	}
	return record
}
