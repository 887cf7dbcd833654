package freee

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/florianilch/kintai/internal/apperror"
)

// DefaultBaseURL is the freee HR API root.
const DefaultBaseURL = "https://api.freee.co.jp/hr/api/v1"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// TokenProvider supplies bearer tokens.
type TokenProvider interface {
	// Token returns a usable access token, refreshing it first if it is
	// known to be expired.
	Token(ctx context.Context) (string, error)

	// Refresh unconditionally obtains and persists a new access token.
	Refresh(ctx context.Context) (string, error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// Client calls the freee HR API with bearer authentication.
type Client struct {
	baseURL    *url.URL
	tokens     TokenProvider
	httpClient *http.Client
	userAgent  string
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, tokens TokenProvider, opts ...Option) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("missing token provider")
	}

	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}

	c := &Client{
		baseURL:    u,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "kintai",
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Param is a single query parameter.
type Param struct {
	Name  string
	Value any
}

// Params is an ordered list of query parameters.
type Params []Param

// Encode serializes the parameters in OpenAPI form style.
func (p Params) Encode() (string, error) {
	parts := make([]string, 0, len(p))
	for _, param := range p {
		part, err := runtime.StyleParamWithLocation("form", true, param.Name, runtime.ParamLocationQuery, param.Value)
		if err != nil {
			return "", fmt.Errorf("encoding query parameter %s: %w", param.Name, err)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "&"), nil
}

// Call performs an authenticated request and decodes a JSON response into
// out (if non-nil). When the API rejects the access token, the token is
// refreshed once and the request is retried once.
func (c *Client) Call(ctx context.Context, method, path string, query Params, body, out any) error {
	endpoint, err := c.endpoint(path, query)
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return tokenError(err)
	}

	resp, err := c.send(ctx, method, endpoint, payload, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		slog.DebugContext(ctx, "access token rejected, refreshing", "method", method, "path", path)

		token, err = c.tokens.Refresh(ctx)
		if err != nil {
			return tokenError(err)
		}

		resp, err = c.send(ctx, method, endpoint, payload, token)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			return apperror.Auth("access token rejected after refresh")
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) endpoint(path string, query Params) (string, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimPrefix(path, "/")

	raw, err := query.Encode()
	if err != nil {
		return "", err
	}
	u.RawQuery = raw

	return u.String(), nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}

	slog.DebugContext(ctx, "api request",
		"method", method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return resp, nil
}

// decodeError maps a non-2xx response to a classified error carrying the
// provider's message.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := errorMessage(data)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode == http.StatusForbidden {
		return apperror.Permission(resp.StatusCode, "%s", message)
	}
	return apperror.API(resp.StatusCode, "%s", message)
}

func errorMessage(data []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return strings.TrimSpace(string(data))
	}
	if parsed.Message != "" {
		return parsed.Message
	}

	var messages []string
	for _, e := range parsed.Errors {
		var list []string
		if err := json.Unmarshal(e.Messages, &list); err == nil {
			messages = append(messages, list...)
			continue
		}
		var single string
		if err := json.Unmarshal(e.Messages, &single); err == nil && single != "" {
			messages = append(messages, single)
		}
	}
	if len(messages) > 0 {
		return strings.Join(messages, "; ")
	}

	return strings.TrimSpace(string(data))
}

// tokenError keeps classified errors. Anything else (network or storage
// failures) is not an authentication problem and stays unclassified.
func tokenError(err error) error {
	if _, ok := apperror.KindOf(err); ok {
		return err
	}
	return fmt.Errorf("obtaining access token: %w", err)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
