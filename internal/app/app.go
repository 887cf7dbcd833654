package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/florianilch/kintai/internal/apperror"
	"github.com/florianilch/kintai/internal/freee"
	"github.com/florianilch/kintai/internal/oauth"
	"github.com/florianilch/kintai/internal/store"
)

// Version is reported in the User-Agent header. Set at build time.
var Version = "dev"

// Option configures an App.
type Option func(*App)

// WithConfigStore replaces the configured ConfigStore.
func WithConfigStore(s store.ConfigStore) Option {
	return func(a *App) {
		a.configs = s
	}
}

// WithTokenStore replaces the configured TokenStore.
func WithTokenStore(s store.TokenStore) Option {
	return func(a *App) {
		a.tokens = s
	}
}

// WithHTTPClient sets the HTTP client used for API and token requests.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) {
		a.httpClient = c
	}
}

// WithClock sets the time source. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// App wires the stores, the OAuth client and the freee API client together
// and implements the time clock operations.
type App struct {
	cfg        *Config
	configs    store.ConfigStore
	tokens     store.TokenStore
	httpClient *http.Client
	location   *time.Location
	now        func() time.Time
}

// New creates a new App instance. No I/O is performed until an operation
// needs the stored configuration or token.
func New(cfg *Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}

	a := &App{
		cfg:      cfg,
		location: location,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.configs == nil {
		if a.configs, err = cfg.NewConfigStore(); err != nil {
			return nil, fmt.Errorf("failed to create config store: %w", err)
		}
	}
	if a.tokens == nil {
		if a.tokens, err = cfg.NewTokenStore(); err != nil {
			return nil, fmt.Errorf("failed to create token store: %w", err)
		}
	}
	if a.httpClient == nil {
		a.httpClient = &http.Client{Timeout: cfg.API.Timeout}
	}

	return a, nil
}

// Today returns the current time in the configured time zone.
func (a *App) Today() time.Time {
	return a.now().In(a.location)
}

// Location returns the configured time zone.
func (a *App) Location() *time.Location {
	return a.location
}

// StoredConfig returns the stored client configuration. A missing record
// yields the zero Config.
func (a *App) StoredConfig(ctx context.Context) (store.Config, error) {
	cfg, err := a.configs.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return store.Config{}, nil
	}
	if err != nil {
		return store.Config{}, apperror.Config("reading configuration: %w", err)
	}
	return cfg, nil
}

// SetupInput holds the answers given to setup. Empty values keep the
// stored ones.
type SetupInput struct {
	ClientID     string
	ClientSecret string
}

// Setup merges the input into the stored configuration and saves it.
func (a *App) Setup(ctx context.Context, in SetupInput) (store.Config, error) {
	cfg, err := a.StoredConfig(ctx)
	if err != nil {
		return store.Config{}, err
	}

	if in.ClientID != "" {
		cfg.ClientID = in.ClientID
	}
	if in.ClientSecret != "" {
		cfg.ClientSecret = in.ClientSecret
	}
	if !cfg.HasCredentials() {
		return store.Config{}, apperror.Config("client id and client secret are required")
	}

	if err := a.saveConfig(ctx, cfg); err != nil {
		return store.Config{}, err
	}

	slog.DebugContext(ctx, "configuration saved")
	return cfg, nil
}

// RedirectURI returns the redirect URI used for authorization.
func (a *App) RedirectURI() string {
	return a.cfg.OAuth.RedirectURI
}

// AuthCodeURL returns the authorization URL for the stored client.
func (a *App) AuthCodeURL(ctx context.Context, state string) (string, error) {
	client, err := a.oauthClient(ctx)
	if err != nil {
		return "", err
	}
	return client.AuthCodeURL(state), nil
}

// Authorize exchanges an authorization code and stores the resulting token.
func (a *App) Authorize(ctx context.Context, code string) (store.Token, error) {
	client, err := a.oauthClient(ctx)
	if err != nil {
		return store.Token{}, err
	}

	token, err := client.Exchange(ctx, code)
	if err != nil {
		return store.Token{}, err
	}

	if err := a.tokens.Save(ctx, token); err != nil {
		return store.Token{}, fmt.Errorf("saving token: %w", err)
	}

	slog.DebugContext(ctx, "token stored", "expires_at", token.ExpiresAt)
	return token, nil
}

// Me returns the authenticated user and their companies.
func (a *App) Me(ctx context.Context) (freee.User, error) {
	api, _, err := a.api(ctx)
	if err != nil {
		return freee.User{}, err
	}
	return api.Me(ctx)
}

// Employees lists the employees of a company.
func (a *App) Employees(ctx context.Context, companyID int64) ([]freee.Employee, error) {
	api, _, err := a.api(ctx)
	if err != nil {
		return nil, err
	}
	return api.Employees(ctx, companyID)
}

// SelectEmployee stores the company and employee that punches are recorded for.
func (a *App) SelectEmployee(ctx context.Context, companyID, employeeID int64) (store.Config, error) {
	if companyID <= 0 || employeeID <= 0 {
		return store.Config{}, apperror.Config("company id and employee id must be positive")
	}

	cfg, err := a.credentials(ctx)
	if err != nil {
		return store.Config{}, err
	}

	cfg.CompanyID = companyID
	cfg.EmployeeID = employeeID
	if err := a.saveConfig(ctx, cfg); err != nil {
		return store.Config{}, err
	}

	slog.DebugContext(ctx, "employee selected", "company_id", companyID, "employee_id", employeeID)
	return cfg, nil
}

// Punch records a punch of the given type. A nil at lets freee use the
// current time; the base date is the day of at, or today.
func (a *App) Punch(ctx context.Context, clockType freee.ClockType, at *time.Time) (freee.TimeClock, error) {
	if !clockType.Valid() {
		return freee.TimeClock{}, fmt.Errorf("unknown clock type %q", clockType)
	}

	api, cfg, err := a.employeeAPI(ctx)
	if err != nil {
		return freee.TimeClock{}, err
	}

	when := a.Today()
	req := freee.PunchRequest{
		CompanyID: cfg.CompanyID,
		Type:      clockType,
	}
	if at != nil {
		when = at.In(a.location)
		req.Datetime = when.Format(freee.PunchDatetimeFormat)
	}
	req.BaseDate = freee.Date(when)

	slog.DebugContext(ctx, "recording punch", "type", clockType, "base_date", when.Format(time.DateOnly))
	return api.Punch(ctx, cfg.EmployeeID, req)
}

// TimeClocks returns the punches recorded on the day of date, oldest first.
func (a *App) TimeClocks(ctx context.Context, date time.Time) ([]freee.TimeClock, error) {
	api, cfg, err := a.employeeAPI(ctx)
	if err != nil {
		return nil, err
	}
	return api.TimeClocks(ctx, cfg.EmployeeID, cfg.CompanyID, freee.Date(date.In(a.location)))
}

// AvailableTypes returns the punch types freee accepts on the day of date.
func (a *App) AvailableTypes(ctx context.Context, date time.Time) ([]freee.ClockType, error) {
	api, cfg, err := a.employeeAPI(ctx)
	if err != nil {
		return nil, err
	}
	return api.AvailableTypes(ctx, cfg.EmployeeID, cfg.CompanyID, freee.Date(date.In(a.location)))
}

// credentials loads the stored configuration and requires client credentials.
func (a *App) credentials(ctx context.Context) (store.Config, error) {
	cfg, err := a.StoredConfig(ctx)
	if err != nil {
		return store.Config{}, err
	}
	if !cfg.HasCredentials() {
		return store.Config{}, apperror.Config("client credentials are not configured")
	}
	return cfg, nil
}

func (a *App) saveConfig(ctx context.Context, cfg store.Config) error {
	if err := cfg.Validate(); err != nil {
		return apperror.Config("invalid configuration: %w", err)
	}
	if err := a.configs.Save(ctx, cfg); err != nil {
		if errors.Is(err, store.ErrReadOnly) {
			return apperror.Config("configuration cannot be saved: %w", err)
		}
		return fmt.Errorf("saving configuration: %w", err)
	}
	return nil
}

func (a *App) oauthClient(ctx context.Context) (*oauth.Client, error) {
	cfg, err := a.credentials(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := oauth.Endpoint
	endpoint.AuthURL = a.cfg.OAuth.AuthURL
	endpoint.TokenURL = a.cfg.OAuth.TokenURL

	opts := []oauth.Option{
		oauth.WithRedirectURL(a.cfg.OAuth.RedirectURI),
		oauth.WithTimeout(a.cfg.API.Timeout),
	}
	if a.httpClient.Transport != nil {
		opts = append(opts, oauth.WithTransport(a.httpClient.Transport))
	}

	return oauth.NewClient(cfg.ClientID, cfg.ClientSecret, endpoint, opts...)
}

// api builds a freee client backed by the persistent token source.
func (a *App) api(ctx context.Context) (*freee.Client, store.Config, error) {
	client, err := a.oauthClient(ctx)
	if err != nil {
		return nil, store.Config{}, err
	}

	cfg, err := a.StoredConfig(ctx)
	if err != nil {
		return nil, store.Config{}, err
	}

	source, err := NewPersistentTokenSource(client, a.tokens, a.now)
	if err != nil {
		return nil, store.Config{}, fmt.Errorf("failed to create token source: %w", err)
	}

	api, err := freee.New(a.cfg.API.BaseURL, source,
		freee.WithHTTPClient(a.httpClient),
		freee.WithUserAgent("kintai/"+Version),
	)
	if err != nil {
		return nil, store.Config{}, fmt.Errorf("failed to create api client: %w", err)
	}

	return api, cfg, nil
}

// employeeAPI is api for operations on the selected employee. A missing
// token is reported before a missing employee selection.
func (a *App) employeeAPI(ctx context.Context) (*freee.Client, store.Config, error) {
	api, cfg, err := a.api(ctx)
	if err != nil {
		return nil, store.Config{}, err
	}
	if _, err := loadToken(ctx, a.tokens); err != nil {
		return nil, store.Config{}, err
	}
	if err := requireEmployee(cfg); err != nil {
		return nil, store.Config{}, err
	}
	return api, cfg, nil
}

func requireEmployee(cfg store.Config) error {
	if !cfg.HasEmployee() {
		return apperror.Config("%w", apperror.ErrEmployeeNotSelected)
	}
	return nil
}
