package store

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// ExpiryDelta is how long before its recorded expiry an access token is
// already treated as expired, to absorb clock skew and request latency.
const ExpiryDelta = 10 * time.Second

// Config holds the OAuth client credentials and the selected company and
// employee.
type Config struct {
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
	CompanyID    int64  `json:"company_id,omitempty" validate:"gte=0"`
	EmployeeID   int64  `json:"employee_id,omitempty" validate:"gte=0"`
}

// HasCredentials reports whether both client id and secret are set.
func (c Config) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// HasEmployee reports whether a company and an employee have been selected.
func (c Config) HasEmployee() bool {
	return c.CompanyID > 0 && c.EmployeeID > 0
}

// Validate checks the configuration using struct tags.
func (c Config) Validate() error {
	return validator.New().Struct(c)
}

// Token is the persisted OAuth token record.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
}

// Expired reports whether the access token must not be used at now without
// refreshing first. A zero ExpiresAt never expires.
func (t Token) Expired(now time.Time) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(t.ExpiresAt.Add(-ExpiryDelta))
}
