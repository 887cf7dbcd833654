package store

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// DefaultEnvPrefix is the prefix of the variables read by EnvConfigStore.
const DefaultEnvPrefix = "FREEE_"

// EnvConfigStore provides read-only access to a configuration supplied via
// environment variables (<prefix>CLIENT_ID, <prefix>CLIENT_SECRET,
// <prefix>COMPANY_ID, <prefix>EMPLOYEE_ID).
// Suitable for CI and containers where the secret comes from a secret manager.
type EnvConfigStore struct {
	prefix string
}

// Compile-time check to ensure EnvConfigStore implements ConfigStore
var _ ConfigStore = (*EnvConfigStore)(nil)

// NewEnvConfigStore creates an EnvConfigStore reading variables with the
// given prefix.
func NewEnvConfigStore(prefix string) (*EnvConfigStore, error) {
	if prefix == "" {
		return nil, fmt.Errorf("environment prefix cannot be empty")
	}
	return &EnvConfigStore{prefix: prefix}, nil
}

// Load assembles the configuration from the environment. Returns ErrNotFound
// if neither client id nor secret is set.
func (e *EnvConfigStore) Load(ctx context.Context) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ClientID:     os.Getenv(e.prefix + "CLIENT_ID"),
		ClientSecret: os.Getenv(e.prefix + "CLIENT_SECRET"),
	}
	if cfg.ClientID == "" && cfg.ClientSecret == "" {
		return Config{}, fmt.Errorf("%w: %sCLIENT_ID and %sCLIENT_SECRET are not set", ErrNotFound, e.prefix, e.prefix)
	}

	var err error
	if cfg.CompanyID, err = e.lookupInt("COMPANY_ID"); err != nil {
		return Config{}, err
	}
	if cfg.EmployeeID, err = e.lookupInt("EMPLOYEE_ID"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Save is not supported for environment variables (they are read-only).
func (e *EnvConfigStore) Save(ctx context.Context, _ Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("%w: configuration comes from %s* environment variables", ErrReadOnly, e.prefix)
}

func (e *EnvConfigStore) lookupInt(name string) (int64, error) {
	raw, ok := os.LookupEnv(e.prefix + name)
	if !ok || raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s%s: %w", e.prefix, name, err)
	}
	return v, nil
}
