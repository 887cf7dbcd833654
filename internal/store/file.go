package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// jsonFile reads and atomically writes a single JSON document.
type jsonFile struct {
	path string

	// strictPerm rejects files readable by anyone but the owner.
	strictPerm bool
}

func newJSONFile(path string, strictPerm bool) (jsonFile, error) {
	if path == "" {
		return jsonFile{}, fmt.Errorf("file path cannot be empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return jsonFile{}, err
	}

	return jsonFile{path: path, strictPerm: strictPerm}, nil
}

// read decodes the file into v. Comments and trailing commas are accepted.
func (f jsonFile) read(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, f.path)
	}
	if err != nil {
		return err
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		if f.strictPerm {
			return fmt.Errorf("insecure permissions on %s: %04o (expected 0600)", f.path, perm)
		}
		slog.WarnContext(ctx, "file is readable by other users", "path", f.path, "mode", fmt.Sprintf("%04o", perm))
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}

	data = bytes.TrimSpace(jsonc.ToJSON(data))
	if len(data) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrNotFound, f.path)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", f.path, err)
	}
	return nil
}

// write atomically replaces the file with v using temp file + rename.
// The result has 0600 permissions.
func (f jsonFile) write(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", f.path, err)
	}

	dir := filepath.Dir(f.path)
	tempFile, err := os.CreateTemp(dir, "*.tmp")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()
	defer func() { _ = os.Remove(tempName) }()
	defer func() { _ = tempFile.Close() }()

	if _, err := tempFile.Write(append(data, '\n')); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}

	if err := os.Rename(tempName, f.path); err != nil {
		return err
	}

	return os.Chmod(f.path, 0600)
}

// FileConfigStore keeps the configuration in a JSON file.
type FileConfigStore struct {
	file jsonFile
}

// Compile-time check to ensure FileConfigStore implements ConfigStore
var _ ConfigStore = (*FileConfigStore)(nil)

// NewFileConfigStore creates a FileConfigStore for the given path, creating
// parent directories with 0700 permissions if they don't exist.
func NewFileConfigStore(path string) (*FileConfigStore, error) {
	file, err := newJSONFile(path, false)
	if err != nil {
		return nil, err
	}
	return &FileConfigStore{file: file}, nil
}

// Load reads the configuration file.
func (s *FileConfigStore) Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := s.file.read(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the configuration file.
func (s *FileConfigStore) Save(ctx context.Context, cfg Config) error {
	return s.file.write(ctx, cfg)
}

// Path returns the location of the configuration file.
func (s *FileConfigStore) Path() string { return s.file.path }

// FileTokenStore keeps the token record in a JSON file. Reads fail if the
// file is accessible by anyone but its owner.
type FileTokenStore struct {
	file jsonFile
}

// Compile-time check to ensure FileTokenStore implements TokenStore
var _ TokenStore = (*FileTokenStore)(nil)

// NewFileTokenStore creates a FileTokenStore for the given path, creating
// parent directories with 0700 permissions if they don't exist.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	file, err := newJSONFile(path, true)
	if err != nil {
		return nil, err
	}
	return &FileTokenStore{file: file}, nil
}

// Load reads the token file.
func (s *FileTokenStore) Load(ctx context.Context) (Token, error) {
	var token Token
	if err := s.file.read(ctx, &token); err != nil {
		return Token{}, err
	}
	return token, nil
}

// Save writes the token file.
func (s *FileTokenStore) Save(ctx context.Context, token Token) error {
	return s.file.write(ctx, token)
}

// Path returns the location of the token file.
func (s *FileTokenStore) Path() string { return s.file.path }
