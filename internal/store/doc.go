// Package store provides persistent storage for the client configuration and
// the OAuth token record.
//
// Both records sit behind small load/save interfaces so commands never touch
// files directly. Backends:
//   - File: JSON files with atomic writes and 0600 permissions. Hand-edited
//     files may contain comments and trailing commas.
//   - Env: read-only configuration from FREEE_* environment variables.
//   - Keyring: OS-native credential storage for the token record.
//   - Memory: in-process stores for tests and dry runs.
//
// Token storage must be writable: every refresh rotates the refresh token.
package store
