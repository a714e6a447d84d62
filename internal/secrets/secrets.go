// Package secrets stores the credential pair, preferring the system keychain
// with a file fallback.
//
// The session layer is the only intended writer; everything else reads the
// access token through Get. Read failures are reported as absence so callers
// never have to distinguish "store broken" from "not logged in".
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
)

// Keys for the credential pair.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// Store is an opaque key-value secret store.
type Store interface {
	// Get retrieves a secret. A failed read is reported as absent.
	Get(key string) (string, bool)

	// Set stores a secret.
	Set(key, value string) error

	// Delete removes a secret. Deleting an absent key is not an error.
	Delete(key string) error
}

// New creates the default store: system keyring when available, otherwise a
// locked file in fallbackDir. Set GLAMBOOK_NO_KEYRING to skip the keyring
// (tests, headless CI).
func New(fallbackDir string) Store {
	if os.Getenv("GLAMBOOK_NO_KEYRING") != "" {
		return NewFileStore(fallbackDir)
	}

	if kr, ok := probeKeyring(); ok {
		return kr
	}

	fmt.Fprintf(os.Stderr, "warning: system keyring unavailable, credentials stored in plaintext at %s\n",
		filepath.Join(fallbackDir, secretsFileName))
	return NewFileStore(fallbackDir)
}
