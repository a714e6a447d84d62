package secrets

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "glambook"

// KeyringStore stores secrets in the system keychain.
type KeyringStore struct{}

// probeKeyring tests whether the system keyring is usable.
func probeKeyring() (*KeyringStore, bool) {
	testKey := qualify("probe")
	if err := keyring.Set(serviceName, testKey, "probe"); err != nil {
		return nil, false
	}
	_ = keyring.Delete(serviceName, testKey) // Best-effort cleanup
	return &KeyringStore{}, true
}

// qualify returns the keyring entry name for a secret key.
func qualify(key string) string {
	return "gbk::" + key
}

// Get retrieves a secret from the keychain.
func (s *KeyringStore) Get(key string) (string, bool) {
	v, err := keyring.Get(serviceName, qualify(key))
	if err != nil {
		return "", false
	}
	return v, true
}

// Set stores a secret in the keychain.
func (s *KeyringStore) Set(key, value string) error {
	return keyring.Set(serviceName, qualify(key), value)
}

// Delete removes a secret from the keychain.
func (s *KeyringStore) Delete(key string) error {
	err := keyring.Delete(serviceName, qualify(key))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
