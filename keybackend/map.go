// Package keybackend resolves the object-storage signing secret for an access key.
//
// Secrets are supplied out of band: inline in the configuration, or in a
// JSON or YAML key file kept out of version control. They are never logged.
package keybackend

import (
	"fmt"
	"sort"
)

// MapSecretStore retrieves secrets from an in-memory map.
type MapSecretStore struct {
	keys map[string]string
}

// NewMapSecretStore creates a new map-based secret store with the given access key to secret key mapping.
func NewMapSecretStore(keys map[string]string) *MapSecretStore {
	return &MapSecretStore{keys: keys}
}

// Lookup retrieves the secret key for the given access key from the map.
func (s *MapSecretStore) Lookup(accessKey string) (string, error) {
	secretKey, found := s.keys[accessKey]
	if !found {
		return "", fmt.Errorf("lookup %q: %w", accessKey, ErrKeyNotFound)
	}
	return secretKey, nil
}

// AccessKeys returns the known access keys in sorted order.
func (s *MapSecretStore) AccessKeys() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
