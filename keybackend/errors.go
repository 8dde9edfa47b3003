package keybackend

import "errors"

var (
	// ErrKeyNotFound is returned when the access key does not exist in the store.
	ErrKeyNotFound = errors.New("access key not found")
	// ErrUnsupportedFormat is returned for key files that are neither JSON nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported key file format")
)
