package repository

import (
	"errors"

	"wision/internal/kvstore"
)

// ErrStale is returned by versioned writes when the document changed since it was read
var ErrStale = kvstore.ErrVersionMismatch

// absent reports whether err means the key does not exist
func absent(err error) bool {
	return errors.Is(err, kvstore.ErrNotFound)
}
