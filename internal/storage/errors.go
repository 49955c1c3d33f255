package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors. Backends wrap them in *StorageError; match with errors.Is.
var (
	ErrNotFound     = errors.New("object not found")
	ErrKeyExists    = errors.New("object already exists")
	ErrInvalidKey   = errors.New("invalid storage key")
	ErrTooLarge     = errors.New("object exceeds size limit")
	ErrAccessDenied = errors.New("access denied")
)

// StorageError records the backend operation and key that failed.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsNotFound reports whether err means the object does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsTooLarge reports whether err means a Put exceeded PutOptions.MaxSize.
// Retrying the same upload cannot succeed.
func IsTooLarge(err error) bool { return errors.Is(err, ErrTooLarge) }
