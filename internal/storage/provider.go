// Package storage provides the durable key-value persistence layer.
// The ledger serializes each collection as one JSON document under a
// stable key; providers only move bytes.
package storage

import "fmt"

// Provider is the persistence contract the ledger consumes.
type Provider interface {
	// Load returns the bytes stored under key. The second return is
	// false when the key has never been written.
	Load(key string) ([]byte, bool, error)
	// Save durably stores data under key, replacing any prior value.
	Save(key string, data []byte) error
	// Keys lists all stored keys.
	Keys() ([]string, error)
}

// PersistenceError wraps a storage backend failure. Load/save failures
// must surface to the caller rather than silently dropping writes.
type PersistenceError struct {
	Op  string // "load" or "save"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
