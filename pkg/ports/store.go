package ports

import (
	"context"
)

// StateStore persists serialized session state under a key.
// Stores are byte-oriented: decoding, and recovering from records that no
// longer decode, is the persistence adapter's job.
type StateStore interface {
	// Save persists the record for a given key, replacing any previous one.
	Save(ctx context.Context, key string, record []byte) error

	// Load retrieves the record for a given key.
	// Returns domain.ErrSessionNotFound if the key does not exist.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the record for a given key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every stored key.
	List(ctx context.Context) ([]string, error)
}
