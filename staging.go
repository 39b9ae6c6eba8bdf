package docrag

import "context"

// StagingStore is intermediate blob storage used to hand text over to the
// corpus service's import call. Objects are addressed by key within a single
// bucket or namespace.
type StagingStore interface {
	// Put stores data under key and returns the address the corpus service
	// should import from (e.g. s3://bucket/key).
	Put(ctx context.Context, key string, data []byte, contentType string) (address string, err error)

	// Read returns the content stored at an address previously returned by Put.
	// Returns ENOTFOUND if nothing is stored there.
	Read(ctx context.Context, address string) ([]byte, error)

	// Delete removes the object stored under key.
	// Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys of all objects whose key starts with prefix.
	// An empty prefix lists the whole staging area.
	List(ctx context.Context, prefix string) ([]string, error)
}
