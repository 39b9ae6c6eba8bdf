package docrag

import "context"

// CorpusRegistry is the durable mapping from human-chosen corpus labels to
// corpus handles. Every mutation is persisted before it returns.
type CorpusRegistry interface {
	// Lookup returns the handle registered for label.
	Lookup(label string) (handle string, ok bool)

	// Labels returns all registered labels in sorted order.
	Labels() []string

	// Register maps label to handle. Re-registering the same pair is a no-op.
	// Returns ECONFLICT if label already maps to a different handle.
	Register(ctx context.Context, label, handle string) error

	// Unregister removes label. Returns ENOTFOUND if it is not registered.
	Unregister(ctx context.Context, label string) error
}
