package kv

import "context"

// DB is a key value database
type DB interface {
	// Tx executes the given function within a transaction. Read-only
	// transactions observe a stable point-in-time snapshot of the keyspace
	// when SnapshotReads reports true.
	Tx(ctx context.Context, isUpdate bool, fn func(Tx) error) error
	// Batch returns a write batch for bulk loads
	Batch() Batch
	// SnapshotReads reports whether read transactions observe a consistent
	// snapshot. A provider answering false offers only best effort consistency
	// between reads issued in the same transaction; callers are warned at
	// configuration time, not per call.
	SnapshotReads() bool
	// DropPrefix removes all keys under the given prefixes
	DropPrefix(ctx context.Context, prefix ...[]byte) error
	// Close closes the database
	Close(ctx context.Context) error
}

// IterOpts are options when creating an iterator
type IterOpts struct {
	Prefix     []byte `json:"prefix"`
	Seek       []byte `json:"seek"`
	UpperBound []byte `json:"upper_bound"`
	Reverse    bool   `json:"reverse"`
}

// Tx is a transaction against a DB
type Tx interface {
	// Get returns the value for the key, or nil if the key does not exist
	Get(ctx context.Context, key []byte) ([]byte, error)
	// Set sets the value for the key
	Set(ctx context.Context, key, value []byte) error
	// Delete removes the key
	Delete(ctx context.Context, key []byte) error
	// NewIterator creates an iterator with the given options
	NewIterator(opts IterOpts) (Iterator, error)
}

// Iterator iterates over key value pairs
type Iterator interface {
	Valid() bool
	Key() []byte
	Value() ([]byte, error)
	Next() error
	Close()
}

// Batch is a set of writes flushed in a single round trip. A batch that is
// not flushed must be cancelled to release its resources; Cancel after a
// successful Flush is a no-op.
type Batch interface {
	Set(key, value []byte) error
	Delete(key []byte) error
	Flush(ctx context.Context) error
	Cancel()
}
