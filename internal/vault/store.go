package vault

import "context"

// MetadataStore owns the durable per-object record. Implementations must
// persist before reporting success and write atomically with respect to
// readers: a concurrent Load never observes a half-written record. There is
// no caching layer; every Load re-reads durable state because the sweep may
// mutate records concurrently with a serve.
type MetadataStore interface {
	// Load returns the record for id, ErrNotFound when none exists, or
	// ErrCorruptRecord when one exists but cannot be decoded.
	Load(ctx context.Context, id string) (*Object, error)

	// Save persists the record durably and atomically. Saving an existing
	// id replaces the record.
	Save(ctx context.Context, obj *Object) error

	// List enumerates every object id currently known, a flat namespace
	// with no ordering guarantee.
	List(ctx context.Context) ([]string, error)

	// Close releases any underlying resources.
	Close() error
}
