// Package profile holds the per-identity profile record and the stores that
// persist it.
package profile

import "context"

// Store persists one Record per identity, keyed by uid.
type Store interface {
	// Get returns ErrNotFound when no record exists for uid.
	Get(ctx context.Context, uid string) (*Record, error)
	// Create writes r only when no record exists for r.UID and reports
	// whether it did. An existing record is left untouched.
	Create(ctx context.Context, r *Record) (bool, error)
	// Set replaces the whole record.
	Set(ctx context.Context, r *Record) error
	// Merge writes only the named fields. The record must exist.
	Merge(ctx context.Context, uid string, fields Fields) error
}
