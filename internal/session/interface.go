package session

import "context"

// Store is the capability set the Admission Gateway and Notifier depend on,
// letting tests substitute an in-memory fake for the Redis-backed Binding.
type Store interface {
	Open(ctx context.Context, endpoint, playerID string) error
	Close(ctx context.Context, endpoint string) error
	Lookup(ctx context.Context, playerID string) (endpoint string, ok bool, err error)
}

var _ Store = (*Binding)(nil)
