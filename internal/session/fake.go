package session

import (
	"context"
	"sync"
)

// Fake is an in-memory Store used by Admission and Notifier tests.
type Fake struct {
	mu           sync.Mutex
	byEndpoint   map[string]string
	byPlayer     map[string]string
}

// NewFake returns an empty in-memory session-binding store.
func NewFake() *Fake {
	return &Fake{
		byEndpoint: make(map[string]string),
		byPlayer:   make(map[string]string),
	}
}

func (f *Fake) Open(ctx context.Context, endpoint, playerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byEndpoint[endpoint] = playerID
	f.byPlayer[playerID] = endpoint
	return nil
}

func (f *Fake) Close(ctx context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	playerID, ok := f.byEndpoint[endpoint]
	if !ok {
		return nil
	}
	delete(f.byEndpoint, endpoint)
	delete(f.byPlayer, playerID)
	return nil
}

func (f *Fake) Lookup(ctx context.Context, playerID string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	endpoint, ok := f.byPlayer[playerID]
	return endpoint, ok, nil
}

var _ Store = (*Fake)(nil)
