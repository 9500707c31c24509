package notifier

import "sync"

// FakePusher records sends for assertions and lets tests control the
// delivered/error outcome per endpoint.
type FakePusher struct {
	mu     sync.Mutex
	Sent   []FakeSend
	Refuse map[string]bool // endpoints that should report ok=false
	ErrFor map[string]error
}

type FakeSend struct {
	Endpoint string
	Payload  any
}

func NewFakePusher() *FakePusher {
	return &FakePusher{
		Refuse: make(map[string]bool),
		ErrFor: make(map[string]error),
	}
}

func (f *FakePusher) Send(endpoint string, payload any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sent = append(f.Sent, FakeSend{Endpoint: endpoint, Payload: payload})
	if err, ok := f.ErrFor[endpoint]; ok {
		return false, err
	}
	if f.Refuse[endpoint] {
		return false, nil
	}
	return true, nil
}

var _ Pusher = (*FakePusher)(nil)
