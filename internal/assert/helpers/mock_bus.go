package helpers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kode4food/wfm/pkg/api"
	"github.com/kode4food/wfm/pkg/bus"
)

type (
	// MockBus is a bus.Requester that answers from canned responses and
	// records every request it receives
	MockBus struct {
		responses map[api.Topic]any
		errors    map[api.Topic]error
		delays    map[api.Topic]time.Duration
		requests  []*bus.Request
		mu        sync.Mutex
	}
)

var _ bus.Requester = (*MockBus)(nil)

// NewMockBus creates a mock bus with no configured responses
func NewMockBus() *MockBus {
	return &MockBus{
		responses: map[api.Topic]any{},
		errors:    map[api.Topic]error{},
		delays:    map[api.Topic]time.Duration{},
	}
}

// Request records the request and returns the configured response or error.
// Topics without a configured response reply with JSON null
func (b *MockBus) Request(
	ctx context.Context, req *bus.Request,
) (json.RawMessage, error) {
	b.mu.Lock()
	b.requests = append(b.requests, req)
	delay := b.delays[req.Topic]
	err, hasErr := b.errors[req.Topic]
	res, hasRes := b.responses[req.Topic]
	b.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if hasErr {
		return nil, err
	}
	if !hasRes {
		return json.RawMessage("null"), nil
	}
	return json.Marshal(res)
}

// SetResponse configures the value returned for a topic
func (b *MockBus) SetResponse(t api.Topic, res any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[t] = res
}

// SetError configures the error returned for a topic
func (b *MockBus) SetError(t api.Topic, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errors[t] = err
}

// SetDelay delays every reply on a topic
func (b *MockBus) SetDelay(t api.Topic, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delays[t] = d
}

// GetRequests returns a copy of every request received so far
func (b *MockBus) GetRequests() []*bus.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	res := make([]*bus.Request, len(b.requests))
	copy(res, b.requests)
	return res
}

// GetTopics returns the topic of every request received so far, in order
func (b *MockBus) GetTopics() []api.Topic {
	b.mu.Lock()
	defer b.mu.Unlock()
	res := make([]api.Topic, len(b.requests))
	for i, r := range b.requests {
		res[i] = r.Topic
	}
	return res
}

// WasRequested returns whether any request was sent on the topic
func (b *MockBus) WasRequested(t api.Topic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.requests {
		if r.Topic == t {
			return true
		}
	}
	return false
}
