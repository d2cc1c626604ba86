package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kode4food/wfm/pkg/api"
	"github.com/kode4food/wfm/pkg/bus"
)

// Register installs a handler on the responder for every topic the Store
// answers
func (s *Store) Register(r bus.Responder) error {
	for t, h := range s.handlers() {
		if err := r.Handle(t, h); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) handlers() map[api.Topic]bus.Handler {
	return map[api.Topic]bus.Handler{
		api.TopicListWorkflows: func(
			context.Context, json.RawMessage,
		) (any, error) {
			return s.ListWorkflows(), nil
		},
		api.TopicCreateWorkflow: withRecord(s.CreateWorkflow),
		api.TopicReadWorkflow:   withID(s.ReadWorkflow),
		api.TopicUpdateWorkflow: withRecord(s.UpdateWorkflow),
		api.TopicRemoveWorkflow: withID(s.RemoveWorkflow),

		api.TopicListWorkorders: func(
			context.Context, json.RawMessage,
		) (any, error) {
			return s.ListWorkorders(), nil
		},
		api.TopicCreateWorkorder: withRecord(s.CreateWorkorder),
		api.TopicReadWorkorder:   withID(s.ReadWorkorder),
		api.TopicUpdateWorkorder: withRecord(s.UpdateWorkorder),

		api.TopicListResults: func(
			context.Context, json.RawMessage,
		) (any, error) {
			return s.ListResults(), nil
		},
		api.TopicCreateResult: withRecord(s.CreateResult),
		api.TopicReadResult:   withID(s.ReadResult),
		api.TopicUpdateResult: withRecord(s.UpdateResult),

		api.TopicReadProfile: func(
			context.Context, json.RawMessage,
		) (any, error) {
			return s.ReadProfile()
		},
	}
}

func withRecord[T any](fn func(*T) (*T, error)) bus.Handler {
	return func(_ context.Context, payload json.RawMessage) (any, error) {
		var rec T
		if err := decode(payload, &rec); err != nil {
			return nil, err
		}
		return fn(&rec)
	}
}

func withID[K ~string, T any](fn func(K) (*T, error)) bus.Handler {
	return func(_ context.Context, payload json.RawMessage) (any, error) {
		var id K
		if err := decode(payload, &id); err != nil {
			return nil, err
		}
		if id == "" {
			return nil, ErrIDRequired
		}
		return fn(id)
	}
}

func decode(payload json.RawMessage, dst any) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: empty payload", bus.ErrMalformedInput)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %w", bus.ErrMalformedInput, err)
	}
	return nil
}
