package bus_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/wfm/pkg/api"
	"github.com/kode4food/wfm/pkg/bus"
)

type echoPayload struct {
	Value string `json:"value"`
}

func TestLocalRoundTrip(t *testing.T) {
	b := bus.NewLocal()
	defer func() { _ = b.Close() }()

	testRoundTrip(t, b)
}

func TestLocalRemoteError(t *testing.T) {
	b := bus.NewLocal()
	defer func() { _ = b.Close() }()

	testRemoteError(t, b)
}

func TestLocalNotFoundSurvives(t *testing.T) {
	b := bus.NewLocal()
	defer func() { _ = b.Close() }()

	testNotFound(t, b)
}

func TestLocalHandlerPanic(t *testing.T) {
	b := bus.NewLocal()
	defer func() { _ = b.Close() }()

	testHandlerPanic(t, b)
}

func TestLocalNoResponder(t *testing.T) {
	b := bus.NewLocal()
	defer func() { _ = b.Close() }()

	_, err := b.Request(context.Background(), &bus.Request{
		Topic: api.TopicListWorkflows,
	})
	assert.ErrorIs(t, err, bus.ErrNoResponder)
}

func TestLocalDuplicateHandler(t *testing.T) {
	b := bus.NewLocal()
	defer func() { _ = b.Close() }()

	testDuplicateHandler(t, b)
}

func TestLocalRepeatedCorrelationID(t *testing.T) {
	b := bus.NewLocal()
	defer func() { _ = b.Close() }()

	testRepeatedCorrelationID(t, b)
}

func TestLocalConcurrentRequests(t *testing.T) {
	b := bus.NewLocal()
	defer func() { _ = b.Close() }()

	testConcurrentRequests(t, b)
}

func TestLocalContextCancelled(t *testing.T) {
	b := bus.NewLocal()
	defer func() { _ = b.Close() }()

	release := make(chan struct{})
	defer close(release)

	err := b.Handle(api.TopicReadWorkflow,
		func(context.Context, json.RawMessage) (any, error) {
			<-release
			return nil, nil
		},
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(
		context.Background(), 50*time.Millisecond,
	)
	defer cancel()

	_, err = b.Request(ctx, &bus.Request{Topic: api.TopicReadWorkflow})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocalClosed(t *testing.T) {
	b := bus.NewLocal()
	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close())

	err := b.Handle(api.TopicListWorkflows,
		func(context.Context, json.RawMessage) (any, error) {
			return nil, nil
		},
	)
	assert.ErrorIs(t, err, bus.ErrBusClosed)

	_, err = b.Request(context.Background(), &bus.Request{
		Topic: api.TopicListWorkflows,
	})
	assert.ErrorIs(t, err, bus.ErrBusClosed)
}

func TestNewEnvelope(t *testing.T) {
	env, err := bus.NewEnvelope(&bus.Request{
		Topic:         api.TopicCreateResult,
		Payload:       echoPayload{Value: "x"},
		CorrelationID: "corr-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "corr-1", env.ID)
	assert.Equal(t, "wfm:results:create", env.Topic)
	assert.JSONEq(t, `{"value":"x"}`, string(env.Payload))

	env, err = bus.NewEnvelope(&bus.Request{Topic: api.TopicListResults})
	require.NoError(t, err)
	assert.NotEmpty(t, env.ID)
	assert.Nil(t, env.Payload)

	_, err = bus.NewEnvelope(&bus.Request{
		Topic:   api.TopicListResults,
		Payload: make(chan int),
	})
	assert.Error(t, err)
}

func TestReplyChannel(t *testing.T) {
	rep := &bus.Reply{ID: "id"}
	assert.Equal(t,
		"done:wfm:results:list:id", rep.Channel(api.TopicListResults),
	)
	rep.Error = "boom"
	assert.Equal(t,
		"error:wfm:results:list:id", rep.Channel(api.TopicListResults),
	)
}

func testRoundTrip(t *testing.T, b bus.Bus) {
	t.Helper()

	err := b.Handle(api.TopicCreateWorkflow,
		func(_ context.Context, data json.RawMessage) (any, error) {
			var in echoPayload
			if err := json.Unmarshal(data, &in); err != nil {
				return nil, err
			}
			return echoPayload{Value: "echo:" + in.Value}, nil
		},
	)
	require.NoError(t, err)

	data, err := b.Request(context.Background(), &bus.Request{
		Topic:   api.TopicCreateWorkflow,
		Payload: echoPayload{Value: "hello"},
	})
	require.NoError(t, err)

	var out echoPayload
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "echo:hello", out.Value)
}

func testRemoteError(t *testing.T, b bus.Bus) {
	t.Helper()

	err := b.Handle(api.TopicUpdateResult,
		func(context.Context, json.RawMessage) (any, error) {
			return nil, errors.New("update rejected")
		},
	)
	require.NoError(t, err)

	_, err = b.Request(context.Background(), &bus.Request{
		Topic:         api.TopicUpdateResult,
		CorrelationID: "corr-42",
	})
	require.Error(t, err)

	var remote *bus.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "update rejected", remote.Message)
	assert.Equal(t, "corr-42", remote.ID)
	assert.Equal(t, api.TopicUpdateResult, remote.Topic)
	assert.False(t, errors.Is(err, bus.ErrNotFound))
}

func testNotFound(t *testing.T, b bus.Bus) {
	t.Helper()

	err := b.Handle(api.TopicReadWorkorder,
		func(context.Context, json.RawMessage) (any, error) {
			return nil, fmt.Errorf("%w: workorder wo-1", bus.ErrNotFound)
		},
	)
	require.NoError(t, err)

	_, err = b.Request(context.Background(), &bus.Request{
		Topic: api.TopicReadWorkorder,
	})
	assert.ErrorIs(t, err, bus.ErrNotFound)
	assert.Contains(t, err.Error(), "wo-1")
}

func testHandlerPanic(t *testing.T, b bus.Bus) {
	t.Helper()

	err := b.Handle(api.TopicRemoveWorkflow,
		func(context.Context, json.RawMessage) (any, error) {
			panic("kaboom")
		},
	)
	require.NoError(t, err)

	_, err = b.Request(context.Background(), &bus.Request{
		Topic: api.TopicRemoveWorkflow,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), bus.ErrHandlerPanicked.Error())
	assert.Contains(t, err.Error(), "kaboom")
}

func testDuplicateHandler(t *testing.T, b bus.Bus) {
	t.Helper()

	h := func(context.Context, json.RawMessage) (any, error) {
		return nil, nil
	}
	require.NoError(t, b.Handle(api.TopicListResults, h))
	assert.ErrorIs(t, b.Handle(api.TopicListResults, h), bus.ErrHandlerExists)
}

func testConcurrentRequests(t *testing.T, b bus.Bus) {
	t.Helper()

	err := b.Handle(api.TopicReadResult,
		func(_ context.Context, data json.RawMessage) (any, error) {
			var in echoPayload
			if err := json.Unmarshal(data, &in); err != nil {
				return nil, err
			}
			return in, nil
		},
	)
	require.NoError(t, err)

	const count = 20
	var wg sync.WaitGroup
	errs := make(chan error, count)
	for i := range count {
		wg.Go(func() {
			want := fmt.Sprintf("value-%d", i)
			data, err := b.Request(context.Background(), &bus.Request{
				Topic:   api.TopicReadResult,
				Payload: echoPayload{Value: want},
			})
			if err != nil {
				errs <- err
				return
			}
			var out echoPayload
			if err := json.Unmarshal(data, &out); err != nil {
				errs <- err
				return
			}
			if out.Value != want {
				errs <- fmt.Errorf("got %s, want %s", out.Value, want)
			}
		})
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func testRepeatedCorrelationID(t *testing.T, b bus.Bus) {
	t.Helper()

	count := 0
	err := b.Handle(api.TopicReadWorkflow,
		func(context.Context, json.RawMessage) (any, error) {
			count++
			return count, nil
		},
	)
	require.NoError(t, err)

	for i := range 25 {
		data, err := b.Request(context.Background(), &bus.Request{
			Topic:         api.TopicReadWorkflow,
			Payload:       "wf-1",
			CorrelationID: "wf-1",
		})
		require.NoError(t, err)

		var got int
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, i+1, got, "request %d", i)
	}
}
