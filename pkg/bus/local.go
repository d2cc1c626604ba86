package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/wfm/pkg/api"
	"github.com/kode4food/wfm/pkg/log"
)

type (
	// Local is an in-process bus. Each handled topic gets its own caravan
	// topic, drained sequentially by a single goroutine. All replies travel
	// over one shared reply topic, read by a single dispatcher that hands
	// each reply to the call waiting for it
	Local struct {
		ctx     context.Context
		cancel  context.CancelFunc
		routes  map[api.Topic]*route
		replies topic.Topic[*answer]
		inbox   topic.Consumer[*answer]
		pending map[string]chan *Reply
		done    chan struct{}
		wg      sync.WaitGroup
		mu      sync.RWMutex
		closed  bool
	}

	route struct {
		prod    topic.Producer[*call]
		cons    topic.Consumer[*call]
		replies topic.Producer[*answer]
		handler Handler
	}

	// call and answer carry a key unique to one Request, so replies never
	// depend on the correlation ID, which reads share per entity
	call struct {
		key string
		env *Envelope
	}

	answer struct {
		key string
		rep *Reply
	}
)

var _ Bus = (*Local)(nil)

// NewLocal creates an in-process bus
func NewLocal() *Local {
	ctx, cancel := context.WithCancel(context.Background())
	replies := caravan.NewTopic[*answer]()
	b := &Local{
		ctx:     ctx,
		cancel:  cancel,
		routes:  map[api.Topic]*route{},
		replies: replies,
		inbox:   replies.NewConsumer(),
		pending: map[string]chan *Reply{},
		done:    make(chan struct{}),
	}
	b.wg.Go(b.dispatch)
	return b
}

// Handle registers the handler for a topic and starts draining its requests
func (b *Local) Handle(t api.Topic, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	if _, ok := b.routes[t]; ok {
		return fmt.Errorf("%w: %s", ErrHandlerExists, t)
	}

	queue := caravan.NewTopic[*call]()
	r := &route{
		prod:    queue.NewProducer(),
		cons:    queue.NewConsumer(),
		replies: b.replies.NewProducer(),
		handler: h,
	}
	b.routes[t] = r
	b.wg.Go(func() {
		b.serve(t, r)
	})
	return nil
}

// Request publishes the request on its topic and waits for its reply
func (b *Local) Request(
	ctx context.Context, req *Request,
) (json.RawMessage, error) {
	env, err := NewEnvelope(req)
	if err != nil {
		return nil, err
	}

	key := uuid.NewString()
	wait, err := b.send(ctx, req.Topic, &call{key: key, env: env})
	if err != nil {
		return nil, err
	}
	defer b.forget(key)

	select {
	case rep := <-wait:
		return rep.result(req.Topic)
	case <-b.done:
		return nil, ErrBusClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops all handlers. Pending requests fail with ErrBusClosed
func (b *Local) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.cancel()
	close(b.done)
	b.mu.Unlock()

	b.wg.Wait()
	for _, r := range b.routes {
		r.prod.Close()
		r.replies.Close()
		r.cons.Close()
	}
	b.inbox.Close()
	return nil
}

func (b *Local) send(
	ctx context.Context, t api.Topic, c *call,
) (<-chan *Reply, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBusClosed
	}
	r, ok := b.routes[t]
	if !ok {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNoResponder, t)
	}

	// registered before sending, so the dispatcher can never miss the reply
	wait := make(chan *Reply, 1)
	b.pending[c.key] = wait
	b.mu.Unlock()

	select {
	case r.prod.Send() <- c:
		return wait, nil
	case <-b.done:
		b.forget(c.key)
		return nil, ErrBusClosed
	case <-ctx.Done():
		b.forget(c.key)
		return nil, ctx.Err()
	}
}

func (b *Local) forget(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, key)
}

func (b *Local) dispatch() {
	for {
		select {
		case <-b.done:
			return
		case a, ok := <-b.inbox.Receive():
			if !ok {
				return
			}
			b.mu.Lock()
			wait, ok := b.pending[a.key]
			delete(b.pending, a.key)
			b.mu.Unlock()
			if ok {
				wait <- a.rep
			}
		}
	}
}

func (b *Local) serve(t api.Topic, r *route) {
	for {
		select {
		case <-b.done:
			return
		case c, ok := <-r.cons.Receive():
			if !ok {
				return
			}
			rep := Invoke(b.ctx, r.handler, c.env)
			if rep.Error != "" {
				slog.Debug("Request failed",
					log.Topic(t),
					log.CorrelationID(c.env.ID),
					log.ErrorString(rep.Error))
			}
			message.Send(r.replies, &answer{key: c.key, rep: rep})
		}
	}
}
