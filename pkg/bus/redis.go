package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"

	"github.com/kode4food/wfm/pkg/api"
	"github.com/kode4food/wfm/pkg/log"
)

type (
	// RedisConfig configures the Redis pub/sub transport
	RedisConfig struct {
		Addr           string
		Password       string
		Prefix         string
		DB             int
		RequestTimeout time.Duration
	}

	// Redis is a bus carried over Redis pub/sub channels. Requests are
	// published on the topic channel; replies arrive on the done or error
	// channel for the request's correlation ID
	Redis struct {
		client  redis.UniversalClient
		ctx     context.Context
		cancel  context.CancelFunc
		subs    map[api.Topic]*redis.PubSub
		prefix  string
		timeout time.Duration
		wg      sync.WaitGroup
		mu      sync.Mutex
		closed  bool
	}
)

const channelSep = ":"

var _ Bus = (*Redis)(nil)

// NewRedis connects a Redis bus using the provided configuration
func NewRedis(cfg RedisConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisWithClient(client, cfg.Prefix, cfg.RequestTimeout)
}

// NewRedisWithClient wraps an existing client. The bus takes ownership of
// the client and closes it on Close
func NewRedisWithClient(
	client redis.UniversalClient, prefix string, timeout time.Duration,
) *Redis {
	ctx, cancel := context.WithCancel(context.Background())
	return &Redis{
		client:  client,
		ctx:     ctx,
		cancel:  cancel,
		subs:    map[api.Topic]*redis.PubSub{},
		prefix:  prefix,
		timeout: timeout,
	}
}

// Ping checks connectivity with the Redis server
func (b *Redis) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Handle subscribes to the topic channel and answers each request with the
// handler
func (b *Redis) Handle(t api.Topic, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	if _, ok := b.subs[t]; ok {
		return fmt.Errorf("%w: %s", ErrHandlerExists, t)
	}

	sub := b.client.Subscribe(b.ctx, b.channel(t.String()))
	if _, err := sub.Receive(b.ctx); err != nil {
		_ = sub.Close()
		return err
	}
	b.subs[t] = sub

	ch := sub.Channel()
	b.wg.Go(func() {
		for msg := range ch {
			b.respond(t, h, msg)
		}
	})
	return nil
}

// Request publishes the request and waits for its reply, bounded by the
// configured request timeout
func (b *Redis) Request(
	ctx context.Context, req *Request,
) (json.RawMessage, error) {
	env, err := NewEnvelope(req)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	doneCh := b.channel(req.Topic.Done(env.ID))
	errCh := b.channel(req.Topic.Error(env.ID))
	sub := b.client.Subscribe(ctx, doneCh, errCh)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return nil, b.ctxError(ctx, err)
	}

	n, err := b.client.Publish(ctx, b.channel(env.Topic), data).Result()
	if err != nil {
		return nil, b.ctxError(ctx, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoResponder, req.Topic)
	}

	select {
	case msg, ok := <-sub.Channel():
		if !ok {
			return nil, ErrBusClosed
		}
		var rep Reply
		if err := json.Unmarshal([]byte(msg.Payload), &rep); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedReply, err)
		}
		if msg.Channel == errCh && rep.Error == "" {
			rep.Error = ErrMalformedReply.Error()
		}
		return rep.result(req.Topic)
	case <-ctx.Done():
		return nil, b.ctxError(ctx, ctx.Err())
	}
}

// Close unsubscribes all handlers and closes the Redis client
func (b *Redis) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.cancel()
	for _, sub := range b.subs {
		_ = sub.Close()
	}
	b.mu.Unlock()

	b.wg.Wait()
	return b.client.Close()
}

func (b *Redis) respond(t api.Topic, h Handler, msg *redis.Message) {
	payload := []byte(msg.Payload)
	id := gjson.GetBytes(payload, "id").String()
	if id == "" {
		slog.Warn("Dropping request without correlation ID",
			log.Topic(t))
		return
	}

	var rep *Reply
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		rep = malformed(t, id, err.Error())
	} else if pt, ok := api.ParseTopic(env.Topic); !ok || pt != t {
		rep = malformed(t, id, fmt.Sprintf("topic %q", env.Topic))
	} else {
		rep = Invoke(b.ctx, h, &env)
	}

	data, err := json.Marshal(rep)
	if err != nil {
		slog.Error("Failed to encode reply",
			log.Topic(t),
			log.CorrelationID(id),
			log.Error(err))
		return
	}

	ch := b.channel(rep.Channel(t))
	if err := b.client.Publish(b.ctx, ch, data).Err(); err != nil {
		slog.Error("Failed to publish reply",
			log.Topic(t),
			log.CorrelationID(id),
			log.Error(err))
	}
}

func malformed(t api.Topic, id, reason string) *Reply {
	return &Reply{
		ID:    id,
		Topic: t.String(),
		Error: fmt.Sprintf("%s: %s", ErrMalformedInput, reason),
	}
}

func (b *Redis) ctxError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrRequestTimeout, ctx.Err())
	}
	return err
}

func (b *Redis) channel(name string) string {
	if b.prefix == "" {
		return name
	}
	return b.prefix + channelSep + name
}
