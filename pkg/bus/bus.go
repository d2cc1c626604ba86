package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kode4food/wfm/pkg/api"
)

type (
	// Request describes a single call on the bus. When CorrelationID is
	// empty the transport assigns one
	Request struct {
		Payload       any
		Topic         api.Topic
		CorrelationID string
	}

	// Requester sends a request and waits for its single reply
	Requester interface {
		Request(context.Context, *Request) (json.RawMessage, error)
	}

	// Handler answers requests arriving on a topic
	Handler func(context.Context, json.RawMessage) (any, error)

	// Responder routes requests arriving on a topic to a Handler
	Responder interface {
		Handle(api.Topic, Handler) error
	}

	// Bus is a transport that can both issue and answer requests
	Bus interface {
		Requester
		Responder
		Close() error
	}

	// Envelope is the wire form of a request
	Envelope struct {
		ID      string          `json:"id"`
		Topic   string          `json:"topic"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	// Reply is the wire form of a response
	Reply struct {
		ID    string          `json:"id"`
		Topic string          `json:"topic"`
		Data  json.RawMessage `json:"data,omitempty"`
		Error string          `json:"error,omitempty"`
		Code  string          `json:"code,omitempty"`
	}

	// RemoteError is returned when the responder answered on the error
	// channel
	RemoteError struct {
		Topic   api.Topic
		ID      string
		Message string
		Code    string
	}
)

const codeNotFound = "not_found"

var (
	ErrNoResponder     = errors.New("no responder for topic")
	ErrHandlerExists   = errors.New("handler already registered for topic")
	ErrBusClosed       = errors.New("bus closed")
	ErrRequestTimeout  = errors.New("request timed out")
	ErrHandlerPanicked = errors.New("handler panicked")
	ErrMalformedReply  = errors.New("malformed reply")
	ErrMalformedInput  = errors.New("malformed request")

	// ErrNotFound may be wrapped by handlers to signal a missing record. It
	// survives the trip across the bus, so errors.Is works on the requester
	ErrNotFound = errors.New("record not found")
)

// Error implements error
func (e *RemoteError) Error() string {
	return e.Message
}

// Is reports whether the remote failure corresponds to a known sentinel
func (e *RemoteError) Is(target error) bool {
	return target == ErrNotFound && e.Code == codeNotFound
}

// Channel returns the reply channel for the topic the request arrived on
func (r *Reply) Channel(t api.Topic) string {
	if r.Error != "" {
		return t.Error(r.ID)
	}
	return t.Done(r.ID)
}

func (r *Reply) result(t api.Topic) (json.RawMessage, error) {
	if r.Error != "" {
		return nil, &RemoteError{
			Topic:   t,
			ID:      r.ID,
			Message: r.Error,
			Code:    r.Code,
		}
	}
	return r.Data, nil
}

// NewEnvelope encodes a request for the wire, assigning a correlation ID
// when the request does not carry one
func NewEnvelope(req *Request) (*Envelope, error) {
	id := req.CorrelationID
	if id == "" {
		id = uuid.NewString()
	}
	res := &Envelope{
		ID:    id,
		Topic: req.Topic.String(),
	}
	if req.Payload == nil {
		return res, nil
	}
	data, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, err
	}
	res.Payload = data
	return res, nil
}

// Invoke runs a handler for an envelope and captures its outcome as a Reply
func Invoke(ctx context.Context, h Handler, env *Envelope) (rep *Reply) {
	rep = &Reply{
		ID:    env.ID,
		Topic: env.Topic,
	}
	defer func() {
		if r := recover(); r != nil {
			rep.Data = nil
			rep.Error = fmt.Sprintf("%s: %v", ErrHandlerPanicked, r)
		}
	}()

	res, err := h(ctx, env.Payload)
	if err != nil {
		rep.Error = err.Error()
		if errors.Is(err, ErrNotFound) {
			rep.Code = codeNotFound
		}
		return rep
	}

	data, err := json.Marshal(res)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	rep.Data = data
	return rep
}
