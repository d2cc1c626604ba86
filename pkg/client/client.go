package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kode4food/wfm/pkg/api"
	"github.com/kode4food/wfm/pkg/bus"
)

type (
	// Client forwards workflow, workorder, result and user operations to
	// the mediator bus
	Client struct {
		bus   bus.Requester
		newID func() string
	}

	// Option configures a Client
	Option func(*Client)
)

var ErrDecodeResponse = errors.New("failed to decode response")

// New creates a Client that sends its requests over the provided bus
func New(b bus.Requester, opts ...Option) *Client {
	c := &Client{
		bus:   b,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithCorrelationIDs replaces the generator used for correlation IDs on
// create and mutate operations
func WithCorrelationIDs(fn func() string) Option {
	return func(c *Client) {
		c.newID = fn
	}
}

// ListWorkflows returns every workflow definition
func (c *Client) ListWorkflows(ctx context.Context) ([]*api.Workflow, error) {
	return send[[]*api.Workflow](ctx, c, api.TopicListWorkflows, nil, "")
}

// CreateWorkflow creates a workflow definition
func (c *Client) CreateWorkflow(
	ctx context.Context, wf *api.Workflow,
) (*api.Workflow, error) {
	return send[*api.Workflow](
		ctx, c, api.TopicCreateWorkflow, wf, c.newID(),
	)
}

// ReadWorkflow returns the workflow definition with the given ID
func (c *Client) ReadWorkflow(
	ctx context.Context, id api.WorkflowID,
) (*api.Workflow, error) {
	return send[*api.Workflow](
		ctx, c, api.TopicReadWorkflow, id, string(id),
	)
}

// UpdateWorkflow replaces a workflow definition
func (c *Client) UpdateWorkflow(
	ctx context.Context, wf *api.Workflow,
) (*api.Workflow, error) {
	return send[*api.Workflow](
		ctx, c, api.TopicUpdateWorkflow, wf, c.newID(),
	)
}

// RemoveWorkflow removes a workflow definition and returns what was removed
func (c *Client) RemoveWorkflow(
	ctx context.Context, id api.WorkflowID,
) (*api.Workflow, error) {
	return send[*api.Workflow](
		ctx, c, api.TopicRemoveWorkflow, id, c.newID(),
	)
}

// ListResults returns every recorded result
func (c *Client) ListResults(ctx context.Context) ([]*api.Result, error) {
	return send[[]*api.Result](ctx, c, api.TopicListResults, nil, "")
}

// CreateResult records a new result
func (c *Client) CreateResult(
	ctx context.Context, res *api.Result,
) (*api.Result, error) {
	return send[*api.Result](
		ctx, c, api.TopicCreateResult, res, c.newID(),
	)
}

// UpdateResult replaces a recorded result
func (c *Client) UpdateResult(
	ctx context.Context, res *api.Result,
) (*api.Result, error) {
	return send[*api.Result](
		ctx, c, api.TopicUpdateResult, res, c.newID(),
	)
}

// ListWorkorders returns every workorder
func (c *Client) ListWorkorders(ctx context.Context) ([]*api.Workorder, error) {
	return send[[]*api.Workorder](ctx, c, api.TopicListWorkorders, nil, "")
}

// ReadWorkorder returns the workorder with the given ID
func (c *Client) ReadWorkorder(
	ctx context.Context, id api.WorkorderID,
) (*api.Workorder, error) {
	return send[*api.Workorder](
		ctx, c, api.TopicReadWorkorder, id, string(id),
	)
}

// UpdateWorkorder replaces a workorder, for example to change its assignee
func (c *Client) UpdateWorkorder(
	ctx context.Context, wo *api.Workorder,
) (*api.Workorder, error) {
	return send[*api.Workorder](
		ctx, c, api.TopicUpdateWorkorder, wo, c.newID(),
	)
}

// ReadUserProfile returns the profile of the current user
func (c *Client) ReadUserProfile(
	ctx context.Context,
) (*api.UserProfile, error) {
	return send[*api.UserProfile](ctx, c, api.TopicReadProfile, nil, "")
}

// CreateNewResult records an empty result for a workorder that has not
// started yet
func (c *Client) CreateNewResult(
	ctx context.Context, id api.WorkorderID,
) (*api.Result, error) {
	return c.CreateResult(ctx, &api.Result{
		WorkorderID:   id,
		Status:        api.StatusNew,
		NextStepIndex: 0,
		StepResults:   api.StepResults{},
	})
}

func send[T any](
	ctx context.Context, c *Client, t api.Topic, payload any, id string,
) (T, error) {
	var zero T
	data, err := c.bus.Request(ctx, &bus.Request{
		Topic:         t,
		Payload:       payload,
		CorrelationID: id,
	})
	if err != nil {
		return zero, err
	}
	if len(data) == 0 {
		return zero, nil
	}

	var res T
	if err := json.Unmarshal(data, &res); err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrDecodeResponse, t, err)
	}
	return res, nil
}
