package client

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kode4food/wfm/pkg/api"
	"github.com/kode4food/wfm/pkg/bus"
	"github.com/kode4food/wfm/pkg/status"
)

// GetWorkorderSummary reads a workorder, then concurrently fetches its
// workflow and its result. A failed workorder read is returned as is and
// nothing else is fetched; otherwise the first failure of the two dependent
// fetches is returned
func (c *Client) GetWorkorderSummary(
	ctx context.Context, id api.WorkorderID,
) (*api.WorkorderSummary, error) {
	wo, err := c.ReadWorkorder(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, fmt.Errorf("%w: workorder %s", bus.ErrNotFound, id)
	}

	res := &api.WorkorderSummary{Workorder: wo}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wf, err := c.ReadWorkflow(gctx, wo.WorkflowID)
		res.Workflow = wf
		return err
	})
	g.Go(func() error {
		r, err := c.GetResultByWorkorderID(gctx, id)
		res.Result = r
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// GetResultByWorkorderID lists every result and returns the first one that
// belongs to the workorder. It returns nil without an error when none does
func (c *Client) GetResultByWorkorderID(
	ctx context.Context, id api.WorkorderID,
) (*api.Result, error) {
	results, err := c.ListResults(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		if r != nil && r.WorkorderID == id {
			return r, nil
		}
	}
	return nil, nil
}

// GetWorkorderStatus fetches the workorder summary and derives its status
func (c *Client) GetWorkorderStatus(
	ctx context.Context, id api.WorkorderID,
) (*api.WorkorderStatusResponse, error) {
	sum, err := c.GetWorkorderSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	return StatusOf(sum), nil
}

// StatusOf derives the status and review of a workorder summary. A summary
// without a workflow reviews against an empty step list
func StatusOf(sum *api.WorkorderSummary) *api.WorkorderStatusResponse {
	wf := sum.Workflow
	if wf == nil {
		wf = &api.Workflow{}
	}
	return &api.WorkorderStatusResponse{
		WorkorderSummary: sum,
		Review:           status.StepReview(wf.Steps, sum.Result),
		Status:           status.CheckStatus(sum.Workorder, wf, sum.Result),
	}
}
