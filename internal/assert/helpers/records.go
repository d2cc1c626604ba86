package helpers

import "github.com/kode4food/wfm/pkg/api"

// NewTestWorkflow creates a workflow with one step per code
func NewTestWorkflow(id api.WorkflowID, codes ...api.StepCode) *api.Workflow {
	steps := make([]*api.Step, len(codes))
	for i, code := range codes {
		steps[i] = &api.Step{
			Code: code,
			Name: string(code),
		}
	}
	return &api.Workflow{
		ID:    id,
		Name:  string(id),
		Steps: steps,
	}
}

// NewTestWorkorder creates a workorder following the given workflow
func NewTestWorkorder(
	id api.WorkorderID, wfID api.WorkflowID, assignee api.UserID,
) *api.Workorder {
	return &api.Workorder{
		ID:         id,
		WorkflowID: wfID,
		Assignee:   assignee,
		Title:      string(id),
	}
}

// NewTestResult creates a result for a workorder where each listed step is
// recorded as complete
func NewTestResult(
	id api.ResultID, woID api.WorkorderID, complete ...api.StepCode,
) *api.Result {
	res := &api.Result{
		ID:          id,
		WorkorderID: woID,
		Status:      api.StatusNew,
		StepResults: api.StepResults{},
	}
	for _, code := range complete {
		res.StepResults[code] = &api.StepResult{
			Step:   code,
			Status: api.StepComplete,
		}
	}
	return res
}
