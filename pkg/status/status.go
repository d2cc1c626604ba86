// Package status derives the display status of a workorder from the step
// outcomes recorded in its result
package status

import "github.com/kode4food/wfm/pkg/api"

type (
	// State distinguishes a result that has not started from one that is
	// part way through or finished
	State int

	// Progress is the tagged outcome of reviewing a result. Index is only
	// meaningful for InProgress, where it names the next incomplete step
	Progress struct {
		State State
		Index int
	}
)

const (
	// NotStarted means no step outcome has been recorded yet
	NotStarted State = iota

	// InProgress means at least one step is still incomplete
	InProgress

	// Completed means every step has a complete outcome
	Completed
)

// Review scans the steps in order and reports the first step without a
// complete outcome. A nil result or one with no step outcomes at all has not
// started. Steps must be a valid, possibly empty, sequence
func Review(steps []*api.Step, res *api.Result) Progress {
	if !res.HasProgress() {
		return Progress{State: NotStarted}
	}
	for i, s := range steps {
		if !res.StepResults[s.Code].IsComplete() {
			return Progress{State: InProgress, Index: i}
		}
	}
	return Progress{State: Completed, Index: len(steps)}
}

// StepReview reviews a result and returns the numeric form of its progress
func StepReview(steps []*api.Step, res *api.Result) *api.StatusReview {
	return Review(steps, res).StatusReview()
}

// CheckStatus derives the display status of a workorder. Completion takes
// precedence over assignment, so a finished workorder reports Complete even
// when unassigned. The workflow must not be nil
func CheckStatus(
	wo *api.Workorder, wf *api.Workflow, res *api.Result,
) api.Status {
	review := StepReview(wf.Steps, res)
	switch {
	case review.NextStepIndex >= len(wf.Steps)-1 && review.Complete:
		return api.StatusComplete
	case !wo.IsAssigned():
		return api.StatusUnassigned
	case review.NextStepIndex < 0:
		// unreachable: StepReview never yields a negative index
		return api.StatusNew
	default:
		return api.StatusPending
	}
}

// StatusReview maps the progress onto the numeric review, where zero is
// used both for "not started" and "first step is next"
func (p Progress) StatusReview() *api.StatusReview {
	switch p.State {
	case Completed:
		return &api.StatusReview{NextStepIndex: p.Index, Complete: true}
	case InProgress:
		return &api.StatusReview{NextStepIndex: p.Index}
	default:
		return &api.StatusReview{}
	}
}

// IsComplete reports whether every step has a complete outcome
func (p Progress) IsComplete() bool {
	return p.State == Completed
}

// String returns a readable name for the state
func (s State) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	default:
		return "not_started"
	}
}
