package api

import "time"

type (
	// StepStatus is the recorded outcome of a single step
	StepStatus string

	// StepResult is the recorded outcome of one step of a workorder
	StepResult struct {
		Step       StepCode       `json:"step,omitempty"`
		Status     StepStatus     `json:"status"`
		Submitter  UserID         `json:"submitter,omitempty"`
		Submission map[string]any `json:"submission,omitempty"`
		Timestamp  time.Time      `json:"timestamp,omitzero"`
	}

	// StepResults maps step codes to their recorded outcomes
	StepResults map[StepCode]*StepResult

	// Result is the recorded progress of a workorder through its workflow
	Result struct {
		ID            ResultID    `json:"id"`
		WorkorderID   WorkorderID `json:"workorderId"`
		Status        Status      `json:"status"`
		NextStepIndex int         `json:"nextStepIndex"`
		StepResults   StepResults `json:"stepResults"`
	}
)

// StepComplete marks a step whose work has been finished
const StepComplete StepStatus = "complete"

// IsComplete reports whether the step result is present and complete
func (r *StepResult) IsComplete() bool {
	return r != nil && r.Status == StepComplete
}

// HasProgress reports whether any step outcome has been recorded
func (r *Result) HasProgress() bool {
	return r != nil && len(r.StepResults) > 0
}
