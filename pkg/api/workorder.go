package api

type (
	// Workorder is an assignable unit of work following a Workflow
	Workorder struct {
		ID         WorkorderID `json:"id"`
		WorkflowID WorkflowID  `json:"workflowId"`
		Assignee   UserID      `json:"assignee,omitempty"`
		Title      string      `json:"title,omitempty"`
		Type       string      `json:"type,omitempty"`
		Status     Status      `json:"status,omitempty"`
	}

	// WorkorderSummary bundles a workorder with its workflow and result. The
	// result is nil when no progress has been recorded
	WorkorderSummary struct {
		Workorder *Workorder `json:"workorder"`
		Workflow  *Workflow  `json:"workflow"`
		Result    *Result    `json:"result"`
	}
)

// IsAssigned reports whether the workorder has an assignee
func (w *Workorder) IsAssigned() bool {
	return w != nil && w.Assignee != ""
}
