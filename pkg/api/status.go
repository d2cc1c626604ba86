package api

type (
	// Status is the display status of a workorder
	Status string

	// StatusReview is the outcome of reviewing a result against its steps.
	// NextStepIndex equals the number of steps when Complete is set, and is
	// zero when nothing has been recorded yet
	StatusReview struct {
		NextStepIndex int  `json:"nextStepIndex"`
		Complete      bool `json:"complete"`
	}
)

const (
	StatusNew        Status = "New"
	StatusUnassigned Status = "Unassigned"
	StatusPending    Status = "In Progress"
	StatusComplete   Status = "Complete"
)
