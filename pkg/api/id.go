package api

type (
	// WorkflowID is a unique identifier for a workflow definition
	WorkflowID string

	// WorkorderID is a unique identifier for a workorder
	WorkorderID string

	// ResultID is a unique identifier for a workorder result
	ResultID string

	// UserID is a unique identifier for a user
	UserID string

	// StepCode identifies a step within a workflow and keys its step result
	StepCode string
)
