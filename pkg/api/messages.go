package api

type (
	// WorkflowsListResponse contains a list of workflow definitions
	WorkflowsListResponse struct {
		Workflows []*Workflow `json:"workflows"`
		Count     int         `json:"count"`
	}

	// WorkordersListResponse contains a list of workorders
	WorkordersListResponse struct {
		Workorders []*Workorder `json:"workorders"`
		Count      int          `json:"count"`
	}

	// ResultsListResponse contains a list of results
	ResultsListResponse struct {
		Results []*Result `json:"results"`
		Count   int       `json:"count"`
	}

	// WorkorderStatusResponse is a workorder summary with its derived status
	WorkorderStatusResponse struct {
		*WorkorderSummary
		Review *StatusReview `json:"review"`
		Status Status        `json:"status"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service string `json:"service"`
		Status  string `json:"status"`
	}

	// MessageResponse contains a simple message string
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}
)
