package api

type (
	// StatusEvent announces the derived status of a workorder after its
	// result changed
	StatusEvent struct {
		WorkorderID WorkorderID  `json:"workorder_id"`
		ResultID    ResultID     `json:"result_id"`
		Status      Status       `json:"status"`
		Review      StatusReview `json:"review"`
		Timestamp   int64        `json:"timestamp"`
	}

	// SubscribeRequest is sent by WebSocket clients to choose the workorders
	// whose status events they receive
	SubscribeRequest struct {
		Type string             `json:"type"`
		Data ClientSubscription `json:"data"`
	}

	// ClientSubscription lists the workorders a WebSocket client follows. An
	// empty list follows nothing
	ClientSubscription struct {
		WorkorderIDs []WorkorderID `json:"workorder_ids,omitempty"`
	}

	// SubscribedResult acknowledges a subscription
	SubscribedResult struct {
		Type         string        `json:"type"`
		WorkorderIDs []WorkorderID `json:"workorder_ids"`
	}
)
