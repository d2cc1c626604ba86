package api

// UserProfile describes the user the mediator is acting on behalf of
type UserProfile struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}
