package models

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	Category string `json:"category,omitempty"`
}
