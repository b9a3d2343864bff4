package chroma

import "fmt"

// APIError represents an error from the Chroma API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Chroma API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}
