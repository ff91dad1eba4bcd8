package storefront

import (
	"fmt"
	"strings"
)

// ApplicationError is a cart endpoint reporting a failure in its body.
// Description is meant for the shopper.
type ApplicationError struct {
	Status      string
	Message     string
	Description string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("cart error %s: %s", e.Status, e.Description)
}

// UserMessage returns the text shown in the cart error region.
func (e *ApplicationError) UserMessage() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Message
}

// TransportError is a network failure or a non-OK response without an
// application error body.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to make request: %v", e.Err)
	}
	return fmt.Sprintf("API request failed: %d - %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newApplicationError(p errorPayload) *ApplicationError {
	return &ApplicationError{
		Status:      strings.Trim(string(p.Status), `"`),
		Message:     p.Message,
		Description: p.Description,
	}
}
