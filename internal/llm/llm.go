package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrRateLimited   = errors.New("provider rate limit exceeded")
	ErrQuotaExceeded = errors.New("provider quota exhausted")
	ErrUnauthorized  = errors.New("provider rejected credentials")
	ErrBadRequest    = errors.New("provider rejected request")
	ErrServer        = errors.New("provider server error")
	ErrEmptyResponse = errors.New("provider returned an empty response")
)

type ChatRequest struct {
	SystemPrompt string
	UserPrompt   string

	// SchemaName and Schema constrain the reply to a JSON document.
	SchemaName string
	Schema     map[string]any
}

type ChatResponse struct {
	Content string
	Model   string
}

//go:generate go run go.uber.org/mock/mockgen -source=llm.go -destination=mocks/mock.go
type Client interface {
	// ChatComplete sends a system and user prompt and returns the raw reply content.
	ChatComplete(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Model is the configured model identifier.
	Model() string
}

// APIError carries the HTTP status of a failed provider call.
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%v (status %d): %s", e.Err, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is a provider throttling error.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsPermanent reports errors that will not go away by retrying.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrQuotaExceeded) || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrBadRequest)
}
