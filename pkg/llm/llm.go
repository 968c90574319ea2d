package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when the selected provider has no credential configured.
	ErrMissingAPIKey = errors.New("provider API key is not configured")
	// ErrNoStructuredOutput is returned when the provider answered successfully
	// but its response holds no structured report payload.
	ErrNoStructuredOutput = errors.New("no structured output returned")
)

// LLM generates a structured pest report from a photo.
type LLM interface {
	// GenerateReport issues exactly one completion call and returns the raw
	// structured JSON payload found in the provider's response.
	GenerateReport(ctx context.Context, req ReportRequest) ([]byte, error)
	Name() string
	GetModel() string
}

// ReportRequest carries everything a provider needs for one report.
type ReportRequest struct {
	Instructions string
	Prompt       string
	ImageDataURL string
	SchemaName   string
	Schema       map[string]any
}

// APIError is a non-success response from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	// Message is the provider's own error message, or a generic one when
	// the response carried none.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}
