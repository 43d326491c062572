package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidProduct indicates a catalog entry is missing required fields
	ErrInvalidProduct = errors.New("invalid product")

	// ErrRetrievalFailed indicates the search backend was unreachable or
	// rejected the query after retry exhaustion
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrEmbeddingFailed indicates the embedding provider failed; when the
	// selected retrieval mode needs an embedding this surfaces as the cause
	// of a retrieval failure
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrGenerationFailed indicates the LLM call failed or returned empty
	ErrGenerationFailed = errors.New("generation failed")

	// ErrIndexNotFound indicates the product index has not been provisioned
	ErrIndexNotFound = errors.New("index not found")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates a required AI service is not configured
	// or could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
