package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidStatus indicates an illegal document status transition
	ErrInvalidStatus = errors.New("invalid status transition")

	// ErrInvalidProvider indicates an unknown chat provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates an AI backend could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrNoExtractableText indicates the extractor returned no usable text
	ErrNoExtractableText = errors.New("no extractable text")

	// ErrNoRawText indicates extraction was attempted on a document without parsed text.
	// This is a permanent condition and must not be retried.
	ErrNoRawText = errors.New("no raw text")
)
