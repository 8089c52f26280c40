package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrMissingCaseDescription = errors.New("case description is required")
	ErrMissingFileNames       = errors.New("at least one file name is required")
)

// Context keys for error values
const (
	FieldKey = "field"
	ValueKey = "value"
)
