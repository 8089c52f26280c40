package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared by the compilation pipeline. Resolution and
// extraction errors are absorbed into ContentEntry notes; backend errors
// always reach the caller.
var (
	ErrArtifactNotFound = goerr.New("artifact not found")
	ErrExtractionFailed = goerr.New("text extraction failed")
	ErrInvalidOwner     = goerr.New("invalid owner ID")
	ErrInvalidArtifact  = goerr.New("invalid artifact name")

	ErrBackendUnreachable = goerr.New("backend unreachable")
	ErrBackendError       = goerr.New("backend error")
	// ErrMalformedResponse matches neither known response shape. It wraps
	// ErrBackendError so callers handling backend errors see it as one.
	ErrMalformedResponse = goerr.Wrap(ErrBackendError, "malformed backend response")
)

// Context keys for error values
const (
	OwnerIDKey       = "owner_id"
	ArtifactKey      = "artifact"
	RequestedNameKey = "requested_name"
	UpstreamErrorKey = "upstream_error"
	StatusCodeKey    = "status_code"
	EndpointKey      = "endpoint"
)
