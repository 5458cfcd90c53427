package domain

import "errors"

// Sentinel errors used throughout the application.
// The worker classifies job failures against these to decide between
// retrying and dead-lettering; the ingest handler maps them to HTTP codes.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidSourceID     = errors.New("sourceId must not be empty")
	ErrMissingResolvedData = errors.New("resolvedGameData is required")
	ErrMalformedGameData   = errors.New("game data is not valid JSON")
	ErrUnknownSourceType   = errors.New("unknown source type")
	ErrQueueFull           = errors.New("queue is at capacity, try again later")
)

// IsSchemaError reports whether an error means the job payload itself is
// structurally invalid. Schema errors are never retried: redelivery cannot
// fix a malformed message, so the job goes straight to the dead letter state.
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrMalformedGameData) ||
		errors.Is(err, ErrUnknownSourceType) ||
		errors.Is(err, ErrInvalidSourceID) ||
		errors.Is(err, ErrMissingResolvedData)
}
