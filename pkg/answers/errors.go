package answers

import "errors"

var (
	// ErrCorrupt marks a persisted payload that could not be decoded.
	ErrCorrupt = errors.New("answers: corrupt payload")
	// ErrNoDSN is returned when an SQL store is opened without a DSN.
	ErrNoDSN = errors.New("answers: database DSN not set")
	// ErrUnknownDialect is returned for unsupported SQL dialects.
	ErrUnknownDialect = errors.New("answers: unknown sql dialect")
)
