package apperrors

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrCourseNotFound    = errors.New("course not found")
	ErrNoProgress        = errors.New("no progress recorded")
	ErrTutorUnavailable  = errors.New("tutor unavailable")
	ErrTurnInFlight      = errors.New("a tutor turn is already in flight")
	ErrQuizUnavailable   = errors.New("quiz is not available")
	ErrNoPendingDecision = errors.New("no pending stage transition")
)
