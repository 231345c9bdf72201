package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeSelfConnect      = "self_connect"
	ErrCodeTargetOffline    = "target_offline"
	ErrCodeDuplicateRequest = "duplicate_request"
	ErrCodeUnknownRequest   = "unknown_request"
	ErrCodeNotAParticipant  = "not_a_participant"
	ErrCodeOutOfBounds      = "out_of_bounds"
	ErrCodeThreadNotFound   = "thread_not_found"
	ErrCodeThreadClosed     = "thread_closed"
	ErrCodeStarUnavailable  = "star_unavailable"
)

var (
	ErrSelfConnect      = errors.New("cannot connect to own star")
	ErrTargetOffline    = errors.New("target star offline")
	ErrDuplicateRequest = errors.New("request already pending")
	ErrUnknownRequest   = errors.New("unknown request")
	ErrNotAParticipant  = errors.New("not a thread participant")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
