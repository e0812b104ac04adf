package models

import "errors"

var (
	ErrBrigadeNotFound   = errors.New("brigade not found")
	ErrEventNotFound     = errors.New("event not found")
	ErrExceptionNotFound = errors.New("exception not found")
	ErrExceptionExists   = errors.New("exception already exists for that date")
	ErrMemberNotFound    = errors.New("member not found")
	ErrLeaveNotFound     = errors.New("leave request not found")
	ErrLeaveNotPending   = errors.New("leave request is no longer pending")
)

// ValidationErrors maps field names to human-readable problems. Request
// validation failures are reported this way and never cross into the
// scheduling engine as errors.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	for field, msg := range v {
		return field + ": " + msg
	}
	return "validation failed"
}

// Any reports whether any field failed.
func (v ValidationErrors) Any() bool {
	return len(v) > 0
}
