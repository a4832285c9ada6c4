package conference

import (
	"errors"
	"fmt"
)

var (
	ErrMeetingClosed   = errors.New("meeting closed")
	ErrNoVideoTrack    = errors.New("stream has no video track")
	ErrSessionExists   = errors.New("session already exists")
	ErrUnknownIdentity = errors.New("unknown identity")
	ErrSelfCall        = errors.New("cannot call own identity")
)

// MeetError records the operation and, when known, the remote participant an
// error belongs to.
type MeetError struct {
	Op       string
	Identity string
	Err      error
	Details  string
}

func (e *MeetError) Error() string {
	if e.Identity != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Identity, e.Err)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MeetError) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) *MeetError {
	return &MeetError{Op: op, Err: err}
}

func NewPeerError(op, identity string, err error) *MeetError {
	return &MeetError{Op: op, Identity: identity, Err: err}
}

func WrapError(op string, err error, details string) *MeetError {
	return &MeetError{Op: op, Err: err, Details: details}
}
