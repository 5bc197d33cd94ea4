package chat

import "github.com/pkg/errors"

var (
	// ErrUnauthorized means the gate or the participant check denied the
	// call. It is terminal for the attempt and must not be retried.
	ErrUnauthorized = errors.New("messaging is not permitted for this application")
	// ErrValidation means the message content was empty after trimming.
	ErrValidation = errors.New("message content is empty")
	// ErrTransient marks network or persistence failures. Match it with
	// errors.Is; the concrete error is a *TransientError.
	ErrTransient = errors.New("temporary failure")
	// ErrFeedDisconnected means live delivery is not running.
	ErrFeedDisconnected = errors.New("realtime feed disconnected")
	// ErrNotFound means the application does not exist.
	ErrNotFound = errors.New("application not found")
)

// TransientError wraps the cause of a failed store or network call.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Is makes every TransientError match ErrTransient.
func (e *TransientError) Is(target error) bool {
	return target == ErrTransient
}

// Transient wraps err as a TransientError for op. A nil err stays nil.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: errors.WithStack(err)}
}
