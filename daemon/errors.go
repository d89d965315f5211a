package daemon

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned when the PID file names a live process.
	ErrAlreadyRunning = errors.New("daemon already running")

	// ErrNotRunning is returned when there is no PID file or its process is gone.
	ErrNotRunning = errors.New("daemon not running")

	// ErrUnsupported is returned on platforms without signal based process control.
	ErrUnsupported = errors.New("process control not supported on this platform")
)

// StartError describes a daemon child that failed to come up
type StartError struct {
	PID    int
	Reason string
	Err    error
}

// Error implements the error interface
func (e *StartError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("daemon (pid %d) failed to start: %s: %v", e.PID, e.Reason, e.Err)
	}
	return fmt.Sprintf("daemon (pid %d) failed to start: %s", e.PID, e.Reason)
}

func (e *StartError) Unwrap() error {
	return e.Err
}
