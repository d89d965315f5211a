package transmission

import "errors"

// Messages sent to HTTP clients in error documents.
const (
	MessageCommandNotFound = "The transmission-remote command could not be found"
	MessageCommandTimeout  = "The transmission-remote command timed out"
)

// commandNotFoundMarker is printed by shells when the tool is not installed.
const commandNotFoundMarker = "command not found"

var (
	// ErrEmptyCommand is returned when no status command is configured.
	ErrEmptyCommand = errors.New("status command is empty")
)
