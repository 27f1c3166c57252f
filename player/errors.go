package player

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineUnavailable means the engine process is not running and could not be started,
	// or its IPC endpoint is missing.
	ErrEngineUnavailable = errors.New("engine unavailable")

	// ErrProtocol means the engine sent a reply that is not valid JSON.
	ErrProtocol = errors.New("malformed engine reply")

	// ErrCommandFailed means the engine rejected a command or the transport broke mid-call.
	ErrCommandFailed = errors.New("engine command failed")
)

// CommandError is an error status reported by the engine for a specific command.
type CommandError struct {
	Verb    string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Verb, e.Message)
}

// Unwrap classifies every engine-reported error as ErrCommandFailed.
func (e *CommandError) Unwrap() error {
	return ErrCommandFailed
}
