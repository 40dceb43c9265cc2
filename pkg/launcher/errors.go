package launcher

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInstalled is returned when no executable exists for the requested version and platform
	ErrNotInstalled = errors.New("bun is not installed")
	// ErrSpawn is matched by *SpawnError
	ErrSpawn = errors.New("failed to start process")
	// ErrNonZeroExit is matched by *ExitError
	ErrNonZeroExit = errors.New("process exited with non-zero status")
)

// SpawnError is returned when the child process could not be started
type SpawnError struct {
	Executable string
	Err        error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Executable, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

func (e *SpawnError) Is(target error) bool {
	return target == ErrSpawn
}

// ExitError is the launched command's own failure, carrying its exit code
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
}

func (e *ExitError) Is(target error) bool {
	return target == ErrNonZeroExit
}
