package runner

import "fmt"

// SpawnError means the executable could not be started at all
// (missing binary, permission denied, bad path).
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("could not start command `%s`", e.Command)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitError means the tool ran but exited nonzero. Message holds the
// diagnostic extracted from the tool's output, see ExtractDiagnostic.
type ExitError struct {
	Command string
	Status  int
	Message string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s returned exit status %d:\n%s", e.Command, e.Status, e.Message)
}
