package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for usergen commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a check failed
	ExitCommandError = 2 // bad flags or unusable configuration
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// GetExitCode extracts the exit code from err. Errors that are not an
// ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

type outputFormatter struct {
	format string
	w      io.Writer
}

func (f *outputFormatter) json(v interface{}) error {
	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (f *outputFormatter) line(format string, args ...interface{}) {
	fmt.Fprintf(f.w, format+"\n", args...)
}
