package exit

import (
	"errors"
	"fmt"
	"io"
)

// Exit codes of the tq command.
const (
	CodeSuccess = 0
	CodeFailure = 1
	CodeUsage   = 2
	CodeFalse   = 3
)

var (
	// ErrUsage marks errors caused by invalid arguments or flags.
	ErrUsage = errors.New("usage error")

	// ErrFalse marks a check that ran successfully and did not hold.
	ErrFalse = errors.New("not satisfied")
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the result message to the configured output destination.
func (r *Result) Print() {
	if r.Message == "" {
		return
	}
	fmt.Fprint(r.Output, r.Message)
}

// Success creates a successful exit result with exit code 0.
func Success(w io.Writer, message string) *Result {
	return &Result{
		Output:   w,
		ExitCode: CodeSuccess,
		Message:  message,
	}
}

// Error creates an error exit result with exit code 1.
func Error(w io.Writer, message string) *Result {
	return &Result{
		Output:   w,
		ExitCode: CodeFailure,
		Message:  message,
	}
}

// Errorf creates an error exit result with formatted message.
func Errorf(w io.Writer, format string, a ...any) *Result {
	return Error(w, fmt.Sprintf(format, a...))
}

// Usagef marks err as a usage error.
func Usagef(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, a...))
}

// FromError maps err onto an exit result written to w. ErrFalse exits
// quietly with CodeFalse.
func FromError(w io.Writer, err error) *Result {
	switch {
	case err == nil:
		return Success(w, "")
	case errors.Is(err, ErrFalse):
		return &Result{Output: w, ExitCode: CodeFalse}
	case errors.Is(err, ErrUsage):
		return &Result{Output: w, ExitCode: CodeUsage, Message: fmt.Sprintf("Error: %v\n", err)}
	default:
		return Errorf(w, "Error: %v\n", err)
	}
}
