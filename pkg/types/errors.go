package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed solve attempt.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidRequest
	KindExecutableNotFound
	KindSolverExecutionFailed
	KindPayloadMarkersMissing
	KindMalformedSolution
	KindSolverReportedError
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "InvalidRequest"
	case KindExecutableNotFound:
		return "ExecutableNotFound"
	case KindSolverExecutionFailed:
		return "SolverExecutionFailed"
	case KindPayloadMarkersMissing:
		return "PayloadMarkersMissing"
	case KindMalformedSolution:
		return "MalformedSolution"
	case KindSolverReportedError:
		return "SolverReportedError"
	default:
		return "Unknown"
	}
}

// NoSolution reports whether the kind means "the solver ran but gave us nothing usable".
// Front ends may present these uniformly.
func (k ErrorKind) NoSolution() bool {
	return k == KindPayloadMarkersMissing || k == KindMalformedSolution || k == KindSolverReportedError
}

// SolveError carries a failure kind, a human readable message and an optional cause.
type SolveError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *SolveError) Error() string {
	switch {
	case e.Message == "" && e.Cause == nil:
		return e.Kind.String()
	case e.Cause == nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Message == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
}

func (e *SolveError) Unwrap() error {
	return e.Cause
}

// Is matches any *SolveError of the same kind, so the sentinels below
// work with errors.Is regardless of message.
func (e *SolveError) Is(target error) bool {
	t, ok := target.(*SolveError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrInvalidRequest        = &SolveError{Kind: KindInvalidRequest}
	ErrExecutableNotFound    = &SolveError{Kind: KindExecutableNotFound}
	ErrSolverExecutionFailed = &SolveError{Kind: KindSolverExecutionFailed}
	ErrPayloadMarkersMissing = &SolveError{Kind: KindPayloadMarkersMissing}
	ErrMalformedSolution     = &SolveError{Kind: KindMalformedSolution}
	ErrSolverReportedError   = &SolveError{Kind: KindSolverReportedError}
)

// NewError builds a SolveError with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *SolveError {
	return &SolveError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a SolveError around a cause.
func WrapError(kind ErrorKind, cause error, message string) *SolveError {
	return &SolveError{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the kind of the first SolveError in err's chain.
func KindOf(err error) ErrorKind {
	var se *SolveError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// MessageOf returns the message to show for err: the SolveError message
// verbatim when there is one, err.Error() otherwise.
func MessageOf(err error) string {
	var se *SolveError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
