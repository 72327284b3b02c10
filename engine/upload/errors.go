package upload

import "fmt"

// ErrorKind is the typed failure taxonomy for uploads. Errors are
// propagated as kinds, never as bare strings, so callers can switch on
// them.
type ErrorKind int

const (
	// ErrorNone marks a successful result.
	ErrorNone ErrorKind = iota

	// ErrorInvalidRequest marks a request rejected at acceptance:
	// nil destination, zero size, bad format, out-of-range subresources,
	// or inconsistent explicit pitches.
	ErrorInvalidRequest

	// ErrorProducerFailed marks a producer callback that returned false.
	ErrorProducerFailed

	// ErrorStagingAllocFailed marks staging-bank exhaustion for the
	// active frame slot.
	ErrorStagingAllocFailed

	// ErrorResourceAllocFailed marks a failed backend allocation while
	// servicing the request.
	ErrorResourceAllocFailed

	// ErrorCancelled marks a request cancelled before execution.
	ErrorCancelled

	// ErrorExecutionFailed marks a post-submit queue failure.
	ErrorExecutionFailed

	// ErrorDeviceLost marks a device-lost signal; the coordinator refuses
	// further work until re-initialization.
	ErrorDeviceLost
)

// String implements fmt.Stringer for log output.
func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "None"
	case ErrorInvalidRequest:
		return "InvalidRequest"
	case ErrorProducerFailed:
		return "ProducerFailed"
	case ErrorStagingAllocFailed:
		return "StagingAllocFailed"
	case ErrorResourceAllocFailed:
		return "ResourceAllocFailed"
	case ErrorCancelled:
		return "Cancelled"
	case ErrorExecutionFailed:
		return "ExecutionFailed"
	case ErrorDeviceLost:
		return "DeviceLost"
	default:
		return "Unknown"
	}
}

// Error pairs an ErrorKind with optional detail. It implements the error
// interface and unwraps by kind comparison through Is.
type Error struct {
	Kind   ErrorKind
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("upload: %s", e.Kind)
	}
	return fmt.Sprintf("upload: %s: %s", e.Kind, e.Detail)
}

// Is matches errors by kind so errors.Is works against kind sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// newError creates an Error with formatted detail.
func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
