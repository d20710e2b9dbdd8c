// Package ifterr defines the error taxonomy shared by every planning
// component: every fallible operation returns one of these kinds rather
// than panicking or defining its own ad hoc error type.
package ifterr

import "fmt"

// Kind classifies why an operation failed.
type Kind int

const (
	// InvalidArgument marks bad input: out-of-range ids, malformed sets,
	// unknown segments.
	InvalidArgument Kind = iota
	// Unimplemented marks a request this implementation deliberately does
	// not support, such as probability arithmetic over a composite
	// condition with overlapping groups.
	Unimplemented
	// InternalError marks an invariant violation inside the planner.
	InternalError
	// FailedPrecondition marks a validation failure against already-built
	// state, such as V1/V2/V3 or an oracle mismatch.
	FailedPrecondition
	// ClosureError marks a failure from the external subsetter.
	ClosureError
	// Cancelled marks a caller-requested abort. No code in this module
	// raises it.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case Unimplemented:
		return "unimplemented"
	case InternalError:
		return "internal_error"
	case FailedPrecondition:
		return "failed_precondition"
	case ClosureError:
		return "closure_error"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by this module. It carries a
// Kind so callers can branch on failure category with errors.As, plus an
// optional wrapped cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, SomeKind) work by comparing against a bare Kind
// value wrapped as an error via KindError.
func (e *Error) Is(target error) bool {
	ke, ok := target.(*Error)
	if !ok {
		return false
	}
	return ke.Op == "" && ke.Message == "" && ke.Cause == nil && ke.Kind == e.Kind
}

// New constructs an *Error for op with the given kind and message.
func New(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an *Error for op that carries cause as its underlying
// error.
func Wrap(op string, kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindError returns a sentinel error usable with errors.Is to test whether
// err belongs to kind, e.g. errors.Is(err, ifterr.KindError(ifterr.ClosureError)).
func KindError(kind Kind) error {
	return &Error{Kind: kind}
}

// OfKind reports whether err is an *Error of the given kind.
func OfKind(err error, kind Kind) bool {
	var e *Error
	if !asError(err, &e) {
		return false
	}
	return e.Kind == kind
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
