// Package errors provides structured error handling for listdiff.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindInconsistent indicates a list surface whose visual state no longer
	// agrees with its data source.
	KindInconsistent
	// KindOutOfBounds indicates an index outside the section or element range.
	KindOutOfBounds
	// KindUnregistered indicates a model type with no registered cell binder.
	KindUnregistered
	// KindDecode indicates a snapshot fixture that could not be decoded.
	KindDecode
	// KindConfig indicates an invalid configuration file.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindInconsistent:
		return "inconsistent"
	case KindOutOfBounds:
		return "out-of-bounds"
	case KindUnregistered:
		return "unregistered"
	case KindDecode:
		return "decode"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Error represents a structured listdiff error.
type Error struct {
	// Op is the operation that failed (e.g., "adapter.CellRegistry.Bind").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Path is the file or index path involved, if applicable.
	Path string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s [%s] path=%s: %v", e.Op, e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. It lets callers
// write errors.Is(err, &Error{Kind: KindDecode}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "cmd.apply").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// InconsistencyError describes a batch update that a list surface rejected.
// Surfaces panic with it, matching how native list controls abort on an
// invalid update.
type InconsistencyError struct {
	// Op is the surface call that detected the problem (e.g., "InsertSections").
	Op string
	// Reason describes the violated rule.
	Reason string
	// Section is the affected section, or -1.
	Section int
	// Expected and Got are the element or section counts involved, when the
	// failure is a count mismatch.
	Expected, Got int
}

func (e *InconsistencyError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid update")
	if e.Op != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.Op)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	if e.Section >= 0 {
		fmt.Fprintf(&sb, " (section %d)", e.Section)
	}
	if e.Expected != e.Got {
		fmt.Fprintf(&sb, ": expected %d, got %d", e.Expected, e.Got)
	}
	return sb.String()
}

// ErrorHandler receives errors reported by listdiff.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
