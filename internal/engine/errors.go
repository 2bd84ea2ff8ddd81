package engine

import (
	"errors"
	"fmt"
)

// Code categorizes editing errors.
type Code string

const (
	// CodeNotFound indicates an unknown operation, block or value id.
	// Raised before any snapshot is taken.
	CodeNotFound Code = "NOT_FOUND"

	// CodeOutOfRange indicates an operand or result index outside the
	// current bounds. Raised before any snapshot is taken.
	CodeOutOfRange Code = "OUT_OF_RANGE"

	// CodeParse indicates a malformed type, attribute or module text
	// supplied by the caller. Raised mid-transaction; triggers rollback.
	CodeParse Code = "PARSE_ERROR"

	// CodeNoModule indicates a call against a session with no module
	// loaded.
	CodeNoModule Code = "NO_MODULE_LOADED"

	// CodeNothingToUndo and CodeNothingToRedo indicate an empty
	// history stack.
	CodeNothingToUndo Code = "NOTHING_TO_UNDO"
	CodeNothingToRedo Code = "NOTHING_TO_REDO"

	// CodeInvalidTarget indicates an edit that is structurally
	// impossible for its target, such as deleting the module root or
	// adding an output where no enclosing function exists.
	CodeInvalidTarget Code = "INVALID_TARGET"

	// CodeInternal indicates a broken engine invariant, such as a
	// snapshot that no longer parses during rollback.
	CodeInternal Code = "INTERNAL"
)

// EditError is the error type for every failed edit. It carries the
// offending id or index so callers can report precisely without
// re-deriving context.
type EditError struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Kind names the entity category for id lookups: "operation",
	// "block" or "value".
	Kind string

	// ID is the offending identifier, when the error concerns one.
	ID string

	// Index is the offending operand or result index for
	// CodeOutOfRange; -1 otherwise.
	Index int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *EditError) Error() string {
	switch {
	case e.ID != "":
		return fmt.Sprintf("%s: %s (%s %s)", e.Code, e.Message, e.Kind, e.ID)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *EditError) Unwrap() error { return e.Err }

func errNotFound(kind, id string) *EditError {
	return &EditError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("unknown %s id", kind),
		Kind:    kind,
		ID:      id,
		Index:   -1,
	}
}

func errOutOfRange(what string, index, count int, opID string) *EditError {
	return &EditError{
		Code:    CodeOutOfRange,
		Message: fmt.Sprintf("%s index %d out of range (0..%d)", what, index, count-1),
		Kind:    "operation",
		ID:      opID,
		Index:   index,
	}
}

func errParse(context string, err error) *EditError {
	return &EditError{Code: CodeParse, Message: context, Index: -1, Err: err}
}

func errNoModule() *EditError {
	return &EditError{Code: CodeNoModule, Message: "no module loaded", Index: -1}
}

func errInvalidTarget(message, opID string) *EditError {
	return &EditError{Code: CodeInvalidTarget, Message: message, Kind: "operation", ID: opID, Index: -1}
}

func errInternal(message string, err error) *EditError {
	return &EditError{Code: CodeInternal, Message: message, Index: -1, Err: err}
}

// codeOf extracts the Code from an error, or "" for non-edit errors.
func codeOf(err error) Code {
	var ee *EditError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsNotFound reports whether the error is an unknown-id error.
func IsNotFound(err error) bool { return codeOf(err) == CodeNotFound }

// IsOutOfRange reports whether the error is an index bounds error.
func IsOutOfRange(err error) bool { return codeOf(err) == CodeOutOfRange }

// IsParseError reports whether the error is a caller-input parse error.
func IsParseError(err error) bool { return codeOf(err) == CodeParse }

// IsNoModule reports whether the error is a missing-module
// precondition failure.
func IsNoModule(err error) bool { return codeOf(err) == CodeNoModule }

// IsHistoryEmpty reports whether the error is an empty undo or redo
// stack.
func IsHistoryEmpty(err error) bool {
	c := codeOf(err)
	return c == CodeNothingToUndo || c == CodeNothingToRedo
}

// IsInvalidTarget reports whether the edit was structurally impossible
// for its target.
func IsInvalidTarget(err error) bool { return codeOf(err) == CodeInvalidTarget }
