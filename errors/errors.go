package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which stage of the instrumentation pipeline raised the error.
type Phase string

const (
	PhaseDecode     Phase = "decode"     // binary module parsing
	PhaseClassify   Phase = "classify"   // instruction classifier
	PhaseTypeStack  Phase = "typestack"  // abstract stack-effect interpreter
	PhaseBlockStack Phase = "blockstack" // structured-control-flow tracker
	PhaseHooks      Phase = "hooks"      // hook registry construction
	PhaseInstrument Phase = "instrument" // per-function rewrite
	PhaseCodegen    Phase = "codegen"    // JavaScript shim generation
	PhaseEncode     Phase = "encode"     // re-serialization to bytes
)

// Kind categorizes the error.
type Kind string

const (
	KindTypeMismatch Kind = "type_mismatch"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindInvalidData  Kind = "invalid_data"
	KindUnsupported  Kind = "unsupported"
	KindNotFound     Kind = "not_found"
	KindOverflow     Kind = "overflow"
)

// Error is the structured fatal error raised by the instrumentation pipeline.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Detail string
	Path   []string
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" {
		b.WriteString(": ")
		b.WriteString(e.GoType)
	}

	if e.Detail != "" {
		if e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error's phase and kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

// Path sets the field path (e.g. function index, instruction index).
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name involved in the failure.
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common fatal conditions.

// TypeMismatch creates a type mismatch error (e.g. a select whose two arms disagree).
func TypeMismatch(phase Phase, path []string, detail string) *Error {
	return &Error{Phase: phase, Kind: KindTypeMismatch, Path: path, Detail: detail}
}

// OutOfBounds creates an out-of-bounds error (stack underflow, bad label depth).
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
	}
}

// NotFound creates a not-found error (missing hook, unregistered type vector).
func NotFound(phase Phase, what, name string) *Error {
	return &Error{Phase: phase, Kind: KindNotFound, Detail: fmt.Sprintf("%s %q not found", what, name)}
}

// Unsupported creates an unsupported-construct error (unknown instruction group).
func Unsupported(phase Phase, what string) *Error {
	return &Error{Phase: phase, Kind: KindUnsupported, Detail: what}
}

// InvalidData creates a generic invalid-input-data error.
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{Phase: phase, Kind: KindInvalidData, Path: path, Detail: detail}
}

// Overflow creates an overflow error.
func Overflow(phase Phase, path []string, detail string) *Error {
	return &Error{Phase: phase, Kind: KindOverflow, Path: path, Detail: detail}
}

// Wrap wraps an existing error with additional pipeline context.
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{Phase: phase, Kind: kind, Detail: detail, Cause: cause}
}
