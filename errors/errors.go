package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEvaluate  Phase = "evaluate"  // source text to value graph
	PhaseClassify  Phase = "classify"  // value shape detection
	PhaseSerialize Phase = "serialize" // value graph to code
	PhaseStream    Phase = "stream"    // async session lifecycle
	PhasePlugin    Phase = "plugin"    // plugin registration and encoding
	PhaseConfig    Phase = "config"    // CLI configuration
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax       Kind = "syntax"
	KindReference    Kind = "reference"
	KindTypeError    Kind = "type_error"
	KindUnsupported  Kind = "unsupported"
	KindPlugin       Kind = "plugin"
	KindCancelled    Kind = "cancelled"
	KindInvalidInput Kind = "invalid_input"
	KindRegistration Kind = "registration"
	KindNotFound     Kind = "not_found"
)

// Error is the structured error type used throughout crossval
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	JSType string
	Detail string
	Path   []string
	Line   int
	Column int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Line > 0 {
		fmt.Fprintf(&b, " at %d:%d", e.Line, e.Column)
	} else if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(FormatPath(e.Path))
	}

	if e.GoType != "" || e.JSType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.JSType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", JS type ")
			b.WriteString(e.JSType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("JS type ")
			b.WriteString(e.JSType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.JSType != "" {
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

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Kind matches every error of its Phase.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Kind == "" {
			return e.Phase == t.Phase
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Sentinels for the error taxonomy
var (
	ErrEvaluation  = &Error{Phase: PhaseEvaluate}
	ErrUnsupported = &Error{Phase: PhaseSerialize, Kind: KindUnsupported}
	ErrPlugin      = &Error{Phase: PhasePlugin, Kind: KindPlugin}
	ErrCancelled   = &Error{Phase: PhaseStream, Kind: KindCancelled}
)

// FormatPath renders a property path the way a JS accessor chain reads:
// identifiers are joined with dots, anything else is bracketed.
func FormatPath(path []string) string {
	var b strings.Builder
	for i, p := range path {
		switch {
		case strings.HasPrefix(p, "["):
			b.WriteString(p)
		case i == 0:
			b.WriteString(p)
		default:
			b.WriteByte('.')
			b.WriteString(p)
		}
	}
	return b.String()
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the property path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// JSType sets the JS type name
func (b *Builder) JSType(t string) *Builder {
	b.err.JSType = t
	return b
}

// Pos sets the source position
func (b *Builder) Pos(line, column int) *Builder {
	b.err.Line = line
	b.err.Column = column
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Syntax creates a syntax error at a source position
func Syntax(line, column int, msg string, args ...any) *Error {
	return &Error{
		Phase:  PhaseEvaluate,
		Kind:   KindSyntax,
		Line:   line,
		Column: column,
		Detail: fmt.Sprintf(msg, args...),
	}
}

// Reference creates an unresolved identifier error
func Reference(line, column int, name string) *Error {
	return &Error{
		Phase:  PhaseEvaluate,
		Kind:   KindReference,
		Line:   line,
		Column: column,
		Detail: fmt.Sprintf("%s is not defined", name),
	}
}

// TypeError creates an evaluation-time type error
func TypeError(line, column int, msg string, args ...any) *Error {
	return &Error{
		Phase:  PhaseEvaluate,
		Kind:   KindTypeError,
		Line:   line,
		Column: column,
		Detail: fmt.Sprintf(msg, args...),
	}
}

// UnsupportedValue creates an error for a value no handler can serialize.
// desc is a short description of v, such as "function onClick".
func UnsupportedValue(path []string, v any, jsType, desc string) *Error {
	detail := "value cannot be serialized"
	if desc != "" {
		detail = desc + " cannot be serialized"
	}
	return &Error{
		Phase:  PhaseSerialize,
		Kind:   KindUnsupported,
		Path:   path,
		GoType: fmt.Sprintf("%T", v),
		JSType: jsType,
		Value:  v,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// PluginFailed creates an error for a plugin that claimed a value but could not encode it
func PluginFailed(tag string, path []string, cause error) *Error {
	return &Error{
		Phase:  PhasePlugin,
		Kind:   KindPlugin,
		Path:   path,
		Detail: fmt.Sprintf("plugin %q failed", tag),
		Cause:  cause,
	}
}

// Cancelled creates a session cancellation error
func Cancelled(cause error) *Error {
	return &Error{
		Phase:  PhaseStream,
		Kind:   KindCancelled,
		Detail: "session cancelled",
		Cause:  cause,
	}
}

// Registration creates a registration error
func Registration(phase Phase, name string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %q: %s", name, detail),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
