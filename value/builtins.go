package value

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// RegExp is a JS regular expression literal.
type RegExp struct {
	Source string
	Flags  string
}

const regexpFlags = "dgimsuvy"

// NewRegExp validates source under ECMAScript rules and returns the RegExp.
func NewRegExp(source, flags string) (*RegExp, error) {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	for i, f := range flags {
		if !strings.ContainsRune(regexpFlags, f) || strings.ContainsRune(flags[i+1:], f) {
			return nil, fmt.Errorf("invalid regular expression flags %q", flags)
		}
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 'u', 'v':
			opts |= regexp2.Unicode
		}
	}
	if _, err := regexp2.Compile(source, opts); err != nil {
		return nil, fmt.Errorf("invalid regular expression /%s/: %w", source, err)
	}
	return &RegExp{Source: source, Flags: flags}, nil
}

// MustRegExp is like NewRegExp but panics on an invalid pattern.
func MustRegExp(source, flags string) *RegExp {
	re, err := NewRegExp(source, flags)
	if err != nil {
		panic(err)
	}
	return re
}

// Error is a JS Error object. Name selects the constructor
// (Error, TypeError, RangeError, ...). A nil or Undefined Cause means the
// error was created without a cause option.
type Error struct {
	Cause   any
	Name    string
	Message string
}

// NewError creates an error with the given constructor name.
func NewError(name, message string) *Error {
	if name == "" {
		name = "Error"
	}
	return &Error{Name: name, Message: message}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return e.Name + ": " + e.Message
}

// HasCause reports whether the error carries a cause option.
func (e *Error) HasCause() bool {
	switch e.Cause.(type) {
	case nil, UndefinedType, HoleType:
		return false
	}
	return true
}

// ErrorNames lists the built-in error constructors.
var ErrorNames = []string{
	"Error", "EvalError", "RangeError", "ReferenceError",
	"SyntaxError", "TypeError", "URIError",
}

// IsErrorName reports whether name is a built-in error constructor.
func IsErrorName(name string) bool {
	for _, n := range ErrorNames {
		if n == name {
			return true
		}
	}
	return false
}

// Bytes is a Uint8Array.
type Bytes struct {
	Data []byte
}

// Function is a JS function value. Call and Construct are nil for functions
// that were only parsed, never bound to native code.
type Function struct {
	Call      func(args []any) (any, error)
	Construct func(args []any) (any, error)
	Static    map[string]any // properties of the function object, such as Promise.resolve
	Name      string
}

// NativeFunc wraps fn as a callable function value.
func NativeFunc(name string, fn func(args []any) (any, error)) *Function {
	return &Function{Name: name, Call: fn}
}

// NativeConstructor wraps fn as a function usable with new.
func NativeConstructor(name string, fn func(args []any) (any, error)) *Function {
	return &Function{Name: name, Construct: fn}
}

// Arg returns args[i], or Undefined when fewer arguments were passed.
func Arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}
