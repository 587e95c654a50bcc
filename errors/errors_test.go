package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseSerialize,
				Kind:   KindUnsupported,
				Path:   []string{"user", "handlers", "[0]"},
				GoType: "func()",
				JSType: "function",
				Detail: "cannot serialize",
			},
			contains: []string{"[serialize]", "unsupported", "user.handlers[0]", "func()", "function", "cannot serialize"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseStream,
				Kind:  KindCancelled,
			},
			contains: []string{"[stream]", "cancelled"},
		},
		{
			name:     "position",
			err:      Syntax(3, 14, "unexpected token %q", "}"),
			contains: []string{"[evaluate]", "syntax", "at 3:14", `unexpected token "}"`},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhasePlugin,
				Kind:   KindPlugin,
				Detail: "plugin \"url\" failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[plugin]", "plugin", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhasePlugin,
		Kind:  KindPlugin,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause through Unwrap")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseSerialize,
		Kind:  KindUnsupported,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseSerialize, Kind: KindUnsupported}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhasePlugin, Kind: KindUnsupported}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseSerialize, Kind: KindPlugin}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Error("errors.Is should match ErrUnsupported")
	}
}

func TestSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"syntax is evaluation", Syntax(1, 1, "bad"), ErrEvaluation},
		{"reference is evaluation", Reference(1, 2, "foo"), ErrEvaluation},
		{"type error is evaluation", TypeError(1, 2, "not a function"), ErrEvaluation},
		{"unsupported", UnsupportedValue(nil, func() {}, "function", ""), ErrUnsupported},
		{"plugin", PluginFailed("url", nil, errors.New("x")), ErrPlugin},
		{"cancelled", Cancelled(nil), ErrCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("%v should match sentinel %v", tt.err, tt.sentinel)
			}
		})
	}

	if errors.Is(Syntax(1, 1, "bad"), ErrUnsupported) {
		t.Error("syntax error should not match ErrUnsupported")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseSerialize, KindUnsupported).
		Path("user", "name").
		GoType("chan int").
		JSType("unknown").
		Pos(2, 5).
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "value", "channel").
		Build()

	if err.Phase != PhaseSerialize {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseSerialize)
	}
	if err.Kind != KindUnsupported {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
	}
	if len(err.Path) != 2 || err.Path[0] != "user" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [user name]", err.Path)
	}
	if err.GoType != "chan int" {
		t.Errorf("GoType = %v, want 'chan int'", err.GoType)
	}
	if err.JSType != "unknown" {
		t.Errorf("JSType = %v, want 'unknown'", err.JSType)
	}
	if err.Line != 2 || err.Column != 5 {
		t.Errorf("Pos = %d:%d, want 2:5", err.Line, err.Column)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected value, got channel" {
		t.Errorf("Detail = %v, want 'expected value, got channel'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("UnsupportedValue", func(t *testing.T) {
		err := UnsupportedValue([]string{"a"}, make(chan int), "unknown", "")
		if err.GoType != "chan int" {
			t.Errorf("GoType = %v, want 'chan int'", err.GoType)
		}
		if err.Value == nil {
			t.Error("Value should carry the offending value")
		}
		if err.Detail != "value cannot be serialized" {
			t.Errorf("Detail = %v, want 'value cannot be serialized'", err.Detail)
		}

		err = UnsupportedValue([]string{"user", "onClick"}, nil, "function", "function onClick")
		if err.Detail != "function onClick cannot be serialized" {
			t.Errorf("Detail = %v, want 'function onClick cannot be serialized'", err.Detail)
		}
		if !strings.Contains(err.Error(), "function onClick cannot be serialized") {
			t.Errorf("Error() = %v, want the value description", err.Error())
		}
	})

	t.Run("Registration", func(t *testing.T) {
		err := Registration(PhasePlugin, "url", "duplicate tag")
		if err.Kind != KindRegistration {
			t.Errorf("Kind = %v, want %v", err.Kind, KindRegistration)
		}
		if !strings.Contains(err.Detail, "url") {
			t.Errorf("Detail = %v, should contain tag", err.Detail)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseConfig, "plugin", "gopher")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("boom")
		err := Wrap(PhaseStream, KindCancelled, cause, "stopped")
		if !errors.Is(err, cause) {
			t.Error("Wrap should keep the cause")
		}
	})
}

func TestFormatPath(t *testing.T) {
	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "a.b"},
		{[]string{"items", "[2]", "name"}, "items[2].name"},
		{[]string{"[0]", `["x-y"]`}, `[0]["x-y"]`},
	}
	for _, tt := range tests {
		if got := FormatPath(tt.path); got != tt.want {
			t.Errorf("FormatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
