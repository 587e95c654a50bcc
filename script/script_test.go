package script

import (
	"context"
	stderrors "errors"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/wippyai/crossval/errors"
	"github.com/wippyai/crossval/internal/jsfmt"
	"github.com/wippyai/crossval/value"
)

func eval(t *testing.T, src string, opts ...Option) any {
	t.Helper()
	v, err := Eval(context.Background(), src, opts...)
	if err != nil {
		t.Fatalf("Eval(%q) failed: %v", src, err)
	}
	return v
}

func TestEval_Primitives(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{"1.5", 1.5},
		{"-2", -2.0},
		{"+'3'", 3.0},
		{`"x"`, "x"},
		{"true", true},
		{"!0", true},
		{"!1", false},
		{"null", nil},
		{"typeof 1", "number"},
		{"typeof missing", "undefined"},
		{"null ?? 'd'", "d"},
		{"0 || 'a'", "a"},
		{"1 && 2", 2.0},
		{"0 ? 'y' : 'n'", "n"},
		{"(1, 2, 3)", 3.0},
	}
	for _, tt := range tests {
		if got := eval(t, tt.src); got != tt.want {
			t.Errorf("Eval(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}

	if v := eval(t, "void 0"); v != value.Undefined {
		t.Errorf("Expected undefined, got %v", v)
	}
	if v := eval(t, "NaN").(float64); !math.IsNaN(v) {
		t.Errorf("Expected NaN, got %v", v)
	}
	if v := eval(t, "-0").(float64); !math.Signbit(v) {
		t.Errorf("Expected -0, got %v", v)
	}
	if v := eval(t, "-12n").(*big.Int); v.Int64() != -12 {
		t.Errorf("Expected -12n, got %v", v)
	}
	if v := eval(t, "const a = 1"); v != value.Undefined {
		t.Errorf("Expected undefined for a declaration, got %v", v)
	}
}

func TestEval_Objects(t *testing.T) {
	v := eval(t, `const k = "dyn"; const b = 2; ({a: 1, [k]: true, b, 0: "zero", __proto__: null, ["__proto__"]: 3})`)
	obj, ok := v.(*value.Object)
	if !ok {
		t.Fatalf("Expected object, got %T", v)
	}
	want := []string{"a", "dyn", "b", "0", "__proto__"}
	keys := obj.Keys()
	if len(keys) != len(want) {
		t.Fatalf("Expected keys %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: expected %s, got %s", i, want[i], keys[i])
		}
	}
	if p, _ := obj.Get("__proto__"); p != 3.0 {
		t.Errorf("Expected own __proto__ 3, got %v", p)
	}

	arr := eval(t, "[1, , 3]").(*value.Array)
	if arr.Len() != 3 || !arr.IsHole(1) {
		t.Errorf("Expected [1, hole, 3], got %v", arr.Elems())
	}
}

func TestEval_Builtins(t *testing.T) {
	m := eval(t, `new Map([["a", 1], [2, "b"]])`).(*value.Map)
	if v, _ := m.Get("a"); v != 1.0 || m.Len() != 2 {
		t.Errorf("unexpected map contents")
	}

	s := eval(t, `new Set([1, 1, "x"])`).(*value.Set)
	if s.Len() != 2 {
		t.Errorf("Expected 2 members, got %d", s.Len())
	}

	d := eval(t, `new Date("2024-01-02T03:04:05.006Z")`).(time.Time)
	if d.UnixMilli() != time.Date(2024, 1, 2, 3, 4, 5, 6e6, time.UTC).UnixMilli() {
		t.Errorf("unexpected date %v", d)
	}
	if d := eval(t, "new Date(0)").(time.Time); d.UnixMilli() != 0 {
		t.Errorf("unexpected date %v", d)
	}

	re := eval(t, `/a[/]b/gi`).(*value.RegExp)
	if re.Source != "a[/]b" || re.Flags != "gi" {
		t.Errorf("unexpected regexp %+v", re)
	}
	re = eval(t, `new RegExp("x+", "m")`).(*value.RegExp)
	if re.Source != "x+" || re.Flags != "m" {
		t.Errorf("unexpected regexp %+v", re)
	}

	e := eval(t, `new TypeError("bad", {cause: 1})`).(*value.Error)
	if e.Name != "TypeError" || e.Message != "bad" || e.Cause != 1.0 {
		t.Errorf("unexpected error %+v", e)
	}
	e = eval(t, `Object.assign(new Error("m"), {name: "Custom"})`).(*value.Error)
	if e.Name != "Custom" {
		t.Errorf("Expected custom name, got %s", e.Name)
	}

	b := eval(t, `new Uint8Array([1, 256, -1])`).(*value.Bytes)
	if len(b.Data) != 3 || b.Data[0] != 1 || b.Data[1] != 0 || b.Data[2] != 255 {
		t.Errorf("unexpected bytes %v", b.Data)
	}

	if n := eval(t, `BigInt("0x10")`).(*big.Int); n.Int64() != 16 {
		t.Errorf("Expected 16n, got %v", n)
	}

	p := eval(t, `Promise.resolve(1)`).(*value.Promise)
	if state, v := p.State(); state != value.PromiseFulfilled || v != 1.0 {
		t.Errorf("unexpected promise %v %v", state, v)
	}
	p = eval(t, `Promise.reject("no")`).(*value.Promise)
	if state, _ := p.State(); state != value.PromiseRejected {
		t.Errorf("Expected rejected, got %v", state)
	}
}

func TestEval_Functions(t *testing.T) {
	v := eval(t, "const f = (a, b) => a\nf")
	fn, ok := v.(*value.Function)
	if !ok {
		t.Fatalf("Expected function, got %T", v)
	}
	if fn.Name != "f" || fn.Call != nil {
		t.Errorf("Expected inert function f, got %+v", fn)
	}

	obj := eval(t, "({ async *gen() { yield 1 } })").(*value.Object)
	if g, _ := obj.Get("gen"); g.(*value.Function).Name != "gen" {
		t.Errorf("Expected method gen, got %v", g)
	}
}

func TestEval_Helpers(t *testing.T) {
	ctx := context.Background()

	p := eval(t, `sleep("done", 1000)`, WithTimeScale(0)).(*value.Promise)
	if v, err := p.Await(ctx); err != nil || v != "done" {
		t.Errorf("Expected done, got %v %v", v, err)
	}

	p = eval(t, `fail(new Error("x"), 1000)`, WithTimeScale(0)).(*value.Promise)
	if _, err := p.Await(ctx); err == nil {
		t.Error("Expected rejection")
	}

	it := eval(t, `iterate(["a", "b"], 1000)`, WithTimeScale(0)).(value.AsyncIterable)
	var got []any
	for {
		res, err := it.Next(ctx)
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if res.Done {
			break
		}
		got = append(got, res.Value)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Expected [a b], got %v", got)
	}
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind errors.Kind
		line int
		col  int
	}{
		{"syntax", "const = 1", errors.KindSyntax, 1, 7},
		{"unterminated", "\n'abc", errors.KindSyntax, 2, 1},
		{"reference", "foo", errors.KindReference, 1, 1},
		{"not a function", "1\nnothing.x()", errors.KindReference, 2, 1},
		{"call non-function", "const o = {}\no.x()", errors.KindTypeError, 2, 1},
		{"read null", "null.x", errors.KindTypeError, 1, 1},
		{"const assign", "const a = 1; a = 2", errors.KindTypeError, 1, 14},
		{"redeclare", "let a\nlet a", errors.KindSyntax, 2, 1},
		{"bad regexp", "/(/", errors.KindSyntax, 1, 1},
		{"not constructor", "new BigInt(1)", errors.KindTypeError, 1, 1},
		{"native failure", "new Map(1)", errors.KindTypeError, 1, 1},
		{"bad flags", `new RegExp("a", "zz")`, errors.KindTypeError, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Eval(context.Background(), tt.src)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !stderrors.Is(err, errors.ErrEvaluation) {
				t.Fatalf("Expected evaluation error, got %v", err)
			}
			var e *errors.Error
			stderrors.As(err, &e)
			if e.Kind != tt.kind || e.Line != tt.line || e.Column != tt.col {
				t.Errorf("Expected %s at %d:%d, got %s at %d:%d (%v)",
					tt.kind, tt.line, tt.col, e.Kind, e.Line, e.Column, err)
			}
		})
	}
}

func TestEval_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Eval(ctx, "1"); err == nil {
		t.Error("Expected cancellation error")
	}
}

func TestRuntime_Reconstruction(t *testing.T) {
	r := NewRuntime()
	v, err := r.Exec(context.Background(), jsfmt.Header+";($R[0]={a:1},$R[0].self=$R[0],$R[0])")
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	obj := v.(*value.Object)
	if self, _ := obj.Get("self"); self != obj {
		t.Error("Expected self reference")
	}
	if r.Refs().At(0) != obj {
		t.Error("Expected $R[0] to hold the object")
	}

	v, err = r.Exec(context.Background(), "$R[1]=$P()")
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	p := v.(*value.Promise)
	if _, err := r.Exec(context.Background(), `$R[1].s($R[0])`); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if got, err := p.Await(context.Background()); err != nil || got != obj {
		t.Errorf("Expected promise to resolve to $R[0], got %v %v", got, err)
	}

	if _, err := r.Exec(context.Background(), `$R[2]=$I();$R[2].n(1);$R[2].d()`); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	s := r.Refs().At(2).(*value.Stream)
	res, err := s.Next(context.Background())
	if err != nil || res.Value != 1.0 {
		t.Errorf("Expected first item 1, got %v %v", res, err)
	}
	res, _ = s.Next(context.Background())
	if !res.Done {
		t.Error("Expected done")
	}
}

func TestRuntime_Persistence(t *testing.T) {
	r := NewRuntime()
	if _, err := r.Exec(context.Background(), "var x = [1]"); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	v, err := r.Exec(context.Background(), "x.push(2), x.length = 4, x")
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	arr := v.(*value.Array)
	if arr.Len() != 4 || arr.At(1) != 2.0 || !arr.IsHole(3) {
		t.Errorf("unexpected array %v", arr.Elems())
	}
	if _, ok := r.Get("x"); !ok {
		t.Error("Expected x to persist")
	}
}

func TestRuntime_WithGlobals(t *testing.T) {
	ctor := value.NativeConstructor("Thing", func(args []any) (any, error) {
		return value.ObjectOf("thing", value.Arg(args, 0)), nil
	})
	v := eval(t, `new Thing(1)`, WithGlobals(map[string]any{"Thing": ctor}))
	if got, _ := v.(*value.Object).Get("thing"); got != 1.0 {
		t.Errorf("Expected thing 1, got %v", got)
	}
}
