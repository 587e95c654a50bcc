package parser

import (
	"testing"

	"github.com/wippyai/crossval/script/internal/ast"
	"github.com/wippyai/crossval/script/internal/token"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	tokens, err := token.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	prog, err := New(tokens).Parse()
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return prog
}

func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	prog := parse(t, src)
	if len(prog.Stmts) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(prog.Stmts))
	}
	stmt, ok := prog.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("Expected expression statement, got %T", prog.Stmts[0])
	}
	return stmt.X
}

func TestParse_Statements(t *testing.T) {
	prog := parse(t, "const a = 1, b = 2\nlet c; c = a;;")
	if len(prog.Stmts) != 3 {
		t.Fatalf("Expected 3 statements, got %d", len(prog.Stmts))
	}
	decl := prog.Stmts[0].(*ast.VarDecl)
	if decl.Kind != "const" || len(decl.Names) != 2 || decl.Names[1] != "b" {
		t.Errorf("unexpected declaration %+v", decl)
	}
	let := prog.Stmts[1].(*ast.VarDecl)
	if let.Inits[0] != nil {
		t.Errorf("Expected nil initializer, got %v", let.Inits[0])
	}
	if _, ok := prog.Stmts[2].(*ast.ExprStmt).X.(*ast.Assign); !ok {
		t.Errorf("Expected assignment, got %T", prog.Stmts[2].(*ast.ExprStmt).X)
	}
}

func TestParse_Literals(t *testing.T) {
	arr := parseExpr(t, "[1, , 'x', 0x10, 5n, /a+/g, true, null]").(*ast.ArrayLit)
	if len(arr.Elems) != 8 {
		t.Fatalf("Expected 8 elements, got %d", len(arr.Elems))
	}
	if arr.Elems[1] != nil {
		t.Errorf("Expected hole, got %T", arr.Elems[1])
	}
	if n := arr.Elems[3].(*ast.NumberLit); n.Value != 16 {
		t.Errorf("Expected 16, got %v", n.Value)
	}
	if b := arr.Elems[4].(*ast.BigIntLit); b.Value.Int64() != 5 {
		t.Errorf("Expected 5n, got %v", b.Value)
	}
	if re := arr.Elems[5].(*ast.RegexLit); re.Pattern != "a+" || re.Flags != "g" {
		t.Errorf("unexpected regex %+v", re)
	}

	trailing := parseExpr(t, "[1,,]").(*ast.ArrayLit)
	if len(trailing.Elems) != 2 || trailing.Elems[1] != nil {
		t.Errorf("Expected [1, hole], got %+v", trailing.Elems)
	}
}

func TestParse_Object(t *testing.T) {
	obj := parseExpr(t, `({a: 1, "b c": 2, 3: 3, [k]: 4, d, m() {}, get g() {}, __proto__: 5})`).(*ast.ObjectLit)
	keys := []string{"a", "b c", "3", "", "d", "m", "g", "__proto__"}
	if len(obj.Props) != len(keys) {
		t.Fatalf("Expected %d props, got %d", len(keys), len(obj.Props))
	}
	for i, k := range keys {
		if obj.Props[i].Key != k {
			t.Errorf("prop %d: expected key %q, got %q", i, k, obj.Props[i].Key)
		}
	}
	if obj.Props[3].KeyExpr == nil {
		t.Error("Expected computed key")
	}
	if !obj.Props[4].Shorthand {
		t.Error("Expected shorthand")
	}
	if _, ok := obj.Props[5].Value.(*ast.FuncLit); !ok {
		t.Errorf("Expected method, got %T", obj.Props[5].Value)
	}
}

func TestParse_LeadingBraceIsObject(t *testing.T) {
	if _, ok := parseExpr(t, "{a: 1}").(*ast.ObjectLit); !ok {
		t.Error("Expected object literal")
	}
}

func TestParse_Calls(t *testing.T) {
	x := parseExpr(t, "$R[0].s(new Map([[1, 2]]), new Set)")
	call, ok := x.(*ast.Call)
	if !ok {
		t.Fatalf("Expected call, got %T", x)
	}
	if len(call.Args) != 2 {
		t.Fatalf("Expected 2 args, got %d", len(call.Args))
	}
	callee := call.Callee.(*ast.Member)
	if callee.Name != "s" {
		t.Errorf("Expected .s, got %+v", callee)
	}
	if inner := callee.Object.(*ast.Member); !inner.Computed {
		t.Error("Expected computed member")
	}
	if n := call.Args[1].(*ast.New); n.Args != nil {
		t.Errorf("Expected no args, got %v", n.Args)
	}

	n := parseExpr(t, "new WebAssembly.Module(b)").(*ast.New)
	if m := n.Callee.(*ast.Member); m.Name != "Module" {
		t.Errorf("Expected WebAssembly.Module callee, got %+v", m)
	}
}

func TestParse_Operators(t *testing.T) {
	seq := parseExpr(t, "($R[0]={}, $R[0].a=$R[0], $R[0])").(*ast.Sequence)
	if len(seq.Exprs) != 3 {
		t.Fatalf("Expected 3 expressions, got %d", len(seq.Exprs))
	}

	logical := parseExpr(t, "a || b && c ?? d").(*ast.Logical)
	if logical.Op != "??" {
		t.Errorf("Expected ?? at the root, got %s", logical.Op)
	}
	if inner := logical.Left.(*ast.Logical); inner.Op != "||" {
		t.Errorf("Expected || under ??, got %s", inner.Op)
	}

	unary := parseExpr(t, "void -1").(*ast.Unary)
	if unary.Op != "void" || unary.X.(*ast.Unary).Op != "-" {
		t.Errorf("unexpected unary %+v", unary)
	}

	cond := parseExpr(t, "a ? 1 : 2").(*ast.Conditional)
	if cond.Then.(*ast.NumberLit).Value != 1 {
		t.Errorf("unexpected conditional %+v", cond)
	}
}

func TestParse_Functions(t *testing.T) {
	tests := []struct {
		src   string
		arrow bool
		async bool
		name  string
	}{
		{"function f(a, b) { return a }", false, false, "f"},
		{"async function* gen() { yield 1 }", false, true, "gen"},
		{"x => x", true, false, ""},
		{"(a, b) => { return [a, b] }", true, false, ""},
		{"async () => ({a: 1})", true, true, ""},
	}
	for _, tt := range tests {
		fn, ok := parseExpr(t, tt.src).(*ast.FuncLit)
		if !ok {
			t.Fatalf("%s: expected function", tt.src)
		}
		if fn.Arrow != tt.arrow || fn.Async != tt.async || fn.Name != tt.name {
			t.Errorf("%s: unexpected %+v", tt.src, fn)
		}
	}

	call := parseExpr(t, "f(x => x, 2)").(*ast.Call)
	if len(call.Args) != 2 {
		t.Errorf("Expected 2 args, got %d", len(call.Args))
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src  string
		line int
		col  int
	}{
		{"const a", 1, 8},
		{"[1, 2", 1, 6},
		{"1 = 2", 1, 3},
		{"a b", 1, 3},
		{"f(...xs)", 1, 3},
		{"{a: }", 1, 5},
		{"\n  )", 2, 3},
	}
	for _, tt := range tests {
		tokens, err := token.Tokenize(tt.src)
		if err != nil {
			t.Fatalf("Tokenize(%q) failed: %v", tt.src, err)
		}
		_, err = New(tokens).Parse()
		if err == nil {
			t.Fatalf("Parse(%q): expected error", tt.src)
		}
		e := err.(*token.Error)
		if e.Line != tt.line || e.Col != tt.col {
			t.Errorf("Parse(%q): expected %d:%d, got %d:%d (%v)", tt.src, tt.line, tt.col, e.Line, e.Col, e)
		}
	}
}

func TestNumberKey(t *testing.T) {
	tests := map[float64]string{1: "1", 1.5: "1.5", 1e21: "1e+21", -0.0: "0"}
	for in, want := range tests {
		if got := NumberKey(in); got != want {
			t.Errorf("NumberKey(%v) = %s, want %s", in, got, want)
		}
	}
}
