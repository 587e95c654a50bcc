package parser

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/wippyai/crossval/script/internal/ast"
	"github.com/wippyai/crossval/script/internal/token"
)

type Parser struct {
	tokens []token.Token
	pos    int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) Parse() (*ast.Program, error) {
	return p.parseProgram()
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return &token.Token{Type: token.EOF}
	}
	return &p.tokens[p.pos]
}

func (p *Parser) peekAt(off int) *token.Token {
	if p.pos+off >= len(p.tokens) {
		return &token.Token{Type: token.EOF}
	}
	return &p.tokens[p.pos+off]
}

func (p *Parser) next() *token.Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) prev() *token.Token {
	if p.pos == 0 {
		return &token.Token{Type: token.EOF, Line: 1, Col: 1}
	}
	return &p.tokens[p.pos-1]
}

func (p *Parser) is(punct string) bool {
	t := p.peek()
	return t.Type == token.Punct && t.Value == punct
}

func (p *Parser) isWord(word string) bool {
	t := p.peek()
	return t.Type == token.Ident && t.Value == word
}

func (p *Parser) accept(punct string) bool {
	if p.is(punct) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) errorf(t *token.Token, format string, args ...any) error {
	return &token.Error{Msg: fmt.Sprintf(format, args...), Line: t.Line, Col: t.Col}
}

func (p *Parser) unexpected(t *token.Token) error {
	if t.Type == token.EOF {
		return p.errorf(t, "unexpected end of input")
	}
	return p.errorf(t, "unexpected token %q", t.Value)
}

func (p *Parser) expect(punct string) (*token.Token, error) {
	t := p.next()
	if t.Type != token.Punct || t.Value != punct {
		if t.Type == token.EOF {
			return nil, p.errorf(t, "expected %q, got end of input", punct)
		}
		return nil, p.errorf(t, "expected %q, got %q", punct, t.Value)
	}
	return t, nil
}

func pos(t *token.Token) ast.Pos {
	return ast.Pos{Line: t.Line, Col: t.Col}
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for {
		for p.accept(";") {
		}
		if p.peek().Type == token.EOF {
			return prog, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)
		if err := p.endStatement(); err != nil {
			return nil, err
		}
	}
}

// endStatement requires a ';', a line break or the end of input after a
// statement.
func (p *Parser) endStatement() error {
	if p.accept(";") {
		return nil
	}
	t := p.peek()
	if t.Type == token.EOF || t.Line > p.prev().Line {
		return nil
	}
	return p.errorf(t, "expected ';', got %q", t.Value)
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	t := p.peek()
	if t.Type == token.Ident {
		switch t.Value {
		case "const", "let", "var":
			return p.parseVarDecl()
		}
	}
	x, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: x, Pos: pos(t)}, nil
}

func (p *Parser) parseVarDecl() (ast.Stmt, error) {
	kw := p.next()
	decl := &ast.VarDecl{Kind: kw.Value, Pos: pos(kw)}
	for {
		name := p.next()
		if name.Type != token.Ident || isReserved(name.Value) {
			return nil, p.errorf(name, "expected variable name, got %q", name.Value)
		}
		var init ast.Expr
		if p.accept("=") {
			x, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			init = x
		} else if kw.Value == "const" {
			return nil, p.errorf(p.peek(), "missing initializer in const declaration")
		}
		decl.Names = append(decl.Names, name.Value)
		decl.Inits = append(decl.Inits, init)
		if !p.accept(",") {
			return decl, nil
		}
	}
}

func (p *Parser) parseExpression() (ast.Expr, error) {
	start := p.peek()
	x, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if !p.is(",") {
		return x, nil
	}
	seq := &ast.Sequence{Exprs: []ast.Expr{x}, Pos: pos(start)}
	for p.accept(",") {
		y, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		seq.Exprs = append(seq.Exprs, y)
	}
	return seq, nil
}

func (p *Parser) parseAssignment() (ast.Expr, error) {
	if fn, ok, err := p.tryArrow(); ok || err != nil {
		return fn, err
	}
	start := p.peek()
	x, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if !p.is("=") {
		return x, nil
	}
	eq := p.next()
	switch x.(type) {
	case *ast.Ident, *ast.Member:
	default:
		return nil, p.errorf(eq, "invalid assignment target")
	}
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &ast.Assign{Target: x, Value: value, Pos: pos(start)}, nil
}

func (p *Parser) parseConditional() (ast.Expr, error) {
	start := p.peek()
	test, err := p.parseLogical(0)
	if err != nil {
		return nil, err
	}
	if !p.accept("?") {
		return test, nil
	}
	then, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(":"); err != nil {
		return nil, err
	}
	els, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &ast.Conditional{Test: test, Then: then, Else: els, Pos: pos(start)}, nil
}

// Binding power of the logical operators, loosest first.
var logicalLevels = [][]string{{"||", "??"}, {"&&"}}

func (p *Parser) parseLogical(level int) (ast.Expr, error) {
	if level == len(logicalLevels) {
		return p.parseUnary()
	}
	start := p.peek()
	x, err := p.parseLogical(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.Type != token.Punct || !contains(logicalLevels[level], t.Value) {
			return x, nil
		}
		p.next()
		y, err := p.parseLogical(level + 1)
		if err != nil {
			return nil, err
		}
		x = &ast.Logical{Op: t.Value, Left: x, Right: y, Pos: pos(start)}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	t := p.peek()
	op := ""
	switch {
	case t.Type == token.Punct && (t.Value == "!" || t.Value == "-" || t.Value == "+"):
		op = t.Value
	case t.Type == token.Ident && (t.Value == "void" || t.Value == "typeof"):
		op = t.Value
	}
	if op == "" {
		return p.parsePostfix()
	}
	p.next()
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.Unary{Op: op, X: x, Pos: pos(t)}, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	start := p.peek()
	var x ast.Expr
	var err error
	if p.isWord("new") {
		x, err = p.parseNew()
	} else {
		x, err = p.parsePrimary()
	}
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.is("."), p.is("["):
			x, err = p.parseMember(x, start)
		case p.is("("):
			var args []ast.Expr
			args, err = p.parseArgs()
			x = &ast.Call{Callee: x, Args: args, Pos: pos(start)}
		default:
			return x, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseMember(obj ast.Expr, start *token.Token) (ast.Expr, error) {
	if p.accept(".") {
		name := p.next()
		if name.Type != token.Ident {
			return nil, p.errorf(name, "expected property name, got %q", name.Value)
		}
		return &ast.Member{Object: obj, Name: name.Value, Pos: pos(start)}, nil
	}
	p.next()
	prop, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("]"); err != nil {
		return nil, err
	}
	return &ast.Member{Object: obj, Property: prop, Computed: true, Pos: pos(start)}, nil
}

// parseNew parses new Callee or new Callee(args). The callee is a member
// chain without calls.
func (p *Parser) parseNew() (ast.Expr, error) {
	kw := p.next()
	start := p.peek()
	var callee ast.Expr
	var err error
	if p.isWord("new") {
		callee, err = p.parseNew()
	} else {
		callee, err = p.parsePrimary()
	}
	if err != nil {
		return nil, err
	}
	for p.is(".") || p.is("[") {
		if callee, err = p.parseMember(callee, start); err != nil {
			return nil, err
		}
	}
	var args []ast.Expr
	if p.is("(") {
		if args, err = p.parseArgs(); err != nil {
			return nil, err
		}
	}
	return &ast.New{Callee: callee, Args: args, Pos: pos(kw)}, nil
}

func (p *Parser) parseArgs() ([]ast.Expr, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.is(")") {
		if p.is("...") {
			return nil, p.errorf(p.peek(), "spread arguments are not supported")
		}
		x, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		args = append(args, x)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	t := p.peek()
	switch t.Type {
	case token.Number:
		p.next()
		f, err := parseNumber(t.Value)
		if err != nil {
			return nil, p.errorf(t, "invalid number %q", t.Value)
		}
		return &ast.NumberLit{Value: f, Pos: pos(t)}, nil
	case token.BigInt:
		p.next()
		n, ok := new(big.Int).SetString(t.Value, 0)
		if !ok {
			return nil, p.errorf(t, "invalid bigint %q", t.Value)
		}
		return &ast.BigIntLit{Value: n, Pos: pos(t)}, nil
	case token.String:
		p.next()
		return &ast.StringLit{Value: t.Value, Pos: pos(t)}, nil
	case token.Regex:
		p.next()
		return &ast.RegexLit{Pattern: t.Value, Flags: t.Flags, Pos: pos(t)}, nil
	case token.Ident:
		return p.parseWord()
	case token.Punct:
		switch t.Value {
		case "(":
			p.next()
			x, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(")"); err != nil {
				return nil, err
			}
			return x, nil
		case "[":
			return p.parseArray()
		case "{":
			return p.parseObject()
		}
	}
	return nil, p.unexpected(t)
}

func (p *Parser) parseWord() (ast.Expr, error) {
	t := p.peek()
	switch t.Value {
	case "true", "false":
		p.next()
		return &ast.BoolLit{Value: t.Value == "true", Pos: pos(t)}, nil
	case "null":
		p.next()
		return &ast.NullLit{Pos: pos(t)}, nil
	case "function":
		return p.parseFunction(false)
	case "async":
		if next := p.peekAt(1); next.Type == token.Ident && next.Value == "function" && next.Line == t.Line {
			p.next()
			return p.parseFunction(true)
		}
	}
	if isReserved(t.Value) {
		return nil, p.unexpected(t)
	}
	p.next()
	return &ast.Ident{Name: t.Value, Pos: pos(t)}, nil
}

func (p *Parser) parseArray() (ast.Expr, error) {
	open := p.next()
	arr := &ast.ArrayLit{Pos: pos(open)}
	for !p.is("]") {
		if p.is(",") {
			p.next()
			arr.Elems = append(arr.Elems, nil)
			continue
		}
		if p.is("...") {
			return nil, p.errorf(p.peek(), "spread elements are not supported")
		}
		x, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		arr.Elems = append(arr.Elems, x)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect("]"); err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *Parser) parseObject() (ast.Expr, error) {
	open := p.next()
	obj := &ast.ObjectLit{Pos: pos(open)}
	for !p.is("}") {
		prop, err := p.parseProperty()
		if err != nil {
			return nil, err
		}
		obj.Props = append(obj.Props, prop)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *Parser) parseProperty() (ast.Property, error) {
	t := p.peek()
	prop := ast.Property{Pos: pos(t)}

	if t.Type == token.Ident && (t.Value == "async" || t.Value == "get" || t.Value == "set") {
		if next := p.peekAt(1); next.Type != token.Punct || next.Value == "*" || next.Value == "[" {
			p.next()
			t = p.peek()
		}
	}
	if p.is("*") {
		p.next()
		t = p.peek()
	}

	switch {
	case t.Type == token.Ident || t.Type == token.String:
		p.next()
		prop.Key = t.Value
	case t.Type == token.Number:
		p.next()
		f, err := parseNumber(t.Value)
		if err != nil {
			return prop, p.errorf(t, "invalid number %q", t.Value)
		}
		prop.Key = NumberKey(f)
	case p.is("["):
		p.next()
		x, err := p.parseAssignment()
		if err != nil {
			return prop, err
		}
		if _, err := p.expect("]"); err != nil {
			return prop, err
		}
		prop.KeyExpr = x
	case p.is("..."):
		return prop, p.errorf(t, "spread properties are not supported")
	default:
		return prop, p.unexpected(t)
	}

	switch {
	case p.accept(":"):
		x, err := p.parseAssignment()
		if err != nil {
			return prop, err
		}
		prop.Value = x
	case p.is("("):
		fn := &ast.FuncLit{Name: prop.Key, Pos: pos(t)}
		if err := p.skipParams(); err != nil {
			return prop, err
		}
		if err := p.skipBlock(); err != nil {
			return prop, err
		}
		prop.Value = fn
	case t.Type == token.Ident && prop.KeyExpr == nil:
		if isReserved(t.Value) {
			return prop, p.unexpected(t)
		}
		prop.Shorthand = true
		prop.Value = &ast.Ident{Name: t.Value, Pos: pos(t)}
	default:
		return prop, p.unexpected(p.peek())
	}
	return prop, nil
}

// NumberKey renders a numeric literal key the way JS converts it to a
// property name.
func NumberKey(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func parseNumber(text string) (float64, error) {
	lower := strings.ToLower(text)
	base := 0
	switch {
	case strings.HasPrefix(lower, "0x"):
		base = 16
	case strings.HasPrefix(lower, "0o"):
		base = 8
	case strings.HasPrefix(lower, "0b"):
		base = 2
	}
	if base == 0 {
		return strconv.ParseFloat(text, 64)
	}
	n, ok := new(big.Int).SetString(text[2:], base)
	if !ok {
		return 0, fmt.Errorf("invalid number")
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f, nil
}

var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "export": true, "extends": true, "finally": true,
	"for": true, "function": true, "if": true, "import": true, "in": true,
	"instanceof": true, "let": true, "new": true, "return": true, "super": true,
	"switch": true, "this": true, "throw": true, "try": true, "typeof": true,
	"var": true, "void": true, "while": true, "with": true, "yield": true,
	"await": true, "true": true, "false": true, "null": true,
}

func isReserved(name string) bool {
	return reserved[name]
}
