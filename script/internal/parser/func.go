package parser

import (
	"github.com/wippyai/crossval/script/internal/ast"
	"github.com/wippyai/crossval/script/internal/token"
)

var closers = map[string]string{"(": ")", "[": "]", "{": "}"}

// tryArrow parses an arrow function if one starts at the current token.
func (p *Parser) tryArrow() (ast.Expr, bool, error) {
	start := p.peek()
	off := 0
	async := false
	if start.Type == token.Ident && start.Value == "async" {
		if next := p.peekAt(1); next.Line == start.Line && (next.Type == token.Ident || next.Type == token.Punct && next.Value == "(") {
			off = 1
			async = true
		}
	}

	head := p.peekAt(off)
	var arrowAt int
	switch {
	case head.Type == token.Ident && !isReserved(head.Value):
		arrowAt = off + 1
	case head.Type == token.Punct && head.Value == "(":
		end, ok := p.matching(p.pos + off)
		if !ok {
			return nil, false, nil
		}
		arrowAt = end - p.pos + 1
	default:
		return nil, false, nil
	}
	arrow := p.peekAt(arrowAt)
	if arrow.Type != token.Punct || arrow.Value != "=>" {
		return nil, false, nil
	}

	p.pos += arrowAt + 1
	fn := &ast.FuncLit{Arrow: true, Async: async, Pos: pos(start)}
	if p.is("{") {
		return fn, true, p.skipBlock()
	}
	return fn, true, p.skipExpression()
}

// matching returns the index of the bracket closing the one at i.
func (p *Parser) matching(i int) (int, bool) {
	var stack []string
	for ; i < len(p.tokens); i++ {
		t := p.tokens[i]
		if t.Type != token.Punct {
			continue
		}
		if c, open := closers[t.Value]; open {
			stack = append(stack, c)
			continue
		}
		if len(stack) > 0 && t.Value == stack[len(stack)-1] {
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func (p *Parser) skipBalanced(open string) error {
	t := p.peek()
	if t.Type != token.Punct || t.Value != open {
		if _, err := p.expect(open); err != nil {
			return err
		}
	}
	end, ok := p.matching(p.pos)
	if !ok {
		return p.errorf(t, "unbalanced %q", open)
	}
	p.pos = end + 1
	return nil
}

func (p *Parser) skipParams() error {
	return p.skipBalanced("(")
}

func (p *Parser) skipBlock() error {
	return p.skipBalanced("{")
}

// skipExpression skips a concise arrow body: everything up to a delimiter
// or line break outside brackets.
func (p *Parser) skipExpression() error {
	first := p.peek()
	if first.Type == token.EOF {
		return p.unexpected(first)
	}
	for {
		t := p.peek()
		if t.Type == token.EOF {
			return nil
		}
		if t.Type == token.Punct {
			switch t.Value {
			case ",", ")", "]", "}", ";":
				return nil
			case "(", "[", "{":
				if err := p.skipBalanced(t.Value); err != nil {
					return err
				}
				continue
			}
		}
		if t != first && t.Line > p.prev().Line {
			return nil
		}
		p.next()
	}
}

// parseFunction parses a function expression. The body is skipped.
func (p *Parser) parseFunction(async bool) (ast.Expr, error) {
	kw := p.next()
	fn := &ast.FuncLit{Async: async, Pos: pos(kw)}
	p.accept("*")
	if t := p.peek(); t.Type == token.Ident {
		p.next()
		fn.Name = t.Value
	}
	if err := p.skipParams(); err != nil {
		return nil, err
	}
	if err := p.skipBlock(); err != nil {
		return nil, err
	}
	return fn, nil
}
