package token

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

type Type int

const (
	EOF Type = iota
	Ident
	Number
	BigInt
	String
	Regex
	Punct
)

func (t Type) String() string {
	switch t {
	case EOF:
		return "end of input"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case BigInt:
		return "bigint"
	case String:
		return "string"
	case Regex:
		return "regular expression"
	case Punct:
		return "punctuator"
	}
	return "unknown"
}

// Token is one lexical unit. String values are unescaped. Regex values hold
// the pattern, with the flags in Flags.
type Token struct {
	Value string
	Flags string
	Type  Type
	Line  int
	Col   int
}

// Error is a lexical error at a source position.
type Error struct {
	Msg  string
	Line int
	Col  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Longest first, so "??" wins over "?".
var puncts = []string{
	"=>", "??", "||", "&&", "...",
	"(", ")", "[", "]", "{", "}", ",", ";", ":", ".", "=", "!", "?", "-", "+", "*",
}

type lexer struct {
	runes  []rune
	tokens []Token
	i      int
	line   int
	col    int
}

// Tokenize splits JavaScript source into tokens. A '/' that does not start a
// comment always starts a regular expression literal.
func Tokenize(input string) ([]Token, error) {
	l := &lexer{runes: []rune(input), line: 1, col: 1}
	for {
		if err := l.skipSpace(); err != nil {
			return nil, err
		}
		if l.i >= len(l.runes) {
			l.tokens = append(l.tokens, Token{Type: EOF, Line: l.line, Col: l.col})
			return l.tokens, nil
		}
		if err := l.scan(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...), Line: line, Col: col}
}

func (l *lexer) peekAt(off int) rune {
	if l.i+off < len(l.runes) {
		return l.runes[l.i+off]
	}
	return 0
}

func (l *lexer) advance() rune {
	r := l.runes[l.i]
	l.i++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) skipSpace() error {
	for l.i < len(l.runes) {
		r := l.runes[l.i]
		switch {
		case unicode.IsSpace(r) || r == 0xfeff:
			l.advance()
		case r == '/' && l.peekAt(1) == '/':
			for l.i < len(l.runes) && l.runes[l.i] != '\n' {
				l.advance()
			}
		case r == '/' && l.peekAt(1) == '*':
			line, col := l.line, l.col
			l.advance()
			l.advance()
			for {
				if l.i >= len(l.runes) {
					return l.errorf(line, col, "unterminated comment")
				}
				if l.runes[l.i] == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) emit(typ Type, value string, line, col int) {
	l.tokens = append(l.tokens, Token{Value: value, Type: typ, Line: line, Col: col})
}

func (l *lexer) scan() error {
	r := l.runes[l.i]
	line, col := l.line, l.col

	switch {
	case r == '"' || r == '\'':
		s, err := l.scanString(r)
		if err != nil {
			return err
		}
		l.emit(String, s, line, col)
		return nil
	case r == '/':
		return l.scanRegex()
	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(l.peekAt(1))):
		return l.scanNumber()
	case isIdentStart(r):
		start := l.i
		for l.i < len(l.runes) && isIdentPart(l.runes[l.i]) {
			l.advance()
		}
		l.emit(Ident, string(l.runes[start:l.i]), line, col)
		return nil
	}

	for _, p := range puncts {
		if l.hasPrefix(p) {
			for range p {
				l.advance()
			}
			l.emit(Punct, p, line, col)
			return nil
		}
	}
	return l.errorf(line, col, "unexpected character %q", r)
}

func (l *lexer) hasPrefix(s string) bool {
	for j, r := range []rune(s) {
		if l.peekAt(j) != r {
			return false
		}
	}
	return true
}

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == 0x200c || r == 0x200d
}

func (l *lexer) scanString(quote rune) (string, error) {
	line, col := l.line, l.col
	l.advance()
	var b strings.Builder
	var pending rune // high surrogate waiting for its pair
	flush := func() {
		if pending != 0 {
			b.WriteRune(unicode.ReplacementChar)
			pending = 0
		}
	}
	for {
		if l.i >= len(l.runes) || l.runes[l.i] == '\n' {
			return "", l.errorf(line, col, "unterminated string literal")
		}
		r := l.advance()
		if r == quote {
			flush()
			return b.String(), nil
		}
		if r != '\\' {
			flush()
			b.WriteRune(r)
			continue
		}
		if l.i >= len(l.runes) {
			return "", l.errorf(line, col, "unterminated string literal")
		}
		esc := l.advance()
		switch esc {
		case 'n':
			flush()
			b.WriteByte('\n')
		case 'r':
			flush()
			b.WriteByte('\r')
		case 't':
			flush()
			b.WriteByte('\t')
		case 'b':
			flush()
			b.WriteByte('\b')
		case 'f':
			flush()
			b.WriteByte('\f')
		case 'v':
			flush()
			b.WriteByte('\v')
		case '0':
			flush()
			b.WriteByte(0)
		case '\n':
			// line continuation
		case 'x':
			flush()
			n, err := l.hexDigits(2)
			if err != nil {
				return "", err
			}
			b.WriteRune(rune(n))
		case 'u':
			cp, err := l.unicodeEscape()
			if err != nil {
				return "", err
			}
			switch {
			case utf16.IsSurrogate(cp) && cp < 0xdc00:
				flush()
				pending = cp
			case utf16.IsSurrogate(cp) && pending != 0:
				b.WriteRune(utf16.DecodeRune(pending, cp))
				pending = 0
			case utf16.IsSurrogate(cp):
				b.WriteRune(unicode.ReplacementChar)
			default:
				flush()
				b.WriteRune(cp)
			}
		default:
			flush()
			b.WriteRune(esc)
		}
	}
}

func (l *lexer) hexDigits(n int) (int, error) {
	line, col := l.line, l.col
	if l.i+n > len(l.runes) {
		return 0, l.errorf(line, col, "invalid escape sequence")
	}
	v, err := strconv.ParseUint(string(l.runes[l.i:l.i+n]), 16, 32)
	if err != nil {
		return 0, l.errorf(line, col, "invalid escape sequence")
	}
	for j := 0; j < n; j++ {
		l.advance()
	}
	return int(v), nil
}

func (l *lexer) unicodeEscape() (rune, error) {
	if l.peekAt(0) != '{' {
		n, err := l.hexDigits(4)
		return rune(n), err
	}
	line, col := l.line, l.col
	l.advance()
	start := l.i
	for l.i < len(l.runes) && l.runes[l.i] != '}' {
		l.advance()
	}
	if l.i >= len(l.runes) {
		return 0, l.errorf(line, col, "invalid escape sequence")
	}
	v, err := strconv.ParseUint(string(l.runes[start:l.i]), 16, 32)
	l.advance()
	if err != nil || v > unicode.MaxRune {
		return 0, l.errorf(line, col, "invalid escape sequence")
	}
	return rune(v), nil
}

func (l *lexer) scanRegex() error {
	line, col := l.line, l.col
	l.advance()
	start := l.i
	inClass := false
	for {
		if l.i >= len(l.runes) || l.runes[l.i] == '\n' {
			return l.errorf(line, col, "unterminated regular expression")
		}
		r := l.runes[l.i]
		if r == '\\' {
			l.advance()
			if l.i < len(l.runes) && l.runes[l.i] != '\n' {
				l.advance()
			}
			continue
		}
		if r == '[' {
			inClass = true
		} else if r == ']' {
			inClass = false
		} else if r == '/' && !inClass {
			break
		}
		l.advance()
	}
	pattern := string(l.runes[start:l.i])
	l.advance()
	fstart := l.i
	for l.i < len(l.runes) && isIdentPart(l.runes[l.i]) {
		l.advance()
	}
	l.tokens = append(l.tokens, Token{
		Value: pattern,
		Flags: string(l.runes[fstart:l.i]),
		Type:  Regex,
		Line:  line,
		Col:   col,
	})
	return nil
}

func (l *lexer) scanNumber() error {
	line, col := l.line, l.col
	start := l.i
	digit := func(c rune) bool { return c >= '0' && c <= '9' || c == '_' }

	if l.runes[l.i] == '0' && strings.ContainsRune("xXoObB", l.peekAt(1)) {
		l.advance()
		l.advance()
		digit = func(c rune) bool {
			return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F' || c == '_'
		}
		for l.i < len(l.runes) && digit(l.runes[l.i]) {
			l.advance()
		}
	} else {
		for l.i < len(l.runes) && (digit(l.runes[l.i]) || l.runes[l.i] == '.') {
			l.advance()
		}
		if c := l.peekAt(0); c == 'e' || c == 'E' {
			l.advance()
			if c := l.peekAt(0); c == '+' || c == '-' {
				l.advance()
			}
			for l.i < len(l.runes) && digit(l.runes[l.i]) {
				l.advance()
			}
		}
	}

	text := strings.ReplaceAll(string(l.runes[start:l.i]), "_", "")
	if l.peekAt(0) == 'n' {
		l.advance()
		l.emit(BigInt, text, line, col)
	} else {
		l.emit(Number, text, line, col)
	}
	if l.i < len(l.runes) && isIdentStart(l.runes[l.i]) {
		return l.errorf(l.line, l.col, "identifier starts immediately after numeric literal")
	}
	return nil
}
