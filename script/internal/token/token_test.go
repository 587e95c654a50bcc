package token

import (
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			"empty",
			"",
			[]Token{{Type: EOF, Line: 1, Col: 1}},
		},
		{
			"declaration",
			"const a = 1;",
			[]Token{
				{Value: "const", Type: Ident, Line: 1, Col: 1},
				{Value: "a", Type: Ident, Line: 1, Col: 7},
				{Value: "=", Type: Punct, Line: 1, Col: 9},
				{Value: "1", Type: Number, Line: 1, Col: 11},
				{Value: ";", Type: Punct, Line: 1, Col: 12},
				{Type: EOF, Line: 1, Col: 13},
			},
		},
		{
			"comments and newlines",
			"// note\n$R /* x\ny */ _b",
			[]Token{
				{Value: "$R", Type: Ident, Line: 2, Col: 1},
				{Value: "_b", Type: Ident, Line: 3, Col: 6},
				{Type: EOF, Line: 3, Col: 8},
			},
		},
		{
			"nullish and arrow",
			"a??b=>c",
			[]Token{
				{Value: "a", Type: Ident, Line: 1, Col: 1},
				{Value: "??", Type: Punct, Line: 1, Col: 2},
				{Value: "b", Type: Ident, Line: 1, Col: 4},
				{Value: "=>", Type: Punct, Line: 1, Col: 5},
				{Value: "c", Type: Ident, Line: 1, Col: 7},
				{Type: EOF, Line: 1, Col: 8},
			},
		},
		{
			"numbers",
			"0x1F 1.5e-3 .5 1_000 12n",
			[]Token{
				{Value: "0x1F", Type: Number, Line: 1, Col: 1},
				{Value: "1.5e-3", Type: Number, Line: 1, Col: 6},
				{Value: ".5", Type: Number, Line: 1, Col: 13},
				{Value: "1000", Type: Number, Line: 1, Col: 16},
				{Value: "12", Type: BigInt, Line: 1, Col: 22},
				{Type: EOF, Line: 1, Col: 25},
			},
		},
		{
			"regex",
			`/a[/]b\//gi`,
			[]Token{
				{Value: `a[/]b\/`, Flags: "gi", Type: Regex, Line: 1, Col: 1},
				{Type: EOF, Line: 1, Col: 12},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize failed: %v", err)
			}
			if len(tokens) != len(tt.expected) {
				t.Fatalf("Expected %d tokens, got %d: %+v", len(tt.expected), len(tokens), tokens)
			}
			for i, tok := range tokens {
				if tok != tt.expected[i] {
					t.Errorf("token %d: expected %+v, got %+v", i, tt.expected[i], tok)
				}
			}
		})
	}
}

func TestTokenize_Strings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"plain"`, "plain"},
		{`'single "quoted"'`, `single "quoted"`},
		{`"a\nb\tc"`, "a\nb\tc"},
		{`"\x3C/script>"`, "</script>"},
		{`"é"`, "é"},
		{`"\u{1F600}"`, "\U0001F600"},
		{`"😀"`, "\U0001F600"},
		{`"\uD83D"`, "�"},
		{`"it\'s"`, "it's"},
	}

	for _, tt := range tests {
		tokens, err := Tokenize(tt.input)
		if err != nil {
			t.Fatalf("Tokenize(%s) failed: %v", tt.input, err)
		}
		if tokens[0].Type != String || tokens[0].Value != tt.expected {
			t.Errorf("Tokenize(%s): expected %q, got %q", tt.input, tt.expected, tokens[0].Value)
		}
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		input string
		line  int
		col   int
	}{
		{`"open`, 1, 1},
		{"a\n  'x\n'", 2, 3},
		{"/* never closed", 1, 1},
		{"/abc", 1, 1},
		{"a # b", 1, 3},
		{"3in", 1, 2},
	}

	for _, tt := range tests {
		_, err := Tokenize(tt.input)
		if err == nil {
			t.Fatalf("Tokenize(%q): expected error", tt.input)
		}
		e, ok := err.(*Error)
		if !ok {
			t.Fatalf("Tokenize(%q): expected *Error, got %T", tt.input, err)
		}
		if e.Line != tt.line || e.Col != tt.col {
			t.Errorf("Tokenize(%q): expected %d:%d, got %d:%d", tt.input, tt.line, tt.col, e.Line, e.Col)
		}
	}
}

func TestType_String(t *testing.T) {
	if Regex.String() != "regular expression" {
		t.Errorf("got %s", Regex.String())
	}
	if Type(99).String() != "unknown" {
		t.Errorf("got %s", Type(99).String())
	}
}
