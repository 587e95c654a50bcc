package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/wippyai/crossval/errors"
	"github.com/wippyai/crossval/serializer"
)

const (
	historyFile = ".crossval_history"
	promptMain  = "crossval> "
	promptCont  = "......... "
)

// runREPL reads one expression per entry and streams its snippets until the
// session ends. Ctrl+C cancels a running session.
func (a *app) runREPL() error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Println(serializer.CrossReferenceHeader())
	for {
		src, ok := readEntry(ln)
		if !ok {
			fmt.Println()
			return nil
		}
		trimmed := strings.TrimSpace(src)
		switch trimmed {
		case "":
			continue
		case ":quit", ":q":
			return nil
		case ":example":
			src = exampleSource
		}
		ln.AppendHistory(strings.ReplaceAll(trimmed, "\n", " "))

		if err := a.replRun(src); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		}
	}
}

func (a *app) replRun(src string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := a.start(ctx, src)
	if err != nil {
		return err
	}
	for snip := range s.Snippets() {
		fmt.Println(snip.Code + ";")
	}
	err = s.Err()
	if stderrors.Is(err, errors.ErrCancelled) {
		fmt.Println(helpStyle.Render("// cancelled"))
		return nil
	}
	return err
}

// readEntry keeps prompting while brackets are open, so an object literal
// can span several lines.
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if stderrors.Is(err, io.EOF) {
			return "", false
		}
		if stderrors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if depth(b.String()) <= 0 {
			return b.String(), true
		}
	}
}

// depth counts unclosed brackets outside strings, comments and regular
// expression literals. A slash always starts a regular expression, the same
// as in the evaluator.
func depth(src string) int {
	rs := []rune(src)
	n := 0
	for i := 0; i < len(rs); i++ {
		switch r := rs[i]; r {
		case '"', '\'', '`':
			i = skipQuoted(rs, i+1, r)
		case '/':
			switch {
			case i+1 < len(rs) && rs[i+1] == '/':
				for i < len(rs) && rs[i] != '\n' {
					i++
				}
			case i+1 < len(rs) && rs[i+1] == '*':
				i += 2
				for i+1 < len(rs) && !(rs[i] == '*' && rs[i+1] == '/') {
					i++
				}
				i++
			default:
				i = skipRegExp(rs, i+1)
			}
		case '(', '[', '{':
			n++
		case ')', ']', '}':
			n--
		}
	}
	return n
}

// skipQuoted returns the index of the closing quote, or len(rs).
func skipQuoted(rs []rune, i int, quote rune) int {
	for ; i < len(rs); i++ {
		switch rs[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return len(rs)
}

// skipRegExp returns the index of the slash closing a regular expression
// body, or len(rs). Slashes inside a character class do not close it.
func skipRegExp(rs []rune, i int) int {
	class := false
	for ; i < len(rs); i++ {
		switch rs[i] {
		case '\\':
			i++
		case '[':
			class = true
		case ']':
			class = false
		case '/':
			if !class {
				return i
			}
		case '\n':
			return i
		}
	}
	return len(rs)
}
