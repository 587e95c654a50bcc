package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/crossval/plugin"
	"github.com/wippyai/crossval/plugin/wasm"
	"github.com/wippyai/crossval/script"
	"github.com/wippyai/crossval/serializer"
	"github.com/wippyai/crossval/stream"
)

//go:embed example.js
var exampleSource string

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config file")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		batch       = flag.Bool("batch", false, "Never start the TUI, even on a terminal")
		repl        = flag.Bool("repl", false, "Line-mode REPL")
		example     = flag.Bool("example", false, "Serialize the built-in example")
	)
	flag.Parse()

	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Usage: crossval [-config file.yaml] [file.js]")
		fmt.Fprintln(os.Stderr, "       crossval -i [file.js]  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       crossval -repl")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	setLoggers(log)

	app, err := newApp(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *repl {
		if err := app.runREPL(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))
	useTUI := *interactive || (stdinTTY && flag.NArg() == 0 && !*batch && !*example)

	src, err := app.source(flag.Arg(0), *example || (useTUI && flag.NArg() == 0), stdinTTY)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if useTUI {
		if err := runInteractive(app, src); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := app.run(ctx, src, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every mode shares: plugins, their globals and the logger.
type app struct {
	cfg     *Config
	log     *zap.Logger
	globals map[string]any
	plugins []plugin.Plugin
}

func newApp(cfg *Config, log *zap.Logger) (*app, error) {
	plugins, globals, err := pluginSet(cfg.Plugins)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, plugins: plugins, globals: globals}, nil
}

// source picks the input: a file, the example, or stdin.
func (a *app) source(path string, useExample, stdinTTY bool) (string, error) {
	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return string(data), nil
	case useExample:
		if a.cfg.Example != "" {
			data, err := os.ReadFile(a.cfg.Example)
			if err != nil {
				return "", fmt.Errorf("read example: %w", err)
			}
			return string(data), nil
		}
		return exampleSource, nil
	case stdinTTY:
		return "", fmt.Errorf("no input: pass a file, -example or pipe source to stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func (a *app) eval(ctx context.Context, src string) (any, error) {
	return script.Eval(ctx, src, script.WithGlobals(a.globals))
}

// start evaluates src and starts a stream session for its value.
func (a *app) start(ctx context.Context, src string) (*stream.Session, error) {
	v, err := a.eval(ctx, src)
	if err != nil {
		return nil, err
	}
	return stream.Start(ctx, v, stream.WithPlugins(a.plugins...))
}

// run prints the header, then every snippet as a statement.
func (a *app) run(ctx context.Context, src string, w io.Writer) error {
	s, err := a.start(ctx, src)
	if err != nil {
		return err
	}
	for snip := range s.Snippets() {
		if snip.Initial {
			fmt.Fprintln(w, serializer.CrossReferenceHeader())
		}
		fmt.Fprintln(w, snip.Code+";")
	}
	if err := s.Err(); err != nil {
		return err
	}
	a.log.Debug("stream finished")
	return nil
}

// setLoggers points every package logger at log.
func setLoggers(log *zap.Logger) {
	stream.SetLogger(log.Named("stream"))
	script.SetLogger(log.Named("script"))
	plugin.SetLogger(log.Named("plugin"))
	wasm.SetLogger(log.Named("wasm"))
}
