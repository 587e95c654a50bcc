package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/crossval/plugin"
	"github.com/wippyai/crossval/plugin/wasm"
	"github.com/wippyai/crossval/script"
	"github.com/wippyai/crossval/serializer"
	"github.com/wippyai/crossval/stream"
	"github.com/wippyai/crossval/value"
)

func testApp(t *testing.T) *app {
	t.Helper()
	a, err := newApp(defaultConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	return a
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	err := testApp(t).run(context.Background(), `({a: sleep(1, 0), u: new URL("https://x.dev/")})`, &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	want := serializer.CrossReferenceHeader() + "\n" +
		`$R[0]={a:$R[1]=$P(),u:$R[2]=new URL("https://x.dev/")};` + "\n" +
		`$R[1].s(1);` + "\n"
	if out.String() != want {
		t.Fatalf("Expected:\n%s\ngot:\n%s", want, out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []string{
		`({a: `,
		`missing`,
		`({f: function () {}})`,
	}
	for _, src := range tests {
		var out bytes.Buffer
		if err := testApp(t).run(context.Background(), src, &out); err == nil {
			t.Errorf("%s: expected error", src)
		}
		if out.Len() != 0 {
			t.Errorf("%s: expected no output, got %s", src, out.String())
		}
	}
}

func TestExampleSource(t *testing.T) {
	v, err := script.Eval(context.Background(), exampleSource, script.WithTimeScale(0))
	if err != nil {
		t.Fatalf("example failed to evaluate: %v", err)
	}
	obj, ok := v.(*value.Object)
	if !ok {
		t.Fatalf("Expected object, got %T", v)
	}
	if got := strings.Join(obj.Keys(), ","); got != "foo,bar,baz" {
		t.Fatalf("Expected foo,bar,baz, got %s", got)
	}
	for _, k := range obj.Keys() {
		it, _ := obj.Get(k)
		if _, ok := it.(value.AsyncIterable); !ok {
			t.Errorf("%s: expected async iterable, got %T", k, it)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Debounce != 250*time.Millisecond {
		t.Errorf("Expected default debounce 250ms, got %v", cfg.Debounce)
	}

	path := filepath.Join(t.TempDir(), "crossval.yaml")
	data := "debounce: 1s\nplugins: [web]\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Debounce != time.Second || len(cfg.Plugins) != 1 || cfg.LogLevel != "debug" {
		t.Errorf("Unexpected config: %+v", cfg)
	}

	if err := os.WriteFile(path, []byte("debounce: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestPluginSet(t *testing.T) {
	plugins, globals, err := pluginSet([]string{"web", "WASM"})
	if err != nil {
		t.Fatalf("pluginSet failed: %v", err)
	}
	if len(plugins) != 6 {
		t.Errorf("Expected 6 plugins, got %d", len(plugins))
	}
	for _, name := range []string{"URL", "Headers", "WebAssembly"} {
		if _, ok := globals[name]; !ok {
			t.Errorf("Expected global %s", name)
		}
	}
	if _, _, err := pluginSet([]string{"nope"}); err == nil {
		t.Error("Expected error for unknown plugin")
	}
}

func TestDepth(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{`({a: 1})`, 0},
		{`({a: [`, 3},
		{`"(" + '[{'`, 0},
		{`"\"("`, 0},
		{`])`, -2},
		{`/[/`, 0},
		{`/[/]/.test("(")`, 0},
		{`[/\(/`, 1},
		{"[1, // (\n", 1},
		{`/* [ */ (`, 1},
		{"({a: /(/g,\n", 2},
	}
	for _, tt := range tests {
		if got := depth(tt.src); got != tt.want {
			t.Errorf("depth(%s): expected %d, got %d", tt.src, tt.want, got)
		}
	}
}

func TestSetLoggers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	setLoggers(zap.New(core))
	defer setLoggers(zap.NewNop())

	stream.Logger().Warn("from stream")
	script.Logger().Warn("from script")
	plugin.Logger().Warn("from plugin")
	wasm.Logger().Warn("from wasm")

	want := []string{"stream", "script", "plugin", "wasm"}
	entries := logs.All()
	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(entries))
	}
	for i, name := range want {
		if entries[i].LoggerName != name {
			t.Errorf("Entry %d: expected logger %s, got %s", i, name, entries[i].LoggerName)
		}
	}
}
