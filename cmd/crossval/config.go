package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/crossval/plugin"
	"github.com/wippyai/crossval/plugin/wasm"
	"github.com/wippyai/crossval/plugin/web"
)

// Config is the optional YAML configuration of the CLI.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	LogFile  string        `yaml:"log_file"`
	Example  string        `yaml:"example"`
	Plugins  []string      `yaml:"plugins"`
	Debounce time.Duration `yaml:"debounce"`
}

func defaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Plugins:  []string{"web", "wasm"},
		Debounce: 250 * time.Millisecond,
	}
}

func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 250 * time.Millisecond
	}
	return cfg, nil
}

// pluginSet resolves plugin names to plugins and the script globals that
// construct their values.
func pluginSet(names []string) ([]plugin.Plugin, map[string]any, error) {
	var plugins []plugin.Plugin
	globals := make(map[string]any)
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "web":
			plugins = append(plugins, web.Plugins()...)
			for k, v := range web.Globals() {
				globals[k] = v
			}
		case "wasm":
			plugins = append(plugins, wasm.Plugin{})
			for k, v := range wasm.Globals() {
				globals[k] = v
			}
		case "":
		default:
			return nil, nil, fmt.Errorf("unknown plugin %q", name)
		}
	}
	return plugins, globals, nil
}

// newLogger builds a zap logger. Without a log file only warnings reach
// stderr, so they do not mix with the emitted code on stdout.
func newLogger(cfg *Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	if cfg.LogFile != "" {
		zc = zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		zc.OutputPaths = []string{cfg.LogFile}
		zc.ErrorOutputPaths = []string{cfg.LogFile}
	} else if level < zapcore.WarnLevel {
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return zc.Build()
}
