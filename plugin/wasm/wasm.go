// Package wasm serializes compiled WebAssembly modules.
//
// A *Module holds a raw WebAssembly binary. Before it is emitted the binary
// is compiled with wazero, so only valid modules reach the output:
//
//	new WebAssembly.Module(new Uint8Array([0,97,115,109,1,0,0,0]))
//
// Globals exposes WebAssembly.Module and WebAssembly.validate to the script
// evaluator.
package wasm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/crossval/internal/jsfmt"
	"github.com/wippyai/crossval/plugin"
)

// ExportKind is the kind of an exported definition.
type ExportKind uint8

const (
	ExportFunction ExportKind = iota
	ExportMemory
)

func (k ExportKind) String() string {
	if k == ExportMemory {
		return "memory"
	}
	return "function"
}

// Export is one exported definition of a module.
type Export struct {
	Name string
	Kind ExportKind
}

// Module is a validated WebAssembly binary.
type Module struct {
	Binary  []byte
	Exports []Export
	Imports []string // "module.name" of imported functions
}

// Compile validates bin and lists its exports and imports.
func Compile(ctx context.Context, bin []byte) (*Module, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, bin)
	if err != nil {
		return nil, fmt.Errorf("compile failed: %w", err)
	}
	defer compiled.Close(ctx)

	m := &Module{Binary: append([]byte(nil), bin...)}
	for name := range compiled.ExportedFunctions() {
		m.Exports = append(m.Exports, Export{Name: name, Kind: ExportFunction})
	}
	for name := range compiled.ExportedMemories() {
		m.Exports = append(m.Exports, Export{Name: name, Kind: ExportMemory})
	}
	sort.Slice(m.Exports, func(i, j int) bool { return m.Exports[i].Name < m.Exports[j].Name })

	for _, fn := range compiled.ImportedFunctions() {
		mod, name, _ := fn.Import()
		m.Imports = append(m.Imports, mod+"."+name)
	}

	Logger().Debug("module compiled", zapExports(m.Exports))
	return m, nil
}

// String lists the module's exports for display.
func (m *Module) String() string {
	names := make([]string, len(m.Exports))
	for i, e := range m.Exports {
		names[i] = e.Kind.String() + " " + e.Name
	}
	return "WebAssembly.Module{" + strings.Join(names, ", ") + "}"
}

// Plugin serializes *Module values. The binary is compiled again on encode
// so a Module assembled by hand cannot emit an invalid binary.
type Plugin struct{}

func (Plugin) Tag() string { return "WebAssembly.Module" }

func (Plugin) Test(v any) bool {
	m, ok := v.(*Module)
	return ok && m != nil
}

func (Plugin) Encode(v any, _ plugin.Encoder) (any, error) {
	m := v.(*Module)
	if _, err := Compile(context.Background(), m.Binary); err != nil {
		return nil, err
	}
	return m.Binary, nil
}

func (Plugin) Generate(desc any, _ plugin.Generator) (string, error) {
	return "new WebAssembly.Module(" + jsfmt.Bytes(desc.([]byte)) + ")", nil
}
