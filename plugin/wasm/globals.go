package wasm

import (
	"context"
	"fmt"

	"github.com/wippyai/crossval/value"
)

// Globals returns the WebAssembly namespace for script.WithGlobals.
func Globals() map[string]any {
	return map[string]any{
		"WebAssembly": value.ObjectOf(
			"Module", value.NativeConstructor("Module", func(args []any) (any, error) {
				bin, err := binaryArg(args)
				if err != nil {
					return nil, err
				}
				return Compile(context.Background(), bin)
			}),
			"validate", value.NativeFunc("validate", func(args []any) (any, error) {
				bin, err := binaryArg(args)
				if err != nil {
					return nil, err
				}
				_, err = Compile(context.Background(), bin)
				return err == nil, nil
			}),
		),
	}
}

func binaryArg(args []any) ([]byte, error) {
	b, ok := value.Arg(args, 0).(*value.Bytes)
	if !ok {
		return nil, fmt.Errorf("WebAssembly expects a Uint8Array, got %s", value.Describe(value.Arg(args, 0)))
	}
	return b.Data, nil
}
