// Package crossval serializes JavaScript values into JavaScript source that
// rebuilds them in another environment, preserving shared references and
// cycles, and streaming promises and async iterables as they settle.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	crossval/            Root package with the top-level entry points
//	├── value/           Go representation of JS values
//	├── serializer/      Classifier, reference table and code generator
//	├── stream/          Streaming sessions with async patches
//	├── plugin/          Plugin interface and registry
//	│   ├── web/         URL, URLSearchParams, Headers, Blob, File
//	│   └── wasm/        WebAssembly.Module (validated with wazero)
//	├── script/          Evaluator for a JavaScript subset (deserialize)
//	├── errors/          Structured error types for debugging
//	└── cmd/crossval/    CLI, line REPL and two-pane TUI
//
// # Quick Start
//
// Turn source into a value and stream it:
//
//	v, err := crossval.Deserialize(ctx, `({p: sleep("hi", 100)})`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(crossval.CrossReferenceHeader())
//	cancel := crossval.CrossSerializeStream(v, crossval.StreamOptions{
//	    OnSerialize: func(code string, initial bool) {
//	        fmt.Println(code + ";")
//	    },
//	})
//	defer cancel()
//
// Output:
//
//	$R[0]={p:$R[1]=$P()};
//	$R[1].s("hi");
//
// # Output Format
//
// Shared and cyclic values are bound to slots of the $R array. Containers
// are written shell first: a cyclic object is created, bound, and then
// completed with assignments, so no expression refers to a slot before it
// is bound. Promises become $P() placeholders patched with .s and .f;
// async iterables become $I() placeholders patched with .n, .d and .e.
//
// # Thread Safety
//
// Serialize and CrossSerialize are safe for concurrent use. A stream
// session runs on its own goroutines; its value graph must not be mutated
// while the session reads it.
package crossval
