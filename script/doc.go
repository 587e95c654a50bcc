// Package script evaluates a JavaScript subset into value graphs.
//
// It has two roles. Eval is the deserialize step that turns user input into
// values for the serializer. Runtime executes serializer output, so emitted
// code can be checked by rebuilding the graph it describes.
//
// # Language
//
// Programs are const, let and var declarations and expression statements,
// separated by semicolons or line breaks. The value of a program is the
// value of its last expression statement. A statement that starts with '{'
// is an object literal; block statements do not exist.
//
// Expressions cover literals (numbers, bigints, strings, regular
// expressions, arrays with holes, objects with computed and shorthand
// keys), member access, calls, new, assignment, comma sequences, the unary
// operators - + ! void typeof, the logical operators || && ??, and the
// conditional operator. There are no binary arithmetic operators, so '/'
// always starts a regular expression.
//
// Functions and arrows are parsed but never run: they evaluate to
// non-callable function values. Their bodies are skipped token by token.
//
// # Globals
//
//	Promise.resolve Promise.reject Map Set Date RegExp Uint8Array BigInt
//	Error EvalError RangeError ReferenceError SyntaxError TypeError URIError
//	Object.assign Object.defineProperty undefined NaN Infinity
//	sleep(value, ms)     promise fulfilled with value after ms
//	fail(reason, ms)     promise rejected with reason after ms
//	iterate(array, ms)   async iterable yielding each element ms apart
//
// WithGlobals adds host constructors, such as the ones provided by plugins.
//
// # Reconstruction
//
// When executed code starts with the cross-reference header, Runtime
// installs native $R, $P and $I in its place. Deferred promises from $P
// gain s and f methods; iterables from $I gain n, d and e.
package script
