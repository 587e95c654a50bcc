// Package stream runs cross-reference serialization sessions.
//
// A session serializes an initial value and then follows every pending
// promise and async iterable in it. Each settlement becomes a patch snippet
// that updates the placeholder created earlier:
//
//	$R[0]={p:$R[1]=$P()}   initial
//	$R[1].s(42)            promise fulfilled
//
// All snippets of a session share one reference table, so a value sent once
// is referenced as $R[id] in later snippets. Snippets are produced by a
// single goroutine in order. Items of one iterable keep their order.
//
// Evaluating the header from serializer.CrossReferenceHeader once and then
// every snippet in order rebuilds the graph, including the async parts.
package stream
