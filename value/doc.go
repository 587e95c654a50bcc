// Package value defines the JavaScript value model that crossval serializes.
//
// A value node is a plain Go any drawn from a closed set of shapes:
//
//	JS shape        Go representation
//	────────────────────────────────────────────────
//	undefined       Undefined
//	null            nil
//	boolean         bool
//	number          float64, float32, any int/uint kind
//	bigint          *big.Int
//	string          string
//	Date            time.Time
//	Array           *Array
//	object          *Object
//	Map / Set       *Map / *Set
//	RegExp          *RegExp
//	Error           *Error (or any Go error)
//	Uint8Array      *Bytes
//	function        *Function
//	Promise         *Promise
//	AsyncIterable   anything implementing AsyncIterable
//
// Reference identity is Go pointer identity: two fields holding the same
// *Object are the same JS object. Use Identity to obtain the comparable key
// the serializer and the keyed collections use.
//
// # Async values
//
// Promise settles exactly once and can be awaited from any goroutine.
// Stream is a push-driven AsyncIterable; Generate wraps a Go function that
// yields values lazily, the way an async generator does.
//
// # Thread Safety
//
// Promise, Stream and Generator are safe for concurrent use. Object, Array,
// Map and Set are not; build the graph before handing it to a serializer.
package value
