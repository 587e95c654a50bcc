package value

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"
	"unsafe"
)

// UndefinedType is the type of Undefined.
type UndefinedType struct{}

func (UndefinedType) String() string { return "undefined" }

// Undefined is the JS undefined value.
var Undefined UndefinedType

// HoleType marks a missing element of a sparse Array.
type HoleType struct{}

// Hole is an array element that was never assigned.
var Hole HoleType

// TypeOf returns the result of the JS typeof operator for v.
func TypeOf(v any) string {
	switch v.(type) {
	case UndefinedType, HoleType:
		return "undefined"
	case nil:
		return "object"
	case bool:
		return "boolean"
	case string:
		return "string"
	case *big.Int:
		return "bigint"
	case *Function:
		return "function"
	}
	if _, ok := ToNumber(v); ok {
		return "number"
	}
	if reflect.TypeOf(v).Kind() == reflect.Func {
		return "function"
	}
	return "object"
}

// ToNumber converts any Go numeric kind to a JS number.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uintptr:
		return float64(n), true
	}
	return 0, false
}

// Truthy reports JS truthiness.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil, UndefinedType, HoleType:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case *big.Int:
		return x.Sign() != 0
	}
	if n, ok := ToNumber(v); ok {
		return n != 0 && !math.IsNaN(n)
	}
	return true
}

// IsNullish reports whether v is null or undefined.
func IsNullish(v any) bool {
	switch v.(type) {
	case nil, UndefinedType, HoleType:
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

type mapIdentity struct {
	typ reflect.Type
	ptr unsafe.Pointer
}

// Identity returns a comparable key that is equal for two occurrences of the
// same JS object and different for distinct objects. Values without
// reference identity (primitives, dates, structs) report false.
func Identity(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		if rv.IsNil() {
			return nil, false
		}
		return v, true
	case reflect.Map:
		if rv.IsNil() {
			return nil, false
		}
		return mapIdentity{typ: rv.Type(), ptr: rv.UnsafePointer()}, true
	}
	return nil, false
}

type nanKey struct{}

type bigKey string

// dateKey is the instant of a Date, independent of location and monotonic
// clock reading.
type dateKey struct {
	sec  int64
	nsec int
}

type opaqueKey struct{ n *int }

// sameValueZero normalizes v into a Go map key that follows the JS
// SameValueZero comparison used by Map and Set.
func sameValueZero(v any) any {
	if n, ok := ToNumber(v); ok {
		if math.IsNaN(n) {
			return nanKey{}
		}
		if n == 0 {
			return float64(0)
		}
		return n
	}
	switch x := v.(type) {
	case *big.Int:
		return bigKey(x.String())
	case time.Time:
		return dateKey{x.Unix(), x.Nanosecond()}
	}
	if id, ok := Identity(v); ok {
		return id
	}
	if v == nil || reflect.TypeOf(v).Comparable() {
		return v
	}
	return opaqueKey{new(int)}
}

// Describe renders a short human-readable description of v for error
// messages and logs.
func Describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case UndefinedType:
		return "undefined"
	case string:
		if len(x) > 32 {
			return fmt.Sprintf("%q...", x[:32])
		}
		return fmt.Sprintf("%q", x)
	case *Function:
		if x.Name != "" {
			return "function " + x.Name
		}
		return "anonymous function"
	case *Object:
		return fmt.Sprintf("object with %d keys", x.Len())
	case *Array:
		return fmt.Sprintf("array of %d", x.Len())
	case *Error:
		return x.Error()
	}
	return fmt.Sprintf("%v (%T)", v, v)
}
