package serializer

import (
	"math/big"
	"reflect"
	"time"

	"github.com/wippyai/crossval/plugin"
	"github.com/wippyai/crossval/value"
)

// Kind is the serialization strategy of a value.
type Kind uint8

const (
	KindUnsupported Kind = iota
	KindPrimitive
	KindArray
	KindObject
	KindMap
	KindSet
	KindRegExp
	KindError
	KindBytes
	KindPromise
	KindAsyncIterable
	KindPlugin
)

var kindNames = [...]string{
	KindUnsupported:   "unsupported",
	KindPrimitive:     "primitive",
	KindArray:         "array",
	KindObject:        "object",
	KindMap:           "map",
	KindSet:           "set",
	KindRegExp:        "regexp",
	KindError:         "error",
	KindBytes:         "bytes",
	KindPromise:       "promise",
	KindAsyncIterable: "async-iterable",
	KindPlugin:        "plugin",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Classify returns the strategy used for v. Primitives are recognized
// first, then plugins in registration order, then the built-in shapes.
func Classify(v any, reg *plugin.Registry) Kind {
	k, _ := classify(v, reg)
	return k
}

func classify(v any, reg *plugin.Registry) (Kind, plugin.Plugin) {
	if isPrimitive(v) {
		return KindPrimitive, nil
	}
	if p, ok := reg.Match(v); ok {
		return KindPlugin, p
	}
	switch x := v.(type) {
	case *value.Array:
		if x != nil {
			return KindArray, nil
		}
	case *value.Object:
		if x != nil {
			return KindObject, nil
		}
	case *value.Map:
		if x != nil {
			return KindMap, nil
		}
	case *value.Set:
		if x != nil {
			return KindSet, nil
		}
	case *value.RegExp:
		if x != nil {
			return KindRegExp, nil
		}
	case *value.Bytes:
		if x != nil {
			return KindBytes, nil
		}
	case *value.Promise:
		if x != nil {
			return KindPromise, nil
		}
	case *value.Function, value.HoleType:
		return KindUnsupported, nil
	case *value.Error:
		if x != nil {
			return KindError, nil
		}
	case value.AsyncIterable:
		if !isNilPointer(v) {
			return KindAsyncIterable, nil
		}
	case error:
		if !isNilPointer(v) {
			return KindError, nil
		}
	}
	return KindUnsupported, nil
}

func isPrimitive(v any) bool {
	switch x := v.(type) {
	case nil, value.UndefinedType, bool, string, time.Time:
		return true
	case *big.Int:
		return x != nil
	}
	_, ok := value.ToNumber(v)
	return ok
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
