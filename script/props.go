package script

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf16"

	"github.com/wippyai/crossval/errors"
	"github.com/wippyai/crossval/internal/jsfmt"
	"github.com/wippyai/crossval/script/internal/ast"
	"github.com/wippyai/crossval/value"
)

func index(key string) (int, bool) {
	if !jsfmt.IsIndex(key) {
		return 0, false
	}
	i, err := strconv.Atoi(key)
	return i, err == nil
}

func method(name string, fn func(args []any) (any, error)) *value.Function {
	return value.NativeFunc(name, fn)
}

func (r *Runtime) getProperty(obj any, key string, pos ast.Pos) (any, error) {
	switch o := obj.(type) {
	case nil, value.UndefinedType:
		return nil, errors.TypeError(pos.Line, pos.Col,
			"Cannot read properties of %s (reading '%s')", toString(obj), key)
	case *value.Object:
		if v, ok := o.Get(key); ok {
			return v, nil
		}
	case *value.Array:
		return arrayProperty(o, key), nil
	case *value.Map:
		return mapProperty(o, key), nil
	case *value.Set:
		return setMembers(o, key), nil
	case *value.Error:
		switch key {
		case "name":
			return o.Name, nil
		case "message":
			return o.Message, nil
		case "cause":
			if o.HasCause() {
				return o.Cause, nil
			}
		}
	case *value.RegExp:
		switch key {
		case "source":
			return o.Source, nil
		case "flags":
			return o.Flags, nil
		}
	case *value.Bytes:
		if key == "length" {
			return float64(len(o.Data)), nil
		}
		if i, ok := index(key); ok && i < len(o.Data) {
			return float64(o.Data[i]), nil
		}
	case *value.Promise:
		if _, ok := r.deferred[o]; ok {
			return promiseProperty(o, key), nil
		}
	case *value.Stream:
		if _, ok := r.streams[o]; ok {
			return streamProperty(o, key), nil
		}
	case *value.Function:
		if key == "name" {
			return o.Name, nil
		}
		if v, ok := o.Static[key]; ok {
			return v, nil
		}
	case string:
		units := utf16.Encode([]rune(o))
		if key == "length" {
			return float64(len(units)), nil
		}
		if i, ok := index(key); ok && i < len(units) {
			return string(utf16.Decode(units[i : i+1])), nil
		}
	}
	return value.Undefined, nil
}

func arrayProperty(a *value.Array, key string) any {
	if key == "length" {
		return float64(a.Len())
	}
	if i, ok := index(key); ok {
		return a.At(i)
	}
	if key == "push" {
		return method("push", func(args []any) (any, error) {
			a.Append(args...)
			return float64(a.Len()), nil
		})
	}
	return value.Undefined
}

func mapProperty(m *value.Map, key string) any {
	switch key {
	case "size":
		return float64(m.Len())
	case "set":
		return method("set", func(args []any) (any, error) {
			m.Set(value.Arg(args, 0), value.Arg(args, 1))
			return m, nil
		})
	case "get":
		return method("get", func(args []any) (any, error) {
			if v, ok := m.Get(value.Arg(args, 0)); ok {
				return v, nil
			}
			return value.Undefined, nil
		})
	case "has":
		return method("has", func(args []any) (any, error) {
			return m.Has(value.Arg(args, 0)), nil
		})
	}
	return value.Undefined
}

func setMembers(s *value.Set, key string) any {
	switch key {
	case "size":
		return float64(s.Len())
	case "add":
		return method("add", func(args []any) (any, error) {
			s.Add(value.Arg(args, 0))
			return s, nil
		})
	case "has":
		return method("has", func(args []any) (any, error) {
			return s.Has(value.Arg(args, 0)), nil
		})
	}
	return value.Undefined
}

func promiseProperty(p *value.Promise, key string) any {
	switch key {
	case "s":
		return method("s", func(args []any) (any, error) {
			p.Resolve(value.Arg(args, 0))
			return value.Undefined, nil
		})
	case "f":
		return method("f", func(args []any) (any, error) {
			p.Reject(value.Arg(args, 0))
			return value.Undefined, nil
		})
	}
	return value.Undefined
}

func streamProperty(s *value.Stream, key string) any {
	switch key {
	case "n":
		return method("n", func(args []any) (any, error) {
			s.Push(value.Arg(args, 0))
			return value.Undefined, nil
		})
	case "d":
		return method("d", func(args []any) (any, error) {
			s.Close(value.Arg(args, 0))
			return value.Undefined, nil
		})
	case "e":
		return method("e", func(args []any) (any, error) {
			s.Fail(value.Arg(args, 0))
			return value.Undefined, nil
		})
	}
	return value.Undefined
}

func (r *Runtime) setProperty(obj any, key string, v any, pos ast.Pos) error {
	switch o := obj.(type) {
	case nil, value.UndefinedType:
		return errors.TypeError(pos.Line, pos.Col,
			"Cannot set properties of %s (setting '%s')", toString(obj), key)
	case *value.Object:
		o.Set(key, v)
		return nil
	case *value.Array:
		if key == "length" {
			n := toNumber(v)
			if n < 0 || n != math.Trunc(n) || n > math.MaxUint32 {
				return errors.TypeError(pos.Line, pos.Col, "Invalid array length")
			}
			o.SetLen(int(n))
			return nil
		}
		if i, ok := index(key); ok {
			o.Set(i, v)
			return nil
		}
	case *value.Error:
		switch key {
		case "name":
			o.Name = toString(v)
			return nil
		case "message":
			o.Message = toString(v)
			return nil
		case "cause":
			o.Cause = v
			return nil
		}
	}
	return errors.TypeError(pos.Line, pos.Col, "Cannot set property '%s' on %s", key, describeType(obj))
}

func describeType(v any) string {
	switch v.(type) {
	case *value.Array:
		return "array"
	case *value.Map:
		return "map"
	case *value.Set:
		return "set"
	}
	return fmt.Sprintf("%s value", value.TypeOf(v))
}
