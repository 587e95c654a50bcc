package script

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/wippyai/crossval/internal/jsfmt"
	"github.com/wippyai/crossval/value"
)

func (r *Runtime) installBuiltins() {
	g := r.globals
	g["undefined"] = value.Undefined
	g["NaN"] = math.NaN()
	g["Infinity"] = math.Inf(1)

	g["Promise"] = &value.Function{
		Name: "Promise",
		Construct: func([]any) (any, error) {
			return nil, fmt.Errorf("promise executors are not supported; use Promise.resolve or sleep")
		},
		Static: map[string]any{
			"resolve": value.NativeFunc("resolve", func(args []any) (any, error) {
				if p, ok := value.Arg(args, 0).(*value.Promise); ok {
					return p, nil
				}
				return value.Resolved(value.Arg(args, 0)), nil
			}),
			"reject": value.NativeFunc("reject", func(args []any) (any, error) {
				return value.Rejected(value.Arg(args, 0)), nil
			}),
		},
	}
	g["Map"] = value.NativeConstructor("Map", newMap)
	g["Set"] = value.NativeConstructor("Set", newSet)
	g["Date"] = &value.Function{
		Name:      "Date",
		Construct: newDate,
		Call: func([]any) (any, error) {
			return time.Now().UTC().Format(time.RFC1123), nil
		},
		Static: map[string]any{
			"now": value.NativeFunc("now", func([]any) (any, error) {
				return float64(time.Now().UnixMilli()), nil
			}),
		},
	}
	g["RegExp"] = &value.Function{Name: "RegExp", Construct: newRegExp, Call: newRegExp}
	for _, name := range value.ErrorNames {
		ctor := errorConstructor(name)
		g[name] = &value.Function{Name: name, Construct: ctor, Call: ctor}
	}
	g["Uint8Array"] = value.NativeConstructor("Uint8Array", newBytes)
	g["BigInt"] = value.NativeFunc("BigInt", toBigInt)
	g["Object"] = &value.Function{
		Name: "Object",
		Static: map[string]any{
			"assign":         value.NativeFunc("assign", objectAssign),
			"defineProperty": value.NativeFunc("defineProperty", defineProperty),
		},
	}

	g["sleep"] = value.NativeFunc("sleep", func(args []any) (any, error) {
		return value.Delay(value.Arg(args, 0), r.delay(value.Arg(args, 1))), nil
	})
	g["fail"] = value.NativeFunc("fail", func(args []any) (any, error) {
		return value.DelayReject(value.Arg(args, 0), r.delay(value.Arg(args, 1))), nil
	})
	g["iterate"] = value.NativeFunc("iterate", r.iterate)
}

// installReconstruction binds the helpers the cross-reference header
// would define.
func (r *Runtime) installReconstruction() {
	if _, ok := r.globals[jsfmt.RefArray].(*value.Array); !ok {
		r.globals[jsfmt.RefArray] = value.NewArray()
	}
	r.globals[jsfmt.PromiseFactory] = value.NativeFunc(jsfmt.PromiseFactory, func([]any) (any, error) {
		p := value.NewPromise()
		r.deferred[p] = struct{}{}
		return p, nil
	})
	r.globals[jsfmt.IterableFactory] = value.NativeFunc(jsfmt.IterableFactory, func([]any) (any, error) {
		s := value.NewStream()
		r.streams[s] = struct{}{}
		return s, nil
	})
}

func (r *Runtime) delay(ms any) time.Duration {
	n := toNumber(ms)
	if math.IsNaN(n) || n <= 0 {
		return 0
	}
	return time.Duration(n * r.scale * float64(time.Millisecond))
}

func (r *Runtime) iterate(args []any) (any, error) {
	var items []any
	switch src := value.Arg(args, 0).(type) {
	case *value.Array:
		for i := 0; i < src.Len(); i++ {
			items = append(items, src.At(i))
		}
	case *value.Set:
		src.Each(func(v any) bool {
			items = append(items, v)
			return true
		})
	default:
		return nil, fmt.Errorf("iterate expects an array or a set")
	}
	d := r.delay(value.Arg(args, 1))
	return value.Generate(func(ctx context.Context, yield func(any) error) (any, error) {
		for _, item := range items {
			if d > 0 {
				t := time.NewTimer(d)
				select {
				case <-ctx.Done():
					t.Stop()
					return nil, ctx.Err()
				case <-t.C:
				}
			}
			if err := yield(item); err != nil {
				return nil, err
			}
		}
		return value.Undefined, nil
	}), nil
}

func newMap(args []any) (any, error) {
	m := value.NewMap()
	switch src := value.Arg(args, 0).(type) {
	case nil, value.UndefinedType:
	case *value.Map:
		src.Each(func(k, v any) bool {
			m.Set(k, v)
			return true
		})
	case *value.Array:
		for i := 0; i < src.Len(); i++ {
			entry, ok := src.At(i).(*value.Array)
			if !ok {
				return nil, fmt.Errorf("iterator value %s is not an entry object", value.Describe(src.At(i)))
			}
			m.Set(entry.At(0), entry.At(1))
		}
	default:
		return nil, fmt.Errorf("%s is not iterable", value.Describe(src))
	}
	return m, nil
}

func newSet(args []any) (any, error) {
	s := value.NewSet()
	switch src := value.Arg(args, 0).(type) {
	case nil, value.UndefinedType:
	case *value.Set:
		src.Each(func(v any) bool {
			s.Add(v)
			return true
		})
	case *value.Array:
		for i := 0; i < src.Len(); i++ {
			s.Add(src.At(i))
		}
	default:
		return nil, fmt.Errorf("%s is not iterable", value.Describe(src))
	}
	return s, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123,
}

func newDate(args []any) (any, error) {
	if len(args) == 0 {
		return time.Now().UTC(), nil
	}
	switch src := args[0].(type) {
	case time.Time:
		return src, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(src)); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, fmt.Errorf("invalid date %q", src)
	}
	ms := toNumber(args[0])
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > 8.64e15 {
		return nil, fmt.Errorf("invalid date")
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}

func newRegExp(args []any) (any, error) {
	source := ""
	flags := ""
	switch src := value.Arg(args, 0).(type) {
	case *value.RegExp:
		source, flags = src.Source, src.Flags
	case value.UndefinedType:
		source = "(?:)"
	default:
		source = toString(src)
	}
	if f := value.Arg(args, 1); f != value.Undefined {
		flags = toString(f)
	}
	return value.NewRegExp(source, flags)
}

func errorConstructor(name string) func(args []any) (any, error) {
	return func(args []any) (any, error) {
		e := value.NewError(name, "")
		if msg := value.Arg(args, 0); msg != value.Undefined {
			e.Message = toString(msg)
		}
		if opts, ok := value.Arg(args, 1).(*value.Object); ok {
			if cause, has := opts.Get("cause"); has {
				e.Cause = cause
			}
		}
		return e, nil
	}
}

func newBytes(args []any) (any, error) {
	switch src := value.Arg(args, 0).(type) {
	case nil, value.UndefinedType:
		return &value.Bytes{Data: []byte{}}, nil
	case *value.Bytes:
		return &value.Bytes{Data: append([]byte{}, src.Data...)}, nil
	case *value.Array:
		data := make([]byte, src.Len())
		for i := range data {
			data[i] = toUint8(toNumber(src.At(i)))
		}
		return &value.Bytes{Data: data}, nil
	}
	n := toNumber(args[0])
	if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return nil, fmt.Errorf("invalid typed array length: %s", toString(args[0]))
	}
	return &value.Bytes{Data: make([]byte, int(n))}, nil
}

func toUint8(f float64) byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(f), 256)
	if m < 0 {
		m += 256
	}
	return byte(m)
}

func toBigInt(args []any) (any, error) {
	switch src := value.Arg(args, 0).(type) {
	case *big.Int:
		return new(big.Int).Set(src), nil
	case bool:
		if src {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	case string:
		s := strings.TrimSpace(src)
		if s == "" {
			return big.NewInt(0), nil
		}
		if n, ok := new(big.Int).SetString(s, 0); ok && !strings.Contains(s, "_") {
			return n, nil
		}
		return nil, fmt.Errorf("cannot convert %s to a BigInt", s)
	}
	f, ok := value.ToNumber(value.Arg(args, 0))
	if !ok {
		return nil, fmt.Errorf("cannot convert %s to a BigInt", toString(value.Arg(args, 0)))
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("the number %s cannot be converted to a BigInt because it is not an integer", numberString(f))
	}
	n, _ := big.NewFloat(f).Int(nil)
	return n, nil
}

func objectAssign(args []any) (any, error) {
	target := value.Arg(args, 0)
	for _, src := range args[min(1, len(args)):] {
		obj, ok := src.(*value.Object)
		if !ok {
			continue
		}
		var err error
		obj.Each(func(k string, v any) bool {
			err = assignOwn(target, k, v)
			return err == nil
		})
		if err != nil {
			return nil, err
		}
	}
	return target, nil
}

func assignOwn(target any, key string, v any) error {
	switch t := target.(type) {
	case *value.Object:
		t.Set(key, v)
		return nil
	case *value.Error:
		switch key {
		case "name":
			t.Name = toString(v)
		case "message":
			t.Message = toString(v)
		case "cause":
			t.Cause = v
		default:
			return fmt.Errorf("cannot assign property %q to an error", key)
		}
		return nil
	case *value.Array:
		if i, ok := index(key); ok {
			t.Set(i, v)
			return nil
		}
	}
	return fmt.Errorf("cannot assign property %q to %s", key, value.Describe(target))
}

func defineProperty(args []any) (any, error) {
	target := value.Arg(args, 0)
	desc, ok := value.Arg(args, 2).(*value.Object)
	if !ok {
		return nil, fmt.Errorf("property description must be an object")
	}
	v, has := desc.Get("value")
	if !has {
		v = value.Undefined
	}
	if err := assignOwn(target, toString(value.Arg(args, 1)), v); err != nil {
		return nil, err
	}
	return target, nil
}
