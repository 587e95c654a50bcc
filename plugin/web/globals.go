package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wippyai/crossval/value"
)

// Globals returns constructors that build the Go values this package
// serializes. Pass them to script.WithGlobals.
func Globals() map[string]any {
	return map[string]any{
		"URL":             value.NativeConstructor("URL", newURL),
		"URLSearchParams": value.NativeConstructor("URLSearchParams", newSearchParams),
		"Headers":         value.NativeConstructor("Headers", newHeaders),
		"Blob":            value.NativeConstructor("Blob", newBlob),
		"File":            value.NativeConstructor("File", newFile),
	}
}

func newURL(args []any) (any, error) {
	href, ok := value.Arg(args, 0).(string)
	if !ok {
		return nil, fmt.Errorf("invalid URL: expected a string")
	}
	u, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", href, err)
	}
	if base, ok := value.Arg(args, 1).(string); ok {
		b, err := url.Parse(base)
		if err != nil || !b.IsAbs() {
			return nil, fmt.Errorf("invalid base URL %q", base)
		}
		u = b.ResolveReference(u)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("invalid URL %q: not absolute", href)
	}
	return u, nil
}

func newSearchParams(args []any) (any, error) {
	switch init := value.Arg(args, 0).(type) {
	case value.UndefinedType, nil:
		return url.Values{}, nil
	case string:
		q, err := url.ParseQuery(strings.TrimPrefix(init, "?"))
		if err != nil {
			return nil, fmt.Errorf("invalid search params: %w", err)
		}
		return q, nil
	case *value.Object:
		q := url.Values{}
		var err error
		init.Each(func(k string, v any) bool {
			s, ok := v.(string)
			if !ok {
				err = fmt.Errorf("search param %q must be a string", k)
				return false
			}
			q.Add(k, s)
			return true
		})
		return q, err
	}
	return nil, fmt.Errorf("unsupported URLSearchParams init")
}

func newHeaders(args []any) (any, error) {
	h := http.Header{}
	switch init := value.Arg(args, 0).(type) {
	case value.UndefinedType, nil:
	case *value.Array:
		for i := 0; i < init.Len(); i++ {
			pair, ok := init.At(i).(*value.Array)
			if !ok || pair.Len() != 2 {
				return nil, fmt.Errorf("header entry %d must be a [name, value] pair", i)
			}
			name, ok1 := pair.At(0).(string)
			val, ok2 := pair.At(1).(string)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("header entry %d must hold strings", i)
			}
			h.Add(name, val)
		}
	case *value.Object:
		var err error
		init.Each(func(k string, v any) bool {
			s, ok := v.(string)
			if !ok {
				err = fmt.Errorf("header %q must be a string", k)
				return false
			}
			h.Add(k, s)
			return true
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported Headers init")
	}
	return h, nil
}

func blobParts(v any) ([]byte, error) {
	parts, ok := v.(*value.Array)
	if !ok {
		return nil, fmt.Errorf("blob parts must be an array")
	}
	var data []byte
	for i := 0; i < parts.Len(); i++ {
		switch p := parts.At(i).(type) {
		case string:
			data = append(data, p...)
		case *value.Bytes:
			data = append(data, p.Data...)
		case *Blob:
			data = append(data, p.Data...)
		case *File:
			data = append(data, p.Data...)
		default:
			return nil, fmt.Errorf("unsupported blob part %s", value.Describe(p))
		}
	}
	return data, nil
}

func stringOption(opts any, key string) string {
	if o, ok := opts.(*value.Object); ok {
		if v, ok := o.Get(key); ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func newBlob(args []any) (any, error) {
	data, err := blobParts(value.Arg(args, 0))
	if err != nil {
		return nil, err
	}
	return &Blob{Data: data, Type: stringOption(value.Arg(args, 1), "type")}, nil
}

func newFile(args []any) (any, error) {
	data, err := blobParts(value.Arg(args, 0))
	if err != nil {
		return nil, err
	}
	name, ok := value.Arg(args, 1).(string)
	if !ok {
		return nil, fmt.Errorf("file name must be a string")
	}
	f := &File{Name: name, Blob: Blob{Data: data, Type: stringOption(value.Arg(args, 2), "type")}}
	if o, ok := value.Arg(args, 2).(*value.Object); ok {
		if v, ok := o.Get("lastModified"); ok {
			if ms, ok := value.ToNumber(v); ok && ms != 0 {
				f.LastModified = time.UnixMilli(int64(ms)).UTC()
			}
		}
	}
	return f, nil
}
