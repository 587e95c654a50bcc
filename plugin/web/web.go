// Package web provides plugins for web platform values: URL,
// URLSearchParams, Headers, Blob and File.
//
// Host values map onto Go types:
//
//	*url.URL      new URL("https://example.com/")
//	url.Values    new URLSearchParams("a=1&b=2")
//	http.Header   new Headers([["Accept","text/html"]])
//	*web.Blob     new Blob([new Uint8Array([...])],{type:"text/plain"})
//	*web.File     new File([new Uint8Array([...])],"a.txt",{type:"",lastModified:0})
//
// Globals returns the matching constructors for the script evaluator, so
// emitted code reads back into the same Go types.
package web

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/crossval/internal/jsfmt"
	"github.com/wippyai/crossval/plugin"
)

// Blob is binary data with a media type.
type Blob struct {
	Type string
	Data []byte
}

// File is a named Blob.
type File struct {
	LastModified time.Time
	Name         string
	Blob
}

// Plugins returns every web plugin in match order.
func Plugins() []plugin.Plugin {
	return []plugin.Plugin{URL{}, SearchParams{}, Headers{}, FilePlugin{}, BlobPlugin{}}
}

// URL serializes *url.URL.
type URL struct{}

func (URL) Tag() string { return "URL" }

func (URL) Test(v any) bool {
	u, ok := v.(*url.URL)
	return ok && u != nil
}

func (URL) Encode(v any, _ plugin.Encoder) (any, error) {
	return v.(*url.URL).String(), nil
}

func (URL) Generate(desc any, _ plugin.Generator) (string, error) {
	return "new URL(" + jsfmt.Quote(desc.(string)) + ")", nil
}

// SearchParams serializes url.Values. Keys are written sorted.
type SearchParams struct{}

func (SearchParams) Tag() string { return "URLSearchParams" }

func (SearchParams) Test(v any) bool {
	q, ok := v.(url.Values)
	return ok && q != nil
}

func (SearchParams) Encode(v any, _ plugin.Encoder) (any, error) {
	return v.(url.Values).Encode(), nil
}

func (SearchParams) Generate(desc any, _ plugin.Generator) (string, error) {
	return "new URLSearchParams(" + jsfmt.Quote(desc.(string)) + ")", nil
}

// Headers serializes http.Header as a list of name/value pairs. A name
// with several values yields one pair per value.
type Headers struct{}

func (Headers) Tag() string { return "Headers" }

func (Headers) Test(v any) bool {
	h, ok := v.(http.Header)
	return ok && h != nil
}

func (Headers) Encode(v any, _ plugin.Encoder) (any, error) {
	h := v.(http.Header)
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var pairs [][2]string
	for _, name := range names {
		for _, val := range h[name] {
			pairs = append(pairs, [2]string{name, val})
		}
	}
	return pairs, nil
}

func (Headers) Generate(desc any, _ plugin.Generator) (string, error) {
	pairs := desc.([][2]string)
	var b strings.Builder
	b.WriteString("new Headers([")
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("[" + jsfmt.Quote(p[0]) + "," + jsfmt.Quote(p[1]) + "]")
	}
	b.WriteString("])")
	return b.String(), nil
}

// BlobPlugin serializes *Blob.
type BlobPlugin struct{}

func (BlobPlugin) Tag() string { return "Blob" }

func (BlobPlugin) Test(v any) bool {
	b, ok := v.(*Blob)
	return ok && b != nil
}

func (BlobPlugin) Encode(v any, _ plugin.Encoder) (any, error) {
	b := v.(*Blob)
	return *b, nil
}

func (BlobPlugin) Generate(desc any, _ plugin.Generator) (string, error) {
	b := desc.(Blob)
	return "new Blob([" + jsfmt.Bytes(b.Data) + "],{type:" + jsfmt.Quote(b.Type) + "})", nil
}

// FilePlugin serializes *File.
type FilePlugin struct{}

func (FilePlugin) Tag() string { return "File" }

func (FilePlugin) Test(v any) bool {
	f, ok := v.(*File)
	return ok && f != nil
}

func (FilePlugin) Encode(v any, _ plugin.Encoder) (any, error) {
	f := v.(*File)
	if f.Name == "" {
		return nil, fmt.Errorf("file has no name")
	}
	return *f, nil
}

func (FilePlugin) Generate(desc any, _ plugin.Generator) (string, error) {
	f := desc.(File)
	var ms int64
	if !f.LastModified.IsZero() {
		ms = f.LastModified.UnixMilli()
	}
	return "new File([" + jsfmt.Bytes(f.Data) + "]," + jsfmt.Quote(f.Name) +
		",{type:" + jsfmt.Quote(f.Type) + ",lastModified:" + strconv.FormatInt(ms, 10) + "})", nil
}
