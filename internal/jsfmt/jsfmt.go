// Package jsfmt formats Go values as JavaScript source literals.
//
// It is shared by the serializer, which writes code, and by host plugins,
// which write constructor calls for their own types.
package jsfmt

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Header is the cross-reference runtime prelude. It binds the $R reference
// array and the $P (deferred promise) and $I (push-driven async iterable)
// factories that placeholder and patch code call.
const Header = `self.$R=self.$R||[];` +
	`self.$P=function(){var s,f,p=new Promise(function(a,b){s=a;f=b});p.s=s;p.f=f;return p};` +
	`self.$I=function(){var q=[],w=[],z=0,t,o={q:q};` +
	`function u(){for(;w.length&&(q.length||z);){var c=w.shift();` +
	`if(q.length)c[0]({done:!1,value:q.shift()});else if(z==1)c[0]({done:!0,value:t});else c[1](t)}}` +
	`o.n=function(v){q.push(v);u()};o.d=function(v){z=1;t=v;u()};o.e=function(e){z=2;t=e;u()};` +
	`o[Symbol.asyncIterator]=function(){return{next:function(){return new Promise(function(a,b){w.push([a,b]);u()})}}};` +
	`return o}`

// Names used by emitted code.
const (
	RefArray        = "$R"
	PromiseFactory  = "$P"
	IterableFactory = "$I"
)

// Ref renders a reference-table lookup.
func Ref(id uint32) string {
	return RefArray + "[" + strconv.FormatUint(uint64(id), 10) + "]"
}

const hex = "0123456789ABCDEF"

// Quote returns s as a double-quoted JS string literal. '<' is escaped so the
// output can be inlined in an HTML script element.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == utf8.RuneError && size == 1:
			b.WriteString(`\uFFFD`)
		case r == '"':
			b.WriteString(`\"`)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\b':
			b.WriteString(`\b`)
		case r == '\f':
			b.WriteString(`\f`)
		case r == '<':
			b.WriteString(`\x3C`)
		case r == 0x2028:
			b.WriteString(`\u2028`)
		case r == 0x2029:
			b.WriteString(`\u2029`)
		case r < 0x20 || r == 0x7f:
			b.WriteString(`\x`)
			b.WriteByte(hex[r>>4])
			b.WriteByte(hex[r&0xf])
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Number formats f the way a JS number literal reads, including the
// non-finite values and negative zero.
func Number(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0 && math.Signbit(f):
		return "-0"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// BigInt formats n as a bigint literal.
func BigInt(n *big.Int) string {
	return n.String() + "n"
}

// IsIdentifier reports whether s can be written as a bare property name.
// Only ASCII identifiers are accepted.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '$' || c == '_':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// IsIndex reports whether s is a canonical array index.
func IsIndex(s string) bool {
	if s == "" || len(s) > 10 {
		return false
	}
	if s == "0" {
		return true
	}
	if s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	return err == nil && n < math.MaxUint32
}

// Key renders an object literal key. __proto__ is written as a computed key,
// otherwise the literal would set the prototype instead of an own property.
func Key(s string) string {
	switch {
	case s == "__proto__":
		return `["__proto__"]`
	case IsIdentifier(s), IsIndex(s):
		return s
	}
	return Quote(s)
}

// Member renders a property access suffix for an assignment target.
func Member(s string) string {
	switch {
	case IsIdentifier(s) && s != "__proto__":
		return "." + s
	case IsIndex(s):
		return "[" + s + "]"
	}
	return "[" + Quote(s) + "]"
}

// Bytes renders a Uint8Array constructor call.
func Bytes(data []byte) string {
	var b strings.Builder
	b.Grow(len(data)*4 + 20)
	b.WriteString("new Uint8Array([")
	for i, c := range data {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(c)))
	}
	b.WriteString("])")
	return b.String()
}
