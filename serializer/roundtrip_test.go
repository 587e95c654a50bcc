package serializer_test

import (
	"context"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/wippyai/crossval/script"
	"github.com/wippyai/crossval/serializer"
	"github.com/wippyai/crossval/value"
)

// equalGraph compares two value graphs structurally, requiring that shared
// nodes on one side map to shared nodes on the other.
type equalGraph struct {
	pairs map[any]any
}

func (g *equalGraph) equal(a, b any) bool {
	if ida, ok := value.Identity(a); ok {
		if prev, seen := g.pairs[ida]; seen {
			idb, _ := value.Identity(b)
			return prev == idb
		}
		idb, ok := value.Identity(b)
		if !ok {
			return false
		}
		g.pairs[ida] = idb
	}

	switch x := a.(type) {
	case *value.Object:
		y, ok := b.(*value.Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		keys, other := x.Keys(), y.Keys()
		for i, k := range keys {
			if other[i] != k {
				return false
			}
			va, _ := x.Get(k)
			vb, _ := y.Get(k)
			if !g.equal(va, vb) {
				return false
			}
		}
		return true
	case *value.Array:
		y, ok := b.(*value.Array)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i := 0; i < x.Len(); i++ {
			if x.IsHole(i) != y.IsHole(i) || !g.equal(x.At(i), y.At(i)) {
				return false
			}
		}
		return true
	case *value.Map:
		y, ok := b.(*value.Map)
		if !ok || x.Len() != y.Len() {
			return false
		}
		var ka, va, kb, vb []any
		x.Each(func(k, v any) bool { ka, va = append(ka, k), append(va, v); return true })
		y.Each(func(k, v any) bool { kb, vb = append(kb, k), append(vb, v); return true })
		for i := range ka {
			if !g.equal(ka[i], kb[i]) || !g.equal(va[i], vb[i]) {
				return false
			}
		}
		return true
	case *value.Set:
		y, ok := b.(*value.Set)
		if !ok || x.Len() != y.Len() {
			return false
		}
		var ia, ib []any
		x.Each(func(v any) bool { ia = append(ia, v); return true })
		y.Each(func(v any) bool { ib = append(ib, v); return true })
		for i := range ia {
			if !g.equal(ia[i], ib[i]) {
				return false
			}
		}
		return true
	case *value.Error:
		y, ok := b.(*value.Error)
		if !ok || x.Name != y.Name || x.Message != y.Message || x.HasCause() != y.HasCause() {
			return false
		}
		return !x.HasCause() || g.equal(x.Cause, y.Cause)
	case *value.RegExp:
		y, ok := b.(*value.RegExp)
		return ok && x.Source == y.Source && x.Flags == y.Flags
	case *value.Bytes:
		y, ok := b.(*value.Bytes)
		return ok && string(x.Data) == string(y.Data)
	case *value.Promise:
		y, ok := b.(*value.Promise)
		if !ok {
			return false
		}
		sa, ra := x.State()
		sb, rb := y.State()
		return sa == sb && g.equal(ra, rb)
	case *big.Int:
		y, ok := b.(*big.Int)
		return ok && x.Cmp(y) == 0
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}

	if na, ok := value.ToNumber(a); ok {
		nb, ok := value.ToNumber(b)
		if !ok {
			return false
		}
		if math.IsNaN(na) {
			return math.IsNaN(nb)
		}
		return na == nb && math.Signbit(na) == math.Signbit(nb)
	}
	return a == b
}

func sample() map[string]any {
	shared := value.ObjectOf("shared", true)

	cyclic := value.NewObject()
	cyclic.Set("name", "root")
	cyclic.Set("self", cyclic)
	cyclic.Set("list", value.NewArray(cyclic, shared, shared))

	m := value.NewMap()
	m.Set("k", shared)
	m.Set(shared, m)

	holey := value.NewArray("a")
	holey.Set(3, "d")
	holey.SetLen(5)

	err := value.NewError("RangeError", "out of <range>")
	err.Cause = value.NewError("Error", "root cause")

	loopErr := value.NewError("Error", "loop")
	loopErr.Cause = value.ObjectOf("err", loopErr)

	settled := value.NewPromise()
	settled.Resolve(value.ObjectOf("p", settled))
	<-settled.Done()

	proto := value.NewObject()
	proto.Set("__proto__", "own")
	proto.Set("me", proto)

	return map[string]any{
		"primitives": value.NewArray(1.5, math.NaN(), math.Inf(1), math.Copysign(0, -1), "line sep</script>",
			value.Undefined, nil, true, false, big.NewInt(-9007199254740993)),
		"date":     time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		"cyclic":   cyclic,
		"map":      m,
		"set":      value.NewSet(1, "1", shared, value.NewSet()),
		"holes":    holey,
		"error":    err,
		"loopErr":  loopErr,
		"regexp":   value.MustRegExp(`\d+/x`, "gu"),
		"bytes":    &value.Bytes{Data: []byte{0, 127, 255}},
		"resolved": value.Resolved(value.NewArray(shared)),
		"rejected": value.Rejected(value.NewError("TypeError", "nope")),
		"settled":  settled,
		"proto":    proto,
		"keys":     value.ObjectOf("a-b", 1, "0", 2, "if", 3, "$", 4),
	}
}

func TestRoundTrip_Serialize(t *testing.T) {
	for name, in := range sample() {
		t.Run(name, func(t *testing.T) {
			code, err := serializer.Serialize(in)
			if err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}
			out, err := script.Eval(context.Background(), code)
			if err != nil {
				t.Fatalf("Eval(%s) failed: %v", code, err)
			}
			waitSettled(t, out)
			g := &equalGraph{pairs: map[any]any{}}
			if !g.equal(in, out) {
				t.Errorf("round trip mismatch for %s", code)
			}
		})
	}
}

func TestRoundTrip_CrossSerialize(t *testing.T) {
	for name, in := range sample() {
		t.Run(name, func(t *testing.T) {
			code, err := serializer.CrossSerialize(in)
			if err != nil {
				t.Fatalf("CrossSerialize failed: %v", err)
			}
			rt := script.NewRuntime()
			out, err := rt.Exec(context.Background(), serializer.CrossReferenceHeader()+";"+code)
			if err != nil {
				t.Fatalf("Exec(%s) failed: %v", code, err)
			}
			waitSettled(t, out)
			g := &equalGraph{pairs: map[any]any{}}
			if !g.equal(in, out) {
				t.Errorf("round trip mismatch for %s", code)
			}
		})
	}
}

// waitSettled gives promises adopted during evaluation time to settle.
func waitSettled(t *testing.T, v any) {
	t.Helper()
	p, ok := v.(*value.Promise)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	select {
	case <-p.Done():
	case <-ctx.Done():
		t.Fatal("promise did not settle")
	}
}
