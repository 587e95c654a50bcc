package serializer

import (
	"strings"
	"testing"
)

func TestBufPool(t *testing.T) {
	b := getBuf()
	b.WriteString("$R[0]=")
	b.WriteString("{}")
	got := b.String()
	putBuf(b)
	if got != "$R[0]={}" {
		t.Fatalf("Expected $R[0]={}, got %s", got)
	}

	b = getBuf()
	if len(*b) != 0 {
		t.Fatalf("Expected empty buffer from pool, got %q", string(*b))
	}
	if cap(*b) == 0 {
		t.Fatal("Expected pooled buffer to keep its capacity")
	}
	b.WriteString("x")
	if got != "$R[0]={}" {
		t.Fatalf("Expected earlier result to stay intact, got %s", got)
	}
	putBuf(b)

	big := getBuf()
	big.WriteString(strings.Repeat("a", poolMaxCap+1))
	putBuf(big)
	putBuf(nil)
}
