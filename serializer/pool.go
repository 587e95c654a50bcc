package serializer

import "sync"

const (
	// Pool limits to prevent memory bloat
	poolMaxCap  = 64 << 10 // max bytes
	poolInitCap = 256
)

// buffer accumulates generated code. String copies, so a buffer can go back
// to the pool once its result has been taken.
type buffer []byte

func (b *buffer) WriteString(s string) {
	*b = append(*b, s...)
}

func (b *buffer) String() string {
	return string(*b)
}

var bufPool = sync.Pool{
	New: func() any {
		buf := make(buffer, 0, poolInitCap)
		return &buf
	},
}

func getBuf() *buffer {
	return bufPool.Get().(*buffer)
}

func putBuf(buf *buffer) {
	if buf == nil || cap(*buf) > poolMaxCap {
		return // reject oversized
	}
	*buf = (*buf)[:0]
	bufPool.Put(buf)
}
