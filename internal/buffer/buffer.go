package buffer

import (
	"io"

	"github.com/indigo-web/tinyd/http/status"
)

// Buffer holds bytes received from a connection but not consumed yet. Its capacity is fixed
// at construction and never grows, so a single connection can't occupy more memory than that,
// no matter how slow or hostile the peer is.
type Buffer struct {
	memory []byte
	// err is returned by the read together with data. It is deferred until the next Fill, so
	// the data read alongside isn't lost.
	err error
}

func New(size int) *Buffer {
	return &Buffer{
		memory: make([]byte, 0, size),
	}
}

// Fill performs a single read from r into the free space of the buffer. Fails with
// status.ErrBufferFull if there's no free space left.
func (b *Buffer) Fill(r io.Reader) (n int, err error) {
	if b.err != nil {
		err, b.err = b.err, nil
		return 0, err
	}

	if b.Full() {
		return 0, status.ErrBufferFull
	}

	n, err = r.Read(b.memory[len(b.memory):cap(b.memory)])
	b.memory = b.memory[:len(b.memory)+n]
	if n > 0 && err != nil {
		b.err, err = err, nil
	}

	return n, err
}

// Consume discards the first n bytes, moving the rest to the beginning of the buffer, so
// the whole free space is available for the next Fill.
func (b *Buffer) Consume(n int) {
	if n > len(b.memory) {
		panic("BUG: consuming more bytes than buffered")
	}

	rest := copy(b.memory, b.memory[n:])
	b.memory = b.memory[:rest]
}

// Bytes returns buffered data. The slice is valid until the next Consume or Fill call.
func (b *Buffer) Bytes() []byte {
	return b.memory
}

// Len returns the number of buffered bytes not consumed yet.
func (b *Buffer) Len() int {
	return len(b.memory)
}

func (b *Buffer) Cap() int {
	return cap(b.memory)
}

// Full reports whether no more bytes can be read into the buffer.
func (b *Buffer) Full() bool {
	return len(b.memory) == cap(b.memory)
}
