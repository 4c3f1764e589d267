// Package buffer holds captured response bodies.
//
// A Buffer grows in fixed increments while it is filled from a stream and is
// always NUL-terminated once capture completes, so callers handing the bytes to
// C-style consumers can use Terminated() without copying.
package buffer

import (
	"io"
)

// DefaultChunkSize is the growth increment used when none is given.
const DefaultChunkSize = 1024

// Buffer is an owned response body. Len never counts the terminator.
type Buffer struct {
	data []byte // allocated backing store, len(data) is the capacity in use
	n    int
}

// Len returns the number of captured bytes.
func (b *Buffer) Len() int {
	return b.n
}

// Cap returns the allocated size of the backing store.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Bytes returns the captured bytes without the terminator. The returned slice
// is capacity-limited so appending to it never overwrites the terminator.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.n:b.n]
}

// Terminated returns the captured bytes followed by a single NUL byte.
func (b *Buffer) Terminated() []byte {
	return b.data[:b.n+1 : b.n+1]
}

// String returns the captured bytes as a string.
func (b *Buffer) String() string {
	return string(b.data[:b.n])
}

// reserve grows the backing store in chunk increments until at least chunk
// bytes plus one terminator byte are free.
func (b *Buffer) reserve(chunk int) {
	for len(b.data)-b.n < chunk+1 {
		grown := make([]byte, len(b.data)+chunk)
		copy(grown, b.data[:b.n])
		b.data = grown
	}
}

// Capture reads r until EOF into a new Buffer, growing it by chunk bytes at a
// time. Space for each read is reserved before the read is issued. On a read
// error no buffer is returned.
func Capture(r io.Reader, chunk int) (*Buffer, error) {
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	b := &Buffer{}
	for {
		b.reserve(chunk)
		n, err := r.Read(b.data[b.n : b.n+chunk])
		b.n += n
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	b.data[b.n] = 0
	return b, nil
}

// FromBytes copies p into a new terminated Buffer.
func FromBytes(p []byte) *Buffer {
	b := &Buffer{data: make([]byte, len(p)+1), n: len(p)}
	copy(b.data, p)
	return b
}
