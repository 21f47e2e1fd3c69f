package parser

import (
	"bytes"
	"fmt"
	"io"
)

const (
	// DefaultBufferSize is the initial capacity of a Buffer created with size <= 0.
	DefaultBufferSize = 4 << 10

	minReadSize = 512
)

var crlf = []byte("\r\n")

// Buffer is a growable byte window over data received from a connection.
// Bytes in [r, len(data)) are readable; everything before r has been consumed.
// Every cursor advance is bounds-checked and reports ErrShortBuffer instead of
// reading past the readable range.
type Buffer struct {
	data []byte
	r    int
}

// NewBuffer returns an empty buffer with the given initial capacity.
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Buffer{data: make([]byte, 0, size)}
}

// Len returns the number of unconsumed bytes.
func (b *Buffer) Len() int { return len(b.data) - b.r }

// Bytes returns the unconsumed bytes. The slice aliases the buffer and is valid
// only until the next write or retrieve.
func (b *Buffer) Bytes() []byte { return b.data[b.r:] }

// Write appends p to the readable window. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.grow(len(p))
	b.data = append(b.data, p...)
	return len(p), nil
}

// WriteString appends s to the readable window.
func (b *Buffer) WriteString(s string) (int, error) {
	b.grow(len(s))
	b.data = append(b.data, s...)
	return len(s), nil
}

// ReadOnce performs a single Read from src into the free tail of the buffer,
// growing it when needed. It returns the number of bytes appended.
func (b *Buffer) ReadOnce(src io.Reader) (int, error) {
	b.grow(minReadSize)
	free := b.data[len(b.data):cap(b.data)]
	n, err := src.Read(free)
	if n < 0 || n > len(free) {
		return 0, fmt.Errorf("parser: reader returned invalid count %d", n)
	}
	b.data = b.data[:len(b.data)+n]
	return n, err
}

// Peek returns the next n unconsumed bytes without advancing.
func (b *Buffer) Peek(n int) ([]byte, error) {
	if n < 0 || n > b.Len() {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrShortBuffer, n, b.Len())
	}
	return b.data[b.r : b.r+n], nil
}

// Retrieve consumes n bytes.
func (b *Buffer) Retrieve(n int) error {
	if n < 0 || n > b.Len() {
		return fmt.Errorf("%w: want %d, have %d", ErrShortBuffer, n, b.Len())
	}
	b.r += n
	if b.r == len(b.data) {
		b.data = b.data[:0]
		b.r = 0
	}
	return nil
}

// Next returns the next n bytes and consumes them. The returned slice aliases
// the buffer; copy it if it must outlive the next write.
func (b *Buffer) Next(n int) ([]byte, error) {
	p, err := b.Peek(n)
	if err != nil {
		return nil, err
	}
	b.r += n
	return p, nil
}

// IndexCRLF returns the offset of the first CRLF in the unconsumed bytes, or -1.
func (b *Buffer) IndexCRLF() int {
	return bytes.Index(b.Bytes(), crlf)
}

// IndexFrom returns the offset of sep in the unconsumed bytes, starting the
// search at from, or -1.
func (b *Buffer) IndexFrom(from int, sep []byte) int {
	if from < 0 {
		from = 0
	}
	if from >= b.Len() {
		return -1
	}
	i := bytes.Index(b.data[b.r+from:], sep)
	if i < 0 {
		return -1
	}
	return from + i
}

// Reset drops all buffered bytes and keeps the allocation.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.r = 0
}

// grow makes room for n more bytes, sliding unconsumed data to the front first.
func (b *Buffer) grow(n int) {
	if cap(b.data)-len(b.data) >= n {
		return
	}
	if b.r > 0 {
		m := copy(b.data, b.data[b.r:])
		b.data = b.data[:m]
		b.r = 0
		if cap(b.data)-len(b.data) >= n {
			return
		}
	}
	next := make([]byte, len(b.data), 2*cap(b.data)+n)
	copy(next, b.data)
	b.data = next
}
