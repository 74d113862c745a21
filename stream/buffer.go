package stream

import (
	"errors"
	"io"
)

// ErrSeekOutOfRange is returned when a seek lands outside the readable region.
var ErrSeekOutOfRange = errors.New("stream: seek out of range")

// Buffer is a growable in-memory byte source. Bytes are appended with Write
// (segment reassembly, decompression output) and become readable once
// UpdateReadPointers marks them valid.
type Buffer struct {
	data  []byte
	valid int // readable prefix of data
	pos   int
}

// NewBuffer returns an empty Buffer with room for size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, 0, size)}
}

// NewBufferBytes returns a Buffer whose readable region is b. The Buffer takes
// ownership of b.
func NewBufferBytes(b []byte) *Buffer {
	return &Buffer{data: b, valid: len(b)}
}

// Write appends p to the buffer. Appended bytes are not readable until the
// next UpdateReadPointers.
func (b *Buffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// ReadFrom appends everything r produces.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		if cap(b.data)-len(b.data) < minPageSize {
			b.Grow(pageSize)
		}
		n, err := r.Read(b.data[len(b.data):cap(b.data)])
		b.data = b.data[:len(b.data)+n]
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Len is the number of bytes written so far, readable or not.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Grow reserves room for n more bytes.
func (b *Buffer) Grow(n int) {
	if cap(b.data)-len(b.data) >= n {
		return
	}
	grown := make([]byte, len(b.data), len(b.data)+n)
	copy(grown, b.data)
	b.data = grown
}

// UpdateReadPointers exposes data[0:size] as the readable region and rewinds
// the cursor. No bytes are copied.
func (b *Buffer) UpdateReadPointers(size int) error {
	if size < 0 || size > len(b.data) {
		return ErrSeekOutOfRange
	}
	b.valid = size
	b.pos = 0
	return nil
}

// Reset drops all content, keeping the allocation.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.valid = 0
	b.pos = 0
}

// Bytes returns the readable region.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.valid]
}

// Read implements io.Reader over the readable region.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= b.valid {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:b.valid])
	b.pos += n
	return n, nil
}

// ReadByte implements io.ByteReader.
func (b *Buffer) ReadByte() (byte, error) {
	if b.pos >= b.valid {
		return 0, io.EOF
	}
	c := b.data[b.pos]
	b.pos++
	return c, nil
}

// Seek implements io.Seeker within the readable region.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(b.valid) + offset
	default:
		return int64(b.pos), errors.New("stream: invalid whence")
	}
	if abs < 0 || abs > int64(b.valid) {
		return int64(b.pos), ErrSeekOutOfRange
	}
	b.pos = int(abs)
	return abs, nil
}

// Pos is the current read offset.
func (b *Buffer) Pos() int {
	return b.pos
}
