// Package stream provides the byte sources the decoders read from: a reader
// scoped to a declared block length, an in-memory growable buffer, line
// splitting for the text formats and a digest helper.
package stream

import (
	"io"
)

const (
	// pageSize is the largest single read requested from the underlying source.
	pageSize = 4096

	// minPageSize keeps tiny budgets from issuing one read per field.
	minPageSize = 64
)

// BoundedReader exposes only the next N bytes of an underlying source. Once the
// budget is spent Read returns io.EOF, even if the underlying source has more.
//
// Reads from the underlying source are paged, but a page is never larger than
// the remaining budget, so the underlying position never passes the boundary.
type BoundedReader struct {
	r         io.Reader
	remaining int64 // budget not yet pulled from r
	buf       []byte
	start     int
	end       int
}

// NewBoundedReader scopes r to the next n bytes.
func NewBoundedReader(r io.Reader, n int64) *BoundedReader {
	if n < 0 {
		n = 0
	}
	return &BoundedReader{r: r, remaining: n}
}

// Remaining is the number of bytes still readable through this reader.
func (b *BoundedReader) Remaining() int64 {
	return b.remaining + int64(b.end-b.start)
}

// Read implements io.Reader.
func (b *BoundedReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if b.start == b.end {
		if b.remaining == 0 {
			return 0, io.EOF
		}

		// large requests bypass the page
		if int64(len(p)) >= b.pageLen() {
			if int64(len(p)) > b.remaining {
				p = p[:b.remaining]
			}
			n, err := b.r.Read(p)
			b.remaining -= int64(n)
			return n, b.underlyingErr(n, err)
		}

		if err := b.fill(); err != nil && b.start == b.end {
			return 0, err
		}
	}

	n := copy(p, b.buf[b.start:b.end])
	b.start += n
	return n, nil
}

// ReadByte implements io.ByteReader.
func (b *BoundedReader) ReadByte() (byte, error) {
	var p [1]byte
	if _, err := io.ReadFull(b, p[:]); err != nil {
		return 0, err
	}
	return p[0], nil
}

// Discard consumes whatever is left of the budget and returns how many bytes
// were skipped. After a successful Discard the underlying source sits exactly
// on the block boundary.
func (b *BoundedReader) Discard() (int64, error) {
	skipped := int64(b.end - b.start)
	b.start, b.end = 0, 0

	if b.remaining == 0 {
		return skipped, nil
	}
	if s, ok := b.r.(io.Seeker); ok {
		if n, err := seekForward(s, b.remaining); err == nil {
			skipped += n
			b.remaining -= n
			if b.remaining > 0 {
				return skipped, io.ErrUnexpectedEOF
			}
			return skipped, nil
		}
	}

	n, err := io.CopyN(io.Discard, b.r, b.remaining)
	skipped += n
	b.remaining -= n
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return skipped, err
}

// seekForward moves s up to n bytes ahead, stopping at the end of the source,
// and returns how far it moved. Seeking past the end succeeds on most
// seekers, so the size is checked first.
func seekForward(s io.Seeker, n int64) (int64, error) {
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	target := cur + n
	if target > end {
		target = end
	}
	if target < cur {
		target = cur
	}
	if _, err := s.Seek(target, io.SeekStart); err != nil {
		// put the source back where it was for the copying fallback
		if _, rerr := s.Seek(cur, io.SeekStart); rerr != nil {
			return 0, rerr
		}
		return 0, err
	}
	return target - cur, nil
}

func (b *BoundedReader) pageLen() int64 {
	n := int64(pageSize)
	if b.remaining < n {
		n = b.remaining
	}
	if n < minPageSize && b.remaining >= minPageSize {
		n = minPageSize
	}
	return n
}

func (b *BoundedReader) fill() error {
	n := b.pageLen()
	if int64(cap(b.buf)) < n {
		b.buf = make([]byte, n)
	}
	b.buf = b.buf[:n]

	read, err := b.r.Read(b.buf)
	b.start, b.end = 0, read
	b.remaining -= int64(read)
	return b.underlyingErr(read, err)
}

// underlyingErr maps an early end of the underlying source to
// io.ErrUnexpectedEOF: the block declared more bytes than were available.
func (b *BoundedReader) underlyingErr(n int, err error) error {
	if err == io.EOF && b.remaining > 0 {
		if n > 0 {
			return nil
		}
		return io.ErrUnexpectedEOF
	}
	if err == io.EOF {
		return nil
	}
	return err
}
