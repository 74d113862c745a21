package stream

import (
	"hash"
	"io"
)

// Digest feeds r to h in page sized chunks and returns the sum. The hash is
// reset first so it can be reused across calls.
func Digest(h hash.Hash, r io.Reader) ([]byte, error) {
	h.Reset()
	buf := make([]byte, pageSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
