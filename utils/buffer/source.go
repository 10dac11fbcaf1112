package buffer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// ErrTooLarge is returned when a source does not fit the address space or a read limit.
var ErrTooLarge = errors.New("source too large")

// readChunk is the first read size of ReadAll; later reads double up to 1<<maxClass.
const readChunk = 1 << minClass

// OpenFile returns the whole file at path. Regular files are memory-mapped;
// empty or unmappable files are read into a pooled buffer.
func OpenFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.Size() > math.MaxInt {
		return nil, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}
	size := int(st.Size())
	if size == 0 || !st.Mode().IsRegular() {
		return ReadAll(f, math.MaxInt)
	}
	if m, err := mapFile(f, size); err == nil {
		return m, nil
	}
	return ReadAll(f, math.MaxInt)
}

// ReadAll reads r into a pooled buffer, failing with ErrTooLarge past limit bytes.
func ReadAll(r io.Reader, limit int) (Source, error) {
	h := get(0)
	chunk := readChunk
	for {
		if h.Len() >= limit {
			var probe [1]byte
			if n, _ := r.Read(probe[:]); n > 0 {
				h.Release()
				return nil, ErrTooLarge
			}
			return h, nil
		}
		l := h.Len()
		n, err := io.ReadFull(r, h.grow(min(chunk, limit-l)))
		h.buf = h.buf[:l+n]
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return h, nil
		case err != nil:
			h.Release()
			return nil, err
		}
		if chunk < 1<<maxClass {
			chunk *= 2
		}
	}
}
