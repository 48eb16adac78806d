package diskcache

import (
	"encoding/binary"
	"io"
	"strings"
	"unicode/utf8"
)

// reader wraps any io.Reader and provides the little-endian fixed-width
// primitive reads the cache format needs. It never assumes host
// endianness: every multi-byte value is decoded explicitly as
// little-endian regardless of the platform this runs on.
type reader struct {
	r io.Reader
}

func newReader(r io.Reader) *reader {
	return &reader{r: r}
}

func (r *reader) bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r *reader) int16() (int16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

func (r *reader) int32() (int32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) uint64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) addr() (Addr, error) {
	v, err := r.uint32()
	return Addr(v), err
}

func (r *reader) int32n(n int) ([]int32, error) {
	out := make([]int32, n)
	for i := range out {
		v, err := r.int32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *reader) addrn(n int) ([]Addr, error) {
	out := make([]Addr, n)
	for i := range out {
		v, err := r.addr()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// skip discards n bytes without requiring the source to support Seek; the
// decoder never needs to move backwards.
func (r *reader) skip(n int64) error {
	_, err := io.CopyN(io.Discard, r.r, n)
	return err
}

// lossyUTF8 decodes b as UTF-8, substituting the replacement character for
// any invalid byte sequence instead of failing, mirroring the behavior
// relied on when recovering cache key text that may contain truncated or
// corrupt bytes.
func lossyUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}
