package shader

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// maxStreamString caps a single length-prefixed string or blob so a corrupt length cannot
// trigger an unbounded allocation.
const maxStreamString = 64 << 20

// streamReader decodes the little-endian primitives shared by the catalog and fragment
// formats. It never reads past the last primitive it decodes, so a caller's reader stays
// positioned right after the record. The first failure is sticky: every later read returns
// zero values and err keeps the original cause.
type streamReader struct {
	r   io.Reader
	br  io.ByteReader
	err error
}

// singleByteReader adapts an io.Reader to io.ByteReader one byte at a time.
type singleByteReader struct {
	r   io.Reader
	buf [1]byte
}

func (b *singleByteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}

func newStreamReader(r io.Reader) *streamReader {
	if br, ok := r.(io.ByteReader); ok {
		return &streamReader{r: r, br: br}
	}
	return &streamReader{r: r, br: &singleByteReader{r: r}}
}

func (s *streamReader) fail(format string, args ...any) {
	if s.err == nil {
		s.err = fmt.Errorf(format, args...)
	}
}

func (s *streamReader) int32() int32 {
	if s.err != nil {
		return 0
	}
	var v int32
	if err := binary.Read(s.r, binary.LittleEndian, &v); err != nil {
		s.fail("read int32: %v", err)
		return 0
	}
	return v
}

// count reads an int32 element count and rejects negative values.
func (s *streamReader) count(what string) int {
	n := s.int32()
	if s.err == nil && n < 0 {
		s.fail("negative %s count %d", what, n)
		return 0
	}
	return int(n)
}

func (s *streamReader) bytes(n int) []byte {
	if s.err != nil {
		return nil
	}
	if n > maxStreamString {
		s.fail("length %d exceeds limit", n)
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		s.fail("read %d bytes: %v", n, err)
		return nil
	}
	return buf
}

func (s *streamReader) string() string {
	if s.err != nil {
		return ""
	}
	n, err := binary.ReadUvarint(s.br)
	if err != nil {
		s.fail("read string length: %v", err)
		return ""
	}
	if n > maxStreamString {
		s.fail("string length %d exceeds limit", n)
		return ""
	}
	return string(s.bytes(int(n)))
}

// expectEOF fails unless the stream has no bytes left.
func (s *streamReader) expectEOF(what string) {
	if s.err != nil {
		return
	}
	_, err := s.br.ReadByte()
	switch {
	case err == nil:
		s.fail("trailing data after %s", what)
	case !errors.Is(err, io.EOF):
		s.fail("read after %s: %v", what, err)
	}
}

// streamWriter encodes the primitives read by streamReader. Like the reader its first
// failure is sticky.
type streamWriter struct {
	w   *bufio.Writer
	err error
}

func newStreamWriter(w io.Writer) *streamWriter {
	return &streamWriter{w: bufio.NewWriter(w)}
}

func (s *streamWriter) int32(v int32) {
	if s.err != nil {
		return
	}
	s.err = binary.Write(s.w, binary.LittleEndian, v)
}

func (s *streamWriter) bytes(b []byte) {
	if s.err != nil {
		return
	}
	_, s.err = s.w.Write(b)
}

func (s *streamWriter) string(v string) {
	if s.err != nil {
		return
	}
	var n [binary.MaxVarintLen64]byte
	s.bytes(n[:binary.PutUvarint(n[:], uint64(len(v)))])
	s.bytes([]byte(v))
}

func (s *streamWriter) flush() error {
	if s.err != nil {
		return s.err
	}
	return s.w.Flush()
}

// wrapStreamError attaches the sentinel to a decode failure so callers can match it with
// errors.Is while keeping the detailed cause in the message.
func wrapStreamError(sentinel, err error) error {
	if err == nil || errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
