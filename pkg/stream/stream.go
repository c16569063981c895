package stream

import (
	"encoding/binary"
	"errors"
	"io"
)

// preamble is the fixed signature every GCD file starts with. Two more bytes
// carrying formatVersion follow it.
var preamble = [6]byte{'G', 'A', 'R', 'M', 'I', 'N'}

// formatVersion is the only format version known to exist.
const formatVersion uint16 = 100

// preambleLen is the total preamble size, signature plus version.
const preambleLen = 8

var (
	// ErrMalformedPreamble means the stream does not start with a valid
	// GCD preamble, either a bad signature or an unknown format version.
	ErrMalformedPreamble = errors.New("malformed preamble")

	// ErrUnexpectedEOF means the stream ended in the middle of a record,
	// or before the End record.
	ErrUnexpectedEOF = errors.New("unexpected end of stream")

	// ErrStreamExhausted is returned by ReadRecord after the End record
	// has been delivered. The underlying reader is not touched.
	ErrStreamExhausted = errors.New("stream exhausted")

	// ErrUnexpectedRecord means a known record arrived where the file
	// grammar does not allow it.
	ErrUnexpectedRecord = errors.New("unexpected record")

	// ErrReadFailure wraps an underlying reader error.
	ErrReadFailure = errors.New("read failure")

	// ErrWriteFailure wraps an underlying writer error.
	ErrWriteFailure = errors.New("write failure")
)

type options struct {
	order binary.ByteOrder
}

// Option adjusts how a Parser or Composer treats the stream.
type Option func(*options)

// WithByteOrder sets the byte order of record headers and numeric payloads.
// The default is little-endian, which is what every known GCD file uses.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) { o.order = order }
}

// sumReader tracks the 8-bit wrapping checksum and the offset of everything
// read, so checkpoint records can be validated and errors can say where.
type sumReader struct {
	r   io.Reader
	sum uint8
	off int64
}

func (s *sumReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	for _, b := range p[:n] {
		s.sum += b
	}
	s.off += int64(n)
	return n, err
}

// sumWriter is the writing twin of sumReader.
type sumWriter struct {
	w   io.Writer
	sum uint8
	off int64
}

func (s *sumWriter) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	for _, b := range p[:n] {
		s.sum += b
	}
	s.off += int64(n)
	return n, err
}
