package stream

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/opengcd/gcd/pkg/codec"
)

// Composer writes a GCD stream record by record. It keeps the running
// checksum, so Checksum records come out as valid checkpoints, and remembers
// the obfuscation key of the last Descriptor written, so firmware chunks are
// obfuscated the way a parser will expect.
//
// The composer does not enforce record order; callers get exactly the
// stream they ask for, valid or not. Not safe for concurrent use.
type Composer struct {
	dst   *sumWriter
	order binary.ByteOrder
	key   uint8 // firmware XOR key from the last descriptor
}

// NewComposer writes the preamble to w and returns a composer ready for the
// first record.
func NewComposer(w io.Writer, opts ...Option) (*Composer, error) {
	o := options{order: codec.DefaultByteOrder}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Composer{dst: &sumWriter{w: w}, order: o.order}

	var buf [preambleLen]byte
	copy(buf[:], preamble[:])
	c.order.PutUint16(buf[len(preamble):], formatVersion)
	if err := c.write(buf[:]); err != nil {
		return nil, fmt.Errorf("preamble: %w", err)
	}
	return c, nil
}

// Offset returns how many bytes have been written to the stream.
func (c *Composer) Offset() int64 { return c.dst.off }

// WriteRecord encodes rec and writes it to the stream. A DescriptorRecord
// produces both of its wire records and arms the obfuscation key for the
// firmware chunks that follow.
func (c *Composer) WriteRecord(rec codec.Record) error {
	var (
		buf []byte
		err error
	)
	switch r := rec.(type) {
	case codec.TextRecord:
		buf, err = r.AppendWire(nil, c.order)
	case codec.ChecksumRecord:
		buf = codec.AppendChecksum(nil, c.order, c.dst.sum)
	case codec.FillerRecord:
		buf = r.AppendWire(nil, c.order)
	case codec.MainRecord:
		buf = r.AppendWire(nil, c.order)
	case codec.DescriptorRecord:
		buf, err = r.AppendWire(nil, c.order)
		if err == nil {
			c.key = r.XorKey()
		}
	case codec.FirmwareRecord:
		buf, err = r.AppendWire(nil, c.order, c.key)
	case codec.EndRecord:
		buf = r.AppendWire(nil, c.order)
	default:
		return fmt.Errorf("record type %T cannot be encoded", rec)
	}
	if err != nil {
		return err
	}
	return c.write(buf)
}

// WriteRawRecord writes a record with the given tag and payload as-is, with
// no encoding, obfuscation, or order checking applied.
func (c *Composer) WriteRawRecord(tag uint16, payload []byte) error {
	if len(payload) > codec.MaxPayloadLen {
		return fmt.Errorf("payload of %d bytes: %w", len(payload), codec.ErrPayloadTooLarge)
	}
	buf := codec.Header{Tag: tag, PayloadLen: uint16(len(payload))}.Append(nil, c.order)
	buf = append(buf, payload...)
	return c.write(buf)
}

func (c *Composer) write(buf []byte) error {
	if _, err := c.dst.Write(buf); err != nil {
		return fmt.Errorf("at offset %d: %w: %w", c.dst.off, ErrWriteFailure, err)
	}
	return nil
}
