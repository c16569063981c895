package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/opengcd/gcd/pkg/codec"
)

// parseState tracks where in the file grammar the parser is. Checksum and
// Filler records are allowed in every state; End is allowed in every state
// as long as no firmware bytes are outstanding.
type parseState uint8

const (
	stateGlobal         parseState = iota // before the main header
	stateMain                             // main header seen
	stateDescriptorType                   // descriptor type read, data record pending
	stateDescriptorData                   // descriptor complete, no firmware chunk yet
	stateFirmware                         // inside a firmware chunk run
	stateEnd                              // End record delivered
)

func (s parseState) String() string {
	switch s {
	case stateGlobal:
		return "global"
	case stateMain:
		return "main"
	case stateDescriptorType:
		return "descriptor-type"
	case stateDescriptorData:
		return "descriptor-data"
	case stateFirmware:
		return "firmware"
	case stateEnd:
		return "end"
	}
	return fmt.Sprintf("parseState(%d)", uint8(s))
}

// firmwareState is what the parser needs from the last descriptor to decode
// the firmware chunks that follow it.
type firmwareState struct {
	tag  uint16 // record tag the chunks use
	key  uint8  // XOR obfuscation key, 0 for none
	left uint32 // announced bytes not yet received
}

// Parser decodes a GCD stream one record at a time. It reads no further
// than the record it returns. Not safe for concurrent use.
type Parser struct {
	src    *sumReader
	order  binary.ByteOrder
	state  parseState
	layout codec.DescriptorLayout
	fw     firmwareState
}

// NewParser validates the preamble of r and returns a parser positioned at
// the first record. A bad signature or format version is ErrMalformedPreamble.
func NewParser(r io.Reader, opts ...Option) (*Parser, error) {
	o := options{order: codec.DefaultByteOrder}
	for _, opt := range opts {
		opt(&o)
	}
	p := &Parser{src: &sumReader{r: r}, order: o.order}

	var buf [preambleLen]byte
	if err := p.readFull(buf[:]); err != nil {
		return nil, fmt.Errorf("preamble: %w", err)
	}
	if !bytes.Equal(buf[:len(preamble)], preamble[:]) {
		return nil, fmt.Errorf("signature %q: %w", buf[:len(preamble)], ErrMalformedPreamble)
	}
	if v := p.order.Uint16(buf[len(preamble):]); v != formatVersion {
		return nil, fmt.Errorf("format version %d: %w", v, ErrMalformedPreamble)
	}
	return p, nil
}

// Offset returns how many bytes of the stream have been consumed.
func (p *Parser) Offset() int64 { return p.src.off }

// ReadRecord returns the next record of the stream. After the End record it
// returns ErrStreamExhausted without touching the underlying reader. A
// DescriptorType record and its DescriptorData record surface together as a
// single DescriptorRecord.
func (p *Parser) ReadRecord() (codec.Record, error) {
	for {
		if p.state == stateEnd {
			return nil, ErrStreamExhausted
		}

		var raw [codec.HeaderLen]byte
		if err := p.readFull(raw[:]); err != nil {
			return nil, fmt.Errorf("record header: %w", err)
		}
		hdr, err := codec.ParseHeader(raw[:], p.order)
		if err != nil {
			return nil, err
		}

		switch hdr.Tag {
		case codec.TagChecksum:
			payload, err := p.readPayload(hdr)
			if err != nil {
				return nil, err
			}
			rec, err := codec.DecodeChecksum(payload, p.src.sum)
			if err != nil {
				return nil, err
			}
			return rec, nil

		case codec.TagFiller:
			payload, err := p.readPayload(hdr)
			if err != nil {
				return nil, err
			}
			rec, err := codec.DecodeFiller(payload)
			if err != nil {
				return nil, err
			}
			return rec, nil

		case codec.TagText:
			if p.state == stateDescriptorType {
				return nil, p.orderViolation(hdr)
			}
			payload, err := p.readPayload(hdr)
			if err != nil {
				return nil, err
			}
			return codec.DecodeText(payload), nil

		case codec.TagMainHeader:
			if p.state != stateGlobal {
				return nil, p.orderViolation(hdr)
			}
			payload, err := p.readPayload(hdr)
			if err != nil {
				return nil, err
			}
			rec, err := codec.DecodeMain(payload, p.order)
			if err != nil {
				return nil, err
			}
			p.state = stateMain
			return rec, nil

		case codec.TagDescriptorType:
			switch p.state {
			case stateMain:
			case stateDescriptorData, stateFirmware:
				if err := p.checkFirmwareDone(); err != nil {
					return nil, err
				}
			default:
				return nil, p.orderViolation(hdr)
			}
			payload, err := p.readPayload(hdr)
			if err != nil {
				return nil, err
			}
			layout, err := codec.DecodeDescriptorLayout(payload, p.order)
			if err != nil {
				return nil, err
			}
			p.layout = layout
			p.state = stateDescriptorType
			// Not a record of its own; the data record completes it.

		case codec.TagDescriptorData:
			if p.state != stateDescriptorType {
				return nil, p.orderViolation(hdr)
			}
			payload, err := p.readPayload(hdr)
			if err != nil {
				return nil, err
			}
			rec, err := codec.DecodeDescriptorData(p.layout, payload, p.order)
			if err != nil {
				return nil, err
			}
			if err := p.armFirmware(rec); err != nil {
				return nil, err
			}
			p.state = stateDescriptorData
			return rec, nil

		case codec.TagEnd:
			if p.state == stateDescriptorType {
				// A DescriptorType record is pending its data half.
				return nil, p.orderViolation(hdr)
			}
			if hdr.PayloadLen != 0 {
				return nil, fmt.Errorf("end record with %d payload bytes: %w", hdr.PayloadLen, codec.ErrInvalidPayload)
			}
			if err := p.checkFirmwareDone(); err != nil {
				return nil, err
			}
			p.state = stateEnd
			return codec.EndRecord{}, nil

		default:
			// An unlisted tag is only meaningful as a firmware chunk, and
			// only under the tag the descriptor announced.
			if p.state != stateDescriptorData && p.state != stateFirmware {
				return nil, fmt.Errorf("tag 0x%04x at offset %d: %w", hdr.Tag, p.src.off-codec.HeaderLen, codec.ErrUnknownTag)
			}
			if hdr.Tag != p.fw.tag {
				return nil, fmt.Errorf("tag 0x%04x where firmware uses 0x%04x: %w", hdr.Tag, p.fw.tag, codec.ErrUnknownTag)
			}
			if uint32(hdr.PayloadLen) > p.fw.left {
				return nil, fmt.Errorf("firmware chunk of %d bytes exceeds the %d announced bytes left: %w",
					hdr.PayloadLen, p.fw.left, codec.ErrInvalidPayload)
			}
			payload, err := p.readPayload(hdr)
			if err != nil {
				return nil, err
			}
			p.fw.left -= uint32(hdr.PayloadLen)
			p.state = stateFirmware
			return codec.DecodeFirmware(hdr.Tag, payload, p.fw.key), nil
		}
	}
}

// armFirmware loads the firmware decoding state from a freshly read
// descriptor. The descriptor must announce the chunk tag and total length.
func (p *Parser) armFirmware(rec codec.DescriptorRecord) error {
	tag, ok := rec.FirmwareTag()
	if !ok {
		return fmt.Errorf("descriptor announces no firmware tag: %w", codec.ErrInvalidPayload)
	}
	length, ok := rec.FirmwareLen()
	if !ok {
		return fmt.Errorf("descriptor announces no firmware length: %w", codec.ErrInvalidPayload)
	}
	p.fw = firmwareState{tag: tag, key: rec.XorKey(), left: length}
	return nil
}

// checkFirmwareDone fails if the current firmware block ends before all of
// its announced bytes arrived.
func (p *Parser) checkFirmwareDone() error {
	if p.fw.left != 0 {
		return fmt.Errorf("firmware block ends with %d announced bytes missing: %w",
			p.fw.left, ErrUnexpectedRecord)
	}
	return nil
}

func (p *Parser) orderViolation(hdr codec.Header) error {
	return fmt.Errorf("record 0x%04x in %s state: %w", hdr.Tag, p.state, ErrUnexpectedRecord)
}

func (p *Parser) readPayload(hdr codec.Header) ([]byte, error) {
	if hdr.PayloadLen == 0 {
		return nil, nil
	}
	buf := make([]byte, hdr.PayloadLen)
	if err := p.readFull(buf); err != nil {
		return nil, fmt.Errorf("record 0x%04x payload: %w", hdr.Tag, err)
	}
	return buf, nil
}

// readFull fills buf or explains why it could not: a short stream is
// ErrUnexpectedEOF, anything else is the reader's error under ErrReadFailure.
func (p *Parser) readFull(buf []byte) error {
	if _, err := io.ReadFull(p.src, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("at offset %d: %w", p.src.off, ErrUnexpectedEOF)
		}
		return fmt.Errorf("at offset %d: %w: %w", p.src.off, ErrReadFailure, err)
	}
	return nil
}
