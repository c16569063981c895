package codec

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// TextRecord carries arbitrary bytes, in practice one line of text. Payloads
// that are valid UTF-8 decode into Simple; anything else is kept verbatim in
// Blob so the record still round-trips byte for byte.
//
// Exactly one representation is populated: Blob is nil when the payload was
// valid UTF-8 (including the empty payload, which is Simple ""). On
// hand-built values a non-empty Blob takes precedence over Simple, and an
// empty Blob encodes the same as Simple "".
type TextRecord struct {
	Simple string
	Blob   []byte
}

// NewText returns a text record holding s.
func NewText(s string) TextRecord { return TextRecord{Simple: s} }

// DecodeText interprets a Text record payload.
func DecodeText(payload []byte) TextRecord {
	if utf8.Valid(payload) {
		return TextRecord{Simple: string(payload)}
	}
	blob := make([]byte, len(payload))
	copy(blob, payload)
	return TextRecord{Blob: blob}
}

// Bytes returns the payload regardless of representation.
func (t TextRecord) Bytes() []byte {
	if len(t.Blob) > 0 {
		return t.Blob
	}
	return []byte(t.Simple)
}

// Len returns the payload length in bytes.
func (t TextRecord) Len() int {
	if len(t.Blob) > 0 {
		return len(t.Blob)
	}
	return len(t.Simple)
}

// AppendWire appends the record's full wire form (header and payload) to dst.
func (t TextRecord) AppendWire(dst []byte, order binary.ByteOrder) ([]byte, error) {
	if t.Len() > MaxPayloadLen {
		return nil, fmt.Errorf("text record: %w", ErrPayloadTooLarge)
	}
	dst = Header{Tag: TagText, PayloadLen: uint16(t.Len())}.Append(dst, order)
	return append(dst, t.Bytes()...), nil
}

func (t TextRecord) String() string {
	if len(t.Blob) > 0 {
		return fmt.Sprintf("Text:Blob(%d bytes)", len(t.Blob))
	}
	return fmt.Sprintf("Text(%q)", t.Simple)
}
