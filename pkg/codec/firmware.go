package codec

import (
	"encoding/binary"
	"fmt"
)

// trueTypeFirmwareTag marks TrueType font payloads, which are additionally
// XORed with trueTypeXorKey on the wire.
const (
	trueTypeFirmwareTag uint16 = 0x05A5
	trueTypeXorKey      uint8  = 0x76
)

// FirmwareRecord is one chunk of firmware payload. Its wire tag is not
// fixed: the descriptor preceding the chunks announces it. Data holds the
// plain (de-obfuscated) bytes; XOR keys are applied and removed at the
// stream layer.
type FirmwareRecord struct {
	Tag  uint16
	Data []byte
}

func (f FirmwareRecord) String() string {
	if len(f.Data) == 0 {
		return fmt.Sprintf("Firmware:EmptyChunk(tag 0x%04x)", f.Tag)
	}
	return fmt.Sprintf("Firmware:Chunk(tag 0x%04x, %d bytes)", f.Tag, len(f.Data))
}

// AppendWire appends the record's full wire form to dst, applying key as the
// payload XOR (0 for none). The TrueType obfuscation for tag 0x05A5 is
// applied on top, matching what decoding removes.
func (f FirmwareRecord) AppendWire(dst []byte, order binary.ByteOrder, key uint8) ([]byte, error) {
	if len(f.Data) > MaxPayloadLen {
		return nil, fmt.Errorf("firmware record: %w", ErrPayloadTooLarge)
	}
	if f.Tag == trueTypeFirmwareTag {
		key ^= trueTypeXorKey
	}
	dst = Header{Tag: f.Tag, PayloadLen: uint16(len(f.Data))}.Append(dst, order)
	if key == 0 {
		return append(dst, f.Data...), nil
	}
	for _, b := range f.Data {
		dst = append(dst, b^key)
	}
	return dst, nil
}

// DecodeFirmware interprets a firmware chunk payload, removing the XOR
// obfuscation. The payload slice is not retained.
func DecodeFirmware(tag uint16, payload []byte, key uint8) FirmwareRecord {
	if tag == trueTypeFirmwareTag {
		key ^= trueTypeXorKey
	}
	data := make([]byte, len(payload))
	if key == 0 {
		copy(data, payload)
	} else {
		for i, b := range payload {
			data[i] = b ^ key
		}
	}
	return FirmwareRecord{Tag: tag, Data: data}
}
