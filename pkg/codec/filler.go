package codec

import (
	"encoding/binary"
	"fmt"
)

// FillerRecord is a run of zero bytes, usually used to align the next record
// to an address boundary. Only the length is information.
type FillerRecord struct {
	Size uint16
}

func (f FillerRecord) String() string { return fmt.Sprintf("Filler(%d)", f.Size) }

// DecodeFiller validates a Filler payload: every byte must be zero.
func DecodeFiller(payload []byte) (FillerRecord, error) {
	for i, b := range payload {
		if b != 0 {
			return FillerRecord{}, fmt.Errorf("filler record has nonzero byte 0x%02x at %d: %w", b, i, ErrInvalidPayload)
		}
	}
	return FillerRecord{Size: uint16(len(payload))}, nil
}

// AppendWire appends the record's full wire form to dst.
func (f FillerRecord) AppendWire(dst []byte, order binary.ByteOrder) []byte {
	dst = Header{Tag: TagFiller, PayloadLen: f.Size}.Append(dst, order)
	return append(dst, make([]byte, int(f.Size))...)
}
