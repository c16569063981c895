package codec

import (
	"encoding/binary"
	"fmt"
)

// ChecksumPayloadLen is the fixed payload size of a Checksum record.
const ChecksumPayloadLen = 1

// ChecksumRecord is a checkpoint: its single payload byte makes the 8-bit
// wrapping sum of every stream byte up to and including itself come out to
// zero. The record carries no data of its own.
type ChecksumRecord struct{}

func (ChecksumRecord) String() string { return "Checksum" }

// DecodeChecksum validates a checkpoint. sum must be the running 8-bit sum
// of every stream byte up to and including the checksum payload byte; a
// correct checkpoint always brings it to zero.
func DecodeChecksum(payload []byte, sum uint8) (ChecksumRecord, error) {
	if len(payload) != ChecksumPayloadLen {
		return ChecksumRecord{}, fmt.Errorf("checksum record has %d payload bytes: %w", len(payload), ErrInvalidPayload)
	}
	if sum != 0 {
		return ChecksumRecord{}, fmt.Errorf("checksum mismatch, running sum 0x%02x: %w", sum, ErrInvalidPayload)
	}
	return ChecksumRecord{}, nil
}

// AppendChecksum appends a checkpoint record to dst. sum must be the running
// 8-bit sum of every stream byte written so far; the emitted payload byte is
// chosen so the sum is zero after the record.
func AppendChecksum(dst []byte, order binary.ByteOrder, sum uint8) []byte {
	start := len(dst)
	dst = Header{Tag: TagChecksum, PayloadLen: ChecksumPayloadLen}.Append(dst, order)
	for _, b := range dst[start:] {
		sum += b
	}
	return append(dst, -sum)
}
