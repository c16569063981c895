package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Errors shared by all record decoders.
var (
	// ErrUnknownTag reports a record tag outside the known set.
	ErrUnknownTag = errors.New("gcd: unknown record tag")

	// ErrInvalidPayload reports payload bytes that cannot be decoded under
	// the rules of the tagged variant.
	ErrInvalidPayload = errors.New("gcd: invalid record payload")

	// ErrPayloadTooLarge reports a payload that does not fit the 16-bit
	// length field and therefore has no wire encoding.
	ErrPayloadTooLarge = errors.New("gcd: record payload exceeds 65535 bytes")
)

// MaxPayloadLen is the largest payload a single record can carry.
const MaxPayloadLen = 0xFFFF

// Record is one unit of a GCD stream. The set of implementations is closed:
// TextRecord, ChecksumRecord, FillerRecord, MainRecord, DescriptorRecord,
// FirmwareRecord and EndRecord. Adding a variant means touching every type
// switch over Record, which is intentional.
type Record interface {
	fmt.Stringer

	// sealed prevents implementations outside this package.
	sealed()
}

func (TextRecord) sealed()       {}
func (ChecksumRecord) sealed()   {}
func (FillerRecord) sealed()     {}
func (MainRecord) sealed()       {}
func (DescriptorRecord) sealed() {}
func (FirmwareRecord) sealed()   {}
func (EndRecord) sealed()        {}

// EndRecord marks the logical end of a stream. It encodes as a bare header
// (tag 0xFFFF, length 0) and is only valid as the last record.
type EndRecord struct{}

func (EndRecord) String() string { return "End" }

// AppendWire appends the End record's wire form to dst.
func (EndRecord) AppendWire(dst []byte, order binary.ByteOrder) []byte {
	return Header{Tag: TagEnd, PayloadLen: 0}.Append(dst, order)
}
