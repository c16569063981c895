package codec

import (
	"encoding/binary"
	"fmt"
)

// HeaderLen is the size of every record header on the wire.
const HeaderLen = 4

// DefaultByteOrder is the byte order of every known GCD file. The format
// does not forbid big-endian, so all codec functions accept the order
// explicitly; this is the value to pass when in doubt.
var DefaultByteOrder binary.ByteOrder = binary.LittleEndian

// Known record tags.
const (
	TagChecksum       uint16 = 0x0001
	TagFiller         uint16 = 0x0002
	TagMainHeader     uint16 = 0x0003
	TagText           uint16 = 0x0005
	TagDescriptorType uint16 = 0x0006
	TagDescriptorData uint16 = 0x0007
	TagEnd            uint16 = 0xFFFF
)

// Header is the fixed-width prefix of a record: its tag and the length of
// the payload that follows. The header length itself is not included.
type Header struct {
	Tag        uint16
	PayloadLen uint16
}

// ParseHeader decodes a record header from the first HeaderLen bytes of buf.
func ParseHeader(buf []byte, order binary.ByteOrder) (Header, error) {
	if len(buf) < HeaderLen {
		return Header{}, fmt.Errorf("record header needs %d bytes, have %d", HeaderLen, len(buf))
	}
	return Header{
		Tag:        order.Uint16(buf[0:2]),
		PayloadLen: order.Uint16(buf[2:4]),
	}, nil
}

// Append encodes the header and appends it to dst.
func (h Header) Append(dst []byte, order binary.ByteOrder) []byte {
	var buf [HeaderLen]byte
	order.PutUint16(buf[0:2], h.Tag)
	order.PutUint16(buf[2:4], h.PayloadLen)
	return append(dst, buf[:]...)
}

// Known reports whether the tag belongs to the fixed set above. Firmware
// payload tags are file-specific and deliberately not part of this set.
func (h Header) Known() bool {
	switch h.Tag {
	case TagChecksum, TagFiller, TagMainHeader, TagText, TagDescriptorType, TagDescriptorData, TagEnd:
		return true
	}
	return false
}
