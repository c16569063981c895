package codec

import (
	"encoding/binary"
	"fmt"
)

// A descriptor is split across two wire records for reasons lost to history:
// a DescriptorType record listing field shapes, immediately followed by a
// DescriptorData record whose payload is the field values packed in the same
// order. This package surfaces the pair as one DescriptorRecord.
//
// Each type entry is a uint16: the high 4 bits are the field kind, the low
// 12 bits the field ID. Kind 4 (variable bytes) carries an extra uint16
// length after the tag. Kind 5 terminates the list; only ID 3 has been seen
// there.

// FieldKind is the shape of one descriptor field.
type FieldKind uint8

const (
	FieldU8 FieldKind = iota
	FieldU16
	FieldU32
	FieldU64
	FieldBytes
	FieldEnd
)

// endFieldID is the only ID observed on FieldEnd entries.
const endFieldID = 3

func (k FieldKind) String() string {
	switch k {
	case FieldU8:
		return "u8"
	case FieldU16:
		return "u16"
	case FieldU32:
		return "u32"
	case FieldU64:
		return "u64"
	case FieldBytes:
		return "bytes"
	case FieldEnd:
		return "end"
	}
	return fmt.Sprintf("FieldKind(%d)", uint8(k))
}

// DescriptorField is one field of a descriptor: an ID, a kind, and the value
// in the representation the kind calls for. Numeric kinds use Value, FieldBytes
// uses Bytes, FieldEnd uses neither.
type DescriptorField struct {
	ID    uint16
	Kind  FieldKind
	Value uint64
	Bytes []byte
}

// Field constructors for the shapes a descriptor can carry.
func U8Field(id uint16, v uint8) DescriptorField   { return DescriptorField{ID: id, Kind: FieldU8, Value: uint64(v)} }
func U16Field(id uint16, v uint16) DescriptorField { return DescriptorField{ID: id, Kind: FieldU16, Value: uint64(v)} }
func U32Field(id uint16, v uint32) DescriptorField { return DescriptorField{ID: id, Kind: FieldU32, Value: uint64(v)} }
func U64Field(id uint16, v uint64) DescriptorField { return DescriptorField{ID: id, Kind: FieldU64, Value: v} }
func BytesField(id uint16, b []byte) DescriptorField {
	return DescriptorField{ID: id, Kind: FieldBytes, Bytes: b}
}
func EndField() DescriptorField { return DescriptorField{ID: endFieldID, Kind: FieldEnd} }

// tag returns the field's type-entry value: kind in the high 4 bits, ID in
// the low 12.
func (f DescriptorField) tag() uint16 {
	return uint16(f.Kind)<<12 | f.ID&0x0FFF
}

// typeLen returns the field's size inside the DescriptorType payload.
func (f DescriptorField) typeLen() int {
	if f.Kind == FieldBytes {
		return 4
	}
	return 2
}

// dataLen returns the field's size inside the DescriptorData payload.
func (f DescriptorField) dataLen() int {
	switch f.Kind {
	case FieldU8:
		return 1
	case FieldU16:
		return 2
	case FieldU32:
		return 4
	case FieldU64:
		return 8
	case FieldBytes:
		return len(f.Bytes)
	}
	return 0
}

// FieldShape is one entry of a parsed DescriptorType record: the shape a
// DescriptorData field must have, before its value is known.
type FieldShape struct {
	ID   uint16
	Kind FieldKind
	Size uint16 // payload bytes the field occupies in DescriptorData
}

// DescriptorLayout is a parsed DescriptorType record.
type DescriptorLayout []FieldShape

// DataLen returns the DescriptorData payload length the layout requires.
func (l DescriptorLayout) DataLen() int {
	n := 0
	for _, s := range l {
		n += int(s.Size)
	}
	return n
}

// DecodeDescriptorLayout parses a DescriptorType payload.
func DecodeDescriptorLayout(payload []byte, order binary.ByteOrder) (DescriptorLayout, error) {
	if len(payload)%2 != 0 {
		return nil, fmt.Errorf("descriptor type payload of %d bytes is not a multiple of 2: %w", len(payload), ErrInvalidPayload)
	}
	layout := make(DescriptorLayout, 0, len(payload)/2)
	for off := 0; off < len(payload); {
		tag := order.Uint16(payload[off:])
		off += 2
		kind := FieldKind(tag >> 12)
		id := tag & 0x0FFF
		switch kind {
		case FieldU8:
			layout = append(layout, FieldShape{ID: id, Kind: kind, Size: 1})
		case FieldU16:
			layout = append(layout, FieldShape{ID: id, Kind: kind, Size: 2})
		case FieldU32:
			layout = append(layout, FieldShape{ID: id, Kind: kind, Size: 4})
		case FieldU64:
			layout = append(layout, FieldShape{ID: id, Kind: kind, Size: 8})
		case FieldBytes:
			if off+2 > len(payload) {
				return nil, fmt.Errorf("descriptor type: bytes field 0x%03x is missing its length: %w", id, ErrInvalidPayload)
			}
			size := order.Uint16(payload[off:])
			off += 2
			layout = append(layout, FieldShape{ID: id, Kind: kind, Size: size})
		case FieldEnd:
			layout = append(layout, FieldShape{ID: id, Kind: kind, Size: 0})
		default:
			return nil, fmt.Errorf("descriptor type: unknown field kind %d (tag 0x%04x): %w", kind, tag, ErrInvalidPayload)
		}
	}
	return layout, nil
}

// DescriptorRecord is the logical record formed by a DescriptorType and
// DescriptorData pair.
type DescriptorRecord struct {
	Fields []DescriptorField
}

func (d DescriptorRecord) String() string {
	return fmt.Sprintf("Descriptor(%d fields)", len(d.Fields))
}

// TypeLen returns the DescriptorType payload length the record encodes to.
func (d DescriptorRecord) TypeLen() int {
	n := 0
	for _, f := range d.Fields {
		n += f.typeLen()
	}
	return n
}

// DataLen returns the DescriptorData payload length the record encodes to.
func (d DescriptorRecord) DataLen() int {
	n := 0
	for _, f := range d.Fields {
		n += f.dataLen()
	}
	return n
}

// DecodeDescriptorData interprets a DescriptorData payload against the
// layout from the preceding DescriptorType record. The payload length must
// match the layout exactly.
func DecodeDescriptorData(layout DescriptorLayout, payload []byte, order binary.ByteOrder) (DescriptorRecord, error) {
	if len(payload) != layout.DataLen() {
		return DescriptorRecord{}, fmt.Errorf("descriptor data is %d bytes, layout requires %d: %w",
			len(payload), layout.DataLen(), ErrInvalidPayload)
	}
	fields := make([]DescriptorField, 0, len(layout))
	off := 0
	for _, s := range layout {
		f := DescriptorField{ID: s.ID, Kind: s.Kind}
		switch s.Kind {
		case FieldU8:
			f.Value = uint64(payload[off])
		case FieldU16:
			f.Value = uint64(order.Uint16(payload[off:]))
		case FieldU32:
			f.Value = uint64(order.Uint32(payload[off:]))
		case FieldU64:
			f.Value = order.Uint64(payload[off:])
		case FieldBytes:
			b := make([]byte, s.Size)
			copy(b, payload[off:off+int(s.Size)])
			f.Bytes = b
		}
		off += int(s.Size)
		fields = append(fields, f)
	}
	return DescriptorRecord{Fields: fields}, nil
}

// AppendWire appends both wire records (type, then data) to dst.
func (d DescriptorRecord) AppendWire(dst []byte, order binary.ByteOrder) ([]byte, error) {
	typeLen, dataLen := d.TypeLen(), d.DataLen()
	if typeLen > MaxPayloadLen || dataLen > MaxPayloadLen {
		return nil, fmt.Errorf("descriptor record: %w", ErrPayloadTooLarge)
	}

	dst = Header{Tag: TagDescriptorType, PayloadLen: uint16(typeLen)}.Append(dst, order)
	var buf [8]byte
	for _, f := range d.Fields {
		order.PutUint16(buf[:2], f.tag())
		dst = append(dst, buf[:2]...)
		if f.Kind == FieldBytes {
			order.PutUint16(buf[:2], uint16(len(f.Bytes)))
			dst = append(dst, buf[:2]...)
		}
	}

	dst = Header{Tag: TagDescriptorData, PayloadLen: uint16(dataLen)}.Append(dst, order)
	for _, f := range d.Fields {
		switch f.Kind {
		case FieldU8:
			dst = append(dst, uint8(f.Value))
		case FieldU16:
			order.PutUint16(buf[:2], uint16(f.Value))
			dst = append(dst, buf[:2]...)
		case FieldU32:
			order.PutUint32(buf[:4], uint32(f.Value))
			dst = append(dst, buf[:4]...)
		case FieldU64:
			order.PutUint64(buf[:8], f.Value)
			dst = append(dst, buf[:8]...)
		case FieldBytes:
			dst = append(dst, f.Bytes...)
		}
	}
	return dst, nil
}

// Well-known descriptor field IDs. The same ID can mean different things
// under different kinds (ID 10 is the XOR key as a u8 but the firmware tag
// as a u16), so lookups always match on both.
const (
	fieldHWID          = 9  // u16
	fieldXorKey        = 10 // u8
	fieldFirmwareTag   = 10 // u16
	fieldVersionID12   = 12 // u16
	fieldVersionSW     = 13 // u16
	fieldVersionID20   = 20 // u16
	fieldVersionRemote = 21 // u16
	fieldFirmwareLen   = 21 // u32
	fieldFw2000P1Len   = 23 // u32
	fieldFw2000P2Len   = 24 // u32
	fieldFw2000P3Len   = 25 // u32
	fieldFirmwareAddr  = 26 // u32
)

func (d DescriptorRecord) lookup(id uint16, kind FieldKind) (uint64, bool) {
	for _, f := range d.Fields {
		if f.ID == id && f.Kind == kind {
			return f.Value, true
		}
	}
	return 0, false
}

// FirmwareTag returns the record tag the following firmware chunks use.
func (d DescriptorRecord) FirmwareTag() (uint16, bool) {
	v, ok := d.lookup(fieldFirmwareTag, FieldU16)
	return uint16(v), ok
}

// FirmwareLen returns the total firmware payload length the descriptor
// announces. The 2000-series split-part lengths count too.
func (d DescriptorRecord) FirmwareLen() (uint32, bool) {
	if v, ok := d.lookup(fieldFirmwareLen, FieldU32); ok {
		return uint32(v), true
	}
	for _, id := range []uint16{fieldFw2000P1Len, fieldFw2000P2Len, fieldFw2000P3Len} {
		if v, ok := d.lookup(id, FieldU32); ok {
			return uint32(v), true
		}
	}
	return 0, false
}

// XorKey returns the key firmware payloads are XORed with, 0 for none.
func (d DescriptorRecord) XorKey() uint8 {
	v, _ := d.lookup(fieldXorKey, FieldU8)
	return uint8(v)
}

// HardwareID returns the hardware ID field if present.
func (d DescriptorRecord) HardwareID() (uint16, bool) {
	v, ok := d.lookup(fieldHWID, FieldU16)
	return uint16(v), ok
}

// SoftwareVersion returns the software version field if present.
func (d DescriptorRecord) SoftwareVersion() (Version, bool) {
	v, ok := d.lookup(fieldVersionSW, FieldU16)
	if !ok {
		return Version{}, false
	}
	return VersionFromRaw(uint16(v)), true
}
