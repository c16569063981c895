package codec

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// PartNumberLen is the wire size of a packed part number.
const PartNumberLen = 9

// partNumberChars is the length of the text form "AAA-BCCCC-DD".
const partNumberChars = 12

// PartNumber identifies a product or part of one. Its text form is
// "AAA-BCCCC-DD"; on the wire the twelve characters are packed six bits
// each (char minus 0x20) into nine bytes. The field meanings are not
// documented anywhere official; the names below are the common reading.
type PartNumber struct {
	Kind   uint16 // product kind, three digits
	HwKind uint8  // hardware type, one digit
	HwID   uint16 // hardware ID, four digits
	Rel    uint8  // release or variation, two digits
}

// ParsePartNumber parses the "AAA-BCCCC-DD" text form.
func ParsePartNumber(s string) (PartNumber, error) {
	if len(s) != partNumberChars || s[3] != '-' || s[9] != '-' {
		return PartNumber{}, fmt.Errorf("part number %q does not match AAA-BCCCC-DD", s)
	}
	kind, err := strconv.ParseUint(s[0:3], 10, 16)
	if err != nil {
		return PartNumber{}, fmt.Errorf("part number %q: bad kind: %w", s, err)
	}
	hwKind, err := strconv.ParseUint(s[4:5], 10, 8)
	if err != nil {
		return PartNumber{}, fmt.Errorf("part number %q: bad hardware type: %w", s, err)
	}
	hwID, err := strconv.ParseUint(s[5:9], 10, 16)
	if err != nil {
		return PartNumber{}, fmt.Errorf("part number %q: bad hardware ID: %w", s, err)
	}
	rel, err := strconv.ParseUint(s[10:12], 10, 8)
	if err != nil {
		return PartNumber{}, fmt.Errorf("part number %q: bad release: %w", s, err)
	}
	return PartNumber{
		Kind:   uint16(kind),
		HwKind: uint8(hwKind),
		HwID:   uint16(hwID),
		Rel:    uint8(rel),
	}, nil
}

// DecodePartNumber unpacks a part number from its first PartNumberLen raw
// bytes. The wire bytes are the packed value in the given byte order.
func DecodePartNumber(raw []byte, order binary.ByteOrder) (PartNumber, error) {
	if len(raw) < PartNumberLen {
		return PartNumber{}, fmt.Errorf("part number needs %d bytes, have %d: %w", PartNumberLen, len(raw), ErrInvalidPayload)
	}
	be := normalizeBigEndian(raw[:PartNumberLen], order)

	var chars [partNumberChars]byte
	for i := range chars {
		chars[i] = get6(be[:], i) + 0x20
	}
	pn, err := ParsePartNumber(string(chars[:]))
	if err != nil {
		return PartNumber{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return pn, nil
}

// AppendRaw packs the part number and appends its PartNumberLen wire bytes
// to dst.
func (pn PartNumber) AppendRaw(dst []byte, order binary.ByteOrder) []byte {
	s := pn.String()
	var be [PartNumberLen]byte
	for i := 0; i < partNumberChars; i++ {
		put6(be[:], i, s[i]-0x20)
	}
	if isLittleEndian(order) {
		for i := len(be) - 1; i >= 0; i-- {
			dst = append(dst, be[i])
		}
		return dst
	}
	return append(dst, be[:]...)
}

func (pn PartNumber) String() string {
	return fmt.Sprintf("%03d-%d%04d-%02d", pn.Kind, pn.HwKind, pn.HwID, pn.Rel)
}

// normalizeBigEndian returns raw as a big-endian byte array so the packed
// bit groups can be walked most-significant first.
func normalizeBigEndian(raw []byte, order binary.ByteOrder) [PartNumberLen]byte {
	var be [PartNumberLen]byte
	if isLittleEndian(order) {
		for i, b := range raw {
			be[len(be)-1-i] = b
		}
		return be
	}
	copy(be[:], raw)
	return be
}

// get6 extracts the i-th 6-bit group of be, counting from the most
// significant bits.
func get6(be []byte, i int) byte {
	bit := i * 6
	idx, off := bit/8, bit%8
	v := uint16(be[idx]) << 8
	if idx+1 < len(be) {
		v |= uint16(be[idx+1])
	}
	return byte((v >> (10 - off)) & 0x3F)
}

// put6 stores v into the i-th 6-bit group of be.
func put6(be []byte, i int, v byte) {
	bit := i * 6
	idx, off := bit/8, bit%8
	x := uint16(v&0x3F) << (10 - off)
	be[idx] |= byte(x >> 8)
	if idx+1 < len(be) {
		be[idx+1] |= byte(x)
	}
}

// isLittleEndian probes the byte order without naming it, so third-party
// ByteOrder implementations work too.
func isLittleEndian(order binary.ByteOrder) bool {
	return order.Uint16([]byte{0x01, 0x00}) == 1
}
