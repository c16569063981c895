package codec

import (
	"bytes"
	"encoding/binary"
	"testing"
)

var (
	partNumberLE = []byte{0x10, 0xD4, 0x5C, 0x13, 0x04, 0x45, 0x0D, 0x14, 0x41}
	partNumberBE = []byte{0x41, 0x14, 0x0D, 0x45, 0x04, 0x13, 0x5C, 0xD4, 0x10}
)

func TestPartNumber_Parse(t *testing.T) {
	pn, err := ParsePartNumber("010-10037-00")
	if err != nil {
		t.Fatalf("ParsePartNumber failed: %v", err)
	}
	want := PartNumber{Kind: 10, HwKind: 1, HwID: 37, Rel: 0}
	if pn != want {
		t.Errorf("got %+v, want %+v", pn, want)
	}
	if pn.String() != "010-10037-00" {
		t.Errorf("String() = %q, want %q", pn.String(), "010-10037-00")
	}
}

func TestPartNumber_ParseInvalid(t *testing.T) {
	for _, s := range []string{
		"",
		"010-10037-0",
		"010-10037-000",
		"01010037-00",
		"010-10037_00",
		"abc-10037-00",
	} {
		if _, err := ParsePartNumber(s); err == nil {
			t.Errorf("ParsePartNumber(%q) accepted malformed input", s)
		}
	}
}

func TestPartNumber_Wire(t *testing.T) {
	pn := DefaultPartNumber

	got := pn.AppendRaw(nil, binary.LittleEndian)
	if !bytes.Equal(got, partNumberLE) {
		t.Errorf("little-endian wire = % x, want % x", got, partNumberLE)
	}

	got = pn.AppendRaw(nil, binary.BigEndian)
	if !bytes.Equal(got, partNumberBE) {
		t.Errorf("big-endian wire = % x, want % x", got, partNumberBE)
	}
}

func TestPartNumber_Decode(t *testing.T) {
	for _, tc := range []struct {
		name  string
		raw   []byte
		order binary.ByteOrder
	}{
		{"little-endian", partNumberLE, binary.LittleEndian},
		{"big-endian", partNumberBE, binary.BigEndian},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pn, err := DecodePartNumber(tc.raw, tc.order)
			if err != nil {
				t.Fatalf("DecodePartNumber failed: %v", err)
			}
			if pn != DefaultPartNumber {
				t.Errorf("got %+v, want %+v", pn, DefaultPartNumber)
			}
		})
	}
}

func TestPartNumber_DecodeShort(t *testing.T) {
	if _, err := DecodePartNumber(partNumberLE[:8], binary.LittleEndian); err == nil {
		t.Error("DecodePartNumber accepted a short buffer")
	}
}

func TestPartNumber_RoundTrip(t *testing.T) {
	for _, s := range []string{"010-10037-00", "006-10342-01", "199-99999-99"} {
		pn, err := ParsePartNumber(s)
		if err != nil {
			t.Fatalf("ParsePartNumber(%q) failed: %v", s, err)
		}
		raw := pn.AppendRaw(nil, binary.LittleEndian)
		back, err := DecodePartNumber(raw, binary.LittleEndian)
		if err != nil {
			t.Fatalf("DecodePartNumber failed: %v", err)
		}
		if back != pn {
			t.Errorf("%q: round-trip gave %+v, want %+v", s, back, pn)
		}
	}
}
