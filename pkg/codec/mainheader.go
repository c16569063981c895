package codec

import (
	"encoding/binary"
	"fmt"
)

// Only two main-header values have ever been observed in the wild. Decoding
// rejects anything else rather than guess at its meaning.
const DefaultHWID uint16 = 0x0037

// DefaultPartNumber is the only part-number value seen in a main header.
var DefaultPartNumber = PartNumber{Kind: 10, HwKind: 1, HwID: 37, Rel: 0} // "010-10037-00"

// MainKind selects which of the two known main-header shapes a MainRecord is.
type MainKind uint8

const (
	// MainHWID is the 2-byte hardware-ID shape.
	MainHWID MainKind = iota
	// MainPartNumber is the 9-byte packed part-number shape.
	MainPartNumber
)

// MainRecord is the first data-bearing record of a file, possibly describing
// the file format itself. Both known shapes carry fixed well-known values,
// so the record reduces to its kind.
type MainRecord struct {
	Kind MainKind
}

func (m MainRecord) String() string {
	switch m.Kind {
	case MainPartNumber:
		return fmt.Sprintf("MainHeader:PartNumber(%s)", DefaultPartNumber)
	default:
		return fmt.Sprintf("MainHeader:HWID(0x%04x)", DefaultHWID)
	}
}

// PayloadLen returns the payload size of the record's shape.
func (m MainRecord) PayloadLen() int {
	if m.Kind == MainPartNumber {
		return PartNumberLen
	}
	return 2
}

// DecodeMain interprets a MainHeader payload. The shape is chosen by payload
// length; unknown lengths and unknown values are invalid.
func DecodeMain(payload []byte, order binary.ByteOrder) (MainRecord, error) {
	switch len(payload) {
	case 2:
		if hwid := order.Uint16(payload); hwid != DefaultHWID {
			return MainRecord{}, fmt.Errorf("main header HWID 0x%04x is not a known value: %w", hwid, ErrInvalidPayload)
		}
		return MainRecord{Kind: MainHWID}, nil
	case PartNumberLen:
		pn, err := DecodePartNumber(payload, order)
		if err != nil {
			return MainRecord{}, err
		}
		if pn != DefaultPartNumber {
			return MainRecord{}, fmt.Errorf("main header part number %s is not a known value: %w", pn, ErrInvalidPayload)
		}
		return MainRecord{Kind: MainPartNumber}, nil
	default:
		return MainRecord{}, fmt.Errorf("main header payload of %d bytes: %w", len(payload), ErrInvalidPayload)
	}
}

// AppendWire appends the record's full wire form to dst.
func (m MainRecord) AppendWire(dst []byte, order binary.ByteOrder) []byte {
	dst = Header{Tag: TagMainHeader, PayloadLen: uint16(m.PayloadLen())}.Append(dst, order)
	if m.Kind == MainPartNumber {
		return DefaultPartNumber.AppendRaw(dst, order)
	}
	var buf [2]byte
	order.PutUint16(buf[:], DefaultHWID)
	return append(dst, buf[:]...)
}
