package stream

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengcd/gcd/pkg/codec"
)

// compose builds an in-memory stream from records.
func compose(t *testing.T, opts []Option, records ...codec.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	c, err := NewComposer(&buf, opts...)
	require.NoError(t, err)
	for i, rec := range records {
		require.NoError(t, c.WriteRecord(rec), "record %d (%s)", i, rec)
	}
	return buf.Bytes()
}

// parseAll drains a stream until End, returning every record.
func parseAll(t *testing.T, raw []byte, opts ...Option) []codec.Record {
	t.Helper()
	p, err := NewParser(bytes.NewReader(raw), opts...)
	require.NoError(t, err)
	var records []codec.Record
	for {
		rec, err := p.ReadRecord()
		require.NoError(t, err, "after %d records", len(records))
		records = append(records, rec)
		if _, ok := rec.(codec.EndRecord); ok {
			return records
		}
	}
}

func TestRoundTrip_Minimal(t *testing.T) {
	raw := compose(t, nil,
		codec.NewText("A"),
		codec.EndRecord{},
	)

	records := parseAll(t, raw)
	require.Len(t, records, 2)
	require.Equal(t, codec.NewText("A"), records[0])
	require.Equal(t, codec.EndRecord{}, records[1])
}

func firmwareDescriptor(tag uint16, length uint32, key uint8) codec.DescriptorRecord {
	fields := []codec.DescriptorField{
		codec.U16Field(9, 0x0037),
		codec.U16Field(10, tag),
		codec.U16Field(13, 380),
		codec.U32Field(21, length),
	}
	if key != 0 {
		fields = append(fields, codec.U8Field(10, key))
	}
	fields = append(fields, codec.EndField())
	return codec.DescriptorRecord{Fields: fields}
}

func TestRoundTrip_FullFile(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []Option
	}{
		{"little-endian", nil},
		{"big-endian", []Option{WithByteOrder(binary.BigEndian)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			input := []codec.Record{
				codec.NewText("OpenGCD firmware image"),
				codec.ChecksumRecord{},
				codec.MainRecord{Kind: codec.MainHWID},
				codec.FillerRecord{Size: 8},
				firmwareDescriptor(0x00A8, 8, 0x5C),
				codec.NewText("region 14"),
				codec.FirmwareRecord{Tag: 0x00A8, Data: []byte{1, 2, 3, 4}},
				codec.FirmwareRecord{Tag: 0x00A8, Data: []byte{5, 6, 7, 8}},
				codec.ChecksumRecord{},
				codec.EndRecord{},
			}

			raw := compose(t, tc.opts, input...)
			records := parseAll(t, raw, tc.opts...)
			require.Equal(t, input, records)
		})
	}
}

func TestRoundTrip_MultipleFirmwareBlocks(t *testing.T) {
	input := []codec.Record{
		codec.MainRecord{Kind: codec.MainPartNumber},
		firmwareDescriptor(0x00A8, 4, 0),
		codec.FirmwareRecord{Tag: 0x00A8, Data: []byte{1, 2, 3, 4}},
		firmwareDescriptor(0x05A5, 2, 0),
		codec.FirmwareRecord{Tag: 0x05A5, Data: []byte{0xCA, 0xFE}},
		codec.EndRecord{},
	}

	raw := compose(t, nil, input...)
	records := parseAll(t, raw)
	require.Equal(t, input, records)
}

func TestRoundTrip_EmptyPayloads(t *testing.T) {
	input := []codec.Record{
		codec.NewText(""),
		codec.FillerRecord{Size: 0},
		codec.EndRecord{},
	}

	raw := compose(t, nil, input...)
	records := parseAll(t, raw)
	require.Equal(t, input, records)
}

func TestParser_StreamExhausted(t *testing.T) {
	// Trailing garbage after the End record must never be read.
	raw := compose(t, nil, codec.NewText("x"), codec.EndRecord{})
	raw = append(raw, 0xDE, 0xAD)

	src := bytes.NewReader(raw)
	p, err := NewParser(src)
	require.NoError(t, err)

	for {
		rec, err := p.ReadRecord()
		require.NoError(t, err)
		if _, ok := rec.(codec.EndRecord); ok {
			break
		}
	}

	before := src.Len()
	for i := 0; i < 3; i++ {
		_, err = p.ReadRecord()
		require.ErrorIs(t, err, ErrStreamExhausted)
	}
	assert.Equal(t, before, src.Len(), "reader touched after End")
}

func TestParser_Truncation(t *testing.T) {
	raw := compose(t, nil,
		codec.NewText("truncate me"),
		codec.ChecksumRecord{},
		codec.EndRecord{},
	)

	// Every proper prefix must fail with ErrUnexpectedEOF, never succeed.
	for n := 0; n < len(raw); n++ {
		p, err := NewParser(bytes.NewReader(raw[:n]))
		if err != nil {
			require.ErrorIs(t, err, ErrUnexpectedEOF, "prefix %d", n)
			continue
		}
		for {
			rec, err := p.ReadRecord()
			if err != nil {
				require.ErrorIs(t, err, ErrUnexpectedEOF, "prefix %d", n)
				break
			}
			_, isEnd := rec.(codec.EndRecord)
			require.False(t, isEnd, "prefix %d decoded an End record", n)
		}
	}
}

func TestParser_ChecksumMismatch(t *testing.T) {
	raw := compose(t, nil,
		codec.NewText("payload"),
		codec.ChecksumRecord{},
		codec.EndRecord{},
	)

	// Flip a text payload byte; the checkpoint must catch it.
	raw[preambleLen+codec.HeaderLen] ^= 0xFF

	p, err := NewParser(bytes.NewReader(raw))
	require.NoError(t, err)
	_, err = p.ReadRecord() // the text record still decodes
	require.NoError(t, err)
	_, err = p.ReadRecord()
	require.ErrorIs(t, err, codec.ErrInvalidPayload)
}

func TestComposer_WriteRawRecord(t *testing.T) {
	var buf bytes.Buffer
	c, err := NewComposer(&buf)
	require.NoError(t, err)
	require.NoError(t, c.WriteRawRecord(0x0099, []byte{1, 2, 3}))

	raw := buf.Bytes()[preambleLen:]
	hdr, err := codec.ParseHeader(raw, codec.DefaultByteOrder)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0099), hdr.Tag)
	assert.Equal(t, uint16(3), hdr.PayloadLen)
	assert.Equal(t, []byte{1, 2, 3}, raw[codec.HeaderLen:])
}

func TestComposer_PermissiveAfterEnd(t *testing.T) {
	// The composer applies no order rules: records after End are written.
	var buf bytes.Buffer
	c, err := NewComposer(&buf)
	require.NoError(t, err)
	require.NoError(t, c.WriteRecord(codec.EndRecord{}))
	require.NoError(t, c.WriteRecord(codec.NewText("after the end")))
	assert.Equal(t, int64(buf.Len()), c.Offset())
}
