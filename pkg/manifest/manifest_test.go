package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengcd/gcd/pkg/codec"
	"github.com/opengcd/gcd/pkg/stream"
)

func sampleStream(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	c, err := stream.NewComposer(&buf)
	require.NoError(t, err)

	desc := codec.DescriptorRecord{Fields: []codec.DescriptorField{
		codec.U16Field(9, 0x0037),
		codec.U16Field(10, 0x00A8),
		codec.U32Field(21, 6),
		codec.U8Field(10, 0x5C),
		codec.EndField(),
	}}

	for _, rec := range []codec.Record{
		codec.NewText("manifest sample"),
		codec.MainRecord{Kind: codec.MainHWID},
		codec.ChecksumRecord{},
		desc,
		codec.FirmwareRecord{Tag: 0x00A8, Data: []byte{1, 2, 3, 4}},
		codec.FirmwareRecord{Tag: 0x00A8, Data: []byte{5, 6}},
		codec.ChecksumRecord{},
		codec.EndRecord{},
	} {
		require.NoError(t, c.WriteRecord(rec))
	}
	return buf.Bytes()
}

func TestExtractBuild_RoundTrip(t *testing.T) {
	raw := sampleStream(t)
	dir := t.TempDir()

	p, err := stream.NewParser(bytes.NewReader(raw))
	require.NoError(t, err)
	m, err := Extract(p, dir)
	require.NoError(t, err)
	require.Len(t, m.Records, 8)

	// Firmware bytes land de-obfuscated in the blob file.
	blob, err := os.ReadFile(filepath.Join(dir, "fw0_0x00a8.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, blob)

	// Chunk entries keep the original chunking.
	var chunks []Entry
	for _, e := range m.Records {
		if e.Type == TypeFirmware {
			chunks = append(chunks, e)
		}
	}
	require.Len(t, chunks, 2)
	assert.Equal(t, Entry{Type: TypeFirmware, Tag: 0x00A8, File: "fw0_0x00a8.bin", Offset: 0, Length: 4}, chunks[0])
	assert.Equal(t, Entry{Type: TypeFirmware, Tag: 0x00A8, File: "fw0_0x00a8.bin", Offset: 4, Length: 2}, chunks[1])

	// Building the manifest back reproduces the byte stream.
	var rebuilt bytes.Buffer
	c, err := stream.NewComposer(&rebuilt)
	require.NoError(t, err)
	require.NoError(t, Build(c, m, dir))
	assert.Equal(t, raw, rebuilt.Bytes())
}

func TestManifest_SaveLoad(t *testing.T) {
	m := &Manifest{Records: []Entry{
		{Type: TypeText, Text: "hello"},
		{Type: TypeText, Data: "fffe41"},
		{Type: TypeFiller, Size: 3},
		{Type: TypeMainHeader, Shape: ShapePartNumber},
		{Type: TypeDescriptor, Fields: []Field{
			{ID: 10, Kind: "u16", Value: 0x00A8},
			{ID: 42, Kind: "bytes", Data: "deadbeef"},
			{ID: 3, Kind: "end"},
		}},
		{Type: TypeEnd},
	}}

	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, m.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestEntry_RecordConversion(t *testing.T) {
	records := []codec.Record{
		codec.NewText("x"),
		codec.TextRecord{Blob: []byte{0xFF, 0xFE}},
		codec.ChecksumRecord{},
		codec.FillerRecord{Size: 9},
		codec.MainRecord{Kind: codec.MainPartNumber},
		codec.DescriptorRecord{Fields: []codec.DescriptorField{
			codec.U8Field(10, 1),
			codec.BytesField(42, []byte{0xAB}),
			codec.EndField(),
		}},
		codec.EndRecord{},
	}

	for _, rec := range records {
		entry, err := FromRecord(rec)
		require.NoError(t, err, "%s", rec)
		back, err := entry.Record()
		require.NoError(t, err, "%s", rec)
		assert.Equal(t, rec, back, "%s", rec)
	}
}

func TestEntry_Invalid(t *testing.T) {
	testCases := []Entry{
		{Type: "bogus"},
		{Type: TypeMainHeader, Shape: "triangle"},
		{Type: TypeText, Data: "not hex"},
		{Type: TypeDescriptor, Fields: []Field{{ID: 1, Kind: "u17"}}},
		{Type: TypeDescriptor, Fields: []Field{{ID: 1, Kind: "bytes", Data: "xyz"}}},
	}

	for _, e := range testCases {
		_, err := e.Record()
		assert.ErrorIs(t, err, ErrBadManifest, "%+v", e)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
