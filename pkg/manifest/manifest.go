// Package manifest converts GCD streams to and from an editable yaml form.
//
// A manifest lists every record of a file in order. Small records are stored
// inline; firmware payloads go to separate .bin files next to the manifest,
// with each chunk entry pointing at its file segment. Extracting a file and
// building it back produces the identical byte stream, which makes the yaml
// a practical way to inspect or patch firmware images.
package manifest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/opengcd/gcd/pkg/codec"
	"github.com/opengcd/gcd/pkg/stream"
)

// ErrBadManifest means a manifest entry is malformed or references data
// that cannot be resolved.
var ErrBadManifest = errors.New("bad manifest")

// Entry types. One per record variant, with firmware chunks externalized.
const (
	TypeText       = "text"
	TypeChecksum   = "checksum"
	TypeFiller     = "filler"
	TypeMainHeader = "main-header"
	TypeDescriptor = "descriptor"
	TypeFirmware   = "firmware"
	TypeEnd        = "end"
)

// Main-header shapes.
const (
	ShapeHWID       = "hwid"
	ShapePartNumber = "part-number"
)

// Entry is one record of the file. Which fields are meaningful depends on
// Type; everything else stays at its zero value and is omitted from the yaml.
type Entry struct {
	Type string `yaml:"type"`

	// TypeText: one of the two, Data (hex) for payloads that are not
	// valid UTF-8.
	Text string `yaml:"text,omitempty"`
	Data string `yaml:"data,omitempty"`

	// TypeFiller
	Size uint16 `yaml:"size,omitempty"`

	// TypeMainHeader
	Shape string `yaml:"shape,omitempty"`

	// TypeDescriptor
	Fields []Field `yaml:"fields,omitempty"`

	// TypeFirmware: Length payload bytes at Offset of File, written under
	// record tag Tag.
	Tag    uint16 `yaml:"tag,omitempty"`
	File   string `yaml:"file,omitempty"`
	Offset int64  `yaml:"offset,omitempty"`
	Length uint16 `yaml:"length,omitempty"`
}

// Field is one descriptor field in yaml form. Kind uses the same names the
// descriptor type record encodes: u8, u16, u32, u64, bytes, end.
type Field struct {
	ID    uint16 `yaml:"id"`
	Kind  string `yaml:"kind"`
	Value uint64 `yaml:"value,omitempty"`
	Data  string `yaml:"data,omitempty"` // hex, kind bytes only
}

// Manifest is the yaml document: the record list of one GCD file.
type Manifest struct {
	Records []Entry `yaml:"records"`
}

// Load reads a manifest from path.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w: %w", ErrBadManifest, err)
	}
	return &m, nil
}

// Save writes the manifest to path as yaml.
func (m *Manifest) Save(path string) error {
	raw, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func fieldKindFromName(name string) (codec.FieldKind, error) {
	for _, k := range []codec.FieldKind{
		codec.FieldU8, codec.FieldU16, codec.FieldU32, codec.FieldU64,
		codec.FieldBytes, codec.FieldEnd,
	} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("field kind %q: %w", name, ErrBadManifest)
}

// FromRecord converts a decoded record into its manifest entry. Firmware
// records are not handled here; Extract externalizes their payloads.
func FromRecord(rec codec.Record) (Entry, error) {
	switch r := rec.(type) {
	case codec.TextRecord:
		if len(r.Blob) > 0 {
			return Entry{Type: TypeText, Data: hex.EncodeToString(r.Blob)}, nil
		}
		return Entry{Type: TypeText, Text: r.Simple}, nil
	case codec.ChecksumRecord:
		return Entry{Type: TypeChecksum}, nil
	case codec.FillerRecord:
		return Entry{Type: TypeFiller, Size: r.Size}, nil
	case codec.MainRecord:
		shape := ShapeHWID
		if r.Kind == codec.MainPartNumber {
			shape = ShapePartNumber
		}
		return Entry{Type: TypeMainHeader, Shape: shape}, nil
	case codec.DescriptorRecord:
		fields := make([]Field, 0, len(r.Fields))
		for _, f := range r.Fields {
			mf := Field{ID: f.ID, Kind: f.Kind.String()}
			if f.Kind == codec.FieldBytes {
				mf.Data = hex.EncodeToString(f.Bytes)
			} else {
				mf.Value = f.Value
			}
			fields = append(fields, mf)
		}
		return Entry{Type: TypeDescriptor, Fields: fields}, nil
	case codec.EndRecord:
		return Entry{Type: TypeEnd}, nil
	default:
		return Entry{}, fmt.Errorf("record %T has no manifest form", rec)
	}
}

// Record converts the entry back into a record. Firmware entries are not
// handled here; Build resolves their file segments.
func (e Entry) Record() (codec.Record, error) {
	switch e.Type {
	case TypeText:
		if e.Data != "" {
			blob, err := hex.DecodeString(e.Data)
			if err != nil {
				return nil, fmt.Errorf("text data: %w: %w", ErrBadManifest, err)
			}
			return codec.TextRecord{Blob: blob}, nil
		}
		return codec.NewText(e.Text), nil
	case TypeChecksum:
		return codec.ChecksumRecord{}, nil
	case TypeFiller:
		return codec.FillerRecord{Size: e.Size}, nil
	case TypeMainHeader:
		switch e.Shape {
		case ShapeHWID:
			return codec.MainRecord{Kind: codec.MainHWID}, nil
		case ShapePartNumber:
			return codec.MainRecord{Kind: codec.MainPartNumber}, nil
		}
		return nil, fmt.Errorf("main-header shape %q: %w", e.Shape, ErrBadManifest)
	case TypeDescriptor:
		fields := make([]codec.DescriptorField, 0, len(e.Fields))
		for _, mf := range e.Fields {
			kind, err := fieldKindFromName(mf.Kind)
			if err != nil {
				return nil, err
			}
			f := codec.DescriptorField{ID: mf.ID, Kind: kind, Value: mf.Value}
			if kind == codec.FieldBytes {
				f.Bytes, err = hex.DecodeString(mf.Data)
				if err != nil {
					return nil, fmt.Errorf("field %d data: %w: %w", mf.ID, ErrBadManifest, err)
				}
			}
			fields = append(fields, f)
		}
		return codec.DescriptorRecord{Fields: fields}, nil
	case TypeEnd:
		return codec.EndRecord{}, nil
	}
	return nil, fmt.Errorf("entry type %q: %w", e.Type, ErrBadManifest)
}

// Extract drains the parser into a manifest, writing firmware payloads as
// .bin files under dir. Each descriptor starts a new blob file; chunk entries
// record the segment they occupy so Build can reproduce the exact chunking.
func Extract(p *stream.Parser, dir string) (*Manifest, error) {
	var (
		m      Manifest
		fwFile *os.File
		fwName string
		fwOff  int64
		fwNum  int
	)
	defer func() {
		if fwFile != nil {
			fwFile.Close()
		}
	}()

	for {
		rec, err := p.ReadRecord()
		if err != nil {
			return nil, err
		}

		switch r := rec.(type) {
		case codec.DescriptorRecord:
			// New firmware block: rotate the blob file.
			if fwFile != nil {
				if err := fwFile.Close(); err != nil {
					return nil, fmt.Errorf("close firmware blob: %w", err)
				}
			}
			tag, _ := r.FirmwareTag()
			fwName = fmt.Sprintf("fw%d_0x%04x.bin", fwNum, tag)
			fwNum++
			fwOff = 0
			fwFile, err = os.Create(filepath.Join(dir, fwName))
			if err != nil {
				return nil, fmt.Errorf("create firmware blob: %w", err)
			}
			entry, err := FromRecord(rec)
			if err != nil {
				return nil, err
			}
			m.Records = append(m.Records, entry)

		case codec.FirmwareRecord:
			if _, err := fwFile.Write(r.Data); err != nil {
				return nil, fmt.Errorf("write firmware blob: %w", err)
			}
			m.Records = append(m.Records, Entry{
				Type:   TypeFirmware,
				Tag:    r.Tag,
				File:   fwName,
				Offset: fwOff,
				Length: uint16(len(r.Data)),
			})
			fwOff += int64(len(r.Data))

		case codec.EndRecord:
			m.Records = append(m.Records, Entry{Type: TypeEnd})
			return &m, nil

		default:
			entry, err := FromRecord(rec)
			if err != nil {
				return nil, err
			}
			m.Records = append(m.Records, entry)
		}
	}
}

// Build writes every manifest entry to the composer, resolving firmware
// entries against their blob files under dir.
func Build(c *stream.Composer, m *Manifest, dir string) error {
	for i, e := range m.Records {
		if e.Type == TypeFirmware {
			data, err := readSegment(filepath.Join(dir, e.File), e.Offset, int(e.Length))
			if err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
			if err := c.WriteRecord(codec.FirmwareRecord{Tag: e.Tag, Data: data}); err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
			continue
		}
		rec, err := e.Record()
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if err := c.WriteRecord(rec); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

func readSegment(path string, off int64, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open firmware blob: %w", err)
	}
	defer f.Close()

	data := make([]byte, n)
	if _, err := io.ReadFull(io.NewSectionReader(f, off, int64(n)), data); err != nil {
		return nil, fmt.Errorf("read firmware blob %s at %d: %w", path, off, err)
	}
	return data, nil
}
