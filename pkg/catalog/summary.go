package catalog

import (
	"io"

	"github.com/opengcd/gcd/pkg/codec"
	"github.com/opengcd/gcd/pkg/stream"
)

// Summary is what the catalog remembers about one GCD file.
type Summary struct {
	Name            string         `json:"name"`
	Size            int64          `json:"size"`
	Records         int            `json:"records"`
	Texts           []string       `json:"texts,omitempty"`
	HardwareID      uint16         `json:"hardware_id,omitempty"`
	SoftwareVersion string         `json:"software_version,omitempty"`
	FirmwareBlocks  []BlockSummary `json:"firmware_blocks,omitempty"`
}

// BlockSummary describes one firmware block of a file.
type BlockSummary struct {
	Tag    uint16 `json:"tag"`
	Length uint32 `json:"length"`
	Chunks int    `json:"chunks"`
	XorKey uint8  `json:"xor_key,omitempty"`
}

// Summarize parses an entire GCD stream and reduces it to a Summary. A
// malformed stream fails with the parser's error; a summary is only ever
// produced for a file that parses end to end.
func Summarize(name string, r io.Reader, opts ...stream.Option) (*Summary, error) {
	p, err := stream.NewParser(r, opts...)
	if err != nil {
		return nil, err
	}

	s := &Summary{Name: name}
	for {
		rec, err := p.ReadRecord()
		if err != nil {
			return nil, err
		}
		s.Records++

		switch r := rec.(type) {
		case codec.TextRecord:
			if len(r.Blob) == 0 {
				s.Texts = append(s.Texts, r.Simple)
			}
		case codec.DescriptorRecord:
			block := BlockSummary{XorKey: r.XorKey()}
			block.Tag, _ = r.FirmwareTag()
			block.Length, _ = r.FirmwareLen()
			s.FirmwareBlocks = append(s.FirmwareBlocks, block)
			if hwid, ok := r.HardwareID(); ok {
				s.HardwareID = hwid
			}
			if v, ok := r.SoftwareVersion(); ok {
				s.SoftwareVersion = v.String()
			}
		case codec.FirmwareRecord:
			last := &s.FirmwareBlocks[len(s.FirmwareBlocks)-1]
			last.Chunks++
		case codec.EndRecord:
			s.Size = p.Offset()
			return s, nil
		}
	}
}
