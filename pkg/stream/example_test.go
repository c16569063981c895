package stream_test

import (
	"bytes"
	"errors"
	"fmt"
	"log"

	"github.com/opengcd/gcd/pkg/codec"
	"github.com/opengcd/gcd/pkg/stream"
)

// Example_composeAndParse builds a minimal file in memory and reads it back.
func Example_composeAndParse() {
	var buf bytes.Buffer

	c, err := stream.NewComposer(&buf)
	if err != nil {
		log.Fatal(err)
	}
	for _, rec := range []codec.Record{
		codec.NewText("OpenGCD sample"),
		codec.ChecksumRecord{},
		codec.EndRecord{},
	} {
		if err := c.WriteRecord(rec); err != nil {
			log.Fatal(err)
		}
	}

	p, err := stream.NewParser(bytes.NewReader(buf.Bytes()))
	if err != nil {
		log.Fatal(err)
	}
	for {
		rec, err := p.ReadRecord()
		if errors.Is(err, stream.ErrStreamExhausted) {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(rec)
	}

	// Output:
	// Text("OpenGCD sample")
	// Checksum
	// End
}
