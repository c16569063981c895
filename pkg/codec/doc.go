// Package codec defines the GCD record model and its binary wire format.
//
// A GCD stream is a sequence of self-delimiting records terminated by an End
// record. Every record starts with a fixed 4-byte header:
//
//	[Tag(2)][PayloadLen(2)]
//
// followed by PayloadLen payload bytes. All known GCD files are little-endian,
// but nothing in the format requires it, so every decode/encode function takes
// an explicit binary.ByteOrder.
//
// # Known tags
//
//	0x0001  Checksum        payload is always 1 byte
//	0x0002  Filler          PayloadLen zero bytes
//	0x0003  MainHeader      hardware ID (2 bytes) or part number (9 bytes)
//	0x0005  Text            arbitrary bytes, usually one line of ASCII
//	0x0006  DescriptorType  field layout for the DescriptorData that follows
//	0x0007  DescriptorData  field values, shaped by the preceding type record
//	0xFFFF  End             no payload; terminates the stream
//
// Firmware payload records carry a file-specific tag announced by the
// preceding descriptor pair, so their tag is not in the table above.
//
// # Checksum rule
//
// A Checksum record's single payload byte is chosen so that the 8-bit
// wrapping sum of every byte in the stream so far (preamble included) is
// zero immediately after the record. Maintaining that running sum is the
// caller's job; see the stream package.
//
// # Canonical encoding
//
// Every record value has exactly one wire encoding, which is what makes
// encode/decode round-trips lossless. Decoding is partial: unknown tags,
// payloads that do not fit their variant's rule, and length fields that
// overrun the data are errors, never silent truncation.
package codec
