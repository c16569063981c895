// Package stream reads and writes GCD firmware update files.
//
// A GCD file is an 8-byte preamble ("GARMIN" plus a format version) followed
// by a flat sequence of records, terminated by an End record. Parser decodes
// one record per call, validating record order and checksum checkpoints as it
// goes; it never reads past the record it returns, so the underlying reader
// is left exactly at the next record boundary. Composer is the writing side:
// it keeps the running checksum and the obfuscation key from the last
// descriptor so checkpoint and firmware records come out right.
//
// Record order is enforced on read but not on write. A Composer writes
// whatever it is told in the order it is told, which allows producing
// deliberately malformed files for testing.
//
// Neither type is safe for concurrent use.
package stream
