// Package endian provides byte-order utilities for decoding IMC raw-file
// sample payloads.
//
// It extends Go's standard encoding/binary package the same way
// arloliu/mebo/endian does: by combining ByteOrder and AppendByteOrder into
// a single EndianEngine interface, satisfied directly by binary.LittleEndian
// and binary.BigEndian. IMC sample data is always little-endian (spec §4.6),
// so callers in this module use GetLittleEndianEngine(), but the interface
// is kept rather than hardcoding binary.LittleEndian calls so the typed
// decode switch in package channel reads the same way regardless of which engine is
// injected, and so tests can exercise both orderings.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine. IMC raw files are
// little-endian.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine, kept for symmetry and
// for tests exercising the typed decoders against non-native data.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// ReadSixByteLE decodes a 6-byte little-endian unsigned integer into a
// uint64, per spec §4.6: val |= bytes[j] << (8*j) for j in 0..6. Unlike the
// other typed decoders this width has no encoding/binary counterpart, so it
// is hand-rolled the way the original imc_conversion.hpp byte-by-byte cast
// loop is, just widened instead of narrowed.
func ReadSixByteLE(b []byte) uint64 {
	var val uint64
	for j := 0; j < 6; j++ {
		val |= uint64(b[j]) << (8 * uint(j))
	}
	return val
}
