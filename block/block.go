// Package block implements the IMC raw-file block scanner, parameter
// decoder, and consistency checker (spec §4.2-§4.4): the subsystem that
// segments a byte buffer into self-describing, keyed blocks.
//
// Grounded on original_source/lib/imc_raw.hpp's parse_blocks()/
// check_consistency() loop and on the sequential-scan-with-resync idiom in
// other_examples/90karatinsa-ch10gate__parser.go, restructured as an
// explicit state machine per spec §9's redesign note, with lazy parameter
// slicing kept exactly as the original does it.
package block

import (
	"strconv"

	"github.com/jgoedeke/IMCtermite/keys"
)

// Block is one self-describing, keyed record in the raw file (spec §3).
type Block struct {
	Key Key

	Begin uint64 // offset of the sentinel byte
	End   uint64 // one past the trailing separator of the payload

	// ParamsOffset is the first byte after the length field's trailing
	// separator; textual parameters are lazily sliced from
	// [ParamsOffset, DataOffset).
	ParamsOffset uint64

	// BodyOffset coincides with ParamsOffset: the payload body begins
	// immediately after the length field, so this field (present in the
	// original data model) never diverges from ParamsOffset in practice.
	// Kept for API parity with spec §3's Block shape.
	BodyOffset uint64

	// DataOffset/DataLength locate the embedded binary payload for
	// data-bearing blocks (spec §4.2). Zero for blocks with no binary
	// payload.
	DataOffset uint64
	DataLength uint64
}

// Key mirrors keys.Key; re-exported here so callers of package block do not
// need to import package keys just to compare block kinds.
type Key = keys.Key

// UUID returns the block's within-file identifier: its Begin offset
// rendered in decimal (spec's Glossary: "uuid"). This uniquely identifies a
// block within one file.
func (b Block) UUID() string {
	return strconv.FormatUint(b.Begin, 10)
}

// PayloadEnd is the offset one past the last payload byte, i.e. End-1: the
// trailing separator itself is not part of the payload.
func (b Block) PayloadEnd() uint64 {
	if b.End == 0 {
		return 0
	}
	return b.End - 1
}
