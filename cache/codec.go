// Package cache implements the parse-result snapshot cache: a serialized,
// optionally compressed copy of a session's block index and channel
// envelopes, written next to the source file so a repeat Open can skip the
// scan entirely.
//
// Grounded on arloliu/mebo/compress: the same Codec shape (Compress/
// Decompress pair, a factory keyed by a named kind), applied here to a
// snapshot blob instead of a metric payload.
package cache

import (
	"fmt"

	"github.com/jgoedeke/IMCtermite/errs"
)

// Codec compresses and decompresses a snapshot blob.
type Codec interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// Kind names a compression codec, stored in the snapshot header so Load
// knows which Codec to use regardless of which one Save was called with.
type Kind string

const (
	KindNone Kind = "none"
	KindZstd Kind = "zstd"
	KindS2   Kind = "s2"
	KindLZ4  Kind = "lz4"
)

// CreateCodec returns the Codec for kind.
func CreateCodec(kind Kind) (Codec, error) {
	switch kind {
	case KindNone, "":
		return NewNoOpCodec(), nil
	case KindZstd:
		return NewZstdCodec(), nil
	case KindS2:
		return NewS2Codec(), nil
	case KindLZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownCodec, kind)
	}
}
