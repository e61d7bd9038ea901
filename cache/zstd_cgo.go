//go:build cgo

package cache

import "github.com/valyala/gozstd"

// ZstdCodec is the cgo-backed zstd implementation, faster than the pure-Go
// one in zstd.go but requiring a C toolchain at build time. Builds with
// cgo enabled get this one automatically; builds without fall back to the
// pure-Go implementation with no other code changes, since both satisfy
// the same Codec interface under the same type name.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

func NewZstdCodec() ZstdCodec { return ZstdCodec{} }

func (ZstdCodec) Name() string { return string(KindZstd) }

func (ZstdCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

func (ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return gozstd.Decompress(nil, data)
}
