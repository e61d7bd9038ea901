//go:build !cgo

package cache

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdEncoderPool and zstdDecoderPool amortize the setup cost
// klauspost/compress/zstd's own docs call out: encoders and decoders are
// meant to be reused across calls, not built fresh each time.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(fmt.Sprintf("cache: failed to create zstd encoder: %v", err))
		}
		return enc
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("cache: failed to create zstd decoder: %v", err))
		}
		return dec
	},
}

// ZstdCodec is the pure-Go zstd implementation, used when the build has no
// cgo toolchain available; see zstd_cgo.go for the faster cgo-backed one.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

func NewZstdCodec() ZstdCodec { return ZstdCodec{} }

func (ZstdCodec) Name() string { return string(KindZstd) }

func (ZstdCodec) Compress(data []byte) ([]byte, error) {
	enc := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(data, nil), nil
}

func (ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dec := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("cache: zstd decompress: %w", err)
	}
	return out, nil
}
