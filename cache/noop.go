package cache

// NoOpCodec bypasses compression, used when a caller wants the snapshot's
// serialization/deserialization benefit without the compression cost.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

func NewNoOpCodec() NoOpCodec { return NoOpCodec{} }

func (NoOpCodec) Name() string { return string(KindNone) }

func (NoOpCodec) Compress(data []byte) ([]byte, error) { return data, nil }

func (NoOpCodec) Decompress(data []byte) ([]byte, error) { return data, nil }
