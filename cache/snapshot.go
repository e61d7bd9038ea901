package cache

import (
	"github.com/goccy/go-json"

	"github.com/jgoedeke/IMCtermite/block"
	"github.com/jgoedeke/IMCtermite/channel"
)

// Snapshot is the serialized form of a completed scan-and-assembly pass:
// everything needed to reconstruct a session's blocks and channel
// envelopes without re-scanning the source buffer.
type Snapshot struct {
	ContentKey uint64

	Blocks []block.Block

	Envs  map[string]channel.Env
	Order []string
}

// Marshal serializes a Snapshot with goccy/go-json, adopted from
// samcharles93-mantle's JSON stack for the ambient concerns the teacher
// itself never needed (mebo has no on-disk index format of its own).
func Marshal(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal decodes a Snapshot previously produced by Marshal.
func Unmarshal(data []byte, s *Snapshot) error {
	return json.Unmarshal(data, s)
}
