package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jgoedeke/IMCtermite/errs"
	"github.com/jgoedeke/IMCtermite/internal/hash"
	"github.com/jgoedeke/IMCtermite/internal/pool"
)

const snapshotExt = ".imcidx"

// Store persists and retrieves Snapshots alongside the source file they
// describe. A snapshot file starts with a one-byte codec-name length
// followed by the codec name, so Load can pick the right Codec to
// decompress the payload that follows without needing to be told in
// advance which one Save used.
type Store struct {
	dir   string // empty means "next to the source file"
	codec Codec
}

// NewStore creates a Store. dir, if non-empty, collects every snapshot
// under one directory instead of writing next to each source file. A nil
// codec defaults to NoOpCodec (serialize, don't compress).
func NewStore(dir string, codec Codec) *Store {
	if codec == nil {
		codec = NewNoOpCodec()
	}
	return &Store{dir: dir, codec: codec}
}

// ContentKey fingerprints buf cheaply: the xxHash64 of at most its first
// 4KiB, folded with its total length. This is deliberately not a full-file
// hash — the cache only needs to catch "this file changed", not verify
// byte-for-byte identity, and hashing gigabytes on every Open would erase
// the point of skipping the scan.
func ContentKey(buf []byte) uint64 {
	n := len(buf)
	if n > 4096 {
		n = 4096
	}
	return hash.Bytes(buf[:n]) ^ uint64(len(buf))
}

func (s *Store) pathFor(sourcePath string) string {
	if s.dir == "" {
		return sourcePath + snapshotExt
	}
	return filepath.Join(s.dir, filepath.Base(sourcePath)+snapshotExt)
}

// Save serializes and compresses snap, writing it to the snapshot path for
// sourcePath.
func (s *Store) Save(sourcePath string, snap Snapshot) error {
	raw, err := Marshal(snap)
	if err != nil {
		return fmt.Errorf("cache: marshal snapshot: %w", err)
	}

	scratch := pool.Get()
	defer pool.Put(scratch)
	scratch.MustWrite(raw)

	compressed, err := s.codec.Compress(scratch.Bytes())
	if err != nil {
		return fmt.Errorf("cache: compress snapshot: %w", err)
	}

	name := s.codec.Name()
	out := make([]byte, 0, 1+len(name)+len(compressed))
	out = append(out, byte(len(name)))
	out = append(out, name...)
	out = append(out, compressed...)

	return os.WriteFile(s.pathFor(sourcePath), out, 0o644)
}

// Load reads back the snapshot for sourcePath, validating it against
// wantKey. It returns ErrCacheMiss if no snapshot file exists, and
// ErrCacheStale if one exists but fails to decode or its content key no
// longer matches the source file.
func (s *Store) Load(sourcePath string, wantKey uint64) (Snapshot, error) {
	raw, err := os.ReadFile(s.pathFor(sourcePath))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", errs.ErrCacheMiss, err)
	}
	if len(raw) < 1 {
		return Snapshot{}, fmt.Errorf("%w: empty snapshot file", errs.ErrCacheStale)
	}

	nameLen := int(raw[0])
	if len(raw) < 1+nameLen {
		return Snapshot{}, fmt.Errorf("%w: truncated codec header", errs.ErrCacheStale)
	}
	codec, err := CreateCodec(Kind(raw[1 : 1+nameLen]))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", errs.ErrCacheStale, err)
	}

	decompressed, err := codec.Decompress(raw[1+nameLen:])
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", errs.ErrCacheStale, err)
	}

	var snap Snapshot
	if err := Unmarshal(decompressed, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", errs.ErrCacheStale, err)
	}
	if snap.ContentKey != wantKey {
		return Snapshot{}, fmt.Errorf("%w: content key mismatch", errs.ErrCacheStale)
	}

	return snap, nil
}
