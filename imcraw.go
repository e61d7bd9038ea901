// Package imcraw reads IMC raw measurement-data files and exposes their
// channels — ordered numeric sample sequences with associated metadata —
// to higher-level consumers.
//
// A parse session ([Raw]) is built once, up front, from a single byte
// buffer: the [block] package segments it into keyed [block.Block]s, the
// [channel] package stitches those into named channels, and the result is
// held read-only for the session's lifetime. Package imcraw itself is the
// thin composition root that wires the scanner, assembler, and optional
// snapshot cache together behind the public API in this file.
package imcraw

import (
	"fmt"
	"iter"
	"os"

	"github.com/jgoedeke/IMCtermite/block"
	"github.com/jgoedeke/IMCtermite/cache"
	"github.com/jgoedeke/IMCtermite/channel"
	"github.com/jgoedeke/IMCtermite/config"
	"github.com/jgoedeke/IMCtermite/errs"
	"github.com/jgoedeke/IMCtermite/format"
	"github.com/jgoedeke/IMCtermite/imclog"
	"github.com/jgoedeke/IMCtermite/keys"
)

// Raw is a completed parse session over one IMC raw file: every scanned
// block and every assembled channel, built once at Open and held for the
// session's lifetime (spec's lifecycle rule: a session constructs all
// blocks and channels up front and never mutates them again). The
// underlying byte buffer is kept alive for as long as the session is, since
// every Channel holds a borrowed view into it.
type Raw struct {
	buf       []byte
	blocks    []block.Block
	scanSteps uint64

	channels map[string]*channel.Channel
	order    []string // CN uuids, channel-close order

	logger imclog.Logger
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	logger imclog.Logger
	cfg    config.Config
}

// WithLogger injects a Logger for scan-time warnings (spec §7's
// UnknownNonCriticalKey). The default is a no-op logger.
func WithLogger(l imclog.Logger) Option {
	return func(o *openOptions) { o.logger = l }
}

// WithConfig overrides the ambient configuration. The default is
// config.Default(). Open reads only the Cache section; the Logger section
// is not applied, and the logger comes from WithLogger alone.
func WithConfig(c config.Config) Option {
	return func(o *openOptions) { o.cfg = c }
}

// Open reads path and runs the full scan-and-assemble pipeline.
//
// This is a thin os.ReadFile-based convenience, not a production mmap
// layer: the memory-mapped-file wrapper is explicitly out of this module's
// scope. Callers who already hold a []byte (from their own mmap, or a
// buffer under test) should call OpenBuffer directly instead.
func Open(path string, opts ...Option) (*Raw, error) {
	o := openOptions{logger: imclog.NoOp(), cfg: config.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imcraw: open %s: %w", path, err)
	}

	if o.cfg.Cache.Enabled {
		if r := tryLoadFromCache(path, buf, o); r != nil {
			return r, nil
		}
	}

	r, err := openBuffer(buf, o.logger)
	if err != nil {
		return nil, err
	}

	if o.cfg.Cache.Enabled {
		saveToCache(path, buf, r, o)
	}

	return r, nil
}

// OpenBuffer runs the scan-and-assemble pipeline directly over buf,
// bypassing file I/O and the snapshot cache. buf must outlive the returned
// Raw and every Channel it hands out.
func OpenBuffer(buf []byte, logger imclog.Logger) (*Raw, error) {
	return openBuffer(buf, imclog.OrDefault(logger))
}

func openBuffer(buf []byte, logger imclog.Logger) (*Raw, error) {
	registry := keys.New()
	scanRes, err := block.NewScanner(registry, logger).Scan(buf)
	if err != nil {
		return nil, err
	}
	if err := block.CheckConsistency(scanRes.Blocks); err != nil {
		return nil, err
	}

	assembled, err := channel.NewAssembler(scanRes.Blocks, buf).Assemble()
	if err != nil {
		return nil, err
	}

	r := &Raw{
		buf:       buf,
		blocks:    scanRes.Blocks,
		scanSteps: scanRes.ScanSteps,
		channels:  make(map[string]*channel.Channel, len(assembled.Order)),
		order:     assembled.Order,
		logger:    logger,
	}
	params := block.NewParams(buf)
	for _, uuid := range assembled.Order {
		ch, err := channel.NewChannel(assembled.Envs[uuid], assembled.ByUUID, params)
		if err != nil {
			return nil, err
		}
		r.channels[uuid] = &ch
	}
	return r, nil
}

func tryLoadFromCache(path string, buf []byte, o openOptions) *Raw {
	codec, err := cache.CreateCodec(cache.Kind(o.cfg.Cache.Codec))
	if err != nil {
		o.logger.Warn("imcraw: invalid cache codec, skipping cache", "err", err)
		return nil
	}
	store := cache.NewStore(o.cfg.Cache.Dir, codec)

	key := cache.ContentKey(buf)
	snap, err := store.Load(path, key)
	if err != nil {
		return nil
	}

	byUUID := make(map[string]block.Block, len(snap.Blocks))
	for _, b := range snap.Blocks {
		byUUID[b.UUID()] = b
	}

	r := &Raw{
		buf:      buf,
		blocks:   snap.Blocks,
		channels: make(map[string]*channel.Channel, len(snap.Order)),
		order:    snap.Order,
		logger:   o.logger,
	}
	params := block.NewParams(buf)
	for _, uuid := range snap.Order {
		ch, err := channel.NewChannel(snap.Envs[uuid], byUUID, params)
		if err != nil {
			o.logger.Warn("imcraw: cached snapshot failed to reconstruct, re-scanning", "err", err)
			return nil
		}
		r.channels[uuid] = &ch
	}
	return r
}

func saveToCache(path string, buf []byte, r *Raw, o openOptions) {
	codec, err := cache.CreateCodec(cache.Kind(o.cfg.Cache.Codec))
	if err != nil {
		return
	}
	store := cache.NewStore(o.cfg.Cache.Dir, codec)

	envs, err := r.rebuildEnvs()
	if err != nil {
		o.logger.Warn("imcraw: could not rebuild envs for cache", "err", err)
		return
	}

	snap := cache.Snapshot{
		ContentKey: cache.ContentKey(buf),
		Blocks:     r.blocks,
		Envs:       envs,
		Order:      r.order,
	}
	if err := store.Save(path, snap); err != nil {
		o.logger.Warn("imcraw: failed to save snapshot cache", "err", err)
	}
}

// rebuildEnvs re-derives an assembler pass over the already-scanned blocks
// purely to recover the Env records for the cache: Raw itself only keeps
// the derived Channel facades, not the intermediate Envs, since nothing
// else in the public API needs them.
func (r *Raw) rebuildEnvs() (map[string]channel.Env, error) {
	assembled, err := channel.NewAssembler(r.blocks, r.buf).Assemble()
	if err != nil {
		return nil, err
	}
	return assembled.Envs, nil
}

// Blocks returns every scanned block, in file order.
func (r *Raw) Blocks() []block.Block { return r.blocks }

// ScanSteps returns the byte-inspection step count from the scan pass
// (spec §4.2's computational_complexity counter). Zero for a
// cache-restored session, since no scan ran.
func (r *Raw) ScanSteps() uint64 { return r.scanSteps }

// BufferSize returns the length of the underlying byte buffer.
func (r *Raw) BufferSize() int { return len(r.buf) }

// ListChannels returns every channel's name, in channel-close order.
func (r *Raw) ListChannels() []string {
	names := make([]string, 0, len(r.order))
	for _, uuid := range r.order {
		names = append(names, r.channels[uuid].Name)
	}
	return names
}

// Channels iterates every assembled channel's uuid and Info, in
// channel-close order (spec's `channels() -> Iter<(uuid, ChannelInfo)>`).
func (r *Raw) Channels() iter.Seq2[string, channel.Info] {
	return func(yield func(string, channel.Info) bool) {
		for _, uuid := range r.order {
			if !yield(uuid, r.channels[uuid].Info()) {
				return
			}
		}
	}
}

// ChannelSummaries returns every channel's Info in one slice, for callers
// that want bulk metadata without iterating.
func (r *Raw) ChannelSummaries() []channel.Info {
	out := make([]channel.Info, 0, len(r.order))
	for _, uuid := range r.order {
		out = append(out, r.channels[uuid].Info())
	}
	return out
}

func (r *Raw) channel(uuid string) (*channel.Channel, error) {
	ch, ok := r.channels[uuid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrChannelNotFound, uuid)
	}
	return ch, nil
}

// GetChannelLength returns a channel's sample count.
func (r *Raw) GetChannelLength(uuid string) (int, error) {
	ch, err := r.channel(uuid)
	if err != nil {
		return 0, err
	}
	return ch.SampleCount, nil
}

// GetChannelNumericType returns a channel's declared numeric type.
func (r *Raw) GetChannelNumericType(uuid string) (format.NumericType, error) {
	ch, err := r.channel(uuid)
	if err != nil {
		return 0, err
	}
	return ch.NumericType, nil
}

// ReadChannelChunk decodes count samples of channel uuid starting at
// start, per channel.Channel.ReadChunk's contract.
func (r *Raw) ReadChannelChunk(uuid string, start, count int, includeX, raw bool) (channel.Chunk, error) {
	ch, err := r.channel(uuid)
	if err != nil {
		return channel.Chunk{}, err
	}
	return ch.ReadChunk(start, count, includeX, raw)
}

// ListGroups returns every CB (group begin) block, in file order.
// Grounded on original_source/lib/imc_raw.hpp's list_groups().
func (r *Raw) ListGroups() []block.Block {
	var groups []block.Block
	for _, b := range r.blocks {
		if string(b.Key.Name[:]) == "CB" {
			groups = append(groups, b)
		}
	}
	return groups
}
