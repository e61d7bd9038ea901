package channel

import (
	"fmt"
	"iter"
	"math"
	"strconv"

	"github.com/jgoedeke/IMCtermite/block"
	"github.com/jgoedeke/IMCtermite/endian"
	"github.com/jgoedeke/IMCtermite/errs"
	"github.com/jgoedeke/IMCtermite/format"
)

// Channel is the derived, queryable view of one assembled Env (spec §4.6).
// It resolves the fixed parameter slots scattered across a channel's
// CN/Cb/CP/CR/CD blocks into named fields once, at construction, so
// ReadChunk itself never re-parses text.
type Channel struct {
	UUID string // the CN block's uuid; the channel's own identifier
	Name string

	SampleCount int
	NumericType format.NumericType

	FactorY, OffsetY float64
	UnitY            string

	DX, OffsetX float64
	UnitX       string

	cs     block.Block
	params block.Params
}

// componentSlots is the fixed positional layout the Facade addresses (spec
// §4.6, §6): 0-based parameter indices within each block kind's payload.
const (
	slotCNName = 6

	slotCbSampleCount = 7
	slotCbOffsetX     = 11

	slotCPNumericType = 5

	slotCRFactorY = 3
	slotCROffsetY = 4
	slotCRUnitY   = 7

	slotCDDx    = 2
	slotCDUnitX = 7
)

// NewChannel derives a Channel from one assembled Env. byUUID is the full
// block index from Assembled.ByUUID; params decodes the same buffer the
// blocks were scanned from.
//
// Ordinate fields (Cb, CP, CR) come from Comp1, and x-axis fields (CD) from
// Comp2 when a second component is present, per spec §9's redesign note:
// a channel with two components treats the second as authoritative for
// x-axis fields, since in practice the first component's CD often only
// carries a placeholder. A channel with only one component takes every
// field from that component.
func NewChannel(env Env, byUUID map[string]block.Block, params block.Params) (Channel, error) {
	cnBlock, ok := byUUID[env.CN]
	if !ok {
		return Channel{}, fmt.Errorf("%w: CN %s", errs.ErrBlockNotFound, env.CN)
	}
	name, err := params.Get(cnBlock, slotCNName)
	if err != nil {
		return Channel{}, err
	}

	csBlock, ok := byUUID[env.CS]
	if !ok {
		return Channel{}, fmt.Errorf("%w: CS %s", errs.ErrBlockNotFound, env.CS)
	}

	ch := Channel{
		UUID:   env.CN,
		Name:   name,
		cs:     csBlock,
		params: params,
	}

	ordinate := env.Comp1
	if ordinate.isZero() {
		ordinate = env.Comp2
	}
	abscissa := env.Comp2
	if abscissa.isZero() {
		abscissa = env.Comp1
	}

	if err := ch.applyCb(ordinate, byUUID); err != nil {
		return Channel{}, err
	}
	if err := ch.applyCP(ordinate, byUUID); err != nil {
		return Channel{}, err
	}
	if err := ch.applyCR(ordinate, byUUID); err != nil {
		return Channel{}, err
	}
	if err := ch.applyCD(abscissa, env, byUUID); err != nil {
		return Channel{}, err
	}

	return ch, nil
}

func (c *Channel) applyCb(comp ComponentEnv, byUUID map[string]block.Block) error {
	if comp.Cb == "" {
		return nil
	}
	b, ok := byUUID[comp.Cb]
	if !ok {
		return fmt.Errorf("%w: Cb %s", errs.ErrBlockNotFound, comp.Cb)
	}
	sc, err := c.getInt(b, slotCbSampleCount)
	if err != nil {
		return err
	}
	c.SampleCount = sc
	ox, err := c.getFloat(b, slotCbOffsetX)
	if err != nil {
		return err
	}
	c.OffsetX = ox
	return nil
}

func (c *Channel) applyCP(comp ComponentEnv, byUUID map[string]block.Block) error {
	if comp.CP == "" {
		return nil
	}
	b, ok := byUUID[comp.CP]
	if !ok {
		return fmt.Errorf("%w: CP %s", errs.ErrBlockNotFound, comp.CP)
	}
	raw, err := c.params.Get(b, slotCPNumericType)
	if err != nil {
		return err
	}
	n, convErr := strconv.Atoi(raw)
	if convErr != nil {
		return fmt.Errorf("%w: CP %s numeric_type %q", errs.ErrMalformedParameter, comp.CP, raw)
	}
	c.NumericType = format.NumericType(n)
	return nil
}

func (c *Channel) applyCR(comp ComponentEnv, byUUID map[string]block.Block) error {
	if comp.CR == "" {
		return nil
	}
	b, ok := byUUID[comp.CR]
	if !ok {
		return fmt.Errorf("%w: CR %s", errs.ErrBlockNotFound, comp.CR)
	}
	f, err := c.getFloat(b, slotCRFactorY)
	if err != nil {
		return err
	}
	c.FactorY = f
	o, err := c.getFloat(b, slotCROffsetY)
	if err != nil {
		return err
	}
	c.OffsetY = o
	unit, err := c.params.Get(b, slotCRUnitY)
	if err != nil {
		return err
	}
	c.UnitY = unit
	return nil
}

func (c *Channel) applyCD(comp ComponentEnv, env Env, byUUID map[string]block.Block) error {
	uuid := comp.CD
	if uuid == "" {
		uuid = env.CD
	}
	if uuid == "" {
		return nil
	}
	b, ok := byUUID[uuid]
	if !ok {
		return fmt.Errorf("%w: CD %s", errs.ErrBlockNotFound, uuid)
	}
	dx, err := c.getFloat(b, slotCDDx)
	if err != nil {
		return err
	}
	c.DX = dx
	unit, err := c.params.Get(b, slotCDUnitX)
	if err != nil {
		return err
	}
	c.UnitX = unit
	return nil
}

func (c *Channel) getInt(b block.Block, slot int) (int, error) {
	raw, err := c.params.Get(b, slot)
	if err != nil {
		return 0, err
	}
	v, convErr := strconv.Atoi(raw)
	if convErr != nil {
		return 0, fmt.Errorf("%w: block %s slot %d value %q", errs.ErrMalformedParameter, b.UUID(), slot, raw)
	}
	return v, nil
}

func (c *Channel) getFloat(b block.Block, slot int) (float64, error) {
	raw, err := c.params.Get(b, slot)
	if err != nil {
		return 0, err
	}
	v, convErr := strconv.ParseFloat(raw, 64)
	if convErr != nil {
		return 0, fmt.Errorf("%w: block %s slot %d value %q", errs.ErrMalformedParameter, b.UUID(), slot, raw)
	}
	return v, nil
}

// Chunk is one decoded slice of a channel's samples (spec §4.6).
type Chunk struct {
	// Y holds each sample's numeric_type value, bit-for-bit
	// little-endian-reinterpreted into a float64. In scaled mode (the
	// default) each value is further scaled to v*FactorY+OffsetY; in raw
	// mode it is left as decoded, unscaled.
	Y []float64

	// X holds the abscissa values when IncludeX was requested: DX*i +
	// OffsetX for each sample index i in [start, start+count).
	X []float64
}

// rawBytes returns the byte range of the CS block's binary payload
// corresponding to samples [start, start+count).
func (c *Channel) rawBytes(start, count int) ([]byte, error) {
	size := c.NumericType.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: channel %s has unrecognized numeric_type %d", errs.ErrMalformedParameter, c.UUID, c.NumericType)
	}

	if start < 0 || count < 0 || start+count > c.SampleCount {
		return nil, fmt.Errorf("%w: channel %s requested [%d,%d) of %d samples",
			errs.ErrChunkOutOfRange, c.UUID, start, start+count, c.SampleCount)
	}

	need := uint64(c.SampleCount) * uint64(size)
	if need != c.cs.DataLength {
		return nil, fmt.Errorf("%w: channel %s sample_count=%d * sizeof(%s)=%d != data_length=%d",
			errs.ErrSizeMismatch, c.UUID, c.SampleCount, c.NumericType, size, c.cs.DataLength)
	}

	from := c.cs.DataOffset + uint64(start)*uint64(size)
	to := from + uint64(count)*uint64(size)
	buf := c.params.Buf()
	if to > uint64(len(buf)) {
		return nil, fmt.Errorf("%w: channel %s chunk runs past end of file", errs.ErrChunkOutOfRange, c.UUID)
	}
	return buf[from:to], nil
}

// ReadChunk decodes count samples starting at index start (spec §4.6).
//
// Every sample is bit-for-bit little-endian-reinterpreted from its
// numeric_type into a float64 (spec §4.6: "returns typed values by
// bit-for-bit little-endian reinterpretation of T bytes into the declared
// numeric type"). In scaled mode (raw == false) each value is then scaled
// to v*FactorY+OffsetY; in raw mode the reinterpreted value is returned as
// decoded. When scaling and FactorY is exactly 0.0, 1.0 is substituted
// instead (spec §4.6's redesign note: a zero scaling factor would
// otherwise silently zero every sample, which is never the intent of a CR
// block that simply omits scaling).
//
// When includeX is true the abscissa is synthesized as DX*i+OffsetX for
// each sample index i, rather than read from the file: IMC raw files never
// store x-values directly (spec §3).
func (c *Channel) ReadChunk(start, count int, includeX, raw bool) (Chunk, error) {
	data, err := c.rawBytes(start, count)
	if err != nil {
		return Chunk{}, err
	}

	size := c.NumericType.Size()
	eng := endian.GetLittleEndianEngine()

	factor, offset := 1.0, 0.0
	if !raw {
		factor = c.FactorY
		if factor == 0.0 {
			factor = 1.0
		}
		offset = c.OffsetY
	}

	out := Chunk{Y: make([]float64, count)}
	for i := 0; i < count; i++ {
		sample := data[i*size : (i+1)*size]
		v, err := decodeSample(eng, c.NumericType, sample)
		if err != nil {
			return Chunk{}, err
		}
		out.Y[i] = v*factor + offset
	}

	if includeX {
		out.X = make([]float64, count)
		for i := 0; i < count; i++ {
			out.X[i] = c.DX*float64(start+i) + c.OffsetX
		}
	}

	return out, nil
}

// Info is a channel's bulk-exportable metadata, without requiring a
// separate call per field the way the public API's individual accessors
// do. Grounded on original_source/python/imctermite/__init__.py's
// get_channels() bulk metadata export.
type Info struct {
	UUID        string
	Name        string
	SampleCount int
	NumericType format.NumericType
	UnitY       string
	UnitX       string
	FactorY     float64
	OffsetY     float64
	DX          float64
	OffsetX     float64
}

// Info returns c's bulk-exportable metadata.
func (c *Channel) Info() Info {
	return Info{
		UUID:        c.UUID,
		Name:        c.Name,
		SampleCount: c.SampleCount,
		NumericType: c.NumericType,
		UnitY:       c.UnitY,
		UnitX:       c.UnitX,
		FactorY:     c.FactorY,
		OffsetY:     c.OffsetY,
		DX:          c.DX,
		OffsetX:     c.OffsetX,
	}
}

// Iter walks the channel's entire sample range in fixed-size chunks,
// yielding each chunk's starting index and decoded Chunk. Grounded on
// arloliu/mebo/blob/numeric_blob.go's iter.Seq2-returning All/AllByName
// methods and on original_source/python/imctermite/__init__.py's
// iter_channel_numpy, which walks a channel the same way in bounded
// batches rather than materializing every sample at once.
//
// Iteration stops silently at the first chunk that fails to decode; the
// error itself is not reported through the iterator. ReadChunk returns it.
func (c *Channel) Iter(chunkSize int, includeX, raw bool) iter.Seq2[int, Chunk] {
	return func(yield func(int, Chunk) bool) {
		if chunkSize <= 0 {
			return
		}
		for start := 0; start < c.SampleCount; start += chunkSize {
			n := chunkSize
			if start+n > c.SampleCount {
				n = c.SampleCount - start
			}
			chunk, err := c.ReadChunk(start, n, includeX, raw)
			if err != nil {
				return
			}
			if !yield(start, chunk) {
				return
			}
		}
	}
}

// decodeSample decodes one raw sample of numeric type t to a float64,
// dispatched by width the way arloliu/mebo's typed decoders switch on a
// column's declared encoding.
func decodeSample(eng endian.EndianEngine, t format.NumericType, b []byte) (float64, error) {
	switch t {
	case format.TypeUint8:
		return float64(b[0]), nil
	case format.TypeInt8:
		return float64(int8(b[0])), nil
	case format.TypeUint16:
		return float64(eng.Uint16(b)), nil
	case format.TypeInt16:
		return float64(int16(eng.Uint16(b))), nil
	case format.TypeUint32:
		return float64(eng.Uint32(b)), nil
	case format.TypeInt32:
		return float64(int32(eng.Uint32(b))), nil
	case format.TypeUint64:
		return float64(eng.Uint64(b)), nil
	case format.TypeInt64:
		return float64(int64(eng.Uint64(b))), nil
	case format.TypeFloat32:
		return float64(math.Float32frombits(eng.Uint32(b))), nil
	case format.TypeFloat64:
		return math.Float64frombits(eng.Uint64(b)), nil
	case format.TypeSixByte:
		return float64(endian.ReadSixByteLE(b)), nil
	default:
		return 0, fmt.Errorf("%w: unrecognized numeric_type %d", errs.ErrMalformedParameter, t)
	}
}
