package channel

import (
	"encoding/binary"
	"testing"

	"github.com/jgoedeke/IMCtermite/block"
	"github.com/jgoedeke/IMCtermite/errs"
	"github.com/jgoedeke/IMCtermite/format"
	"github.com/stretchr/testify/require"
)

func cbPayload(sampleCount, offsetX int) []byte {
	fields := make([]string, 12)
	for i := range fields {
		fields[i] = "0"
	}
	fields[slotCbSampleCount] = itoaTest(sampleCount)
	fields[slotCbOffsetX] = itoaTest(offsetX)
	return joinFields(fields)
}

func cpPayload(numericType format.NumericType) []byte {
	fields := make([]string, 6)
	for i := range fields {
		fields[i] = "0"
	}
	fields[slotCPNumericType] = itoaTest(int(numericType))
	return joinFields(fields)
}

func crPayload(factorY, offsetY float64, unitY string) []byte {
	fields := make([]string, 8)
	for i := range fields {
		fields[i] = "0"
	}
	fields[slotCRFactorY] = ftoaTest(factorY)
	fields[slotCROffsetY] = ftoaTest(offsetY)
	fields[slotCRUnitY] = unitY
	return joinFields(fields)
}

func cdPayload(dx float64, unitX string) []byte {
	fields := make([]string, 8)
	for i := range fields {
		fields[i] = "0"
	}
	fields[slotCDDx] = ftoaTest(dx)
	fields[slotCDUnitX] = unitX
	return joinFields(fields)
}

func cnPayload(name string) []byte {
	fields := make([]string, 8)
	for i := range fields {
		fields[i] = "0"
	}
	fields[slotCNName] = name
	return joinFields(fields)
}

func joinFields(fields []string) []byte {
	var out []byte
	for _, f := range fields {
		out = append(out, []byte(f)...)
		out = append(out, ',')
	}
	return out
}

func ftoaTest(f float64) string {
	if f == float64(int64(f)) {
		return itoaTest(int(f))
	}
	// Only exercised with simple decimal fractions in these tests.
	whole := int64(f)
	frac := int64((f - float64(whole)) * 10)
	if frac < 0 {
		frac = -frac
	}
	return itoaTest(int(whole)) + "." + itoaTest(int(frac))
}

// buildChannel assembles a minimal one-component channel: CN, CC(1), CP,
// CR, CD, Cb, then a CS carrying raw little-endian samples.
func buildChannel(t *testing.T, numericType format.NumericType, sampleCount int, samples []byte, factorY, offsetY, dx, offsetX float64) *Channel {
	t.Helper()
	var buf []byte
	buf = append(buf, buildBlock(true, "CN", 1, cnPayload("ch1"))...)
	buf = append(buf, buildBlock(true, "CC", 1, []byte("1,"))...)
	buf = append(buf, buildBlock(true, "CP", 1, cpPayload(numericType))...)
	buf = append(buf, buildBlock(true, "CR", 1, crPayload(factorY, offsetY, "V"))...)
	buf = append(buf, buildBlock(true, "CD", 1, cdPayload(dx, "s"))...)
	buf = append(buf, buildBlock(true, "Cb", 1, cbPayload(sampleCount, int(offsetX)))...)
	buf = append(buf, buildBlock(true, "CS", 1, samples)...)

	blocks := scanAll(t, buf)
	out, err := NewAssembler(blocks, buf).Assemble()
	require.NoError(t, err)
	require.Len(t, out.Order, 1)

	env := out.Envs[out.Order[0]]
	ch, err := NewChannel(env, out.ByUUID, block.NewParams(buf))
	require.NoError(t, err)
	return &ch
}

func TestChannel_RawModeI16Decode(t *testing.T) {
	// Spec scenario 3: raw bytes 01 00 02 00 FF FF FE FF, i16, ->
	// read_chunk(uuid, 0, 4, false, true).y == [1, 2, -1, -2].
	samples := []byte{0x01, 0x00, 0x02, 0x00, 0xFF, 0xFF, 0xFE, 0xFF}

	ch := buildChannel(t, format.TypeInt16, 4, samples, 1.0, 0.0, 1.0, 0.0)

	chunk, err := ch.ReadChunk(0, 4, false, true)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, -1, -2}, chunk.Y)
}

func TestChannel_CRScaling(t *testing.T) {
	samples := make([]byte, 4)
	binary.LittleEndian.PutUint16(samples[0:2], 10)
	binary.LittleEndian.PutUint16(samples[2:4], 20)

	ch := buildChannel(t, format.TypeUint16, 2, samples, 2.0, 5.0, 1.0, 0.0)

	chunk, err := ch.ReadChunk(0, 2, false, false)
	require.NoError(t, err)
	require.Equal(t, []float64{25.0, 45.0}, chunk.Y) // v*factor+offset
}

func TestChannel_ZeroFactorYSubstitutesOne(t *testing.T) {
	samples := make([]byte, 2)
	binary.LittleEndian.PutUint16(samples[0:2], 7)

	ch := buildChannel(t, format.TypeUint16, 1, samples, 0.0, 3.0, 1.0, 0.0)

	chunk, err := ch.ReadChunk(0, 1, false, false)
	require.NoError(t, err)
	require.Equal(t, []float64{10.0}, chunk.Y) // 7*1.0+3.0, not 7*0.0+3.0
}

func TestChannel_IncludeXSynthesizesAbscissa(t *testing.T) {
	samples := make([]byte, 6)
	binary.LittleEndian.PutUint16(samples[0:2], 1)
	binary.LittleEndian.PutUint16(samples[2:4], 1)
	binary.LittleEndian.PutUint16(samples[4:6], 1)

	ch := buildChannel(t, format.TypeUint16, 3, samples, 1.0, 0.0, 2.0, 1.0)

	chunk, err := ch.ReadChunk(1, 2, true, false)
	require.NoError(t, err)
	require.Equal(t, []float64{3.0, 5.0}, chunk.X) // dx*i+offset_x for i=1,2
}

func TestChannel_ChunkOutOfRange(t *testing.T) {
	samples := make([]byte, 2)
	ch := buildChannel(t, format.TypeUint16, 1, samples, 1.0, 0.0, 1.0, 0.0)

	_, err := ch.ReadChunk(0, 5, false, false)
	require.ErrorIs(t, err, errs.ErrChunkOutOfRange)
}

func TestChannel_SizeMismatch(t *testing.T) {
	// Declares 3 samples of u16 (6 bytes) but the CS payload only has 4.
	samples := make([]byte, 4)
	ch := buildChannel(t, format.TypeUint16, 3, samples, 1.0, 0.0, 1.0, 0.0)

	_, err := ch.ReadChunk(0, 2, false, false)
	require.ErrorIs(t, err, errs.ErrSizeMismatch)
}

func TestChannel_MultichannelSharedCS(t *testing.T) {
	// Scenario 7: two channels backfilled to one shared CS, each reading
	// its own view of the same underlying sample data via its own
	// numeric_type/sample_count.
	var buf []byte
	buf = append(buf, buildBlock(true, "CN", 1, cnPayload("ch1"))...)
	buf = append(buf, buildBlock(true, "CC", 1, []byte("1,"))...)
	buf = append(buf, buildBlock(true, "CP", 1, cpPayload(format.TypeUint8))...)
	buf = append(buf, buildBlock(true, "CR", 1, crPayload(1.0, 0.0, "A"))...)
	buf = append(buf, buildBlock(true, "CD", 1, cdPayload(1.0, "s"))...)
	buf = append(buf, buildBlock(true, "Cb", 1, cbPayload(2, 0))...)

	buf = append(buf, buildBlock(true, "CN", 1, cnPayload("ch2"))...)
	buf = append(buf, buildBlock(true, "CC", 1, []byte("1,"))...)
	buf = append(buf, buildBlock(true, "CP", 1, cpPayload(format.TypeUint8))...)
	buf = append(buf, buildBlock(true, "CR", 1, crPayload(1.0, 0.0, "B"))...)
	buf = append(buf, buildBlock(true, "CD", 1, cdPayload(1.0, "s"))...)
	buf = append(buf, buildBlock(true, "Cb", 1, cbPayload(2, 0))...)

	buf = append(buf, buildBlock(true, "CS", 1, []byte{1, 2})...)

	blocks := scanAll(t, buf)
	out, err := NewAssembler(blocks, buf).Assemble()
	require.NoError(t, err)
	require.Len(t, out.Order, 2)

	params := block.NewParams(buf)
	ch1, err := NewChannel(out.Envs[out.Order[0]], out.ByUUID, params)
	require.NoError(t, err)
	ch2, err := NewChannel(out.Envs[out.Order[1]], out.ByUUID, params)
	require.NoError(t, err)

	require.Equal(t, ch1.cs.UUID(), ch2.cs.UUID(), "both channels share the same backfilled CS")

	chunk1, err := ch1.ReadChunk(0, 2, false, false)
	require.NoError(t, err)
	require.Equal(t, []float64{1.0, 2.0}, chunk1.Y)
}

func TestChannel_Info(t *testing.T) {
	samples := make([]byte, 2)
	ch := buildChannel(t, format.TypeUint16, 1, samples, 2.0, 1.0, 0.5, 0.0)

	info := ch.Info()
	require.Equal(t, "ch1", info.Name)
	require.Equal(t, 1, info.SampleCount)
	require.Equal(t, format.TypeUint16, info.NumericType)
	require.Equal(t, 2.0, info.FactorY)
}

func TestChannel_IterWalksAllChunks(t *testing.T) {
	samples := make([]byte, 8)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint16(samples[i*2:i*2+2], uint16(i+1))
	}
	ch := buildChannel(t, format.TypeUint16, 4, samples, 1.0, 0.0, 1.0, 0.0)

	var starts []int
	var values []float64
	for start, chunk := range ch.Iter(3, false, false) {
		starts = append(starts, start)
		values = append(values, chunk.Y...)
	}

	require.Equal(t, []int{0, 3}, starts)
	require.Equal(t, []float64{1, 2, 3, 4}, values)
}
