package block

import (
	"testing"

	"github.com/jgoedeke/IMCtermite/errs"
	"github.com/jgoedeke/IMCtermite/keys"
	"github.com/stretchr/testify/require"
)

func TestParams_GetAll(t *testing.T) {
	// CN has 8 registered parameters (v1).
	fields := []string{"a", "bb", "ccc", "d", "e", "f", "channelname", "h"}
	payload := []byte{}
	for _, f := range fields {
		payload = append(payload, []byte(f)...)
		payload = append(payload, keys.Sep)
	}

	buf := buildBlock(true, "CN", 1, payload)
	res, err := newTestScanner().Scan(buf)
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)

	p := NewParams(buf)
	got, err := p.GetAll(res.Blocks[0], 8)
	require.NoError(t, err)
	require.Equal(t, fields, got)
}

func TestParams_Get_IndexOutOfRange(t *testing.T) {
	payload := []byte("only,two,")
	buf := buildBlock(true, "CN", 1, payload)
	res, err := newTestScanner().Scan(buf)
	require.NoError(t, err)

	p := NewParams(buf)
	_, err = p.Get(res.Blocks[0], 7)
	require.ErrorIs(t, err, errs.ErrParameterIndexOutOfRange)
}

func TestParams_Get_NegativeIndex(t *testing.T) {
	buf := buildBlock(true, "NO", 1, []byte("x,"))
	res, err := newTestScanner().Scan(buf)
	require.NoError(t, err)

	p := NewParams(buf)
	_, err = p.Get(res.Blocks[0], -1)
	require.ErrorIs(t, err, errs.ErrParameterIndexOutOfRange)
}

func TestParams_CSBlockHasNoTextParams(t *testing.T) {
	raw := []byte{0x01, 0x00, 0x02, 0x00, 0xFF, 0xFF, 0xFE, 0xFF}
	buf := buildBlock(true, "CS", 1, raw)
	res, err := newTestScanner().Scan(buf)
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)

	b := res.Blocks[0]
	require.Equal(t, b.ParamsOffset, b.DataOffset)
	require.Equal(t, uint64(len(raw)), b.DataLength)
}
