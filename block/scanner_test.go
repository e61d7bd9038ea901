package block

import (
	"testing"

	"github.com/jgoedeke/IMCtermite/errs"
	"github.com/jgoedeke/IMCtermite/keys"
	"github.com/stretchr/testify/require"
)

// buildBlock assembles the wire bytes for one block header + payload,
// following the framing in spec §6:
// [sentinel][crit][N1][N2][SEP][version][SEP][length][SEP][payload].
// length is computed automatically as len(payload)+1 (payload plus the
// trailing terminator byte).
func buildBlock(critical bool, name string, version int, payload []byte) []byte {
	critByte := keys.NonCritByte
	if critical {
		critByte = keys.CritByte
	}
	var out []byte
	out = append(out, keys.Sentinel, critByte, name[0], name[1], keys.Sep)
	out = append(out, []byte(itoaTest(version))...)
	out = append(out, keys.Sep)
	length := len(payload) + 1 // +1 for the trailing terminator byte
	out = append(out, []byte(itoaTest(length))...)
	out = append(out, keys.Sep)
	out = append(out, payload...)
	out = append(out, keys.Sep) // trailing terminator byte
	return out
}

func itoaTest(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func newTestScanner() *Scanner {
	return NewScanner(keys.New(), nil)
}

func TestScan_EmptyBuffer(t *testing.T) {
	res, err := newTestScanner().Scan(nil)
	require.NoError(t, err)
	require.Empty(t, res.Blocks)
}

func TestScan_TwoByteFile(t *testing.T) {
	// Scenario 1 from spec §8: {0x7C, 0x00} -> empty block list, no error.
	res, err := newTestScanner().Scan([]byte{0x7C, 0x00})
	require.NoError(t, err)
	require.Empty(t, res.Blocks)
}

func TestScan_SingleKnownBlock(t *testing.T) {
	buf := buildBlock(true, "NO", 1, []byte("hello"))
	res, err := newTestScanner().Scan(buf)
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)

	b := res.Blocks[0]
	require.Equal(t, [2]byte{'N', 'O'}, b.Key.Name)
	require.True(t, b.Key.Critical)
	require.Equal(t, uint64(0), b.Begin)
	require.Equal(t, uint64(len(buf)), b.End)
}

func TestScan_UnknownCriticalKeyIsFatal(t *testing.T) {
	buf := buildBlock(true, "ZZ", 1, []byte("x"))
	_, err := newTestScanner().Scan(buf)
	require.ErrorIs(t, err, errs.ErrUnknownCriticalKey)
}

func TestScan_UnknownNonCriticalKeyIsSkippedByteByByte(t *testing.T) {
	// Scenario 6 from spec §8: parse succeeds, scan resumes byte-by-byte.
	unknown := buildBlock(false, "ZZ", 1, []byte("garbage"))
	known := buildBlock(true, "NO", 1, []byte("ok"))
	buf := append(unknown, known...)

	res, err := newTestScanner().Scan(buf)
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)
	require.Equal(t, [2]byte{'N', 'O'}, res.Blocks[0].Key.Name)
}

func TestScan_MalformedHeaderMissingSeparator(t *testing.T) {
	buf := []byte{keys.Sentinel, keys.CritByte, 'N', 'O', 'X'} // 'X' instead of SEP
	_, err := newTestScanner().Scan(buf)
	require.ErrorIs(t, err, errs.ErrMalformedBlock)
}

func TestScan_TruncatedVersionField(t *testing.T) {
	buf := []byte{keys.Sentinel, keys.CritByte, 'N', 'O', keys.Sep, '1'} // no trailing SEP
	_, err := newTestScanner().Scan(buf)
	require.ErrorIs(t, err, errs.ErrMalformedBlock)
}

func TestScan_MultipleBlocksAreContiguous(t *testing.T) {
	b1 := buildBlock(true, "NO", 1, []byte("a"))
	b2 := buildBlock(true, "NL", 1, []byte("bb"))
	buf := append(append([]byte{}, b1...), b2...)

	res, err := newTestScanner().Scan(buf)
	require.NoError(t, err)
	require.Len(t, res.Blocks, 2)
	require.Equal(t, uint64(len(b1)), res.Blocks[1].Begin)
	require.NoError(t, CheckConsistency(res.Blocks))
}

func TestScan_TrailingGarbageIgnored(t *testing.T) {
	b1 := buildBlock(true, "NO", 1, []byte("a"))
	buf := append(append([]byte{}, b1...), []byte("garbage, no sentinel here")...)

	res, err := newTestScanner().Scan(buf)
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)
}

func TestCheckConsistency_EmptyAndSingleton(t *testing.T) {
	require.NoError(t, CheckConsistency(nil))
	require.NoError(t, CheckConsistency([]Block{{}}))
}

func TestCheckConsistency_Overlap(t *testing.T) {
	blocks := []Block{
		{Begin: 0, End: 10},
		{Begin: 5, End: 20},
	}
	err := CheckConsistency(blocks)
	require.ErrorIs(t, err, errs.ErrInconsistentBlockSequence)
}
