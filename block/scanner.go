package block

import (
	"fmt"

	"github.com/jgoedeke/IMCtermite/errs"
	"github.com/jgoedeke/IMCtermite/format"
	"github.com/jgoedeke/IMCtermite/imclog"
	"github.com/jgoedeke/IMCtermite/keys"
)

// Scanner walks a byte buffer and segments it into Blocks (spec §4.2).
//
// A Scanner is stateless between calls to Scan; it only holds its
// dependencies (the key registry and an optional logger for non-fatal
// warnings), the way arloliu/mebo's decoders hold an EndianEngine rather
// than mutable scan state.
type Scanner struct {
	registry *keys.Registry
	logger   imclog.Logger
}

// NewScanner creates a Scanner. A nil logger is replaced with a no-op one.
func NewScanner(registry *keys.Registry, logger imclog.Logger) *Scanner {
	return &Scanner{registry: registry, logger: imclog.OrDefault(logger)}
}

// Result is the outcome of a successful scan: the ordered block list and a
// step counter recording the number of byte-inspection steps taken, for
// diagnostics (spec §4.2's computational_complexity counter).
type Result struct {
	Blocks    []Block
	ScanSteps uint64
}

// Scan segments buf into an ordered sequence of Blocks.
//
// It aborts with ErrMalformedBlock on header syntax violations (missing
// separators, non-digit version/length fields) and with
// ErrUnknownCriticalKey when a critical block's key has no registry entry.
// Unrecognized non-critical keys are warned about via the injected logger
// and skipped byte-by-byte, per spec §4.2 step f and §9's note that this
// does not advance past the putative block body.
func (s *Scanner) Scan(buf []byte) (Result, error) {
	n := uint64(len(buf))
	res := Result{}

	var i uint64
	for i < n {
		res.ScanSteps++

		if buf[i] != keys.Sentinel {
			i++
			continue
		}

		if i+1 >= n {
			// A lone trailing sentinel byte with nothing after it: treat as
			// trailing garbage, not a block, per spec §4.2 edge cases.
			break
		}

		class := keys.ClassOf(buf[i+1])
		if class == format.ClassUnknown {
			i++
			continue
		}
		critical := buf[i+1] == keys.CritByte

		// Header framing per spec §6: [sentinel][crit][N1][N2][SEP]
		// [version][SEP][length][SEP][payload]. N1/N2 occupy i+2, i+3; the
		// separator terminating the name field is at i+4.
		if i+4 >= n {
			return res, fmt.Errorf("%w: truncated block header at byte %d", errs.ErrMalformedBlock, i)
		}
		name := [2]byte{buf[i+2], buf[i+3]}
		if buf[i+4] != keys.Sep {
			return res, fmt.Errorf("%w: expected separator at byte %d", errs.ErrMalformedBlock, i+4)
		}

		versionEnd, ok := findSep(buf, i+5)
		if !ok {
			return res, fmt.Errorf("%w: unterminated version field starting at byte %d", errs.ErrMalformedBlock, i+5)
		}
		version, ok := parseDecimalUint16(buf[i+5 : versionEnd])
		if !ok {
			return res, fmt.Errorf("%w: non-numeric version field at byte %d", errs.ErrMalformedBlock, i+5)
		}

		lengthStart := versionEnd + 1
		lengthEnd, ok := findSep(buf, lengthStart)
		if !ok {
			return res, fmt.Errorf("%w: unterminated length field starting at byte %d", errs.ErrMalformedBlock, lengthStart)
		}
		length, ok := parseDecimalUint64(buf[lengthStart:lengthEnd])
		if !ok {
			return res, fmt.Errorf("%w: non-numeric length field at byte %d", errs.ErrMalformedBlock, lengthStart)
		}

		paramsOffset := lengthEnd + 1

		entry, found := s.registry.Lookup(critical, name, version)
		if !found {
			if critical {
				return res, fmt.Errorf("%w: %s v%d at byte %d", errs.ErrUnknownCriticalKey, string(name[:]), version, i)
			}
			s.logger.Warn("skipping unknown non-critical key",
				"name", string(name[:]), "version", version, "byte", i)
			i++
			continue
		}

		end := paramsOffset + length
		contentEnd := paramsOffset + length // exclusive bound for header content
		if contentEnd > 0 {
			contentEnd-- // trailing separator/terminator byte is not content
		}
		if contentEnd > n {
			contentEnd = n
		}

		dataOffset := locateDataOffset(buf, paramsOffset, contentEnd, entry.ParameterCount)
		var dataLength uint64
		if contentEnd > dataOffset {
			dataLength = contentEnd - dataOffset
		}

		blk := Block{
			Key:          Key{Critical: critical, Name: name, Version: version},
			Begin:        i,
			End:          end,
			ParamsOffset: paramsOffset,
			BodyOffset:   paramsOffset,
			DataOffset:   dataOffset,
			DataLength:   dataLength,
		}
		res.Blocks = append(res.Blocks, blk)

		if end == 0 || end-1 >= n {
			// Declared length runs past the end of the buffer: the block
			// is still emitted as read, but there is nothing more to scan
			// (spec §4.2 step h).
			break
		}
		// Land on end-1 (spec: "lands on or before end-1"); the next
		// iteration's non-sentinel fallthrough advances one more step,
		// carrying the cursor to end, the next block's sentinel.
		i = end - 1
	}

	return res, nil
}

// findSep returns the offset of the next Sep byte at or after from.
func findSep(buf []byte, from uint64) (uint64, bool) {
	n := uint64(len(buf))
	for p := from; p < n; p++ {
		if buf[p] == keys.Sep {
			return p, true
		}
	}
	return 0, false
}

func parseDecimalUint16(b []byte) (uint16, bool) {
	v, ok := parseDecimalUint64(b)
	if !ok || v > 0xFFFF {
		return 0, false
	}
	return uint16(v), true
}

func parseDecimalUint64(b []byte) (uint64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var v uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint64(c-'0')
	}
	return v, true
}

// locateDataOffset finds the byte offset after the paramCount-th separator
// within [from, limit), establishing "text_params_length" per spec §4.2
// step g / §4.3. If fewer than paramCount separators are present, the
// entire remaining content is treated as having no binary payload
// (dataOffset == limit); lazy parameter access will then correctly report
// ErrParameterIndexOutOfRange for the missing fields.
func locateDataOffset(buf []byte, from, limit uint64, paramCount int) uint64 {
	if paramCount <= 0 {
		return from
	}
	found := 0
	for p := from; p < limit; p++ {
		if buf[p] == keys.Sep {
			found++
			if found == paramCount {
				return p + 1
			}
		}
	}
	return limit
}
