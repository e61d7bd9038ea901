package block

import (
	"fmt"

	"github.com/jgoedeke/IMCtermite/errs"
	"github.com/jgoedeke/IMCtermite/keys"
)

// Params decodes a block's payload of separator-delimited textual
// parameters on demand (spec §4.3). Parameters are never split eagerly:
// only the fields a caller actually asks for get sliced out of buf.
type Params struct {
	buf []byte
}

// NewParams binds a Params decoder to the buffer a block's Blocks were
// scanned from.
func NewParams(buf []byte) Params {
	return Params{buf: buf}
}

// Buf returns the underlying byte buffer, for callers (the Channel Facade)
// that need to read a block's binary payload rather than its textual
// parameters.
func (p Params) Buf() []byte { return p.buf }

// Get returns the text of parameter index (0-based) within b's payload, or
// an error if the payload does not contain that many fields.
func (p Params) Get(b Block, index int) (string, error) {
	start, end, err := p.fieldRange(b, index)
	if err != nil {
		return "", err
	}
	return string(p.buf[start:end]), nil
}

// GetAll returns the first count parameters of b; callers normally pass the
// registry's entry.ParameterCount for b's (name, version). A last parameter
// terminated by a separator ends at that separator, just before
// b.DataOffset; an unterminated one ends at b.DataOffset.
func (p Params) GetAll(b Block, count int) ([]string, error) {
	out := make([]string, count)
	for i := 0; i < count; i++ {
		v, err := p.Get(b, i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// fieldRange walks from b.ParamsOffset counting separators until it has
// passed `index` of them, returning the byte range of the (index)-th field.
func (p Params) fieldRange(b Block, index int) (uint64, uint64, error) {
	if index < 0 {
		return 0, 0, fmt.Errorf("%w: negative index %d", errs.ErrParameterIndexOutOfRange, index)
	}

	limit := b.DataOffset
	if limit > uint64(len(p.buf)) {
		limit = uint64(len(p.buf))
	}

	start := b.ParamsOffset
	field := 0
	for pos := start; pos < limit; pos++ {
		if p.buf[pos] == keys.Sep {
			if field == index {
				return start, pos, nil
			}
			field++
			start = pos + 1
		}
	}

	// A final field with no trailing separator runs up to DataOffset (spec
	// §4.3: "the end of the last parameter equals data_offset"). start==limit
	// here means every field up to and including `field` was already
	// separator-terminated within the loop above, so index==field is one
	// past the last real field, not an unterminated trailing one.
	if field == index && start < limit {
		return start, limit, nil
	}

	return 0, 0, fmt.Errorf("%w: field %d requested, block %s has fewer", errs.ErrParameterIndexOutOfRange, index, b.UUID())
}
