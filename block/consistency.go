package block

import (
	"fmt"

	"github.com/jgoedeke/IMCtermite/errs"
)

// CheckConsistency verifies invariant I1: for every adjacent pair of blocks
// in scan order, blocks[i].End <= blocks[i+1].Begin (spec §4.4).
//
// Grounded on original_source/lib/imc_raw.hpp's check_consistency(), fixing
// the unguarded `size == 0` underflow spec §9 calls out in the original's
// `for (b = 0; b < size-1; b++)` loop.
func CheckConsistency(blocks []Block) error {
	if len(blocks) < 2 {
		return nil
	}
	for i := 0; i < len(blocks)-1; i++ {
		a, b := blocks[i], blocks[i+1]
		if a.End > b.Begin {
			return fmt.Errorf("%w: block %s (end=%d) overlaps block %s (begin=%d)",
				errs.ErrInconsistentBlockSequence, a.UUID(), a.End, b.UUID(), b.Begin)
		}
	}
	return nil
}
