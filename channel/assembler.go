package channel

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jgoedeke/IMCtermite/block"
	"github.com/jgoedeke/IMCtermite/errs"
	"github.com/jgoedeke/IMCtermite/internal/hash"
)

// Assembled is the result of a completed assembly pass: every channel's
// working Env, plus the file order in which their closing block was
// encountered (spec §5: "channel insertion order equals the order in which
// their closing block is encountered").
type Assembled struct {
	Envs  map[string]Env // keyed by CN uuid
	Order []string       // CN uuids, insertion order

	// ByUUID indexes every scanned block by its decimal uuid string for
	// O(1) lookup by the Channel Facade. The backfill's offset comparison
	// does not go through this map; it uses the Assembler's csBegins.
	ByUUID map[string]block.Block
}

// Assembler runs the positional state machine described in spec §4.5 over
// a scanned block sequence, in file order.
type Assembler struct {
	blocks []block.Block
	params block.Params

	// csBegins holds every CS block's Begin offset, ascending (blocks are
	// already in scan order, so no sort is needed). csIndex maps
	// hash.String of the decimal Begin back to the block, giving the
	// backfill lookup below an integer-keyed index instead of rescanning
	// blocks for every unclosed channel.
	csBegins []uint64
	csIndex  map[uint64]block.Block
}

// NewAssembler creates an Assembler over blocks, which must already be in
// scan (file) order. buf is the same byte buffer blocks were scanned from;
// it is needed to read a CC block's component_index parameter.
func NewAssembler(blocks []block.Block, buf []byte) *Assembler {
	return &Assembler{blocks: blocks, params: block.NewParams(buf)}
}

// Assemble runs the state machine to completion.
func (a *Assembler) Assemble() (Assembled, error) {
	out := Assembled{
		Envs:   make(map[string]Env),
		ByUUID: make(map[string]block.Block, len(a.blocks)),
	}
	a.csIndex = make(map[uint64]block.Block)
	for _, b := range a.blocks {
		out.ByUUID[b.UUID()] = b
		if string(b.Key.Name[:]) == "CS" {
			a.csBegins = append(a.csBegins, b.Begin)
			a.csIndex[hash.String(b.UUID())] = b
		}
	}

	var env Env
	var current *ComponentEnv // nil, &env.Comp1, or &env.Comp2

	closeIfOpen := func() error {
		if env.CN == "" {
			return nil
		}
		if env.CS == "" {
			found, err := a.backfillCS(&env)
			if err != nil {
				return err
			}
			if !found {
				// No CS exists anywhere after this channel's CN, so the
				// Channel Facade could never resolve its samples. Drop it
				// rather than emit an unopenable channel, consistent with
				// spec §8 scenario 2 dropping a CN that never closes.
				env.reset()
				current = nil
				return nil
			}
		}
		id := env.CN
		out.Envs[id] = env
		out.Order = append(out.Order, id)
		env.reset()
		current = nil
		return nil
	}

	for _, b := range a.blocks {
		name := string(b.Key.Name[:])
		uuid := b.UUID()

		switch name {
		case "NO":
			env.NO = uuid
		case "NL":
			env.NL = uuid

		case "CB", "CG", "CI", "CT":
			if err := closeIfOpen(); err != nil {
				return out, err
			}
			switch name {
			case "CB":
				env.CB = uuid
			case "CG":
				env.CG = uuid
			case "CI":
				env.CI = uuid
			case "CT":
				env.CT = uuid
			}

		case "CN":
			if err := closeIfOpen(); err != nil {
				return out, err
			}
			env.CN = uuid

		case "CS":
			env.CS = uuid
			if err := closeIfOpen(); err != nil {
				return out, err
			}

		case "CC":
			idx, err := a.componentIndexOf(b)
			if err != nil {
				return out, err
			}
			switch idx {
			case 1:
				current = &env.Comp1
			case 2:
				current = &env.Comp2
			default:
				return out, fmt.Errorf("%w: block %s has component_index %d", errs.ErrInvalidComponentIndex, uuid, idx)
			}
			current.CC = uuid

		case "CD":
			if current != nil {
				current.CD = uuid
			} else {
				env.CD = uuid
			}

		case "NT":
			if current != nil {
				current.NT = uuid
			} else {
				env.NT = uuid
			}

		case "Cb":
			if current == nil {
				return out, fmt.Errorf("%w: Cb block %s", errs.ErrComponentContextMissing, uuid)
			}
			current.Cb = uuid

		case "CP":
			if current == nil {
				return out, fmt.Errorf("%w: CP block %s", errs.ErrComponentContextMissing, uuid)
			}
			current.CP = uuid

		case "CR":
			if current == nil {
				return out, fmt.Errorf("%w: CR block %s", errs.ErrComponentContextMissing, uuid)
			}
			current.CR = uuid
		}
	}

	return out, nil
}

// backfillCS implements the multichannel-sharing case (spec §4.5 step 2,
// invariant I3): if a channel closes without ever seeing its own CS, use
// the next CS in file order whose Begin exceeds the channel's CN.Begin. It
// reports false if no such CS exists, leaving env.CS unset.
//
// The lookup compares Begin as the uint64 it already is, sidestepping the
// lexicographic-string-comparison bug spec §9 flags in the original
// (comparing decimal uuid strings breaks once offsets have differing digit
// counts). csBegins is binary-searched rather than rescanning a.blocks per
// channel, and the resolved offset is looked up in csIndex by its
// hash.String fingerprint rather than by re-deriving the uuid string.
func (a *Assembler) backfillCS(env *Env) (bool, error) {
	cnBegin, err := strconv.ParseUint(env.CN, 10, 64)
	if err != nil {
		return false, fmt.Errorf("%w: malformed CN uuid %q", errs.ErrBlockNotFound, env.CN)
	}
	i := sort.Search(len(a.csBegins), func(i int) bool { return a.csBegins[i] > cnBegin })
	if i == len(a.csBegins) {
		return false, nil
	}
	uuid := strconv.FormatUint(a.csBegins[i], 10)
	b, ok := a.csIndex[hash.String(uuid)]
	if !ok {
		return false, fmt.Errorf("%w: CS at offset %s missing from index", errs.ErrBlockNotFound, uuid)
	}
	env.CS = b.UUID()
	return true, nil
}

// componentIndexOf parses a CC block's component_index parameter (its sole
// registered field, per spec §4.5).
func (a *Assembler) componentIndexOf(b block.Block) (int, error) {
	raw, err := a.params.Get(b, 0)
	if err != nil {
		return 0, err
	}
	idx, convErr := strconv.Atoi(raw)
	if convErr != nil {
		return 0, fmt.Errorf("%w: block %s has non-numeric component_index %q", errs.ErrInvalidComponentIndex, b.UUID(), raw)
	}
	return idx, nil
}
