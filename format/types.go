// Package format declares the small enumerated types shared across the
// imcraw module: the numeric sample types a channel's CP block can declare,
// and the criticality class a block's key belongs to.
package format

// NumericType identifies the on-disk representation of a channel's samples,
// decoded from parameter slot 5 of its CP block (spec §4.6, §6).
type NumericType uint8

const (
	TypeUnknown NumericType = 0

	TypeUint8 NumericType = 1
	TypeInt8  NumericType = 2

	TypeUint16 NumericType = 3
	TypeInt16  NumericType = 4

	TypeUint32 NumericType = 5
	TypeInt32  NumericType = 6

	TypeUint64 NumericType = 7
	TypeInt64  NumericType = 8

	TypeFloat32 NumericType = 9
	TypeFloat64 NumericType = 10

	// TypeSixByte is a 6-byte little-endian unsigned integer, decoded per
	// spec §4.6 by OR-ing each byte into a uint64 at its 8*j bit offset.
	TypeSixByte NumericType = 11
)

// Size returns sizeof(t) in bytes, or 0 for an unrecognized type.
func (t NumericType) Size() int {
	switch t {
	case TypeUint8, TypeInt8:
		return 1
	case TypeUint16, TypeInt16:
		return 2
	case TypeUint32, TypeInt32, TypeFloat32:
		return 4
	case TypeUint64, TypeInt64, TypeFloat64:
		return 8
	case TypeSixByte:
		return 6
	default:
		return 0
	}
}

func (t NumericType) String() string {
	switch t {
	case TypeUint8:
		return "u8"
	case TypeInt8:
		return "i8"
	case TypeUint16:
		return "u16"
	case TypeInt16:
		return "i16"
	case TypeUint32:
		return "u32"
	case TypeInt32:
		return "i32"
	case TypeUint64:
		return "u64"
	case TypeInt64:
		return "i64"
	case TypeFloat32:
		return "f32"
	case TypeFloat64:
		return "f64"
	case TypeSixByte:
		return "sixbyte"
	default:
		return "unknown"
	}
}

// CriticalityClass distinguishes the two sentinel byte classes a block key
// belongs to (spec §6): critical keys abort parsing when unrecognized,
// non-critical keys are warned about and skipped.
type CriticalityClass uint8

const (
	// ClassUnknown means the byte following the block-start sentinel was
	// neither the critical nor non-critical prefix.
	ClassUnknown     CriticalityClass = 0
	ClassCritical    CriticalityClass = 1
	ClassNonCritical CriticalityClass = 2
)

func (c CriticalityClass) String() string {
	switch c {
	case ClassCritical:
		return "critical"
	case ClassNonCritical:
		return "non-critical"
	default:
		return "unknown"
	}
}
