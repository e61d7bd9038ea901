// Package errs declares the sentinel errors returned by the imcraw module.
//
// Every fallible operation described by the IMC raw-file format wraps one of
// these sentinels with fmt.Errorf's %w verb, so callers can test the error
// class with errors.Is while still getting a human-readable message with the
// offending byte offset, block uuid, or parameter index.
package errs

import "errors"

// Buffer and header framing errors (block.Scanner).
var (
	// ErrMalformedBlock indicates a block header failed to parse: a missing
	// field separator, or a version/length field that is not ASCII decimal.
	ErrMalformedBlock = errors.New("malformed block header")

	// ErrUnknownCriticalKey indicates a critical block key with no entry in
	// the key registry. Parsing aborts.
	ErrUnknownCriticalKey = errors.New("unknown critical key")

	// ErrInconsistentBlockSequence indicates two adjacent blocks overlap,
	// violating invariant I1.
	ErrInconsistentBlockSequence = errors.New("inconsistent block sequence")
)

// Parameter decoding errors (block.Params).
var (
	// ErrParameterIndexOutOfRange indicates a block's payload does not
	// contain the requested positional field.
	ErrParameterIndexOutOfRange = errors.New("parameter index out of range")
)

// Channel assembly errors (channel.Assembler).
var (
	// ErrInvalidComponentIndex indicates a CC block's component_index
	// parameter is not 1 or 2.
	ErrInvalidComponentIndex = errors.New("invalid component index")

	// ErrComponentContextMissing indicates a component-scoped block (Cb, CP,
	// CR) arrived without a preceding CC block selecting a component.
	ErrComponentContextMissing = errors.New("component context missing")
)

// Facade errors (channel.Channel).
var (
	// ErrMalformedParameter indicates a numeric parameter slot (sample
	// count, scaling factor, offset) did not parse as the numeric type its
	// slot requires.
	ErrMalformedParameter = errors.New("malformed numeric parameter")
)

// Query-time errors (channel.Channel, Raw).
var (
	// ErrChannelNotFound indicates a query referenced an unknown channel
	// uuid.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrChunkOutOfRange indicates start+count exceeds the channel's sample
	// count.
	ErrChunkOutOfRange = errors.New("chunk out of range")

	// ErrSizeMismatch indicates sample_count*sizeof(numeric_type) does not
	// equal the CS block's data_length, violating invariant I5.
	ErrSizeMismatch = errors.New("sample count / data length mismatch")

	// ErrBlockNotFound indicates a uuid referenced by a ChannelEnv slot has
	// no corresponding Block, which would indicate an assembler defect.
	ErrBlockNotFound = errors.New("referenced block not found")
)

// Ambient errors (config, cache).
var (
	// ErrInvalidConfig indicates a config file failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCacheMiss indicates no usable snapshot exists for a file.
	ErrCacheMiss = errors.New("snapshot cache miss")

	// ErrCacheStale indicates a snapshot exists but its content key no
	// longer matches the source file.
	ErrCacheStale = errors.New("snapshot cache stale")

	// ErrUnknownCodec indicates a cache snapshot named a compression codec
	// this build does not support.
	ErrUnknownCodec = errors.New("unknown compression codec")
)
