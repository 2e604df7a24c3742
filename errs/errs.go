// Package errs defines the sentinel error values returned by the mcpl-go
// packages, grouped by the four error kinds of the MCPL error model:
// I/O failures, on-disk format violations, API policy violations, and
// platform assumption failures. Every fallible operation in mcpl-go wraps
// one of these sentinels with fmt.Errorf("%w: ...", errs.ErrX, ...) so
// callers can test the kind via errors.Is without parsing message text.
package errs

import "errors"

// I/O errors: stream open/read/write/seek failures.
var (
	ErrIO          = errors.New("mcpl: io error")
	ErrShortRead   = errors.New("mcpl: short read")
	ErrShortWrite  = errors.New("mcpl: short write")
	ErrOutputExist = errors.New("mcpl: output path already exists")
)

// Format errors: invalid magic, unsupported version, endian mismatch,
// truncated or oversized fields, corrupt layout.
var (
	ErrFormat                = errors.New("mcpl: format error")
	ErrBadMagic               = errors.New("mcpl: bad magic number")
	ErrUnsupportedVersion     = errors.New("mcpl: unsupported format version")
	ErrEndianMismatch         = errors.New("mcpl: endianness does not match host")
	ErrInvalidHeaderSize      = errors.New("mcpl: invalid header size")
	ErrInvalidHeaderFlags     = errors.New("mcpl: invalid header flags")
	ErrInvalidParticleSize    = errors.New("mcpl: particle size does not match header flags")
	ErrStringTooLong          = errors.New("mcpl: string exceeds maximum length")
	ErrBlobTooLarge           = errors.New("mcpl: blob exceeds maximum length")
	ErrTruncatedFile          = errors.New("mcpl: file is truncated")
	ErrCorruptStatSumBlock    = errors.New("mcpl: corrupt cumulative-statistics block")
	ErrInvalidStatSumKey      = errors.New("mcpl: invalid cumulative-statistic key")
)

// Policy errors: header-mutation after freeze, duplicate blob key,
// non-unit direction, negative kinetic energy, universal-value
// redefinition, merging files with different metadata, and similar
// violations of the library's usage contract.
var (
	ErrPolicy                  = errors.New("mcpl: policy error")
	ErrHeaderFrozen            = errors.New("mcpl: header is no longer mutable")
	ErrAlreadyClosed           = errors.New("mcpl: writer or reader is already closed")
	ErrDuplicateBlobKey        = errors.New("mcpl: duplicate blob key")
	ErrNonUnitDirection        = errors.New("mcpl: direction vector is not a unit vector")
	ErrNegativeEnergy          = errors.New("mcpl: kinetic energy is negative")
	ErrUniversalPdgRedefined   = errors.New("mcpl: universal pdg code redefined with a different value")
	ErrUniversalWeightRedefined = errors.New("mcpl: universal weight redefined with a different value")
	ErrUniversalPdgMismatch    = errors.New("mcpl: particle pdg code does not match universal value")
	ErrUniversalWeightMismatch = errors.New("mcpl: particle weight does not match universal value")
	ErrInvalidUniversalPdg     = errors.New("mcpl: universal pdg code must be non-zero")
	ErrInvalidUniversalWeight  = errors.New("mcpl: universal weight must be positive and finite")
	ErrIncompatibleForMerge    = errors.New("mcpl: files are not compatible for merging")
	ErrSameFile                = errors.New("mcpl: operation would merge a file with itself")
	ErrNotRepairable           = errors.New("mcpl: file does not need repair or cannot be repaired")
	ErrGzipNotRepairable       = errors.New("mcpl: gzipped files cannot be repaired or merged in place")
	ErrStaleRead               = errors.New("mcpl: no particle has been read yet")
)

// Platform errors: compile/runtime assumptions about the execution
// environment (byte size, IEEE-754 floats, two's-complement integers,
// signed zero) that Go guarantees unconditionally. Kept for API parity
// with the C original and for custom EndianEngine implementations that
// might violate them.
var (
	ErrPlatform = errors.New("mcpl: platform assumption violated")
)
