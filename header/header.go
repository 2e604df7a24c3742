// Package header implements the fixed-preamble, variable-trailer MCPL
// header (§3.2, §4.2, §6.1): the file magic and version, the endianness
// flag, the patched-in-place particle count, the feature-flag block, the
// source name, the ordered comment list (with the stat-sum table carried
// as its reserved leading entry), and the blob table.
//
// The on-disk layout and field order is parsed and serialized the way
// the teacher package's NumericHeader does it, byte range by byte range,
// adapted to MCPL's mix of fixed and length-prefixed fields.
package header

import (
	"fmt"
	"math"

	"github.com/mctools/mcpl-go/endian"
	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/format"
	"github.com/mctools/mcpl-go/statsum"
)

// Blob is a single named binary attachment (§3.2, §4.3).
type Blob struct {
	Key  string
	Data []byte
}

// Header holds every header-level field of an MCPL file. A Writer builds
// one up incrementally while it is open; a Reader exposes one, fully
// populated and read-only, once Open has returned.
type Header struct {
	Version  format.Version
	Endian   format.Endianness
	NParticles uint64

	UserFlags      bool
	Polarisation   bool
	SinglePrec     bool
	UniversalPdg   int32   // 0 means "not in effect" (§3.2)
	UniversalWeight float64 // only meaningful when UniversalWeightSet
	UniversalWeightSet bool

	SrcName string

	// StatSums is always non-nil; writers serialize it as the reserved
	// leading comment even when it has zero entries (statsum.Encode).
	StatSums *statsum.Table

	// Comments holds the user-visible comments only, i.e. with the
	// reserved stat-sum comment already stripped out by Decode.
	Comments []string

	Blobs []Blob
}

// New returns a Header ready for a new file: current format version,
// native endianness, and an empty stat-sum table.
func New() *Header {
	flag := format.LittleEndian
	if endian.IsNativeBigEndian() {
		flag = format.BigEndian
	}

	return &Header{
		Version:  format.VersionCurrent,
		Endian:   flag,
		StatSums: statsum.New(),
	}
}

// ParticleSize returns the on-disk size of a single particle record
// given the header's current feature flags (§3.3), mirroring the
// original library's particle_size recalculation: a base of 7 floating
// point values (the 3 packed direction+ekin components, 3 position
// components, and time), plus one more for weight unless a universal
// weight is in effect, plus 3 more for polarisation, plus a 4-byte
// pdgcode unless a universal pdgcode is in effect, plus a 4-byte
// userflags word if enabled.
func (h *Header) ParticleSize() uint32 {
	fp := uint32(8)
	if h.SinglePrec {
		fp = 4
	}

	size := 7 * fp
	if h.Polarisation {
		size += 3 * fp
	}
	if h.UniversalPdg == 0 {
		size += 4
	}
	if !h.UniversalWeightSet {
		size += fp
	}
	if h.UserFlags {
		size += 4
	}

	return size
}

// Signature returns the bit-packed feature signature used by pcodec to
// select a particle record layout without branching on every field
// individually, mirroring the original library's opt_signature
// computation: 1*singleprec + 2*polarisation + 4*universalpdg +
// 8*universalweight + 16*userflags.
func (h *Header) Signature() uint8 {
	var sig uint8
	if h.SinglePrec {
		sig |= 1
	}
	if h.Polarisation {
		sig |= 2
	}
	if h.UniversalPdg != 0 {
		sig |= 4
	}
	if h.UniversalWeightSet {
		sig |= 8
	}
	if h.UserFlags {
		sig |= 16
	}

	return sig
}

// Validate checks invariants that must hold before a header may be
// frozen and written (§3.2, §4.2 edge cases): a source name must be
// present, blob keys must be unique and non-empty, and a universal
// weight, once set, must be positive and finite.
func (h *Header) Validate() error {
	if h.SrcName == "" {
		return fmt.Errorf("%w: source name must not be empty", errs.ErrPolicy)
	}

	seen := make(map[string]bool, len(h.Blobs))
	for _, b := range h.Blobs {
		if b.Key == "" {
			return fmt.Errorf("%w: blob key must not be empty", errs.ErrPolicy)
		}
		if seen[b.Key] {
			return fmt.Errorf("%w: %q", errs.ErrDuplicateBlobKey, b.Key)
		}
		seen[b.Key] = true
	}

	if h.UniversalWeightSet {
		if !(h.UniversalWeight > 0) || math.IsInf(h.UniversalWeight, 1) {
			return fmt.Errorf("%w: universal weight must be positive and finite", errs.ErrInvalidUniversalWeight)
		}
	}

	return nil
}

// Blob looks up a blob by key.
func (h *Header) Blob(key string) ([]byte, bool) {
	for _, b := range h.Blobs {
		if b.Key == key {
			return b.Data, true
		}
	}

	return nil, false
}

// SetBlob adds or replaces a blob, returning errs.ErrDuplicateBlobKey if
// a different blob with the same key already exists and replace is
// false.
func (h *Header) SetBlob(key string, data []byte, replace bool) error {
	for i, b := range h.Blobs {
		if b.Key == key {
			if !replace {
				return fmt.Errorf("%w: %q", errs.ErrDuplicateBlobKey, key)
			}
			h.Blobs[i].Data = data

			return nil
		}
	}
	h.Blobs = append(h.Blobs, Blob{Key: key, Data: data})

	return nil
}

// AddComment appends a user-visible comment, in order (§3.2, §4.2).
func (h *Header) AddComment(comment string) {
	h.Comments = append(h.Comments, comment)
}
