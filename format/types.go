// Package format holds the small enums and on-disk size constants shared
// by every other mcpl-go package: the format version, the feature-flag
// bits that make up a particle record's signature, and the fixed byte
// widths of the header's fixed-size fields.
package format

// Version identifies the on-disk MCPL format version recorded in the
// header's 3-byte ASCII version field ("002" or "003").
type Version uint8

const (
	// VersionOctahedral is format version 2. mcpl-go can read it
	// (using the octahedral unit-vector decoder) but never writes it.
	VersionOctahedral Version = 2

	// VersionCurrent is format version 3, the only version mcpl-go
	// writes. It uses Adaptive Projection Packing for direction+energy.
	VersionCurrent Version = 3
)

func (v Version) String() string {
	switch v {
	case VersionOctahedral:
		return "2"
	case VersionCurrent:
		return "3"
	default:
		return "unknown"
	}
}

// Valid reports whether v is a version mcpl-go knows how to read.
func (v Version) Valid() bool {
	return v == VersionOctahedral || v == VersionCurrent
}

// Endianness is the single-byte endianness flag stored right after the
// format version in the header.
type Endianness byte

const (
	LittleEndian Endianness = 'L'
	BigEndian    Endianness = 'B'
)

func (e Endianness) String() string {
	switch e {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return "unknown"
	}
}

// Feature flags, one bit each, at the bit positions header.Header.Signature
// uses. Together they form the feature signature that determines a
// particle record's on-disk layout. On disk each feature is stored as its
// own uint32 word among the header's fixed fields, not as a packed mask.
const (
	FeatureUserFlags       = 1 << 4 // per-particle 32-bit userflags field present
	FeaturePolarisation    = 1 << 1 // per-particle 3-vector polarisation present
	FeatureSinglePrec      = 1 << 0 // particle fields stored as float32 instead of float64
	FeatureUniversalPdg    = 1 << 2 // header declares a universal (file-wide) pdgcode
	FeatureUniversalWeight = 1 << 3 // header declares a universal (file-wide) weight
)

// On-disk size constants (§4.3 of the MCPL file format).
const (
	MagicSize      = 4 // "MCPL"
	VersionSize    = 3 // ASCII digits, e.g. "003"
	EndianFlagSize = 1 // 'L' or 'B'
	PreambleSize   = MagicSize + VersionSize + EndianFlagSize
	NParticlesSize = 8 // uint64, patched on close

	// FixedFieldsSize is the size of the block of eight uint32 fields,
	// in the file's byte order, that follows nparticles: ncomments, nblobs,
	// userflags, polarisation, singleprec, universal_pdgcode,
	// particle_size, universal_weight-present.
	FixedFieldsSize = 8 * 4

	HeaderFixedSize = PreambleSize + NParticlesSize + FixedFieldsSize

	UniversalWeightSize = 8 // float64, present only if the flag is set

	// MaxStringLen is the largest length a length-prefixed string
	// (srcname, comment, blob key) may declare; the prefix itself is
	// a uint32, so a length of exactly MaxUint32 is rejected to keep
	// the all-ones pattern unambiguous as "too large".
	MaxStringLen = 1<<32 - 2

	// MaxParticleSize bounds the fixed per-particle record: 7 floating
	// fields (packed ekin+dir[3], position[3], time) plus up to 4 more
	// (polarisation[3], weight) at up to 8 bytes each, plus the 4-byte
	// pdgcode and 4-byte userflags: 11*8 + 4 + 4 = 96.
	MaxParticleSize = 96

	// MergeChunkParticles is the default number of particles copied
	// per fast-path merge transfer chunk (§4.7).
	MergeChunkParticles = 1000
)
