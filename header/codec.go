package header

import (
	"fmt"
	"math"

	"github.com/mctools/mcpl-go/endian"
	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/format"
	"github.com/mctools/mcpl-go/statsum"
)

func asUint64(f float64) uint64 { return math.Float64bits(f) }

// Preamble is the fixed 8-byte file opener: "MCPL" + 3 ASCII version
// digits + an endianness flag byte, readable without knowing the file's
// endianness (§3.2, §4.2).
type Preamble struct {
	Version format.Version
	Endian  format.Endianness
}

// ParsePreamble reads and validates the first 8 bytes of a file.
func ParsePreamble(data []byte) (Preamble, error) {
	if len(data) != format.PreambleSize {
		return Preamble{}, fmt.Errorf("%w: preamble must be %d bytes, got %d", errs.ErrInvalidHeaderSize, format.PreambleSize, len(data))
	}
	if string(data[0:4]) != "MCPL" {
		return Preamble{}, fmt.Errorf("%w: missing MCPL magic", errs.ErrBadMagic)
	}

	var version format.Version
	for _, d := range data[4:7] {
		if d < '0' || d > '9' {
			return Preamble{}, fmt.Errorf("%w: non-numeric version digit", errs.ErrUnsupportedVersion)
		}
		version = version*10 + format.Version(d-'0')
	}
	if !version.Valid() {
		return Preamble{}, fmt.Errorf("%w: version %s", errs.ErrUnsupportedVersion, version)
	}

	var endianFlag format.Endianness
	switch data[7] {
	case 'L':
		endianFlag = format.LittleEndian
	case 'B':
		endianFlag = format.BigEndian
	default:
		return Preamble{}, fmt.Errorf("%w: unrecognized endian flag %q", errs.ErrEndianMismatch, data[7])
	}

	return Preamble{Version: version, Endian: endianFlag}, nil
}

// Bytes serializes the preamble.
func (p Preamble) Bytes() []byte {
	out := make([]byte, format.PreambleSize)
	copy(out, "MCPL")
	v := uint32(p.Version)
	out[4] = byte('0' + (v/100)%10)
	out[5] = byte('0' + (v/10)%10)
	out[6] = byte('0' + v%10)
	out[7] = byte(p.Endian)

	return out
}

// fixedFields is the 32-byte block following the particle count,
// mirroring the original library's arr[8] uint32 layout exactly so
// existing MCPL files parse unchanged.
type fixedFields struct {
	ncomments          uint32
	nblobs             uint32
	userFlags          uint32
	polarisation       uint32
	singlePrec         uint32
	universalPdg       uint32 // reinterpreted as int32
	particleSize       uint32
	universalWeightSet uint32
}

func (f fixedFields) bytes(eng endian.EndianEngine) []byte {
	b := make([]byte, format.FixedFieldsSize)
	eng.PutUint32(b[0:4], f.ncomments)
	eng.PutUint32(b[4:8], f.nblobs)
	eng.PutUint32(b[8:12], f.userFlags)
	eng.PutUint32(b[12:16], f.polarisation)
	eng.PutUint32(b[16:20], f.singlePrec)
	eng.PutUint32(b[20:24], f.universalPdg)
	eng.PutUint32(b[24:28], f.particleSize)
	eng.PutUint32(b[28:32], f.universalWeightSet)

	return b
}

func parseFixedFields(data []byte, eng endian.EndianEngine) (fixedFields, error) {
	if len(data) != format.FixedFieldsSize {
		return fixedFields{}, fmt.Errorf("%w: fixed fields block must be %d bytes", errs.ErrInvalidHeaderSize, format.FixedFieldsSize)
	}

	return fixedFields{
		ncomments:          eng.Uint32(data[0:4]),
		nblobs:             eng.Uint32(data[4:8]),
		userFlags:          eng.Uint32(data[8:12]),
		polarisation:       eng.Uint32(data[12:16]),
		singlePrec:         eng.Uint32(data[16:20]),
		universalPdg:       eng.Uint32(data[20:24]),
		particleSize:       eng.Uint32(data[24:28]),
		universalWeightSet: eng.Uint32(data[28:32]),
	}, nil
}

// Encode serializes a full header (preamble, patched particle count,
// fixed fields, optional universal weight, and all length-prefixed
// strings and blobs) exactly in the order the original library's
// mcpl_write_header writes them, so that mcpl-go output is byte-for-byte
// interoperable with the reference implementation's reader.
func Encode(h *Header) ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	eng := endian.ForFlag(h.Endian)

	allComments := make([]string, 0, 1+len(h.Comments))
	statSums := h.StatSums
	if statSums == nil {
		statSums = statsum.New()
	}
	allComments = append(allComments, statSums.Encode())
	allComments = append(allComments, h.Comments...)

	var out []byte
	out = append(out, Preamble{Version: h.Version, Endian: h.Endian}.Bytes()...)

	nparticlesBuf := make([]byte, format.NParticlesSize)
	eng.PutUint64(nparticlesBuf, h.NParticles)
	out = append(out, nparticlesBuf...)

	ff := fixedFields{
		ncomments:    uint32(len(allComments)),
		nblobs:       uint32(len(h.Blobs)),
		particleSize: h.ParticleSize(),
	}
	if h.UserFlags {
		ff.userFlags = 1
	}
	if h.Polarisation {
		ff.polarisation = 1
	}
	if h.SinglePrec {
		ff.singlePrec = 1
	}
	ff.universalPdg = uint32(h.UniversalPdg)
	if h.UniversalWeightSet {
		ff.universalWeightSet = 1
	}
	out = append(out, ff.bytes(eng)...)

	if h.UniversalWeightSet {
		wBuf := make([]byte, format.UniversalWeightSize)
		eng.PutUint64(wBuf, asUint64(h.UniversalWeight))
		out = append(out, wBuf...)
	}

	var err error
	out, err = appendString(out, eng, h.SrcName)
	if err != nil {
		return nil, err
	}
	for _, c := range allComments {
		out, err = appendString(out, eng, c)
		if err != nil {
			return nil, err
		}
	}
	for _, b := range h.Blobs {
		out, err = appendString(out, eng, b.Key)
		if err != nil {
			return nil, err
		}
	}
	for _, b := range h.Blobs {
		out, err = appendBuffer(out, eng, b.Data)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

func appendString(dst []byte, eng endian.EndianEngine, s string) ([]byte, error) {
	return appendBuffer(dst, eng, []byte(s))
}

func appendBuffer(dst []byte, eng endian.EndianEngine, data []byte) ([]byte, error) {
	if uint64(len(data)) > format.MaxStringLen {
		return nil, fmt.Errorf("%w: %d bytes exceeds maximum of %d", errs.ErrStringTooLong, len(data), format.MaxStringLen)
	}

	lenBuf := make([]byte, 4)
	eng.PutUint32(lenBuf, uint32(len(data)))
	dst = append(dst, lenBuf...)
	dst = append(dst, data...)

	return dst, nil
}
