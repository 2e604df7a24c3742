// Package pcodec serializes and deserializes individual particle
// records to and from their on-disk layout, which varies by the
// header's feature signature (§3.3): single vs double precision,
// polarisation present or not, a universal weight/pdgcode replacing the
// per-particle fields, and an optional trailing userflags word.
//
// The field order and width-switching mirror the original library's
// particle (de)serialization exactly, generalized the way the teacher
// package's numeric encoder/decoder pair separates "what bytes to write"
// from "how many bytes each field takes" (blob/numeric_encoder.go,
// blob/numeric_decoder.go).
package pcodec

import (
	"fmt"
	"math"

	"github.com/mctools/mcpl-go/endian"
	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/format"
	"github.com/mctools/mcpl-go/header"
	"github.com/mctools/mcpl-go/particle"
	"github.com/mctools/mcpl-go/unitvec"
)

// Encode serializes p into a buffer exactly h.ParticleSize() bytes long,
// according to h's current feature flags, using eng for byte order.
func Encode(h *header.Header, eng endian.EndianEngine, p particle.Particle) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	buf := make([]byte, h.ParticleSize())
	fp := 8
	if h.SinglePrec {
		fp = 4
	}

	packed := unitvec.Pack(p.Direction, p.Ekin)

	off := 0
	if h.Polarisation {
		for i := 0; i < 3; i++ {
			putFloat(buf[off:], eng, p.Polarisation[i], fp)
			off += fp
		}
	}
	for i := 0; i < 3; i++ {
		putFloat(buf[off:], eng, p.Position[i], fp)
		off += fp
	}
	for i := 0; i < 3; i++ {
		putFloat(buf[off:], eng, packed[i], fp)
		off += fp
	}
	putFloat(buf[off:], eng, p.Time, fp)
	off += fp

	if !h.UniversalWeightSet {
		putFloat(buf[off:], eng, p.Weight, fp)
		off += fp
	}

	if h.UniversalPdg == 0 {
		eng.PutUint32(buf[off:off+4], uint32(p.PdgCode))
		off += 4
	}

	if h.UserFlags {
		eng.PutUint32(buf[off:off+4], p.UserFlags)
		off += 4
	}

	if off != len(buf) {
		return nil, fmt.Errorf("%w: serialized %d of %d expected bytes", errs.ErrInvalidParticleSize, off, len(buf))
	}

	return buf, nil
}

// Decode parses a particle record of exactly h.ParticleSize() bytes.
func Decode(h *header.Header, eng endian.EndianEngine, buf []byte) (particle.Particle, error) {
	if uint32(len(buf)) != h.ParticleSize() {
		return particle.Particle{}, fmt.Errorf("%w: record is %d bytes, want %d", errs.ErrInvalidParticleSize, len(buf), h.ParticleSize())
	}

	fp := 8
	if h.SinglePrec {
		fp = 4
	}

	var p particle.Particle
	off := 0
	if h.Polarisation {
		for i := 0; i < 3; i++ {
			p.Polarisation[i] = getFloat(buf[off:], eng, fp)
			off += fp
		}
		p.HasPolarisation = true
	}
	for i := 0; i < 3; i++ {
		p.Position[i] = getFloat(buf[off:], eng, fp)
		off += fp
	}

	var packed [3]float64
	for i := 0; i < 3; i++ {
		packed[i] = getFloat(buf[off:], eng, fp)
		off += fp
	}
	p.Time = getFloat(buf[off:], eng, fp)
	off += fp

	if h.UniversalWeightSet {
		p.Weight = h.UniversalWeight
	} else {
		p.Weight = getFloat(buf[off:], eng, fp)
		off += fp
	}

	if h.UniversalPdg != 0 {
		p.PdgCode = h.UniversalPdg
	} else {
		p.PdgCode = int32(eng.Uint32(buf[off : off+4]))
		off += 4
	}

	if h.UserFlags {
		p.UserFlags = eng.Uint32(buf[off : off+4])
		p.HasUserFlags = true
		off += 4
	}

	if h.Version == format.VersionOctahedral {
		p.Direction, p.Ekin = unitvec.DecodeOctahedral(packed)
	} else {
		p.Direction, p.Ekin = unitvec.Decode(packed)
	}

	return p, nil
}

func putFloat(dst []byte, eng endian.EndianEngine, v float64, width int) {
	if width == 4 {
		eng.PutUint32(dst[:4], math.Float32bits(float32(v)))
	} else {
		eng.PutUint64(dst[:8], math.Float64bits(v))
	}
}

func getFloat(src []byte, eng endian.EndianEngine, width int) float64 {
	if width == 4 {
		return float64(math.Float32frombits(eng.Uint32(src[:4])))
	}

	return math.Float64frombits(eng.Uint64(src[:8]))
}
