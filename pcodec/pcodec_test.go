package pcodec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mctools/mcpl-go/endian"
	"github.com/mctools/mcpl-go/header"
	"github.com/mctools/mcpl-go/particle"
)

func TestEncodeDecodeRoundTripDoublePrecision(t *testing.T) {
	h := header.New()
	h.SrcName = "x"
	h.Polarisation = true
	h.UserFlags = true

	eng := endian.GetLittleEndianEngine()
	p := particle.Particle{
		Ekin:         2.5,
		Direction:    [3]float64{0, 0, 1},
		Position:     [3]float64{1, 2, 3},
		Polarisation: [3]float64{0.1, 0.2, 0.3},
		Time:         7,
		Weight:       1.5,
		PdgCode:      2112,
		UserFlags:    0xdeadbeef,
	}

	buf, err := Encode(h, eng, p)
	require.NoError(t, err)
	require.Len(t, buf, int(h.ParticleSize()))

	decoded, err := Decode(h, eng, buf)
	require.NoError(t, err)

	require.InDelta(t, p.Ekin, decoded.Ekin, 1e-9)
	require.InDelta(t, p.Direction[2], decoded.Direction[2], 1e-9)
	require.Equal(t, p.Position, decoded.Position)
	require.InDeltaSlice(t, p.Polarisation[:], decoded.Polarisation[:], 1e-9)
	require.Equal(t, p.Time, decoded.Time)
	require.Equal(t, p.Weight, decoded.Weight)
	require.Equal(t, p.PdgCode, decoded.PdgCode)
	require.Equal(t, p.UserFlags, decoded.UserFlags)
}

func TestEncodeDecodeUsesUniversalFields(t *testing.T) {
	h := header.New()
	h.SrcName = "x"
	h.UniversalPdg = 11
	h.UniversalWeightSet = true
	h.UniversalWeight = 3.0

	eng := endian.GetLittleEndianEngine()
	p := particle.Particle{Ekin: 1, Direction: [3]float64{1, 0, 0}, PdgCode: 11, Weight: 3.0}

	buf, err := Encode(h, eng, p)
	require.NoError(t, err)

	decoded, err := Decode(h, eng, buf)
	require.NoError(t, err)
	require.Equal(t, int32(11), decoded.PdgCode)
	require.Equal(t, 3.0, decoded.Weight)
}

func TestEncodeSinglePrecisionShrinksRecord(t *testing.T) {
	h := header.New()
	h.SrcName = "x"
	h.SinglePrec = true

	eng := endian.GetLittleEndianEngine()
	p := particle.Particle{Ekin: 1, Direction: [3]float64{0, 1, 0}, Weight: 1}

	buf, err := Encode(h, eng, p)
	require.NoError(t, err)
	require.Len(t, buf, int(h.ParticleSize()))
	require.Less(t, len(buf), 7*8)
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	h := header.New()
	h.SrcName = "x"

	_, err := Decode(h, endian.GetLittleEndianEngine(), make([]byte, 3))
	require.Error(t, err)
}
