package header

import (
	"fmt"
	"math"

	"github.com/mctools/mcpl-go/bytestream"
	"github.com/mctools/mcpl-go/endian"
	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/format"
	"github.com/mctools/mcpl-go/statsum"
)

// Decode reads a full header from st, which must be positioned at the
// start of the file. It returns the parsed Header and the endian engine
// to use for every subsequent particle record in the file.
func Decode(st bytestream.Stream) (*Header, endian.EndianEngine, error) {
	preambleBuf := make([]byte, format.PreambleSize)
	if err := st.Read(preambleBuf); err != nil {
		return nil, nil, fmt.Errorf("%w: reading preamble: %v", errs.ErrTruncatedFile, err)
	}

	preamble, err := ParsePreamble(preambleBuf)
	if err != nil {
		return nil, nil, err
	}
	eng := endian.ForFlag(preamble.Endian)
	if !endian.CompareNativeEndian(eng) {
		return nil, nil, fmt.Errorf("%w: file is %s-endian", errs.ErrEndianMismatch, preamble.Endian)
	}

	nparticlesBuf := make([]byte, format.NParticlesSize)
	if err := st.Read(nparticlesBuf); err != nil {
		return nil, nil, fmt.Errorf("%w: reading particle count: %v", errs.ErrTruncatedFile, err)
	}
	nparticles := eng.Uint64(nparticlesBuf)

	ffBuf := make([]byte, format.FixedFieldsSize)
	if err := st.Read(ffBuf); err != nil {
		return nil, nil, fmt.Errorf("%w: reading fixed fields: %v", errs.ErrTruncatedFile, err)
	}
	ff, err := parseFixedFields(ffBuf, eng)
	if err != nil {
		return nil, nil, err
	}

	h := &Header{
		Version:      preamble.Version,
		Endian:       preamble.Endian,
		NParticles:   nparticles,
		UserFlags:    ff.userFlags != 0,
		Polarisation: ff.polarisation != 0,
		SinglePrec:   ff.singlePrec != 0,
		UniversalPdg: int32(ff.universalPdg),
	}

	if ff.universalWeightSet != 0 {
		wBuf := make([]byte, format.UniversalWeightSize)
		if err := st.Read(wBuf); err != nil {
			return nil, nil, fmt.Errorf("%w: reading universal weight: %v", errs.ErrTruncatedFile, err)
		}
		h.UniversalWeight = math.Float64frombits(eng.Uint64(wBuf))
		h.UniversalWeightSet = true
	}

	wantPsize := h.ParticleSize()
	if ff.particleSize != wantPsize {
		return nil, nil, fmt.Errorf("%w: header particle size %d does not match %d implied by feature flags",
			errs.ErrInvalidParticleSize, ff.particleSize, wantPsize)
	}

	h.SrcName, err = readString(st, eng)
	if err != nil {
		return nil, nil, fmt.Errorf("reading source name: %w", err)
	}

	comments := make([]string, ff.ncomments)
	for i := range comments {
		comments[i], err = readString(st, eng)
		if err != nil {
			return nil, nil, fmt.Errorf("reading comment %d: %w", i, err)
		}
	}
	h.StatSums, h.Comments = splitStatSums(comments)

	blobKeys := make([]string, ff.nblobs)
	for i := range blobKeys {
		blobKeys[i], err = readString(st, eng)
		if err != nil {
			return nil, nil, fmt.Errorf("reading blob key %d: %w", i, err)
		}
	}

	h.Blobs = make([]Blob, ff.nblobs)
	for i := range h.Blobs {
		data, err := readBuffer(st, eng)
		if err != nil {
			return nil, nil, fmt.Errorf("reading blob %d: %w", i, err)
		}
		h.Blobs[i] = Blob{Key: blobKeys[i], Data: data}
	}

	return h, eng, nil
}

// splitStatSums extracts the reserved leading stat-sum comment, if
// present, from a freshly decoded comment list. Files written by an
// implementation that does not know about stat-sums simply have no such
// entry, in which case every comment is treated as user-visible and an
// empty stat-sum table is returned.
func splitStatSums(comments []string) (*statsum.Table, []string) {
	if len(comments) > 0 && statsum.IsEncoded(comments[0]) {
		table, err := statsum.Decode(comments[0])
		if err == nil {
			return table, comments[1:]
		}
	}

	return statsum.New(), comments
}

func readString(st bytestream.Stream, eng endian.EndianEngine) (string, error) {
	data, err := readBuffer(st, eng)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func readBuffer(st bytestream.Stream, eng endian.EndianEngine) ([]byte, error) {
	lenBuf := make([]byte, 4)
	if err := st.Read(lenBuf); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrTruncatedFile, err)
	}

	n := eng.Uint32(lenBuf)
	if n == 0 {
		return []byte{}, nil
	}

	data := make([]byte, n)
	if err := st.Read(data); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrTruncatedFile, err)
	}

	return data, nil
}
