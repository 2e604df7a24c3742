// Package writer provides the MCPL output side: a Writer that moves
// through the same header-mutable -> header-frozen -> closed lifecycle
// as the original library's outfile handle, freezing the header (and
// thereby fixing the on-disk particle record layout) the moment the
// first particle is added or Close is called, whichever happens first.
//
// Header fields are configured through functional options, generalizing
// the Option[T]/Apply pattern the teacher package uses for its encoder
// configuration (internal/options).
package writer

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/mctools/mcpl-go/bytestream"
	"github.com/mctools/mcpl-go/endian"
	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/format"
	"github.com/mctools/mcpl-go/header"
	"github.com/mctools/mcpl-go/internal/options"
	"github.com/mctools/mcpl-go/particle"
	"github.com/mctools/mcpl-go/pcodec"
	"github.com/mctools/mcpl-go/statsum"
)

type lifecycle uint8

const (
	headerMutable lifecycle = iota
	headerFrozen
	closed
)

// Option configures a Writer's header before it is frozen. Use the
// With* functions below to build one.
type Option = options.Option[*Writer]

// Writer writes a new MCPL file. It is not safe for concurrent use by
// multiple goroutines (mirrors spec §5's single-writer assumption).
type Writer struct {
	path string
	st   bytestream.Stream
	hdr  *header.Header
	eng  endian.EndianEngine

	state lifecycle
}

// Create opens path for writing a new MCPL file with the given source
// program name, applying opts to the header before it is frozen. The
// header is not written to disk until the first AddParticle call or
// Close, whichever comes first, so header-mutating options and methods
// remain valid until then.
func Create(path string, srcName string, opts ...Option) (*Writer, error) {
	st, err := bytestream.Create(path)
	if err != nil {
		return nil, err
	}

	h := header.New()
	h.SrcName = srcName

	w := &Writer{path: path, st: st, hdr: h}
	if err := options.Apply(w, opts...); err != nil {
		_ = st.Close()
		_ = os.Remove(path)

		return nil, err
	}

	return w, nil
}

// Header returns the writer's header. Before Freeze (implicit on the
// first AddParticle or explicit via Close), it may still be mutated
// through the writer's With*/Enable* methods; afterward it is read-only.
func (w *Writer) Header() *header.Header {
	return w.hdr
}

func (w *Writer) requireMutable() error {
	if w.state != headerMutable {
		return fmt.Errorf("%w: header is no longer mutable", errs.ErrHeaderFrozen)
	}

	return nil
}

// EnableUserFlags turns on the per-particle userflags field.
func (w *Writer) EnableUserFlags() error {
	if err := w.requireMutable(); err != nil {
		return err
	}
	w.hdr.UserFlags = true

	return nil
}

// EnablePolarisation turns on the per-particle polarisation vector.
func (w *Writer) EnablePolarisation() error {
	if err := w.requireMutable(); err != nil {
		return err
	}
	w.hdr.Polarisation = true

	return nil
}

// EnableSinglePrecision stores particle floating point fields as
// float32 instead of the default float64.
func (w *Writer) EnableSinglePrecision() error {
	if err := w.requireMutable(); err != nil {
		return err
	}
	w.hdr.SinglePrec = true

	return nil
}

// EnableUniversalPdgCode declares a single PDG code for every particle
// in the file, dropping the per-particle pdgcode field.
func (w *Writer) EnableUniversalPdgCode(pdg int32) error {
	if err := w.requireMutable(); err != nil {
		return err
	}
	if pdg == 0 {
		return fmt.Errorf("%w: universal pdgcode must be non-zero", errs.ErrInvalidUniversalPdg)
	}
	if w.hdr.UniversalPdg != 0 && w.hdr.UniversalPdg != pdg {
		return fmt.Errorf("%w", errs.ErrUniversalPdgRedefined)
	}
	w.hdr.UniversalPdg = pdg

	return nil
}

// EnableUniversalWeight declares a single weight for every particle in
// the file, dropping the per-particle weight field.
func (w *Writer) EnableUniversalWeight(weight float64) error {
	if err := w.requireMutable(); err != nil {
		return err
	}
	if !(weight > 0) || math.IsInf(weight, 1) {
		return fmt.Errorf("%w: universal weight must be positive and finite", errs.ErrInvalidUniversalWeight)
	}
	if w.hdr.UniversalWeightSet && w.hdr.UniversalWeight != weight {
		return fmt.Errorf("%w", errs.ErrUniversalWeightRedefined)
	}
	w.hdr.UniversalWeight = weight
	w.hdr.UniversalWeightSet = true

	return nil
}

// AddComment appends a header comment. Must be called before the header
// is frozen.
func (w *Writer) AddComment(comment string) error {
	if err := w.requireMutable(); err != nil {
		return err
	}
	w.hdr.AddComment(comment)

	return nil
}

// AddBlob attaches a named binary blob to the header.
func (w *Writer) AddBlob(key string, data []byte) error {
	if err := w.requireMutable(); err != nil {
		return err
	}

	return w.hdr.SetBlob(key, data, false)
}

// StatSums returns the writer's stat-sum table for direct mutation. It
// must be fully populated before the header freezes.
func (w *Writer) StatSums() (*statsum.Table, error) {
	if err := w.requireMutable(); err != nil {
		return nil, err
	}

	return w.hdr.StatSums, nil
}

// freeze writes the header to disk, fixing the particle record layout
// and every subsequent byte offset, mirroring
// mcpl_internal_write_particle_buffer_to_file's "ensure header is
// written" check before the first particle.
func (w *Writer) freeze() error {
	if w.state != headerMutable {
		return nil
	}

	if err := w.hdr.Validate(); err != nil {
		return err
	}

	data, err := header.Encode(w.hdr)
	if err != nil {
		return err
	}
	if err := w.st.Write(data); err != nil {
		return err
	}

	w.eng = endian.ForFlag(w.hdr.Endian)
	w.state = headerFrozen

	return nil
}

// checkUniversalConstraints rejects a particle that disagrees with a
// header's universal PDG code or universal weight (§4.4: add_particle
// validates that a particle matches universal constraints already in
// force), mirroring the original's mcpl_add_particle checks against
// f->hdr_pdgcode/f->hdr_weight.
func checkUniversalConstraints(h *header.Header, p particle.Particle) error {
	if h.UniversalPdg != 0 && p.PdgCode != h.UniversalPdg {
		return fmt.Errorf("%w: particle pdgcode %d does not match universal pdgcode %d", errs.ErrUniversalPdgMismatch, p.PdgCode, h.UniversalPdg)
	}
	if h.UniversalWeightSet && p.Weight != h.UniversalWeight {
		return fmt.Errorf("%w: particle weight %g does not match universal weight %g", errs.ErrUniversalWeightMismatch, p.Weight, h.UniversalWeight)
	}

	return nil
}

// AddParticle validates and appends one particle record, freezing the
// header first if this is the first particle written.
func (w *Writer) AddParticle(p particle.Particle) error {
	if w.state == closed {
		return fmt.Errorf("%w", errs.ErrAlreadyClosed)
	}
	if err := w.freeze(); err != nil {
		return err
	}
	if err := checkUniversalConstraints(w.hdr, p); err != nil {
		return err
	}

	buf, err := pcodec.Encode(w.hdr, w.eng, p)
	if err != nil {
		return err
	}
	if err := w.st.Write(buf); err != nil {
		return err
	}
	w.hdr.NParticles++

	return nil
}

// AddRawParticle appends an already-serialized particle record verbatim,
// without decoding and re-encoding it. The caller (merge, transfer) is
// responsible for ensuring buf was produced under an identical feature
// signature to this writer's header; AddRawParticle only checks its
// length. This is the fast byte-copy path mcpl_transfer_last_read_particle
// and the merge engine's chunked copy use when source and destination
// layouts agree (§4.6, §4.7).
func (w *Writer) AddRawParticle(buf []byte) error {
	if w.state == closed {
		return fmt.Errorf("%w", errs.ErrAlreadyClosed)
	}
	if err := w.freeze(); err != nil {
		return err
	}

	if uint32(len(buf)) != w.hdr.ParticleSize() {
		return fmt.Errorf("%w: raw record is %d bytes, writer expects %d", errs.ErrInvalidParticleSize, len(buf), w.hdr.ParticleSize())
	}

	if err := w.st.Write(buf); err != nil {
		return err
	}
	w.hdr.NParticles++

	return nil
}

// Close finalizes the file: freezing the header if no particle was ever
// added, then patching the final particle count in place at its fixed
// offset (§4.2's "nparticles ... position is fixed so it can be updated
// later"), and closing the underlying stream.
func (w *Writer) Close() error {
	if w.state == closed {
		return nil
	}
	if err := w.freeze(); err != nil {
		return err
	}

	if w.hdr.NParticles > 0 {
		if err := w.patchNParticles(); err != nil {
			return err
		}
	}

	w.state = closed

	return w.st.Close()
}

// patchNParticles seeks back to the fixed particle-count offset and
// rewrites it, then restores the write position, the way
// mcpl_update_nparticles does around the append-only write path.
func (w *Writer) patchNParticles() error {
	f, ok := bytestream.AsFile(w.st)
	if !ok {
		return fmt.Errorf("%w: writer stream is not a plain file", errs.ErrPlatform)
	}

	savedPos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	buf := make([]byte, format.NParticlesSize)
	w.eng.PutUint64(buf, w.hdr.NParticles)

	if _, err := f.WriteAt(buf, format.PreambleSize); err != nil {
		return fmt.Errorf("%w: patching particle count: %v", errs.ErrIO, err)
	}

	if _, err := f.Seek(savedPos, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	return nil
}

// CloseAndGzip closes the file and then compresses it in place,
// returning the final ".gz" path (§4.4).
func (w *Writer) CloseAndGzip() (string, error) {
	if err := w.Close(); err != nil {
		return "", err
	}

	return bytestream.GzipFileInPlace(w.path)
}
