// Package reader provides the MCPL input side: sequential and seekable
// access to the particles in a file opened by header.Decode, with the
// same silent writer-crash recovery and header/particle-size
// consistency probing as the original library's open routine.
package reader

import (
	"fmt"
	"log"

	"github.com/mctools/mcpl-go/bytestream"
	"github.com/mctools/mcpl-go/endian"
	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/header"
	"github.com/mctools/mcpl-go/particle"
	"github.com/mctools/mcpl-go/pcodec"
)

// LogFunc receives the warning mcpl_open_file prints to stdout when it
// silently recovers a particle count from an improperly closed file.
// Replace it (e.g. with a no-op) to silence it, following the same
// package-level hook pattern used throughout mcpl-go for diagnostics
// that do not rise to the level of a returned error.
var LogFunc = func(format string, args ...any) { log.Printf(format, args...) }

// Reader provides read access to one MCPL file. It is not safe for
// concurrent use by multiple goroutines.
type Reader struct {
	path string
	st   bytestream.Stream
	hdr  *header.Header
	eng  endian.EndianEngine

	firstParticlePos int64
	particleSize     uint32
	cursor           uint64

	// declaredNParticles is the raw on-disk particle count before any
	// recovery adjustment, kept so repair.Repair can report an
	// accurate "before" count even after NParticles() is updated.
	declaredNParticles uint64

	// lastRaw holds the most recently read particle's undecoded bytes,
	// so transfer.TransferLastRead can take the fast byte-copy path
	// when source and destination share a record layout (§4.6).
	lastRaw []byte
}

// Open opens path for reading, validating the header and, for a plain
// (non-gzip) file, probing the particle section's actual size against
// the header's declared particle count (§3.5).
func Open(path string) (*Reader, error) {
	r, _, err := open(path, false)

	return r, err
}

// OpenForRepair performs the same open sequence as Open but in "repair
// probe" mode: it never silently mutates nparticles and instead reports
// a RepairStatus describing what it found, for the repair package to
// act on.
func OpenForRepair(path string) (*Reader, RepairStatus, error) {
	return open(path, true)
}

func open(path string, forRepair bool) (*Reader, RepairStatus, error) {
	st, err := bytestream.OpenRead(path)
	if err != nil {
		return nil, StatusOK, err
	}

	hdr, eng, err := header.Decode(st)
	if err != nil {
		_ = st.Close()

		return nil, StatusOK, err
	}

	headerEnd, err := st.Tell()
	if err != nil {
		_ = st.Close()

		return nil, StatusOK, err
	}

	particleSize := hdr.ParticleSize()
	firstParticlePos := headerEnd
	status := StatusOK
	declaredNParticles := hdr.NParticles

	if f, ok := bytestream.AsFile(st); ok {
		outcome, err := probePlainFile(f, headerEnd, particleSize, hdr.NParticles, forRepair)
		if err != nil {
			_ = st.Close()

			return nil, StatusOK, err
		}
		firstParticlePos = outcome.firstParticlePos
		status = outcome.status

		switch {
		case hdr.NParticles == 0 && outcome.available > 0 && !forRepair:
			LogFunc("MCPL WARNING: input file appears to not have been closed properly. Recovered %d particles.", outcome.available)
			hdr.NParticles = outcome.available
		case status == StatusRecoverable:
			hdr.NParticles = outcome.available
		}
	} else {
		gzStatus, err := probeGzipFile(st, headerEnd, hdr.NParticles, forRepair)
		if err != nil {
			_ = st.Close()

			return nil, StatusOK, err
		}
		status = gzStatus
	}

	if err := st.Seek(firstParticlePos); err != nil {
		_ = st.Close()

		return nil, StatusOK, err
	}

	r := &Reader{
		path:               path,
		st:                 st,
		hdr:                hdr,
		eng:                eng,
		firstParticlePos:   firstParticlePos,
		particleSize:       particleSize,
		declaredNParticles: declaredNParticles,
	}

	return r, status, nil
}

// Header returns the file's header.
func (r *Reader) Header() *header.Header {
	return r.hdr
}

// NParticles returns the (possibly recovered) particle count.
func (r *Reader) NParticles() uint64 {
	return r.hdr.NParticles
}

// DeclaredNParticles returns the raw on-disk particle count as it was
// before Open's recovery logic may have corrected it.
func (r *Reader) DeclaredNParticles() uint64 {
	return r.declaredNParticles
}

// Position returns the index of the next particle ReadNext will return.
func (r *Reader) Position() uint64 {
	return r.cursor
}

// ReadNext reads the next particle record. ok is false once every
// particle has been consumed, mirroring mcpl_read returning NULL at end
// of file.
func (r *Reader) ReadNext() (p particle.Particle, ok bool, err error) {
	if r.cursor >= r.hdr.NParticles {
		return particle.Particle{}, false, nil
	}

	buf := make([]byte, r.particleSize)
	if err := r.st.Read(buf); err != nil {
		return particle.Particle{}, false, fmt.Errorf("%w: reading particle %d: %v", errs.ErrTruncatedFile, r.cursor, err)
	}

	p, err = pcodec.Decode(r.hdr, r.eng, buf)
	if err != nil {
		return particle.Particle{}, false, err
	}
	r.lastRaw = buf
	r.cursor++

	return p, true, nil
}

// LastRaw returns the undecoded bytes of the most recently read
// particle record, or nil if ReadNext has not yet been called
// successfully.
func (r *Reader) LastRaw() []byte {
	return r.lastRaw
}

// ParticleSize returns the on-disk size of one particle record in this
// file, for comparing record layouts without reaching into Header.
func (r *Reader) ParticleSize() uint32 {
	return r.particleSize
}

// FirstParticlePos returns the byte offset of the first particle record,
// i.e. the end of the header's fixed block and variable-length trailer.
// Used by merge.MergeInplace to append past a target file's existing
// records without re-deriving the header's on-disk size.
func (r *Reader) FirstParticlePos() int64 {
	return r.firstParticlePos
}

// DecodeLastRaw re-decodes the most recently read particle record. It
// exists for transfer.TransferLastRead's slow path, which needs a fresh
// particle.Particle without re-reading from disk.
func (r *Reader) DecodeLastRaw() (particle.Particle, error) {
	if r.lastRaw == nil {
		return particle.Particle{}, fmt.Errorf("%w: no particle has been read yet", errs.ErrPolicy)
	}

	return pcodec.Decode(r.hdr, r.eng, r.lastRaw)
}

// Rewind seeks back to the first particle.
func (r *Reader) Rewind() error {
	return r.Seek(0)
}

// SkipForward advances n particles without decoding them.
func (r *Reader) SkipForward(n uint64) error {
	return r.Seek(r.cursor + n)
}

// Seek moves the read cursor to the given particle index, which may be
// beyond NParticles (subsequent ReadNext calls then report ok=false).
func (r *Reader) Seek(index uint64) error {
	offset := r.firstParticlePos + int64(index)*int64(r.particleSize)
	if err := r.st.Seek(offset); err != nil {
		return err
	}
	r.cursor = index

	return nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.st.Close()
}
