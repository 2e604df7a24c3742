// Package dump renders an MCPL file as human-readable text: a header
// summary, a tabular particle listing, or both, grounded on
// mcpl_dump_header/mcpl_dump_particles/mcpl_dump.
package dump

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/mctools/mcpl-go/format"
	"github.com/mctools/mcpl-go/header"
	"github.com/mctools/mcpl-go/particle"
	"github.com/mctools/mcpl-go/reader"
)

// Parts selects which pieces of a dump to print.
type Parts int

const (
	Both Parts = iota
	HeaderOnly
	ParticlesOnly
)

// Filter, when non-nil, is consulted for every particle DumpParticles
// would otherwise print; a false return skips the particle without
// counting it against limit.
type Filter func(particle.Particle) bool

// Dump opens path and writes a formatted dump of it to w, mirroring
// mcpl_dump's three-mode behavior.
func Dump(w io.Writer, path string, parts Parts, skip, limit uint64) error {
	r, err := reader.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	fmt.Fprintf(w, "Opened MCPL file %s:\n", filepath.Base(path))

	if parts == Both || parts == HeaderOnly {
		if err := DumpHeader(w, r); err != nil {
			return err
		}
	}
	if parts == Both || parts == ParticlesOnly {
		if err := DumpParticles(w, r, skip, limit, nil); err != nil {
			return err
		}
	}

	return nil
}

// DumpHeader writes a formatted summary of r's header to w.
func DumpHeader(w io.Writer, r *reader.Reader) error {
	h := r.Header()

	fmt.Fprintf(w, "\n  Basic info\n")
	fmt.Fprintf(w, "    Format             : MCPL-%d\n", h.Version)
	fmt.Fprintf(w, "    No. of particles   : %d\n", h.NParticles)
	fmt.Fprintf(w, "    Header storage     : %d bytes\n", r.FirstParticlePos())
	fmt.Fprintf(w, "    Data storage       : %d bytes\n", h.NParticles*uint64(h.ParticleSize()))

	fmt.Fprintf(w, "\n  Custom meta data\n")
	fmt.Fprintf(w, "    Source             : %q\n", h.SrcName)
	fmt.Fprintf(w, "    Number of comments : %d\n", len(h.Comments))
	for i, c := range h.Comments {
		fmt.Fprintf(w, "          -> comment %d : %q\n", i, c)
	}
	fmt.Fprintf(w, "    Number of blobs    : %d\n", len(h.Blobs))
	for _, b := range h.Blobs {
		fmt.Fprintf(w, "          -> %d bytes of data with key %q\n", len(b.Data), b.Key)
	}

	fmt.Fprintf(w, "\n  Particle data format\n")
	fmt.Fprintf(w, "    User flags         : %s\n", yesNo(h.UserFlags))
	fmt.Fprintf(w, "    Polarisation info  : %s\n", yesNo(h.Polarisation))
	fmt.Fprintf(w, "    Fixed part. type   : %s\n", fixedPdg(h))
	fmt.Fprintf(w, "    Fixed part. weight : %s\n", fixedWeight(h))
	fmt.Fprintf(w, "    FP precision       : %s\n", precisionName(h))
	fmt.Fprintf(w, "    Endianness         : %s\n", endianName(h))
	fmt.Fprintf(w, "    Storage            : %d bytes/particle\n", h.ParticleSize())
	fmt.Fprintf(w, "\n")

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

func fixedPdg(h *header.Header) string {
	if h.UniversalPdg == 0 {
		return "no"
	}

	return fmt.Sprintf("yes (pdgcode %d)", h.UniversalPdg)
}

func fixedWeight(h *header.Header) string {
	if !h.UniversalWeightSet {
		return "no"
	}

	return fmt.Sprintf("yes (weight %g)", h.UniversalWeight)
}

func precisionName(h *header.Header) string {
	if h.SinglePrec {
		return "single"
	}

	return "double"
}

func endianName(h *header.Header) string {
	if h.Endian == format.LittleEndian {
		return "little"
	}

	return "big"
}

// DumpParticles writes a tabular particle listing to w, starting at
// particle index skip, stopping after limit particles (0 means
// unlimited), and skipping any particle filter rejects without
// counting it against limit. Columns for weight, polarisation, and
// userflags are present only when the header carries that field.
func DumpParticles(w io.Writer, r *reader.Reader, skip, limit uint64, filter Filter) error {
	h := r.Header()
	hasWeightColumn := !h.UniversalWeightSet

	fmt.Fprint(w, "index     pdgcode   ekin[MeV]       x[cm]       y[cm]       z[cm]          ux          uy          uz    time[ms]")
	if hasWeightColumn {
		fmt.Fprint(w, "      weight")
	}
	if h.Polarisation {
		fmt.Fprint(w, "       pol-x       pol-y       pol-z")
	}
	if h.UserFlags {
		fmt.Fprint(w, "  userflags")
	}
	fmt.Fprint(w, "\n")

	if err := r.SkipForward(skip); err != nil {
		return err
	}

	for count := uint64(0); limit == 0 || count < limit; {
		p, ok, err := r.ReadNext()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if filter != nil && !filter(p) {
			continue
		}
		count++

		idx := r.Position() - 1
		fmt.Fprintf(w, "%5d %11d %11.5g %11.5g %11.5g %11.5g %11.5g %11.5g %11.5g %11.5g",
			idx, p.PdgCode, p.Ekin,
			p.Position[0], p.Position[1], p.Position[2],
			p.Direction[0], p.Direction[1], p.Direction[2],
			p.Time)
		if hasWeightColumn {
			fmt.Fprintf(w, " %11.5g", p.Weight)
		}
		if h.Polarisation {
			fmt.Fprintf(w, " %11.5g %11.5g %11.5g", p.Polarisation[0], p.Polarisation[1], p.Polarisation[2])
		}
		if h.UserFlags {
			fmt.Fprintf(w, " 0x%08x", p.UserFlags)
		}
		fmt.Fprint(w, "\n")
	}

	return nil
}
