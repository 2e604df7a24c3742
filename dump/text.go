package dump

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/particle"
	"github.com/mctools/mcpl-go/reader"
	"github.com/mctools/mcpl-go/writer"
)

const (
	asciiMagic      = "#MCPL-ASCII"
	asciiFormatLine = "#ASCII-FORMAT: v1"
	asciiTextColumns = "index     pdgcode               ekin[MeV]                   x[cm]                   y[cm]                   z[cm]                      ux                      uy                      uz                time[ms]                  weight                   pol-x                   pol-y                   pol-z  userflags"
)

// ExportText writes every particle in path to w in the lossless ASCII
// interchange format: a banner (magic, format version, particle count,
// optional comments, end-of-header marker), a column header, then one
// line per particle with every field always present regardless of the
// header's universal-value or polarisation flags, mirroring the
// original CLI's `--text` mode with the addition of a carried-over
// comment section.
func ExportText(w io.Writer, path string) error {
	r, err := reader.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	h := r.Header()
	fmt.Fprintf(w, "%s\n%s\n#NPARTICLES: %d\n", asciiMagic, asciiFormatLine, h.NParticles)
	if len(h.Comments) > 0 {
		fmt.Fprintf(w, "#NCOMMENTS: %d\n", len(h.Comments))
		for _, c := range h.Comments {
			fmt.Fprintf(w, "#COMMENT: %s\n", c)
		}
	}
	fmt.Fprintf(w, "#END-HEADER\n%s\n", asciiTextColumns)

	for {
		p, ok, rerr := r.ReadNext()
		if rerr != nil {
			return rerr
		}
		if !ok {
			break
		}
		idx := r.Position() - 1
		fmt.Fprintf(w, "%5d %11d %23.18g %23.18g %23.18g %23.18g %23.18g %23.18g %23.18g"+
			" %23.18g %23.18g %23.18g %23.18g %23.18g 0x%08x\n",
			idx, p.PdgCode, p.Ekin,
			p.Position[0], p.Position[1], p.Position[2],
			p.Direction[0], p.Direction[1], p.Direction[2],
			p.Time, p.Weight,
			p.Polarisation[0], p.Polarisation[1], p.Polarisation[2], p.UserFlags)
	}

	return nil
}

// ImportText reads the ASCII interchange format produced by ExportText
// and writes an MCPL file to outPath. The ASCII encoding carries full
// double-precision text (%23.18g) for every field, and the new file is
// written in double precision with per-particle pdgcode and weight, so
// those fields round trip; directions are repacked and agree to within
// rounding. The new file has no polarisation or userflags fields, so those
// columns are parsed but not stored.
func ImportText(r io.Reader, outPath string, srcName string) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() || strings.TrimSpace(sc.Text()) != asciiMagic {
		return fmt.Errorf("%w: missing %q banner", errs.ErrFormat, asciiMagic)
	}
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != asciiFormatLine {
		return fmt.Errorf("%w: unsupported or missing ASCII format version line", errs.ErrFormat)
	}
	if !sc.Scan() {
		return fmt.Errorf("%w: missing particle count line", errs.ErrFormat)
	}
	nStr, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), "#NPARTICLES:")
	if !ok {
		return fmt.Errorf("%w: missing #NPARTICLES header line", errs.ErrFormat)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(nStr), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid particle count: %v", errs.ErrFormat, err)
	}

	var opts []writer.Option
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "#END-HEADER" {
			break
		}
		if comment, ok := strings.CutPrefix(line, "#COMMENT:"); ok {
			opts = append(opts, writer.WithComment(strings.TrimSpace(comment)))

			continue
		}
		if strings.HasPrefix(line, "#NCOMMENTS:") {
			continue
		}

		return fmt.Errorf("%w: unrecognized header line %q", errs.ErrFormat, line)
	}
	if !sc.Scan() {
		return fmt.Errorf("%w: missing column header line", errs.ErrFormat)
	}

	w, err := writer.Create(outPath, srcName, opts...)
	if err != nil {
		return err
	}

	for i := uint64(0); i < n; i++ {
		if !sc.Scan() {
			_ = w.Close()

			return fmt.Errorf("%w: expected %d particles, found %d", errs.ErrFormat, n, i)
		}
		p, err := parseTextParticle(sc.Text())
		if err != nil {
			_ = w.Close()

			return err
		}
		if err := w.AddParticle(p); err != nil {
			_ = w.Close()

			return err
		}
	}

	return w.Close()
}

func parseTextParticle(line string) (particle.Particle, error) {
	fields := strings.Fields(line)
	if len(fields) != 15 {
		return particle.Particle{}, fmt.Errorf("%w: expected 15 fields, found %d in %q", errs.ErrFormat, len(fields), line)
	}

	var p particle.Particle
	var err error

	parseInt := func(s string) int64 {
		v, e := strconv.ParseInt(s, 10, 64)
		if e != nil && err == nil {
			err = fmt.Errorf("%w: %v", errs.ErrFormat, e)
		}

		return v
	}
	parseFloat := func(s string) float64 {
		v, e := strconv.ParseFloat(s, 64)
		if e != nil && err == nil {
			err = fmt.Errorf("%w: %v", errs.ErrFormat, e)
		}

		return v
	}
	parseFlags := func(s string) uint32 {
		v, e := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
		if e != nil && err == nil {
			err = fmt.Errorf("%w: %v", errs.ErrFormat, e)
		}

		return uint32(v)
	}

	p.PdgCode = int32(parseInt(fields[1]))
	p.Ekin = parseFloat(fields[2])
	p.Position = [3]float64{parseFloat(fields[3]), parseFloat(fields[4]), parseFloat(fields[5])}
	p.Direction = [3]float64{parseFloat(fields[6]), parseFloat(fields[7]), parseFloat(fields[8])}
	p.Time = parseFloat(fields[9])
	p.Weight = parseFloat(fields[10])
	p.Polarisation = [3]float64{parseFloat(fields[11]), parseFloat(fields[12]), parseFloat(fields[13])}
	p.HasPolarisation = p.Polarisation != [3]float64{}
	p.UserFlags = parseFlags(fields[14])
	p.HasUserFlags = p.UserFlags != 0

	if err != nil {
		return particle.Particle{}, err
	}

	return p, nil
}
