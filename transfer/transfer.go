// Package transfer implements moving the particle most recently read
// from a reader into a writer without the precision loss a full
// decode-then-pack round trip through Adaptive Projection Packing can
// incur (§4.6), grounded on mcpl_transfer_last_read_particle: when the
// source and destination share an identical record layout, the packed
// direction+energy bytes (and every other field) are copied verbatim;
// otherwise the particle is decoded and re-encoded field by field.
package transfer

import (
	"fmt"

	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/header"
	"github.com/mctools/mcpl-go/reader"
	"github.com/mctools/mcpl-go/writer"
)

// TransferLastRead appends r's most recently read particle to w. If w's
// header has the same feature signature and precision as r's, the raw
// on-disk bytes are copied directly, avoiding the lossy APP repack the
// slow path requires. Otherwise it falls back to a decode/validate/
// re-encode, and per the resolution of the format's silence on this
// case, a destination lacking polarisation simply drops it rather than
// erroring.
func TransferLastRead(r *reader.Reader, w *writer.Writer) error {
	if r.LastRaw() == nil {
		return fmt.Errorf("%w: no particle has been read yet", errs.ErrPolicy)
	}

	src, dst := r.Header(), w.Header()
	if sameLayout(src, dst) {
		return w.AddRawParticle(r.LastRaw())
	}

	p, err := r.DecodeLastRaw()
	if err != nil {
		return err
	}
	if !dst.Polarisation {
		p.HasPolarisation = false
		p.Polarisation = [3]float64{}
	}

	return w.AddParticle(p)
}

// sameLayout reports whether two headers produce byte-identical
// particle records, i.e. whether a record from one can be written
// verbatim into a file described by the other.
func sameLayout(src, dst *header.Header) bool {
	return src.Version == dst.Version &&
		src.SinglePrec == dst.SinglePrec &&
		src.Polarisation == dst.Polarisation &&
		src.UserFlags == dst.UserFlags &&
		src.UniversalPdg == dst.UniversalPdg &&
		src.UniversalWeightSet == dst.UniversalWeightSet &&
		src.UniversalWeight == dst.UniversalWeight
}
