package merge

import (
	"fmt"

	"github.com/mctools/mcpl-go/bytestream"
	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/reader"
	"github.com/mctools/mcpl-go/transfer"
	"github.com/mctools/mcpl-go/writer"
)

// ForceMerge merges files whose metadata disagrees into a new output
// file, by widening the output's feature set to a lossy superset of the
// inputs' rather than rejecting the merge outright, mirroring
// mcpl_forcemerge_files. If every input already turns out to be
// pairwise CanMerge-compatible, it delegates to MergeFiles instead.
//
// keepUserFlags controls whether the merged output keeps a userflags
// field when any input has one; when false, userflags is always
// dropped from the output, matching the original tool's
// "--keepuserflags" opt-in.
func ForceMerge(outPath string, inputs []string, keepUserFlags bool) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: at least one input file is required", errs.ErrIncompatibleForMerge)
	}
	if err := errorOnDuplicatePaths(inputs); err != nil {
		return err
	}
	if bytestream.Exists(outPath) {
		return fmt.Errorf("%w: %q", errs.ErrOutputExist, outPath)
	}

	readers := make([]*reader.Reader, 0, len(inputs))
	defer func() {
		for _, r := range readers {
			_ = r.Close()
		}
	}()

	allCompatible := true
	for _, path := range inputs {
		r, err := reader.Open(path)
		if err != nil {
			return err
		}
		readers = append(readers, r)

		if len(readers) > 1 && !CanMerge(readers[0].Header(), r.Header()) {
			allCompatible = false
		}
	}

	if allCompatible {
		reader.LogFunc("MCPL: all input files are actually compatible, performing a normal merge instead of a force-merge.")
		for _, r := range readers {
			_ = r.Close()
		}
		readers = nil

		return MergeFiles(outPath, inputs)
	}

	union := unionFeaturesOf(readers, keepUserFlags)

	w, err := writer.Create(outPath, "mcpl-go forcemerge", union.options()...)
	if err != nil {
		return err
	}

	for _, r := range readers {
		for {
			_, ok, rerr := r.ReadNext()
			if rerr != nil {
				_ = w.Close()

				return rerr
			}
			if !ok {
				break
			}
			if err := transfer.TransferLastRead(r, w); err != nil {
				_ = w.Close()

				return err
			}
		}
	}

	return w.Close()
}

// unionFeaturesOf computes the lossy superset of header feature flags
// across every input file that carries at least one particle, mirroring
// mcpl_forcemerge_files's opt_* accumulation loop: userflags and
// polarisation are OR-combined, while a universal pdgcode or weight
// survives into the output only if every non-empty input declares the
// same value.
func unionFeaturesOf(readers []*reader.Reader, keepUserFlags bool) unionFeaturesResult {
	var u unionFeaturesResult
	u.universalOK = true
	u.universalWOK = true
	u.singlePrec = true
	var pdgSeen, wSeen, anySeen bool

	for _, r := range readers {
		h := r.Header()
		if h.NParticles == 0 {
			continue
		}
		anySeen = true

		if h.UserFlags {
			u.userFlags = true
		}
		if h.Polarisation {
			u.polarisation = true
		}
		if !h.SinglePrec {
			u.singlePrec = false
		}

		if h.UniversalPdg == 0 {
			u.universalOK = false
		} else if !pdgSeen {
			u.universalPdg = h.UniversalPdg
			pdgSeen = true
		} else if u.universalPdg != h.UniversalPdg {
			u.universalOK = false
		}

		if !h.UniversalWeightSet {
			u.universalWOK = false
		} else if !wSeen {
			u.universalW = h.UniversalWeight
			wSeen = true
		} else if u.universalW != h.UniversalWeight {
			u.universalWOK = false
		}
	}

	if !keepUserFlags {
		u.userFlags = false
	}
	if !pdgSeen {
		u.universalOK = false
	}
	if !wSeen {
		u.universalWOK = false
	}
	if !anySeen {
		u.singlePrec = false
	}

	return u
}

type unionFeaturesResult struct {
	userFlags    bool
	polarisation bool
	universalPdg int32
	universalOK  bool
	universalW   float64
	universalWOK bool
	singlePrec   bool
}

func (u unionFeaturesResult) options() []writer.Option {
	var opts []writer.Option
	if u.userFlags {
		opts = append(opts, writer.WithUserFlags())
	}
	if u.polarisation {
		opts = append(opts, writer.WithPolarisation())
	}
	if u.universalOK {
		opts = append(opts, writer.WithUniversalPdgCode(u.universalPdg))
	}
	if u.universalWOK {
		opts = append(opts, writer.WithUniversalWeight(u.universalW))
	}
	if u.singlePrec {
		// mirrors mcpl_forcemerge_files: opt_dp only promotes the merged
		// output to double precision once some input already carries
		// double precision; it stays single-precision otherwise.
		opts = append(opts, writer.WithSinglePrecision())
	}

	return opts
}
