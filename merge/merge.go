// Package merge implements MCPL's three ways of combining files (§4.7):
// a strict merge into a new output file, an in-place append into an
// existing output file, and a lossy "force" merge across files whose
// metadata disagrees. Grounded on mcpl_merge_files, mcpl_merge_inplace,
// and mcpl_forcemerge_files.
package merge

import (
	"fmt"
	"os"

	"github.com/mctools/mcpl-go/bytestream"
	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/format"
	"github.com/mctools/mcpl-go/header"
	"github.com/mctools/mcpl-go/reader"
	"github.com/mctools/mcpl-go/statsum"
	"github.com/mctools/mcpl-go/writer"
)

// errorOnDuplicatePaths rejects a file list naming the same path twice,
// mirroring mcpl_error_on_dups.
func errorOnDuplicatePaths(paths []string) error {
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if seen[p] {
			return fmt.Errorf("%w: %q is listed more than once", errs.ErrIncompatibleForMerge, p)
		}
		seen[p] = true
	}

	return nil
}

// MergeFiles merges one or more input files into a brand-new output
// file, failing if any of them is not CanMerge-compatible with the
// first, or if outPath already exists. Cumulative statistics are summed
// across every input (§3.2's stat-sum carry-through).
func MergeFiles(outPath string, inputs []string) error {
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

	for _, path := range inputs {
		r, err := reader.Open(path)
		if err != nil {
			return err
		}
		readers = append(readers, r)

		if r != readers[0] && !CanMerge(readers[0].Header(), r.Header()) {
			return fmt.Errorf("%w: %q is incompatible with %q", errs.ErrIncompatibleForMerge, path, inputs[0])
		}
	}

	w, err := newWriterFromHeader(outPath, readers[0].Header())
	if err != nil {
		return err
	}

	sums, err := w.StatSums()
	if err != nil {
		_ = w.Close()
		_ = os.Remove(outPath)

		return err
	}
	tables := make([]*statsum.Table, len(readers))
	for i, r := range readers {
		tables[i] = r.Header().StatSums
	}
	*sums = *statsum.Merge(tables...)

	var warnedOldVersion bool
	for _, r := range readers {
		var err error
		if r.Header().Version == format.VersionCurrent {
			err = copyRawParticles(r, w)
		} else {
			if !warnedOldVersion {
				warnedOldVersion = true
				reader.LogFunc("MCPL WARNING: merging files from an older MCPL format. Output will be in the latest format.")
			}
			err = copyDecodedParticles(r, w)
		}
		if err != nil {
			_ = w.Close()

			return err
		}
	}

	return w.Close()
}

// newWriterFromHeader opens outPath and configures it to match src's
// metadata (mcpl_transfer_metadata), ready to receive particles.
func newWriterFromHeader(outPath string, src *header.Header) (*writer.Writer, error) {
	opts := headerOptions(src)
	w, err := writer.Create(outPath, src.SrcName, opts...)
	if err != nil {
		return nil, err
	}
	for _, b := range src.Blobs {
		if err := w.AddBlob(b.Key, b.Data); err != nil {
			_ = w.Close()
			_ = os.Remove(outPath)

			return nil, err
		}
	}

	return w, nil
}

func headerOptions(src *header.Header) []writer.Option {
	var opts []writer.Option
	for _, c := range src.Comments {
		opts = append(opts, writer.WithComment(c))
	}
	if src.UserFlags {
		opts = append(opts, writer.WithUserFlags())
	}
	if src.Polarisation {
		opts = append(opts, writer.WithPolarisation())
	}
	if src.SinglePrec {
		opts = append(opts, writer.WithSinglePrecision())
	}
	if src.UniversalPdg != 0 {
		opts = append(opts, writer.WithUniversalPdgCode(src.UniversalPdg))
	}
	if src.UniversalWeightSet {
		opts = append(opts, writer.WithUniversalWeight(src.UniversalWeight))
	}

	return opts
}

func copyRawParticles(r *reader.Reader, w *writer.Writer) error {
	for {
		_, ok, err := r.ReadNext()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := w.AddRawParticle(r.LastRaw()); err != nil {
			return err
		}
	}
}

func copyDecodedParticles(r *reader.Reader, w *writer.Writer) error {
	for {
		p, ok, err := r.ReadNext()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := w.AddParticle(p); err != nil {
			return err
		}
	}
}
