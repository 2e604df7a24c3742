package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mctools/mcpl-go/bytestream"
	"github.com/mctools/mcpl-go/dump"
	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/merge"
	"github.com/mctools/mcpl-go/reader"
	"github.com/mctools/mcpl-go/repair"
	"github.com/mctools/mcpl-go/writer"
)

func runDump(cfg config) error {
	if len(cfg.positional) != 1 {
		return fmt.Errorf("expected exactly one input file")
	}
	path := cfg.positional[0]

	if cfg.blobKey != "" {
		return dumpBlob(path, cfg.blobKey)
	}

	parts := dump.Both
	switch {
	case cfg.justHead:
		parts = dump.HeaderOnly
	case cfg.noHead:
		parts = dump.ParticlesOnly
	}

	limit := uint64(defaultDumpLimit)
	if cfg.hasLimit {
		limit = cfg.limit
	}
	skip := uint64(defaultDumpSkip)
	if cfg.hasSkip {
		skip = cfg.skip
	}

	return dump.Dump(os.Stdout, path, parts, skip, limit)
}

func dumpBlob(path, key string) error {
	r, err := reader.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	data, ok := r.Header().Blob(key)
	if !ok {
		return fmt.Errorf("no blob with key %q", key)
	}
	_, err = os.Stdout.Write(data)

	return err
}

func runMerge(cfg config) error {
	if cfg.inplace {
		if len(cfg.positional) != 2 {
			return fmt.Errorf("--merge --inplace expects exactly two files: TARGET SOURCE")
		}

		return merge.MergeInplace(cfg.positional[0], cfg.positional[1])
	}
	if len(cfg.positional) < 3 {
		return fmt.Errorf("--merge expects FILEOUT FILE1 FILE2 ...")
	}
	outPath, writePath := mergeOutputPaths(cfg.positional[0])
	if bytestream.Exists(writePath) {
		return fmt.Errorf("%w: %q", errs.ErrOutputExist, writePath)
	}

	return finishMergeOutput(writePath, outPath, merge.MergeFiles(writePath, cfg.positional[1:]))
}

func runForceMerge(cfg config) error {
	if len(cfg.positional) < 3 {
		return fmt.Errorf("--forcemerge expects FILEOUT FILE1 FILE2 ...")
	}
	outPath, writePath := mergeOutputPaths(cfg.positional[0])
	if bytestream.Exists(writePath) {
		return fmt.Errorf("%w: %q", errs.ErrOutputExist, writePath)
	}

	return finishMergeOutput(writePath, outPath, merge.ForceMerge(writePath, cfg.positional[1:], cfg.keepUserFlags))
}

// mergeOutputPaths splits a requested merge output path into the plain
// path the merge engine actually writes (outPath always writes plain
// MCPL, never gzip directly) and the final path it should end up at:
// identical unless outPath carries the ".gz" convention, in which case
// the plain file is gzipped into place afterward (§6.2).
func mergeOutputPaths(outPath string) (finalPath, writePath string) {
	if !bytestream.IsGzipPath(outPath) {
		return outPath, outPath
	}

	return outPath, strings.TrimSuffix(outPath, ".gz")
}

// finishMergeOutput gzips writePath into outPath when they differ, and
// removes whatever partial output exists on failure so a merge never
// leaves a half-written artifact behind (§7).
func finishMergeOutput(writePath, outPath string, mergeErr error) error {
	if mergeErr != nil {
		if bytestream.Exists(writePath) {
			_ = os.Remove(writePath)
		}

		return mergeErr
	}

	if writePath == outPath {
		return nil
	}

	_, err := bytestream.GzipFileInPlace(writePath)

	return err
}

func runExtract(cfg config) error {
	if len(cfg.positional) != 2 {
		return fmt.Errorf("--extract expects FILE_IN FILE_OUT")
	}
	inPath, outPath := cfg.positional[0], cfg.positional[1]

	r, err := reader.Open(inPath)
	if err != nil {
		return err
	}
	defer r.Close()

	if cfg.hasSkip {
		if err := r.SkipForward(cfg.skip); err != nil {
			return err
		}
	}

	w, err := newExtractWriter(outPath, r)
	if err != nil {
		return err
	}

	var added, limit uint64
	if cfg.hasLimit {
		limit = cfg.limit
	}
	for count := uint64(0); !cfg.hasLimit || count < limit; count++ {
		p, ok, err := r.ReadNext()
		if err != nil {
			_ = w.Close()

			return err
		}
		if !ok {
			break
		}
		if cfg.hasPdg && p.PdgCode != cfg.pdg {
			count--

			continue
		}
		if err := w.AddParticle(p); err != nil {
			_ = w.Close()

			return err
		}
		added++
	}

	if err := w.Close(); err != nil {
		return err
	}
	fmt.Printf("MCPL: Successfully extracted %d particles from %s into %s\n", added, inPath, outPath)

	return nil
}

func newExtractWriter(outPath string, r *reader.Reader) (*writer.Writer, error) {
	h := r.Header()
	var opts []writer.Option
	for _, c := range h.Comments {
		opts = append(opts, writer.WithComment(c))
	}
	for _, b := range h.Blobs {
		opts = append(opts, writer.WithBlob(b.Key, b.Data))
	}
	if h.Polarisation {
		opts = append(opts, writer.WithPolarisation())
	}
	if h.SinglePrec {
		opts = append(opts, writer.WithSinglePrecision())
	}
	if h.UserFlags {
		opts = append(opts, writer.WithUserFlags())
	}
	if h.UniversalPdg != 0 {
		opts = append(opts, writer.WithUniversalPdgCode(h.UniversalPdg))
	}
	if h.UniversalWeightSet {
		opts = append(opts, writer.WithUniversalWeight(h.UniversalWeight))
	}

	return writer.Create(outPath, h.SrcName, opts...)
}

func runRepair(cfg config) error {
	if len(cfg.positional) != 1 {
		return fmt.Errorf("--repair expects exactly one file")
	}

	res, err := repair.Repair(cfg.positional[0])
	if err != nil {
		return err
	}
	if res.Before == res.After {
		fmt.Printf("MCPL: File %s does not appear to need repair.\n", cfg.positional[0])
	} else {
		fmt.Printf("MCPL: Patched particle count in %s from %d to %d.\n", cfg.positional[0], res.Before, res.After)
	}

	return nil
}

func runText(cfg config) error {
	if len(cfg.positional) != 2 {
		return fmt.Errorf("--text expects FILE_IN FILE_OUT")
	}
	inPath, outPath := cfg.positional[0], cfg.positional[1]

	if bytestream.Exists(outPath) {
		return fmt.Errorf("%w: %q", errs.ErrOutputExist, outPath)
	}

	f, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	defer f.Close()

	return dump.ExportText(f, inPath)
}
