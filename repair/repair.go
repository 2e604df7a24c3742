// Package repair implements mcpl-tool's "fix an improperly closed
// file" operation (§4.8): patch the particle count in place after
// recomputing it from the file's actual size, refusing to touch
// gzip-compressed files since they cannot be safely modified in place.
//
// Grounded on mcpl_repair in the original library, reusing
// reader.OpenForRepair's probe instead of duplicating the recovery
// arithmetic.
package repair

import (
	"fmt"
	"io"
	"os"

	"github.com/mctools/mcpl-go/bytestream"
	"github.com/mctools/mcpl-go/endian"
	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/format"
	"github.com/mctools/mcpl-go/header"
	"github.com/mctools/mcpl-go/reader"
)

// Result reports the particle count before and after a repair.
type Result struct {
	Before uint64
	After  uint64
}

// Repair probes path and, if its declared particle count disagrees with
// what the file's size can actually hold, patches the count in place.
// It refuses gzip-compressed files outright (errs.ErrGzipNotRepairable)
// since mcpl-go never modifies a compressed file's bytes directly.
func Repair(path string) (Result, error) {
	if bytestream.IsGzipPath(path) {
		return Result{}, fmt.Errorf("%w: %q is gzip-compressed; decompress it before repairing", errs.ErrGzipNotRepairable, path)
	}

	r, status, err := reader.OpenForRepair(path)
	if err != nil {
		return Result{}, err
	}
	before := r.DeclaredNParticles()
	after := r.NParticles()
	_ = r.Close()

	if status != reader.StatusRecoverable {
		return Result{Before: before, After: after}, nil
	}

	if err := patchNParticles(path, after); err != nil {
		return Result{}, err
	}

	return Result{Before: before, After: after}, nil
}

func patchNParticles(path string, n uint64) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("%w: opening %q to patch: %v", errs.ErrIO, path, err)
	}
	defer f.Close()

	preambleBuf := make([]byte, format.PreambleSize)
	if _, err := io.ReadFull(f, preambleBuf); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	preamble, err := header.ParsePreamble(preambleBuf)
	if err != nil {
		return err
	}
	eng := endian.ForFlag(preamble.Endian)

	buf := make([]byte, format.NParticlesSize)
	eng.PutUint64(buf, n)
	if _, err := f.WriteAt(buf, format.PreambleSize); err != nil {
		return fmt.Errorf("%w: patching particle count in %q: %v", errs.ErrIO, path, err)
	}

	return nil
}
