package merge

import (
	"fmt"

	"github.com/mctools/mcpl-go/bytestream"
	"github.com/mctools/mcpl-go/endian"
	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/format"
	"github.com/mctools/mcpl-go/reader"
)

// MergeInplace appends source's particles directly onto target, without
// creating a new file, mirroring mcpl_merge_inplace. nparticles is
// zeroed for the duration of the transfer so a crash mid-merge leaves
// target in an obviously-unfinished, repairable state (§4.7, §9 crash
// safety) rather than silently wrong.
//
// Cumulative statistics are not combined by this path: the stat-sum
// table is carried as a header comment ahead of the particle section,
// and rewriting it in place would shift every existing particle record.
// Use MergeFiles when the merged output's statistics matter.
func MergeInplace(target, source string) error {
	same, err := bytestream.SameFile(target, source)
	if err != nil {
		return err
	}
	if same {
		return fmt.Errorf("%w: %q", errs.ErrSameFile, target)
	}
	if bytestream.IsGzipPath(target) || bytestream.IsGzipPath(source) {
		return fmt.Errorf("%w", errs.ErrGzipNotRepairable)
	}

	tr, err := reader.Open(target)
	if err != nil {
		return err
	}
	defer tr.Close()

	sr, err := reader.Open(source)
	if err != nil {
		return err
	}
	defer sr.Close()

	if !CanMerge(tr.Header(), sr.Header()) {
		return fmt.Errorf("%w: %q is incompatible with %q", errs.ErrIncompatibleForMerge, source, target)
	}
	if tr.Header().Version != sr.Header().Version {
		return fmt.Errorf("%w: %q and %q are different MCPL format versions", errs.ErrIncompatibleForMerge, target, source)
	}

	np2 := sr.NParticles()
	if np2 == 0 {
		return nil
	}
	np1 := tr.NParticles()

	st, err := bytestream.OpenReadWrite(target)
	if err != nil {
		return err
	}
	defer st.Close()

	eng := endian.ForFlag(tr.Header().Endian)
	particleSize := int64(tr.Header().ParticleSize())

	appendPos := tr.FirstParticlePos() + particleSize*int64(np1)
	if err := st.Seek(appendPos); err != nil {
		return err
	}

	if err := patchNParticlesAt(st, eng, 0); err != nil {
		return err
	}

	for {
		_, ok, rerr := sr.ReadNext()
		if rerr != nil {
			return rerr
		}
		if !ok {
			break
		}
		if err := st.Write(sr.LastRaw()); err != nil {
			return err
		}
	}

	return patchNParticlesAt(st, eng, np1+np2)
}

func patchNParticlesAt(st bytestream.Stream, eng endian.EndianEngine, n uint64) error {
	buf := make([]byte, format.NParticlesSize)
	eng.PutUint64(buf, n)

	pos, err := st.Tell()
	if err != nil {
		return err
	}
	if err := st.Seek(int64(format.PreambleSize)); err != nil {
		return err
	}
	if err := st.Write(buf); err != nil {
		return err
	}

	return st.Seek(pos)
}
