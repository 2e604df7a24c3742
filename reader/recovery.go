package reader

import (
	"fmt"
	"io"
	"os"

	"github.com/mctools/mcpl-go/bytestream"
	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/format"
)

// maxHeaderTrailingAdjustments bounds the number of times Open will
// shift first_particle_pos forward by one fixed-header-size increment
// while trying to make the remaining bytes divide evenly by the
// particle record size, before giving up (§3.5 edge case).
const maxHeaderTrailingAdjustments = 3

// RepairStatus mirrors the four outcomes of the original library's
// repair-probe: 0 the file is fine, 1 a gzipped file is broken but
// unrecoverable, 2 a gzipped file's brokenness cannot be determined,
// 3 a plain file is broken and its particle count is recoverable.
type RepairStatus int

const (
	StatusOK RepairStatus = iota
	StatusGzipBroken
	StatusGzipUnknown
	StatusRecoverable
)

// recoveryOutcome is what probing the particle section of a plain file
// found.
type recoveryOutcome struct {
	firstParticlePos int64
	available        uint64 // particles the file's size can actually hold
	status           RepairStatus
}

// probePlainFile seeks to the end of a plain (non-gzip) file to compute
// how many whole particle records fit after headerEnd, tolerating up to
// maxHeaderTrailingAdjustments header-sized misalignments, the way
// mcpl_actual_open_file computes "np" from (endpos - first_particle_pos)
// / particle_size.
func probePlainFile(f *os.File, headerEnd int64, particleSize uint32, declared uint64, forRepair bool) (recoveryOutcome, error) {
	info, err := f.Stat()
	if err != nil {
		return recoveryOutcome{}, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	endpos := info.Size()

	candidate := headerEnd
	var remaining int64
	accepted := false
	for attempt := 0; attempt <= maxHeaderTrailingAdjustments; attempt++ {
		remaining = endpos - candidate
		if remaining >= 0 && remaining%int64(particleSize) == 0 {
			accepted = true

			break
		}
		candidate += int64(format.HeaderFixedSize)
	}
	if !accepted {
		return recoveryOutcome{}, fmt.Errorf("%w: file size is inconsistent with its declared particle size", errs.ErrTruncatedFile)
	}

	available := uint64(remaining / int64(particleSize))

	out := recoveryOutcome{firstParticlePos: candidate, available: available}

	if declared > 0 && available < declared && !forRepair {
		return recoveryOutcome{}, fmt.Errorf("%w: header declares %d particles but file only holds %d", errs.ErrTruncatedFile, declared, available)
	}

	switch {
	case declared == 0 && available > 0:
		out.status = StatusRecoverable
	case forRepair && declared > 0 && available != declared:
		out.status = StatusRecoverable
	default:
		out.status = StatusOK
	}

	return out, nil
}

// probeGzipFile performs the reduced gzip-specific check: since gzip
// streams cannot cheaply seek to end, the best that can be done is
// peeking for any byte beyond the declared particle count when that
// count is zero, mirroring mcpl_actual_open_file's "testbuf" probe.
func probeGzipFile(st bytestream.Stream, headerEnd int64, declared uint64, forRepair bool) (RepairStatus, error) {
	if declared > 0 {
		if forRepair {
			return StatusGzipUnknown, nil
		}

		return StatusOK, nil
	}

	buf := make([]byte, 4)
	n, err := st.TryRead(buf)
	if err != nil && err != io.EOF { //nolint:errorlint
		return StatusOK, err
	}

	if err := st.Seek(headerEnd); err != nil {
		return StatusOK, err
	}

	if n == 0 {
		return StatusOK, nil
	}

	if forRepair {
		return StatusGzipBroken, nil
	}

	return StatusOK, fmt.Errorf("%w: gzipped file was not closed properly and data recovery is not supported for gzip", errs.ErrGzipNotRepairable)
}
