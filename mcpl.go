// Package mcpl implements the Monte Carlo Particle List (MCPL) binary file
// format: a compact, platform-independent way to store and exchange lists
// of simulated particle-transport events between Monte Carlo codes.
//
// # Core Features
//
//   - Fixed-size particle records (kinetic energy, direction, position,
//     time, weight, PDG code; 68 bytes by default, the size following the
//     enabled fields) with optional polarisation and per-particle user flags
//   - Adaptive projection packing of unit vectors, minimizing wasted bits
//     while keeping decode cost low
//   - Universal PDG code / weight optimizations for single-species or
//     single-weight files
//   - Cumulative statistics carried losslessly across merges
//   - Streaming gzip write/read support and crash-safe particle counts
//
// # Basic Usage
//
// Writing particles:
//
//	import "github.com/mctools/mcpl-go"
//
//	w, _ := mcpl.Create("out.mcpl", "my-generator", mcpl.WithComment("example run"))
//	_ = w.AddParticle(particle.Particle{
//	    Ekin:      1.0,
//	    Direction: [3]float64{0, 0, 1},
//	    Weight:    1.0,
//	    PdgCode:   2112,
//	})
//	_ = w.Close()
//
// Reading particles:
//
//	r, _ := mcpl.Open("out.mcpl")
//	defer r.Close()
//	for {
//	    p, ok, err := r.ReadNext()
//	    if err != nil || !ok {
//	        break
//	    }
//	    fmt.Println(p.Ekin, p.PdgCode)
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the writer,
// reader, repair, and merge packages, covering the most common workflows.
// For advanced usage — custom writer options, stat-sum inspection, ASCII
// interchange, or the dump/forcemerge machinery — use those packages
// directly.
package mcpl

import (
	"github.com/mctools/mcpl-go/merge"
	"github.com/mctools/mcpl-go/reader"
	"github.com/mctools/mcpl-go/repair"
	"github.com/mctools/mcpl-go/writer"
)

// Option configures a Writer created by Create. See the writer package's
// With* functions (WithComment, WithBlob, WithUserFlags, WithPolarisation,
// WithSinglePrecision, WithUniversalPdgCode, WithUniversalWeight) for the
// full set.
type Option = writer.Option

// WithComment attaches a free-text comment to the file's header.
func WithComment(comment string) Option { return writer.WithComment(comment) }

// WithBlob attaches a binary blob of application-defined metadata under key.
func WithBlob(key string, data []byte) Option { return writer.WithBlob(key, data) }

// WithUserFlags enables the per-particle user-flags field.
func WithUserFlags() Option { return writer.WithUserFlags() }

// WithPolarisation enables the per-particle polarisation vector.
func WithPolarisation() Option { return writer.WithPolarisation() }

// WithSinglePrecision stores particle fields in single rather than double
// precision, halving the per-particle record size at the cost of accuracy.
func WithSinglePrecision() Option { return writer.WithSinglePrecision() }

// WithUniversalPdgCode declares that every particle in the file shares pdg,
// eliding the per-particle PDG code field from the on-disk record.
func WithUniversalPdgCode(pdg int32) Option { return writer.WithUniversalPdgCode(pdg) }

// WithUniversalWeight declares that every particle in the file shares
// weight, eliding the per-particle weight field from the on-disk record.
func WithUniversalWeight(weight float64) Option { return writer.WithUniversalWeight(weight) }

// Create opens path for writing a new MCPL file describing particles
// generated by srcName, the name of the program or simulation producing
// them. The returned Writer must be closed with Close to patch in the
// final particle count.
func Create(path, srcName string, opts ...Option) (*writer.Writer, error) {
	return writer.Create(path, srcName, opts...)
}

// Open opens path (transparently decompressing it if it is gzip-compressed)
// for sequential reading. The returned Reader must eventually be closed.
func Open(path string) (*reader.Reader, error) {
	return reader.Open(path)
}

// Repair patches the declared particle count of a file left behind by a
// writer that never reached Close, inferring the true count from the
// file's actual size. It is a no-op, returning equal Before/After counts,
// when the file already looks consistent.
func Repair(path string) (repair.Result, error) {
	return repair.Repair(path)
}

// MergeFiles concatenates the particles of inputs into a freshly created
// file at outPath, failing if any pair of inputs has an incompatible
// header (see merge.CanMerge). Cumulative statistics are summed across
// all inputs.
func MergeFiles(outPath string, inputs []string) error {
	return merge.MergeFiles(outPath, inputs)
}

// MergeInplace appends source's particles directly onto target without
// creating a new file. Both files must already share an identical header
// layout; unlike MergeFiles this does not combine cumulative statistics.
func MergeInplace(target, source string) error {
	return merge.MergeInplace(target, source)
}

// ForceMerge merges inputs into outPath the way MergeFiles does when their
// headers agree, and otherwise falls back to widening the output's feature
// set to a lossy superset of all inputs (userflags, polarisation, and the
// universal PDG code / weight optimizations). In that fallback the output
// has a per-particle user-flags field only if keepUserFlags is true and at
// least one non-empty input has one; otherwise user flags are dropped.
func ForceMerge(outPath string, inputs []string, keepUserFlags bool) error {
	return merge.ForceMerge(outPath, inputs, keepUserFlags)
}
