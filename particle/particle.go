// Package particle defines the in-memory particle record (§3.1) that
// flows between reader, writer, merge, transfer, and dump: kinetic
// energy, direction, position, optional polarisation, time, weight,
// PDG code, and optional per-particle userflags.
package particle

import (
	"fmt"
	"math"

	"github.com/mctools/mcpl-go/errs"
)

// DirectionTolerance is the largest deviation of a direction vector's
// squared length from 1 allowed at add-time before it is rejected (§3.1
// edge case: "direction vectors must be unit, within a small numeric
// tolerance").
const DirectionTolerance = 1e-5

// Particle is one MCPL particle state, in the units the format defines:
// energy in MeV, length in cm, time in ms.
type Particle struct {
	Ekin float64 // kinetic energy, MeV, must be >= 0

	Direction [3]float64 // unit vector
	Position  [3]float64 // cm

	Polarisation [3]float64 // only meaningful if the file has polarisation enabled
	HasPolarisation bool

	Time   float64 // ms
	Weight float64 // dimensionless, > 0

	PdgCode int32

	UserFlags      uint32
	HasUserFlags   bool
}

// Validate checks the invariants enforced when a particle is added to a
// Writer (§3.1, §4.2): the kinetic energy must be non-negative and the
// direction must be a unit vector within DirectionTolerance.
func (p Particle) Validate() error {
	if p.Ekin < 0 {
		return fmt.Errorf("%w: kinetic energy %g is negative", errs.ErrNegativeEnergy, p.Ekin)
	}

	dirsq := p.Direction[0]*p.Direction[0] + p.Direction[1]*p.Direction[1] + p.Direction[2]*p.Direction[2]
	if math.Abs(dirsq-1) > DirectionTolerance {
		return fmt.Errorf("%w: direction vector has squared norm %g, want 1 +/- %g", errs.ErrNonUnitDirection, dirsq, DirectionTolerance)
	}

	return nil
}
