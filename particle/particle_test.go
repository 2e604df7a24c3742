package particle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsUnitDirection(t *testing.T) {
	p := Particle{Ekin: 1, Direction: [3]float64{0, 0, 1}, Weight: 1}
	require.NoError(t, p.Validate())
}

func TestValidateAcceptsWithinTolerance(t *testing.T) {
	p := Particle{Ekin: 1, Direction: [3]float64{0, 0, 0.999995}, Weight: 1}
	require.NoError(t, p.Validate())
}

func TestValidateRejectsNonUnitDirection(t *testing.T) {
	p := Particle{Ekin: 1, Direction: [3]float64{1, 1, 1}, Weight: 1}
	require.Error(t, p.Validate())
}

func TestValidateComparesSquaredNormNotNorm(t *testing.T) {
	// dirsq = 1.000015 sits just outside the 1e-5 squared-norm tolerance,
	// even though sqrt(1.000015) is only ~7.5e-6 away from 1 (comparing
	// the un-squared norm against the same tolerance would wrongly accept it).
	p := Particle{Ekin: 1, Direction: [3]float64{0, 0, math.Sqrt(1.000015)}, Weight: 1}
	require.Error(t, p.Validate())
}

func TestValidateRejectsNegativeEnergy(t *testing.T) {
	p := Particle{Ekin: -1, Direction: [3]float64{0, 0, 1}, Weight: 1}
	require.Error(t, p.Validate())
}
