package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mctools/mcpl-go/particle"
	"github.com/mctools/mcpl-go/writer"
)

func writeTestFile(t *testing.T, path string, n int) {
	t.Helper()
	w, err := writer.Create(path, "reader-test")
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, w.AddParticle(particle.Particle{
			Ekin: float64(i + 1), Direction: [3]float64{0, 0, 1}, Weight: 1, PdgCode: 2112,
		}))
	}
	require.NoError(t, w.Close())
}

func TestOpenReadSequentially(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.mcpl")
	writeTestFile(t, path, 3)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, uint64(3), r.NParticles())

	var energies []float64
	for {
		p, ok, err := r.ReadNext()
		require.NoError(t, err)
		if !ok {
			break
		}
		energies = append(energies, p.Ekin)
	}
	require.InDeltaSlice(t, []float64{1, 2, 3}, energies, 1e-9)
}

func TestSeekAndSkipForward(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.mcpl")
	writeTestFile(t, path, 5)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Seek(2))
	p, ok, err := r.ReadNext()
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 3.0, p.Ekin, 1e-9)

	require.NoError(t, r.SkipForward(1))
	p, ok, err = r.ReadNext()
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 5.0, p.Ekin, 1e-9)

	require.NoError(t, r.Rewind())
	p, ok, err = r.ReadNext()
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 1.0, p.Ekin, 1e-9)
}

func TestOpenRecoversTruncatedParticleCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.mcpl")
	writeTestFile(t, path, 4)

	// Simulate a writer that crashed before patching nparticles.
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	require.NoError(t, err)
	_, err = f.WriteAt(make([]byte, 8), 8)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, uint64(4), r.NParticles())
}

func TestOpenForRepairReportsRecoverable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.mcpl")
	writeTestFile(t, path, 4)

	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	require.NoError(t, err)
	_, err = f.WriteAt(make([]byte, 8), 8)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, status, err := OpenForRepair(path)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, StatusRecoverable, status)
	require.Equal(t, uint64(4), r.NParticles())
}
