package transfer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/particle"
	"github.com/mctools/mcpl-go/reader"
	"github.com/mctools/mcpl-go/writer"
)

func TestTransferLastReadFastPathSameLayout(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.mcpl")

	sw, err := writer.Create(srcPath, "transfer-test")
	require.NoError(t, err)
	require.NoError(t, sw.AddParticle(particle.Particle{Ekin: 5, Direction: [3]float64{0, 1, 0}, Weight: 2, PdgCode: 11}))
	require.NoError(t, sw.Close())

	r, err := reader.Open(srcPath)
	require.NoError(t, err)
	defer r.Close()

	_, ok, err := r.ReadNext()
	require.NoError(t, err)
	require.True(t, ok)

	dstPath := filepath.Join(dir, "dst.mcpl")
	dw, err := writer.Create(dstPath, "transfer-test")
	require.NoError(t, err)
	require.NoError(t, TransferLastRead(r, dw))
	require.NoError(t, dw.Close())

	r2, err := reader.Open(dstPath)
	require.NoError(t, err)
	defer r2.Close()
	require.Equal(t, uint64(1), r2.NParticles())
	p2, ok, err := r2.ReadNext()
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 5.0, p2.Ekin, 1e-9)
	require.Equal(t, int32(11), p2.PdgCode)
}

func TestTransferLastReadSlowPathDropsPolarisationWhenUnsupported(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.mcpl")

	sw, err := writer.Create(srcPath, "transfer-test", writer.WithPolarisation())
	require.NoError(t, err)
	require.NoError(t, sw.AddParticle(particle.Particle{
		Ekin: 1, Direction: [3]float64{0, 0, 1}, Weight: 1, Polarisation: [3]float64{1, 0, 0},
	}))
	require.NoError(t, sw.Close())

	r, err := reader.Open(srcPath)
	require.NoError(t, err)
	defer r.Close()
	_, ok, err := r.ReadNext()
	require.NoError(t, err)
	require.True(t, ok)

	dstPath := filepath.Join(dir, "dst.mcpl")
	dw, err := writer.Create(dstPath, "transfer-test")
	require.NoError(t, err)
	require.NoError(t, TransferLastRead(r, dw))
	require.NoError(t, dw.Close())

	r2, err := reader.Open(dstPath)
	require.NoError(t, err)
	defer r2.Close()
	require.False(t, r2.Header().Polarisation)
}

func TestTransferLastReadSlowPathRejectsUniversalPdgMismatch(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.mcpl")

	sw, err := writer.Create(srcPath, "transfer-test")
	require.NoError(t, err)
	require.NoError(t, sw.AddParticle(particle.Particle{
		Ekin: 1, Direction: [3]float64{0, 0, 1}, Weight: 1, PdgCode: 22,
	}))
	require.NoError(t, sw.Close())

	r, err := reader.Open(srcPath)
	require.NoError(t, err)
	defer r.Close()
	_, ok, err := r.ReadNext()
	require.NoError(t, err)
	require.True(t, ok)

	dstPath := filepath.Join(dir, "dst.mcpl")
	dw, err := writer.Create(dstPath, "transfer-test", writer.WithUniversalPdgCode(2112))
	require.NoError(t, err)

	err = TransferLastRead(r, dw)
	require.ErrorIs(t, err, errs.ErrUniversalPdgMismatch)
	require.NoError(t, dw.Close())
}

func TestTransferLastReadErrorsWithoutAPriorRead(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.mcpl")
	sw, err := writer.Create(srcPath, "transfer-test")
	require.NoError(t, err)
	require.NoError(t, sw.Close())

	r, err := reader.Open(srcPath)
	require.NoError(t, err)
	defer r.Close()

	dw, err := writer.Create(filepath.Join(dir, "dst.mcpl"), "transfer-test")
	require.NoError(t, err)
	require.Error(t, TransferLastRead(r, dw))
}
