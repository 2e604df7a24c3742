package writer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mctools/mcpl-go/bytestream"
	"github.com/mctools/mcpl-go/errs"
	"github.com/mctools/mcpl-go/header"
	"github.com/mctools/mcpl-go/particle"
)

func TestCreateAddParticleCloseProducesReadableHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.mcpl")

	w, err := Create(path, "unit-test", WithComment("hello"), WithUserFlags())
	require.NoError(t, err)

	require.NoError(t, w.AddParticle(particle.Particle{
		Ekin: 1, Direction: [3]float64{0, 0, 1}, Weight: 1, PdgCode: 2112, UserFlags: 7,
	}))
	require.NoError(t, w.AddParticle(particle.Particle{
		Ekin: 2, Direction: [3]float64{1, 0, 0}, Weight: 1, PdgCode: 11, UserFlags: 8,
	}))
	require.NoError(t, w.Close())

	st, err := bytestream.OpenRead(path)
	require.NoError(t, err)
	defer st.Close()

	h, _, err := header.Decode(st)
	require.NoError(t, err)
	require.Equal(t, uint64(2), h.NParticles)
	require.True(t, h.UserFlags)
	require.Equal(t, []string{"hello"}, h.Comments)
}

func TestOptionMutationAfterAddParticleIsRejectedOnceFrozen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.mcpl")

	w, err := Create(path, "unit-test")
	require.NoError(t, err)
	require.NoError(t, w.AddParticle(particle.Particle{Ekin: 1, Direction: [3]float64{0, 0, 1}, Weight: 1}))

	require.Error(t, w.EnableUserFlags())
	require.NoError(t, w.Close())
}

func TestCloseWithNoParticlesStillWritesValidHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.mcpl")

	w, err := Create(path, "unit-test")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	st, err := bytestream.OpenRead(path)
	require.NoError(t, err)
	defer st.Close()

	h, _, err := header.Decode(st)
	require.NoError(t, err)
	require.Equal(t, uint64(0), h.NParticles)
}

func TestAddParticleRejectsUniversalPdgMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.mcpl")

	w, err := Create(path, "unit-test", WithUniversalPdgCode(2112))
	require.NoError(t, err)

	err = w.AddParticle(particle.Particle{Ekin: 1, Direction: [3]float64{0, 0, 1}, Weight: 1, PdgCode: 22})
	require.ErrorIs(t, err, errs.ErrUniversalPdgMismatch)
	require.NoError(t, w.Close())
}

func TestAddParticleRejectsUniversalWeightMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.mcpl")

	w, err := Create(path, "unit-test", WithUniversalWeight(1.5))
	require.NoError(t, err)

	err = w.AddParticle(particle.Particle{Ekin: 1, Direction: [3]float64{0, 0, 1}, Weight: 1, PdgCode: 2112})
	require.ErrorIs(t, err, errs.ErrUniversalWeightMismatch)
	require.NoError(t, w.Close())
}

func TestCloseAndGzipProducesGzFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.mcpl")

	w, err := Create(path, "unit-test")
	require.NoError(t, err)
	require.NoError(t, w.AddParticle(particle.Particle{Ekin: 1, Direction: [3]float64{0, 0, 1}, Weight: 1}))

	gzPath, err := w.CloseAndGzip()
	require.NoError(t, err)
	require.Equal(t, path+".gz", gzPath)
	require.True(t, bytestream.Exists(gzPath))
	require.False(t, bytestream.Exists(path))
}
