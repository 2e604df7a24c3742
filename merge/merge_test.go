package merge

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mctools/mcpl-go/particle"
	"github.com/mctools/mcpl-go/reader"
	"github.com/mctools/mcpl-go/writer"
)

func writeFile(t *testing.T, path string, opts ...writer.Option) {
	t.Helper()
	w, err := writer.Create(path, "merge-test", opts...)
	require.NoError(t, err)
	require.NoError(t, w.AddParticle(particle.Particle{Ekin: 1, Direction: [3]float64{0, 0, 1}, Weight: 1, PdgCode: 2112}))
	require.NoError(t, w.AddParticle(particle.Particle{Ekin: 2, Direction: [3]float64{0, 1, 0}, Weight: 3, PdgCode: 11}))
	require.NoError(t, w.Close())
}

func TestMergeFilesCombinesCompatibleInputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mcpl")
	b := filepath.Join(dir, "b.mcpl")
	writeFile(t, a)
	writeFile(t, b)

	out := filepath.Join(dir, "out.mcpl")
	require.NoError(t, MergeFiles(out, []string{a, b}))

	r, err := reader.Open(out)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, uint64(4), r.NParticles())
}

func TestMergeFilesRejectsIncompatibleInputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mcpl")
	b := filepath.Join(dir, "b.mcpl")
	writeFile(t, a)
	writeFile(t, b, writer.WithUserFlags())

	out := filepath.Join(dir, "out.mcpl")
	require.Error(t, MergeFiles(out, []string{a, b}))
}

func TestMergeFilesRejectsDuplicateInput(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mcpl")
	writeFile(t, a)

	out := filepath.Join(dir, "out.mcpl")
	require.Error(t, MergeFiles(out, []string{a, a}))
}

func TestMergeInplaceAppendsIntoTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.mcpl")
	source := filepath.Join(dir, "source.mcpl")
	writeFile(t, target)
	writeFile(t, source)

	require.NoError(t, MergeInplace(target, source))

	r, err := reader.Open(target)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, uint64(4), r.NParticles())

	for i := 0; i < 4; i++ {
		_, ok, err := r.ReadNext()
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestMergeInplaceRejectsSameFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.mcpl")
	writeFile(t, target)

	require.Error(t, MergeInplace(target, target))
}

func TestMergeInplaceRejectsGzip(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.mcpl")
	sourcePlain := filepath.Join(dir, "source.mcpl")
	writeFile(t, target)

	sw, err := writer.Create(sourcePlain, "merge-test")
	require.NoError(t, err)
	require.NoError(t, sw.AddParticle(particle.Particle{Ekin: 1, Direction: [3]float64{1, 0, 0}, Weight: 1, PdgCode: 22}))
	source, err := sw.CloseAndGzip()
	require.NoError(t, err)

	require.Error(t, MergeInplace(target, source))
}

func TestForceMergeWidensUserFlagsAcrossIncompatibleInputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mcpl")
	b := filepath.Join(dir, "b.mcpl")
	writeFile(t, a)
	writeFile(t, b, writer.WithUserFlags())

	out := filepath.Join(dir, "out.mcpl")
	require.NoError(t, ForceMerge(out, []string{a, b}, true))

	r, err := reader.Open(out)
	require.NoError(t, err)
	defer r.Close()
	require.True(t, r.Header().UserFlags)
	require.Equal(t, uint64(4), r.NParticles())
}

func TestForceMergeDropsUserFlagsWhenNotKept(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mcpl")
	b := filepath.Join(dir, "b.mcpl")
	writeFile(t, a)
	writeFile(t, b, writer.WithUserFlags())

	out := filepath.Join(dir, "out.mcpl")
	require.NoError(t, ForceMerge(out, []string{a, b}, false))

	r, err := reader.Open(out)
	require.NoError(t, err)
	defer r.Close()
	require.False(t, r.Header().UserFlags)
}

func TestForceMergeKeepsSinglePrecisionWhenAllInputsAre(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mcpl")
	b := filepath.Join(dir, "b.mcpl")
	writeFile(t, a, writer.WithUserFlags(), writer.WithSinglePrecision())
	writeFile(t, b, writer.WithSinglePrecision())

	out := filepath.Join(dir, "out.mcpl")
	require.NoError(t, ForceMerge(out, []string{a, b}, true))

	r, err := reader.Open(out)
	require.NoError(t, err)
	defer r.Close()
	require.True(t, r.Header().SinglePrec)
}

func TestForceMergePromotesToDoublePrecisionWhenAnyInputIs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mcpl")
	b := filepath.Join(dir, "b.mcpl")
	writeFile(t, a, writer.WithUserFlags(), writer.WithSinglePrecision())
	writeFile(t, b)

	out := filepath.Join(dir, "out.mcpl")
	require.NoError(t, ForceMerge(out, []string{a, b}, true))

	r, err := reader.Open(out)
	require.NoError(t, err)
	defer r.Close()
	require.False(t, r.Header().SinglePrec)
}

func TestForceMergeFallsBackToMergeFilesWhenAllCompatible(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mcpl")
	b := filepath.Join(dir, "b.mcpl")
	writeFile(t, a)
	writeFile(t, b)

	out := filepath.Join(dir, "out.mcpl")
	require.NoError(t, ForceMerge(out, []string{a, b}, true))

	r, err := reader.Open(out)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, uint64(4), r.NParticles())
}
