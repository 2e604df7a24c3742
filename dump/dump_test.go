package dump

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mctools/mcpl-go/particle"
	"github.com/mctools/mcpl-go/reader"
	"github.com/mctools/mcpl-go/writer"
)

func writeSample(t *testing.T, path string) {
	t.Helper()
	w, err := writer.Create(path, "dump-test", writer.WithComment("a test file"))
	require.NoError(t, err)
	require.NoError(t, w.AddParticle(particle.Particle{Ekin: 1.5, Direction: [3]float64{0, 0, 1}, Weight: 2, PdgCode: 2112}))
	require.NoError(t, w.AddParticle(particle.Particle{Ekin: 3.5, Direction: [3]float64{1, 0, 0}, Weight: 4, PdgCode: 22}))
	require.NoError(t, w.Close())
}

func TestDumpPrintsHeaderAndParticles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.mcpl")
	writeSample(t, path)

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, path, Both, 0, 0))

	out := buf.String()
	require.Contains(t, out, "No. of particles   : 2")
	require.Contains(t, out, "dump-test")
	require.Contains(t, out, "2112")
	require.Contains(t, out, "22")
}

func TestDumpParticlesRespectsSkipAndLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.mcpl")
	writeSample(t, path)

	r, err := reader.Open(path)
	require.NoError(t, err)
	defer r.Close()

	var buf bytes.Buffer
	require.NoError(t, DumpParticles(&buf, r, 1, 1, nil))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "22")
}

func TestExportImportTextRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.mcpl")
	writeSample(t, path)

	var buf bytes.Buffer
	require.NoError(t, ExportText(&buf, path))
	require.Contains(t, buf.String(), asciiMagic)
	require.Contains(t, buf.String(), "#COMMENT: a test file")

	outPath := filepath.Join(dir, "roundtrip.mcpl")
	require.NoError(t, ImportText(&buf, outPath, "dump-test"))

	r, err := reader.Open(outPath)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, uint64(2), r.NParticles())

	p, ok, err := r.ReadNext()
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 1.5, p.Ekin, 1e-12)
	require.Equal(t, int32(2112), p.PdgCode)
}
