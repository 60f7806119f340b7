package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep_SkipsSmallAndProcessesLarge(t *testing.T) {
	dir := t.TempDir()

	small := filepath.Join(dir, "small.jpg")
	writeNoiseJPEG(t, small, 100, 100, 60) // well under 100 KB

	large := filepath.Join(dir, "sub", "large.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(large), 0755))
	writeNoiseJPEG(t, large, 1200, 1200, 100) // noise at q100, far over 100 KB

	largeBefore, err := os.Stat(large)
	require.NoError(t, err)
	require.Greater(t, largeBefore.Size(), int64(MinSweepSize))

	n := NewNormalizer(1920, 1920, SweeperQuality, testLogger())
	report, err := n.Sweep(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)

	largeAfter, err := os.Stat(large)
	require.NoError(t, err)
	assert.Less(t, largeAfter.Size(), largeBefore.Size())

	// Aggregate savings equal the delta of the one processed file
	assert.Equal(t, largeBefore.Size()-largeAfter.Size(), report.BytesSaved)

	// The skipped file reports zero savings
	for _, f := range report.Files {
		if f.Path == small {
			assert.True(t, f.Skipped)
			assert.Zero(t, f.Saved())
		}
	}
}

func TestSweep_IgnoresForeignExtensions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), make([]byte, MinSweepSize*2), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.pdf"), make([]byte, MinSweepSize*2), 0644))

	n := NewNormalizer(0, 0, SweeperQuality, testLogger())
	report, err := n.Sweep(context.Background(), dir)
	require.NoError(t, err)

	assert.Zero(t, report.Processed)
	assert.Zero(t, report.Skipped)
	assert.Empty(t, report.Files)
}

func TestSweep_ContinuesPastBadFile(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "corrupt.jpg")
	require.NoError(t, os.WriteFile(bad, make([]byte, MinSweepSize+1), 0644))

	good := filepath.Join(dir, "zgood.jpg")
	writeNoiseJPEG(t, good, 1200, 1200, 100)

	n := NewNormalizer(1920, 1920, SweeperQuality, testLogger())
	report, err := n.Sweep(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Processed)
}
