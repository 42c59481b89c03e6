package sink_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/CZERTAINLY/Rotator/internal/sink"
	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "success.log")
	require.NoError(t, os.WriteFile(path, []byte("stale: previous run\n"), 0o600))

	f, err := sink.Open(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Go(func() {
			require.NoError(t, f.Append(fmt.Sprintf("10.0.0.%d", i), "Password changed\nsuccessfully"))
		})
	}
	wg.Wait()
	require.NoError(t, f.Close())
	require.ErrorIs(t, f.Append("x", "y"), os.ErrClosed)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.Len(t, lines, 100)
	for _, l := range lines {
		require.Regexp(t, `^10\.0\.0\.\d+: Password changed successfully$`, l)
	}
}

func TestOpenSet(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	set, err := sink.OpenSet(
		filepath.Join(dir, "success.log"),
		filepath.Join(dir, "failure.log"),
		filepath.Join(dir, "badlines.log"),
	)
	require.NoError(t, err)
	require.NoError(t, set.BadLines.Append("Line 3", "Missing data: address"))
	require.NoError(t, set.Close())

	b, err := os.ReadFile(filepath.Join(dir, "badlines.log"))
	require.NoError(t, err)
	require.Equal(t, "Line 3: Missing data: address\n", string(b))

	_, err = sink.OpenSet(filepath.Join(dir, "success.log"), filepath.Join(dir, "missing", "failure.log"), filepath.Join(dir, "b.log"))
	require.Error(t, err)
}
