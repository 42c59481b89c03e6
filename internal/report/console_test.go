package report_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/CZERTAINLY/Rotator/internal/model"
	"github.com/CZERTAINLY/Rotator/internal/report"
	"github.com/stretchr/testify/require"
)

func TestConsole(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	c := report.NewConsole(&buf, false)

	c.Success("10.0.0.5", "Password changed successfully")
	c.Warnf("Retry %s admin account after failure: %s", "10.0.0.6", "Authentication failed")
	c.Summary(1, []model.RowOutcome{{Address: "10.0.0.6", Message: "Authentication failed"}})

	require.Equal(t, `[+] Success on 10.0.0.5: Password changed successfully
[!] Retry 10.0.0.6 admin account after failure: Authentication failed

--- SUMMARY ---
Successful changes: 1
Failures: 1

Failed IPs:
10.0.0.6: Authentication failed
`, buf.String())
}

func TestConsole_Colored(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	report.NewConsole(&buf, true).Failure("h", "boom")
	require.True(t, strings.HasPrefix(buf.String(), "\x1b[91m"), "%q", buf.String())
	require.True(t, strings.HasSuffix(buf.String(), "\x1b[0m\n"), "%q", buf.String())
}

func TestConsole_Lines(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	c := report.NewConsole(&buf, false)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() { c.Failure("10.0.0.1", strings.Repeat("x", 200)) })
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 50)
	for _, l := range lines {
		require.Equal(t, "[-] Failure on 10.0.0.1: "+strings.Repeat("x", 200), l)
	}
}
