package ipmi_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/CZERTAINLY/Rotator/internal/ipmi"
	"github.com/CZERTAINLY/Rotator/internal/limiter"
	"github.com/CZERTAINLY/Rotator/internal/model"
	"github.com/stretchr/testify/require"
)

// fakeIpmitool answers based on the -H value
const fakeIpmitool = `#!/bin/sh
host=""
prev=""
for a in "$@"; do
	if [ "$prev" = "-H" ]; then host="$a"; fi
	prev="$a"
done
case "$host" in
	ok)       echo "Set User Password command successful (user 2)" ;;
	silent)   exit 0 ;;
	badauth)  echo "Unauthorized name/password" >&2; exit 1 ;;
	nohost)   echo "Could not resolve nohost" >&2; exit 1 ;;
	weird)    echo "something odd" >&2; exit 3 ;;
	slow)     exec sleep 5 ;;
	busy)     sleep 0.2; echo "Password Set" ;;
	*)        echo "unknown host $host" >&2; exit 2 ;;
esac
`

func writeTool(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skipf("skipped, binary sh not available: %v", err)
	}
	path := filepath.Join(t.TempDir(), "ipmitool")
	require.NoError(t, os.WriteFile(path, []byte(fakeIpmitool), 0o755))
	return path
}

type observed struct {
	mx    sync.Mutex
	kinds map[string][]model.ErrorKind
}

func (o *observed) ObserveCommand(op string, kind model.ErrorKind, _ time.Duration) {
	o.mx.Lock()
	defer o.mx.Unlock()
	if o.kinds == nil {
		o.kinds = make(map[string][]model.ErrorKind)
	}
	o.kinds[op] = append(o.kinds[op], kind)
}

func TestExec(t *testing.T) {
	tool := writeTool(t)
	obs := &observed{}
	e := ipmi.NewExec(limiter.New(2)).
		WithBinary(tool).
		WithTimeout(500 * time.Millisecond).
		WithObserver(obs)

	var testCases = []struct {
		scenario string
		host     string
		then     model.ErrorKind
		message  string
	}{
		{"success", "ok", model.Success, "Password changed successfully"},
		{"exit 0 without marker", "silent", model.UnexpectedOutput, "Unexpected success output: "},
		{"unauthorized", "badauth", model.AuthenticationFailed, "Authentication failed"},
		{"dns", "nohost", model.HostUnreachable, "Host unreachable or DNS failure"},
		{"generic", "weird", model.GenericCommandError, "IPMI Error: something odd"},
		{"timeout", "slow", model.Timeout, "Timeout (command took too long)"},
	}

	for _, tt := range testCases {
		t.Run(tt.scenario, func(t *testing.T) {
			s := ipmi.Session{Interface: "lanplus", Address: tt.host, Username: "ADMIN", Password: "pw"}
			start := time.Now()
			out := e.Run(t.Context(), s.SetPassword("2", "newpw"))
			require.Equal(t, tt.then, out.Kind, "detail: %s", out.Detail)
			require.Equal(t, tt.message, out.Message())
			require.Less(t, time.Since(start), 3*time.Second)
		})
	}

	require.Len(t, obs.kinds[string(ipmi.OpSetPassword)], len(testCases))
}

func TestExec_SpawnError(t *testing.T) {
	e := ipmi.NewExec(limiter.New(1)).WithBinary(filepath.Join(t.TempDir(), "does-not-exist"))
	s := ipmi.Session{Interface: "lanplus", Address: "ok", Username: "ADMIN", Password: "pw"}
	out := e.Run(t.Context(), s.ListUsers())
	require.False(t, out.Succeeded)
	require.Equal(t, model.UnhandledError, out.Kind)
	require.ErrorIs(t, out.Err(), model.ErrUnhandled)
}

func TestExec_Limiter(t *testing.T) {
	tool := writeTool(t)
	lim := limiter.New(3)
	e := ipmi.NewExec(lim).WithBinary(tool)
	s := ipmi.Session{Interface: "lanplus", Address: "busy", Username: "ADMIN", Password: "pw"}

	var wg sync.WaitGroup
	for range 9 {
		wg.Go(func() {
			out := e.Run(t.Context(), s.SetPassword("2", "x"))
			require.True(t, out.Succeeded, out.Message())
		})
	}
	wg.Wait()

	require.LessOrEqual(t, lim.Peak(), 3)
	require.Zero(t, lim.InFlight())
}
