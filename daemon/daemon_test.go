//go:build !windows

package daemon

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnv = "DAEMON_TEST_HELPER_PID_FILE"

// TestMain lets the test binary act as the daemon child.
func TestMain(m *testing.M) {
	if path := os.Getenv(helperEnv); path != "" {
		runHelper(path)
		return
	}
	os.Exit(m.Run())
}

func runHelper(path string) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM)

	p := NewPIDFile(path)
	if err := p.Claim(os.Getpid()); err != nil {
		os.Exit(3)
	}
	if os.Getenv("DAEMON_TEST_HELPER_IGNORE_TERM") == "" {
		<-sigs
		_ = p.Release(os.Getpid())
		os.Exit(0)
	}
	for {
		<-sigs
	}
}

func newTestController(t *testing.T, extraEnv ...string) *Controller {
	t.Helper()

	pidPath := filepath.Join(t.TempDir(), "helper.pid")
	exe, err := os.Executable()
	require.NoError(t, err)

	c, err := NewController(Options{
		PIDFile:      pidPath,
		Executable:   exe,
		Args:         []string{"-test.run=^$"},
		Env:          append([]string{helperEnv + "=" + pidPath}, extraEnv...),
		LogFile:      filepath.Join(t.TempDir(), "helper.log"),
		StartTimeout: 10 * time.Second,
		StopTimeout:  500 * time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)

	t.Cleanup(func() {
		if pid, err := c.Status(); err == nil {
			_ = kill(pid)
		}
	})
	return c
}

func TestStartStopRestart(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t)

	_, err := c.Status()
	assert.ErrorIs(t, err, ErrNotRunning)

	pid, err := c.Start(ctx)
	require.NoError(t, err)
	assert.Greater(t, pid, 0)

	running, err := c.Status()
	require.NoError(t, err)
	assert.Equal(t, pid, running)

	// a second start is refused while the first instance holds the pid file
	_, err = c.Start(ctx)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	newPID, err := c.Restart(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, pid, newPID)
	assert.False(t, processAlive(pid))

	require.NoError(t, c.Stop(ctx))
	assert.False(t, processAlive(newPID))
	_, err = os.Stat(c.PIDFile().Path)
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, c.Stop(ctx), ErrNotRunning)
}

func TestStopEscalatesToKill(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, "DAEMON_TEST_HELPER_IGNORE_TERM=1")

	pid, err := c.Start(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Stop(ctx))
	assert.False(t, processAlive(pid))
	_, err = os.Stat(c.PIDFile().Path)
	assert.True(t, os.IsNotExist(err))
}

func TestStartChildFails(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "fail.pid")

	c, err := NewController(Options{
		PIDFile:      pidPath,
		Executable:   "/bin/sh",
		Args:         []string{"-c", "exit 4"},
		StartTimeout: 5 * time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)

	_, err = c.Start(context.Background())
	var startErr *StartError
	require.ErrorAs(t, err, &startErr)
	assert.Contains(t, startErr.Reason, "process exited")
}

func TestRestartWhenStopped(t *testing.T) {
	c := newTestController(t)

	pid, err := c.Restart(context.Background())
	require.NoError(t, err)
	assert.True(t, processAlive(pid))
	require.NoError(t, c.Stop(context.Background()))
}
