package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultStartTimeout = 5 * time.Second
	defaultStopTimeout  = 10 * time.Second
	killGrace           = 2 * time.Second
	pollInterval        = 50 * time.Millisecond
)

// Options configures a Controller
type Options struct {
	PIDFile      string
	Executable   string   // defaults to the running binary
	Args         []string // arguments that run the service in the foreground
	Env          []string // appended to the current environment
	LogFile      string   // child stdout and stderr, /dev/null when empty
	StartTimeout time.Duration
	StopTimeout  time.Duration
}

// Controller starts, stops and restarts a background copy of the service.
// The background process claims the PID file itself, so at most one copy runs.
type Controller struct {
	opts    Options
	pidFile *PIDFile
	logger  zerolog.Logger
}

// NewController creates a controller
func NewController(opts Options, logger zerolog.Logger) (*Controller, error) {
	if opts.PIDFile == "" {
		return nil, fmt.Errorf("pid file path is required")
	}
	if opts.Executable == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve executable: %w", err)
		}
		opts.Executable = exe
	}
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = defaultStartTimeout
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = defaultStopTimeout
	}

	return &Controller{
		opts:    opts,
		pidFile: NewPIDFile(opts.PIDFile),
		logger:  logger,
	}, nil
}

// PIDFile returns the controller's PID file
func (c *Controller) PIDFile() *PIDFile {
	return c.pidFile
}

// Status returns the PID of the running daemon, or ErrNotRunning.
func (c *Controller) Status() (int, error) {
	return c.pidFile.Running()
}

// Start launches the daemon in a new session and waits until it has claimed
// the PID file.
func (c *Controller) Start(ctx context.Context) (int, error) {
	if pid, err := c.pidFile.Running(); err == nil {
		return pid, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}

	out, err := c.openLog()
	if err != nil {
		return 0, err
	}
	defer out.Close()

	cmd := exec.Command(c.opts.Executable, c.opts.Args...)
	cmd.Env = append(os.Environ(), c.opts.Env...)
	cmd.Stdout = out
	cmd.Stderr = out
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon: %w", err)
	}
	pid := cmd.Process.Pid

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	c.logger.Debug().
		Int("pid", pid).
		Str("executable", c.opts.Executable).
		Strs("args", c.opts.Args).
		Msg("Spawned daemon process")

	deadline := time.NewTimer(c.opts.StartTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if claimed, err := c.pidFile.Read(); err == nil && claimed == pid {
			c.logger.Info().Int("pid", pid).Str("pid_file", c.opts.PIDFile).Msg("Daemon started")
			return pid, nil
		}

		select {
		case err := <-exited:
			return 0, &StartError{PID: pid, Reason: "process exited, see " + c.logName(), Err: err}
		case <-deadline.C:
			_ = kill(pid)
			return 0, &StartError{PID: pid, Reason: "pid file was not claimed in time"}
		case <-ctx.Done():
			_ = kill(pid)
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stop sends SIGTERM to the daemon and waits for it to exit, escalating to
// SIGKILL after the stop timeout. It returns ErrNotRunning when there is
// nothing to stop.
func (c *Controller) Stop(ctx context.Context) error {
	pid, err := c.pidFile.Running()
	if err != nil {
		if errors.Is(err, ErrNotRunning) {
			// clear a stale or corrupt file so the next start can claim it
			_ = c.pidFile.Remove()
		}
		return err
	}

	c.logger.Debug().Int("pid", pid).Msg("Sending SIGTERM to daemon")
	if err := terminate(pid); err != nil {
		return fmt.Errorf("failed to signal daemon (pid %d): %w", pid, err)
	}

	if !waitExit(ctx, pid, c.opts.StopTimeout) {
		c.logger.Warn().
			Int("pid", pid).
			Dur("timeout", c.opts.StopTimeout).
			Msg("Daemon did not exit after SIGTERM, sending SIGKILL")
		if err := kill(pid); err != nil {
			return fmt.Errorf("failed to kill daemon (pid %d): %w", pid, err)
		}
		if !waitExit(ctx, pid, killGrace) {
			return fmt.Errorf("daemon (pid %d) is still running", pid)
		}
	}

	if err := c.pidFile.Release(pid); err != nil {
		return err
	}

	c.logger.Info().Int("pid", pid).Msg("Daemon stopped")
	return nil
}

// Restart stops the daemon if it runs and starts it again.
func (c *Controller) Restart(ctx context.Context) (int, error) {
	if err := c.Stop(ctx); err != nil && !errors.Is(err, ErrNotRunning) {
		return 0, err
	}
	return c.Start(ctx)
}

func (c *Controller) openLog() (*os.File, error) {
	if c.opts.LogFile == "" {
		return os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	}
	f, err := os.OpenFile(c.opts.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open daemon log %s: %w", c.opts.LogFile, err)
	}
	return f, nil
}

func (c *Controller) logName() string {
	if c.opts.LogFile == "" {
		return os.DevNull
	}
	return c.opts.LogFile
}

// waitExit polls until pid is gone or timeout elapses
func waitExit(ctx context.Context, pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for processAlive(pid) {
		if time.Now().After(deadline) || ctx.Err() != nil {
			return false
		}
		time.Sleep(pollInterval)
	}
	return true
}
