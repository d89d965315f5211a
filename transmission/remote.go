package transmission

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/transmission-rest/status"
)

const sourceName = "transmission-remote"

// DefaultCommand lists all torrents of the local Transmission daemon.
var DefaultCommand = []string{"transmission-remote", "--list"}

// Remote is a status.Source backed by the transmission-remote command.
type Remote struct {
	command []string
	timeout time.Duration
	runner  Runner
	logger  zerolog.Logger
}

// NewRemote creates a transmission-remote source. An empty command uses
// DefaultCommand, a nil runner uses ExecRunner and a zero timeout leaves the
// invocation unbounded.
func NewRemote(command []string, timeout time.Duration, runner Runner, logger zerolog.Logger) (*Remote, error) {
	if len(command) == 0 {
		command = DefaultCommand
	}
	if strings.TrimSpace(command[0]) == "" {
		return nil, ErrEmptyCommand
	}
	if runner == nil {
		runner = ExecRunner{}
	}

	return &Remote{
		command: append([]string(nil), command...),
		timeout: timeout,
		runner:  runner,
		logger:  logger,
	}, nil
}

// Name implements status.Source
func (r *Remote) Name() string {
	return sourceName
}

// Command returns the command line the source runs
func (r *Remote) Command() []string {
	return append([]string(nil), r.command...)
}

// Slots runs the listing command and parses its table.
func (r *Remote) Slots(ctx context.Context) ([]status.Slot, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	started := time.Now()
	output, err := r.runner.Run(ctx, r.command[0], r.command[1:]...)
	text := string(output)

	r.logger.Debug().
		Strs("command", r.command).
		Dur("elapsed", time.Since(started)).
		Int("bytes", len(output)).
		Msg("Ran status command")

	if strings.Contains(text, commandNotFoundMarker) {
		return nil, status.Unavailable(sourceName, MessageCommandNotFound, err)
	}

	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, status.Timeout(sourceName, MessageCommandTimeout, ctxErr)
		}
		if isStartFailure(err) {
			return nil, status.Unavailable(sourceName, MessageCommandNotFound, err)
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, status.Unavailable(sourceName, MessageCommandNotFound, fmt.Errorf("run %s: %w", r.command[0], err))
		}

		// The tool reports its own problems on the listing output; parse what it printed.
		r.logger.Debug().
			Int("exit_code", exitErr.ExitCode()).
			Msg("Status command exited with non-zero status")
	}

	return ParseTable(text), nil
}

func isStartFailure(err error) bool {
	return errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission)
}
