package transmission

import (
	"context"
	"os/exec"
	"time"
)

// waitDelay bounds how long output is still read after the context kills the
// command, so a grandchild holding the pipe open cannot block the request.
const waitDelay = time.Second

// Runner executes a command and returns its combined stdout and stderr.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	return cmd.CombinedOutput()
}
