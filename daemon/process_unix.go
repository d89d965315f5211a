//go:build !windows

package daemon

import (
	"errors"
	"os/exec"
	"syscall"
)

// processAlive reports whether a process with pid exists
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// terminate asks the process to exit
func terminate(pid int) error {
	return ignoreGone(syscall.Kill(pid, syscall.SIGTERM))
}

// kill forces the process to exit
func kill(pid int) error {
	return ignoreGone(syscall.Kill(pid, syscall.SIGKILL))
}

func ignoreGone(err error) error {
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// detach runs cmd in its own session so it outlives the controlling terminal
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
