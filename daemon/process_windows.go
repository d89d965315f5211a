//go:build windows

package daemon

import "os/exec"

// processAlive reports whether a process with pid exists
// Windows implementation - signal based control is not supported
func processAlive(pid int) bool {
	return false
}

// terminate asks the process to exit
// Windows implementation - returns error as not supported
func terminate(pid int) error {
	return ErrUnsupported
}

// kill forces the process to exit
// Windows implementation - returns error as not supported
func kill(pid int) error {
	return ErrUnsupported
}

// detach is a no-op on Windows; run the service under a service manager instead
func detach(cmd *exec.Cmd) {}
