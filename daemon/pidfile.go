package daemon

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PIDFile is a file holding the PID of the running daemon.
type PIDFile struct {
	Path string
}

// NewPIDFile returns a PIDFile at path
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{Path: path}
}

// Read returns the PID stored in the file.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("read pid file %s: %w", p.Path, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("pid file %s holds no valid pid: %q", p.Path, strings.TrimSpace(string(data)))
	}
	return pid, nil
}

// Running returns the PID of the live process named by the file. A missing
// file, a corrupt file or a dead process yields ErrNotRunning.
func (p *PIDFile) Running() (int, error) {
	pid, err := p.Read()
	if err != nil {
		if errors.Is(err, ErrNotRunning) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	if !processAlive(pid) {
		return 0, ErrNotRunning
	}
	return pid, nil
}

// Claim writes pid into the file with an exclusive create so only one process
// can hold it. A file naming a dead process is stale and replaced.
func (p *PIDFile) Claim(pid int) error {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(p.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", pid)
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(p.Path)
				return fmt.Errorf("write pid file %s: %w", p.Path, errors.Join(werr, cerr))
			}
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("create pid file %s: %w", p.Path, err)
		}

		existing, runErr := p.Running()
		if runErr == nil {
			if existing == pid {
				return nil
			}
			return fmt.Errorf("%w (pid %d, pid file %s)", ErrAlreadyRunning, existing, p.Path)
		}

		if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove stale pid file %s: %w", p.Path, err)
		}
	}

	return fmt.Errorf("%w: pid file %s was claimed concurrently", ErrAlreadyRunning, p.Path)
}

// Release removes the file if it still names pid.
func (p *PIDFile) Release(pid int) error {
	current, err := p.Read()
	if err != nil {
		if errors.Is(err, ErrNotRunning) {
			return nil
		}
		return err
	}
	if current != pid {
		return nil
	}
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove pid file %s: %w", p.Path, err)
	}
	return nil
}

// Remove deletes the file unconditionally.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove pid file %s: %w", p.Path, err)
	}
	return nil
}
