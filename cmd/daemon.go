package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s0up4200/transmission-rest/daemon"
)

// startCmd starts the background daemon
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the status service in the background",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController(cmd)
		if err != nil {
			return err
		}

		pid, err := ctrl.Start(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("transmission-rest started (pid %d), listening on %s%s\n", pid, cfg.Server.Address(), cfg.Server.Path)
		return nil
	},
}

// stopCmd stops the background daemon
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background status service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController(cmd)
		if err != nil {
			return err
		}

		if err := ctrl.Stop(cmd.Context()); err != nil {
			if errors.Is(err, daemon.ErrNotRunning) {
				fmt.Printf("transmission-rest is not running (no live process in %s)\n", cfg.Daemon.PIDFile)
				return nil
			}
			return err
		}

		fmt.Println("transmission-rest stopped")
		return nil
	},
}

// restartCmd stops then starts the background daemon
var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the background status service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController(cmd)
		if err != nil {
			return err
		}

		pid, err := ctrl.Restart(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("transmission-rest restarted (pid %d)\n", pid)
		return nil
	},
}

// newController builds a daemon controller that re-executes this binary as
// serve, forwarding the flags that shape the child's configuration
func newController(cmd *cobra.Command) (*daemon.Controller, error) {
	return daemon.NewController(daemon.Options{
		PIDFile:     cfg.Daemon.PIDFile,
		Args:        serveArgs(cmd),
		LogFile:     cfg.Daemon.LogFile,
		StopTimeout: cfg.Daemon.StopTimeout,
	}, logger)
}

func serveArgs(cmd *cobra.Command) []string {
	args := []string{"serve", "--pid-file", cfg.Daemon.PIDFile}

	if cfgFile != "" {
		path, err := filepath.Abs(cfgFile)
		if err != nil {
			path = cfgFile
		}
		args = append(args, "--config", path)
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		args = append(args, "--port", strconv.Itoa(cfg.Server.Port))
	}
	if flags.Changed("log-level") {
		args = append(args, "--log-level", cfg.Logging.Level)
	}

	return args
}
