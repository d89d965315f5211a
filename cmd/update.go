package cmd

import (
	"fmt"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/s0up4200/transmission-rest/daemon"
)

const repositorySlug = "s0up4200/transmission-rest"

// updateCmd replaces the running binary with the latest GitHub release
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update transmission-rest to the latest release",
	Args:  cobra.NoArgs,
	RunE:  runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	current, err := semver.ParseTolerant(version)
	if err != nil {
		return fmt.Errorf("cannot update a development build (version %q)", version)
	}

	ctx := cmd.Context()
	logger.Debug().Str("repository", repositorySlug).Msg("Checking for updates")

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repositorySlug))
	if err != nil {
		return fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", repositorySlug)
	}

	if latest.LessOrEqual(current.String()) {
		fmt.Printf("Already up to date (%s)\n", current)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Printf("Updated to %s\n", latest.Version())
	if pid, err := daemon.NewPIDFile(cfg.Daemon.PIDFile).Running(); err == nil {
		fmt.Printf("The daemon (pid %d) still runs the old version, run 'transmission-rest restart'\n", pid)
	}
	return nil
}
