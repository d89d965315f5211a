package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/s0up4200/transmission-rest/api"
	"github.com/s0up4200/transmission-rest/config"
	"github.com/s0up4200/transmission-rest/daemon"
	"github.com/s0up4200/transmission-rest/filter"
	"github.com/s0up4200/transmission-rest/qbittorrent"
	"github.com/s0up4200/transmission-rest/status"
	"github.com/s0up4200/transmission-rest/transmission"
)

var servePIDFile string

// serveCmd runs the status service in the foreground
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the status service in the foreground",
	Long: `Run the HTTP status service in the foreground until interrupted.

This is the mode to use under systemd or in a container. The start command
runs it in the background with --pid-file set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePIDFile, "pid-file", "", "claim this PID file while running")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	translator, err := newTranslator(ctx)
	if err != nil {
		return err
	}

	ln, err := api.Listen(cfg.Server.Address())
	if err != nil {
		return err
	}

	if servePIDFile != "" {
		pidFile := daemon.NewPIDFile(servePIDFile)
		pid := os.Getpid()
		if err := pidFile.Claim(pid); err != nil {
			ln.Close()
			return err
		}
		defer func() {
			if err := pidFile.Release(pid); err != nil {
				logger.Warn().Err(err).Msg("Failed to release PID file")
			}
		}()
	}

	server := api.NewServer(translator, logger,
		api.WithPath(cfg.Server.Path),
		api.WithFilterCompiler(newFilterCompiler(translator.MaxRatio())),
	)
	if err := server.Serve(ctx, ln, cfg.Server.ReadHeaderTimeout); err != nil {
		return err
	}

	logger.Info().Msg("Status service stopped")
	return nil
}

// newFilterCompiler exposes the configured ratio limit to ?filter= as maxRatio()
func newFilterCompiler(maxRatio float64) filter.CachingCompiler {
	return filter.NewExprCompiler(
		filter.WithCache(filter.DefaultCacheSize),
		filter.WithCustomFunctions(map[string]any{
			"maxRatio": func() float64 { return maxRatio },
		}),
	)
}

// newTranslator builds the configured slot source and reads maxratio once
func newTranslator(ctx context.Context) (*status.Translator, error) {
	switch cfg.Source.Backend {
	case config.BackendQBittorrent:
		opts := []qbittorrent.Option{qbittorrent.WithTimeout(cfg.QBittorrent.Timeout)}
		if cfg.QBittorrent.TLSSkipVerify {
			opts = append(opts, qbittorrent.WithInsecureSkipVerify())
		}
		if cfg.QBittorrent.BasicUser != "" {
			opts = append(opts, qbittorrent.WithBasicAuth(cfg.QBittorrent.BasicUser, cfg.QBittorrent.BasicPass))
		}

		client := qbittorrent.NewClient(cfg.QBittorrent.URL, cfg.QBittorrent.Username, cfg.QBittorrent.Password, logger, opts...)
		maxRatio := client.MaxRatio(ctx)

		logger.Info().
			Str("url", cfg.QBittorrent.URL).
			Float64("maxratio", maxRatio).
			Msg("Using qBittorrent source")

		return status.NewTranslator(client, maxRatio, logger), nil

	default:
		remote, err := transmission.NewRemote(cfg.Remote.Command, cfg.Remote.Timeout, transmission.ExecRunner{}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create transmission-remote source: %w", err)
		}
		maxRatio := transmission.LoadRatioLimit(cfg.Remote.SettingsFile, logger)

		logger.Info().
			Strs("command", remote.Command()).
			Dur("timeout", cfg.Remote.Timeout).
			Float64("maxratio", maxRatio).
			Msg("Using transmission-remote source")

		return status.NewTranslator(remote, maxRatio, logger), nil
	}
}
