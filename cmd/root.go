package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/transmission-rest/config"
)

var (
	cfgFile string
	v       = config.New()
	cfg     *config.Config
	logger  zerolog.Logger

	version   = "dev"
	buildTime = "unknown"
)

var errUsage = errors.New("usage: transmission-rest start|stop|restart")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "transmission-rest",
	Short: "Serve the transmission-remote torrent list as JSON",
	Long: `transmission-rest runs transmission-remote --list on every request and
returns the torrent slots as a JSON document for dashboards and pollers.

Use start, stop and restart to control the background daemon, or serve to
run in the foreground under a process supervisor.`,
	PersistentPreRunE: initializeApp,
	SilenceErrors:     true,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = cmd.Usage()
		return errUsage
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion records build information for the version and update commands.
func SetVersion(ver, built string) {
	version = ver
	buildTime = built
	rootCmd.Version = ver
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().Int("port", 8000, "port to listen on")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	_ = v.BindPFlag("server.port", rootCmd.PersistentFlags().Lookup("port"))
	_ = v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp loads the configuration and sets up the logger
func initializeApp(cmd *cobra.Command, args []string) error {
	// arguments parsed; errors from here on are not usage errors
	cmd.SilenceUsage = true

	var err error
	cfg, err = config.Load(v, cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)
	logger.Debug().Str("config", v.ConfigFileUsed()).Msg("Configuration loaded")

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, colored only on a terminal
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
