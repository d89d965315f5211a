package transmission

import (
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/s0up4200/transmission-rest/status"
)

// DefaultSettingsPath is where transmission-daemon keeps its settings.
const DefaultSettingsPath = "/etc/transmission-daemon/settings.json"

const ratioLimitKey = "ratio-limit"

// LoadRatioLimit reads the share ratio limit from a transmission-daemon
// settings file. Any failure (missing file, no read permission, bad JSON, no
// ratio-limit key) yields status.UnknownRatio.
//
// The settings file is usually owned by the daemon user and not world
// readable because it can hold the RPC password.
func LoadRatioLimit(path string, logger zerolog.Logger) float64 {
	if path == "" {
		return status.UnknownRatio
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		logger.Debug().
			Err(err).
			Str("path", path).
			Msg("Transmission settings not readable, ratio limit unknown")
		return status.UnknownRatio
	}

	if !v.IsSet(ratioLimitKey) {
		logger.Debug().
			Str("path", path).
			Msg("Transmission settings have no ratio-limit")
		return status.UnknownRatio
	}

	limit := v.GetFloat64(ratioLimitKey)
	logger.Info().
		Float64("ratio_limit", limit).
		Str("path", path).
		Msg("Loaded ratio limit from Transmission settings")

	return limit
}
