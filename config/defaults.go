package config

import (
	"github.com/spf13/viper"
)

// Default settings values.
const (
	// DefaultDebug is the default debug setting.
	DefaultDebug = false

	// DefaultVerbose is the default verbose setting.
	DefaultVerbose = false

	// DefaultDryRun is the default dryrun setting.
	DefaultDryRun = false

	// DefaultEnableColor is the default color output setting.
	DefaultEnableColor = false

	// DefaultAccentColor is the default ANSI color for report headers.
	DefaultAccentColor = "Cyan"

	// DefaultReportWidth wraps reports at the terminal width.
	DefaultReportWidth = 0

	// DefaultTSConfig is the default type-checking configuration path.
	DefaultTSConfig = "tsconfig.json"
)

// Environment variables that override settings.
const (
	EnvDebug       = "STITCH_DEBUG"
	EnvVerbose     = "STITCH_VERBOSE"
	EnvDryRun      = "STITCH_DRYRUN"
	EnvEnableColor = "STITCH_ENABLE_COLOR"
	EnvAccentColor = "STITCH_ACCENT_COLOR"
	EnvReportWidth = "STITCH_REPORT_WIDTH"
	EnvTSConfig    = "STITCH_TSCONFIG"
)

// setDefaults configures default values in the viper instance.
func setDefaults(viperInstance *viper.Viper) {
	viperInstance.SetDefault("debug", DefaultDebug)
	viperInstance.SetDefault("verbose", DefaultVerbose)
	viperInstance.SetDefault("dryrun", DefaultDryRun)
	viperInstance.SetDefault("enable_color", DefaultEnableColor)
	viperInstance.SetDefault("accent_color", DefaultAccentColor)
	viperInstance.SetDefault("report_width", DefaultReportWidth)
	viperInstance.SetDefault("tsconfig", DefaultTSConfig)
}
