package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/spf13/viper"
	"github.com/yaklabco/stitch/pkg/env"
)

// Settings holds the tool-level Stitch configuration: how stitch itself
// behaves, as opposed to what a project builds (see Project).
type Settings struct {
	// Debug enables debug messages and debug build defaults.
	Debug bool `mapstructure:"debug"`

	// Verbose echoes every command the exec engine runs.
	Verbose bool `mapstructure:"verbose"`

	// DryRun prints engine commands instead of executing them.
	DryRun bool `mapstructure:"dryrun"`

	// EnableColor enables colored output in terminal.
	EnableColor bool `mapstructure:"enable_color"`

	// AccentColor is the ANSI color name used for report headers.
	AccentColor string `mapstructure:"accent_color"`

	// ReportWidth wraps build reports at this column. Zero means the
	// terminal width.
	ReportWidth int `mapstructure:"report_width"`

	// TSConfig is the default path of the type-checking configuration file.
	TSConfig string `mapstructure:"tsconfig"`

	// configFile is the path to the config file that was loaded (if any).
	configFile string
}

// ConfigFile returns the path to the configuration file that was loaded,
// or an empty string if no file was loaded.
func (s *Settings) ConfigFile() string {
	return s.configFile
}

// globalSettings holds the singleton global configuration.
//
//nolint:gochecknoglobals // singleton pattern requires package-level state
var (
	globalSettings       *Settings
	globalSettingsLoaded bool
	globalSettingsMu     sync.RWMutex
)

// Global returns the global settings singleton.
// It loads the settings on first access.
func Global() *Settings {
	globalSettingsMu.RLock()
	if globalSettingsLoaded {
		s := globalSettings
		globalSettingsMu.RUnlock()
		return s
	}
	globalSettingsMu.RUnlock()

	globalSettingsMu.Lock()
	defer globalSettingsMu.Unlock()

	// Double-check after acquiring write lock
	if globalSettingsLoaded {
		return globalSettings
	}

	s, err := Load(nil)
	if err != nil {
		// Fall back to defaults on error
		s = DefaultSettings()
	}
	globalSettings = s
	globalSettingsLoaded = true
	return globalSettings
}

// SetGlobal sets the global settings.
// This is primarily useful for testing.
func SetGlobal(s *Settings) {
	globalSettingsMu.Lock()
	defer globalSettingsMu.Unlock()
	globalSettings = s
	globalSettingsLoaded = true
}

// ResetGlobal resets the global settings to be reloaded on next access.
// This is primarily useful for testing.
func ResetGlobal() {
	globalSettingsMu.Lock()
	defer globalSettingsMu.Unlock()
	globalSettings = nil
	globalSettingsLoaded = false
}

// LoadOptions configures how settings are loaded.
type LoadOptions struct {
	// Stderr is where warnings are written.
	// If nil, os.Stderr is used.
	Stderr io.Writer

	// SkipUserConfig skips loading user-level configuration.
	SkipUserConfig bool

	// SkipEnv skips reading environment variables.
	SkipEnv bool
}

// Load reads settings from all sources and returns a Settings struct.
// Sources are applied in the following order (later sources override earlier):
//  1. Defaults
//  2. User config file (~/.config/stitch/config.yaml)
//  3. Environment variables (STITCH_*)
//
// If opts is nil, default options are used.
func Load(opts *LoadOptions) (*Settings, error) {
	if opts == nil {
		opts = &LoadOptions{}
	}

	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	viperInstance := viper.New()

	setDefaults(viperInstance)
	viperInstance.SetConfigType("yaml")

	var configFileUsed string

	if !opts.SkipUserConfig {
		paths := ResolveXDGPaths()
		viperInstance.SetConfigName(ConfigFileName)
		viperInstance.AddConfigPath(paths.ConfigDir())

		if err := viperInstance.ReadInConfig(); err != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFoundError) {
				return nil, fmt.Errorf("failed to read user config file: %w", err)
			}
		} else {
			configFileUsed = viperInstance.ConfigFileUsed()
		}
	}

	var settings Settings
	if err := viperInstance.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if !opts.SkipEnv {
		applyEnvironmentOverrides(&settings, opts.Stderr)
	}

	settings.configFile = configFileUsed

	result := settings.Validate()
	if result.HasWarnings() {
		result.WriteWarnings(opts.Stderr)
	}
	if result.HasErrors() {
		return nil, errors.New(result.ErrorMessage())
	}

	return &settings, nil
}

// applyEnvironmentOverrides applies environment variable overrides.
// Environment variables take precedence over config file values.
func applyEnvironmentOverrides(settings *Settings, stderr io.Writer) {
	boolVar := func(name string, dst *bool) {
		raw, ok := os.LookupEnv(name)
		if !ok || raw == "" {
			return
		}
		v, err := env.ParseBool(raw)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "config warning: %s: %v\n", name, err)
			return
		}
		*dst = v
	}

	boolVar(EnvDebug, &settings.Debug)
	boolVar(EnvVerbose, &settings.Verbose)
	boolVar(EnvDryRun, &settings.DryRun)
	boolVar(EnvEnableColor, &settings.EnableColor)

	if v := os.Getenv(EnvAccentColor); v != "" {
		settings.AccentColor = v
	}
	if v := os.Getenv(EnvTSConfig); v != "" {
		settings.TSConfig = v
	}
	if v := os.Getenv(EnvReportWidth); v != "" {
		width, err := strconv.Atoi(v)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "config warning: %s: %v\n", EnvReportWidth, err)
		} else {
			settings.ReportWidth = width
		}
	}
}

// DefaultSettings returns Settings with all default values.
func DefaultSettings() *Settings {
	return &Settings{
		Debug:       DefaultDebug,
		Verbose:     DefaultVerbose,
		DryRun:      DefaultDryRun,
		EnableColor: DefaultEnableColor,
		AccentColor: DefaultAccentColor,
		ReportWidth: DefaultReportWidth,
		TSConfig:    DefaultTSConfig,
	}
}

// WriteDefaultConfig writes a default configuration file to the user's config directory.
func WriteDefaultConfig() (string, error) {
	paths := ResolveXDGPaths()
	configDir := paths.ConfigDir()

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := paths.ConfigFilePath()

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigYAML()), 0o600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}

// defaultConfigYAML returns the default configuration as YAML.
func defaultConfigYAML() string {
	return `# Stitch Configuration

# Enable debug messages and debug build defaults (inline source maps).
debug: false

# Echo every command the exec engine runs.
verbose: false

# Print engine commands instead of executing them.
dryrun: false

# Enable colored output in terminal.
enable_color: false

# ANSI color for report headers.
# Options: Black, Red, Green, Yellow, Blue, Magenta, Cyan, White,
#          BrightBlack, BrightRed, BrightGreen, BrightYellow,
#          BrightBlue, BrightMagenta, BrightCyan, BrightWhite
accent_color: Cyan

# Wrap build reports at this column (0 = terminal width).
report_width: 0

# Default path of the type-checking configuration file.
tsconfig: tsconfig.json
`
}
