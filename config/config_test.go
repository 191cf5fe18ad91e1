package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestXDGPaths_ConfigDir(t *testing.T) {
	paths := ResolveXDGPaths()
	configDir := paths.ConfigDir()

	if filepath.Base(configDir) != AppName {
		t.Errorf("ConfigDir should end with %q, got %q", AppName, filepath.Base(configDir))
	}
	if filepath.Base(paths.ConfigFilePath()) != ConfigFileName+".yaml" {
		t.Errorf("ConfigFilePath = %q, want a %s.yaml file", paths.ConfigFilePath(), ConfigFileName)
	}
}

func TestXDGConfigHomeOverride(t *testing.T) {
	testDir := "/custom/config/path"
	t.Setenv("XDG_CONFIG_HOME", testDir)

	paths := ResolveXDGPaths()
	if paths.ConfigHome != testDir {
		t.Errorf("Expected ConfigHome to be %q, got %q", testDir, paths.ConfigHome)
	}
}

func TestLoad_Defaults(t *testing.T) {
	ResetGlobal()

	settings, err := Load(&LoadOptions{
		SkipUserConfig: true,
		SkipEnv:        true,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if settings.Debug != DefaultDebug {
		t.Errorf("Debug = %v, want %v", settings.Debug, DefaultDebug)
	}
	if settings.Verbose != DefaultVerbose {
		t.Errorf("Verbose = %v, want %v", settings.Verbose, DefaultVerbose)
	}
	if settings.AccentColor != DefaultAccentColor {
		t.Errorf("AccentColor = %q, want %q", settings.AccentColor, DefaultAccentColor)
	}
	if settings.TSConfig != DefaultTSConfig {
		t.Errorf("TSConfig = %q, want %q", settings.TSConfig, DefaultTSConfig)
	}
	if settings.ConfigFile() != "" {
		t.Errorf("ConfigFile = %q, want empty", settings.ConfigFile())
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	ResetGlobal()

	t.Setenv(EnvVerbose, "true")
	t.Setenv(EnvDebug, "1")
	t.Setenv(EnvTSConfig, "tsconfig.build.json")
	t.Setenv(EnvReportWidth, "100")

	settings, err := Load(&LoadOptions{SkipUserConfig: true})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !settings.Verbose {
		t.Error("Verbose should be true from STITCH_VERBOSE")
	}
	if !settings.Debug {
		t.Error("Debug should be true from STITCH_DEBUG")
	}
	if settings.TSConfig != "tsconfig.build.json" {
		t.Errorf("TSConfig = %q, want %q", settings.TSConfig, "tsconfig.build.json")
	}
	if settings.ReportWidth != 100 {
		t.Errorf("ReportWidth = %d, want 100", settings.ReportWidth)
	}
}

func TestLoad_InvalidEnvironmentValueWarns(t *testing.T) {
	t.Setenv(EnvDebug, "maybe")

	var stderr bytes.Buffer
	settings, err := Load(&LoadOptions{SkipUserConfig: true, Stderr: &stderr})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.Debug {
		t.Error("Debug should keep its default for an unparsable value")
	}
	if !strings.Contains(stderr.String(), EnvDebug) {
		t.Errorf("expected a warning naming %s, got %q", EnvDebug, stderr.String())
	}
}

func TestLoad_UserConfig(t *testing.T) {
	ResetGlobal()

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	dir := filepath.Join(home, AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `
verbose: true
accent_color: Red
report_width: 120
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	settings, err := Load(&LoadOptions{SkipEnv: true})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !settings.Verbose {
		t.Error("Verbose should be true from user config")
	}
	if settings.AccentColor != "Red" {
		t.Errorf("AccentColor = %q, want %q", settings.AccentColor, "Red")
	}
	if settings.ReportWidth != 120 {
		t.Errorf("ReportWidth = %d, want 120", settings.ReportWidth)
	}
	if settings.ConfigFile() == "" {
		t.Error("ConfigFile should name the loaded file")
	}
}

func TestLoad_InvalidUserConfigFails(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	dir := filepath.Join(home, AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("accent_color: Mauve\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(&LoadOptions{SkipEnv: true}); err == nil {
		t.Error("expected an error for an invalid accent color")
	}
}

func TestSettings_Validate_ValidColors(t *testing.T) {
	validColors := []string{
		"Black", "Red", "Green", "Yellow", "Blue", "Magenta", "Cyan", "White",
		"BrightBlack", "BrightRed", "BrightGreen", "BrightYellow",
		"BrightBlue", "BrightMagenta", "BrightCyan", "BrightWhite",
		"black", "red", "CYAN", // case insensitive
	}

	for _, color := range validColors {
		s := &Settings{AccentColor: color, TSConfig: DefaultTSConfig}
		result := s.Validate()
		if result.HasErrors() {
			t.Errorf("Color %q should be valid, got error: %s", color, result.ErrorMessage())
		}
	}
}

func TestSettings_Validate_ReportWidth(t *testing.T) {
	s := &Settings{ReportWidth: -1, TSConfig: DefaultTSConfig}
	if !s.Validate().HasErrors() {
		t.Error("Expected validation error for a negative report width")
	}

	s = &Settings{ReportWidth: 10, TSConfig: DefaultTSConfig}
	result := s.Validate()
	if result.HasErrors() || !result.HasWarnings() {
		t.Errorf("Expected only a warning for a narrow report width, got %+v", result)
	}
}

func TestSettings_Validate_EmptyTSConfig(t *testing.T) {
	s := &Settings{}
	result := s.Validate()
	if !result.HasWarnings() {
		t.Error("Expected a warning for an empty tsconfig")
	}
	if s.TSConfig != DefaultTSConfig {
		t.Errorf("TSConfig = %q, want %q", s.TSConfig, DefaultTSConfig)
	}
}

func TestGlobal_Singleton(t *testing.T) {
	ResetGlobal()

	s1 := Global()
	s2 := Global()

	if s1 != s2 {
		t.Error("Global() should return the same instance")
	}
}

func TestSetGlobal(t *testing.T) {
	ResetGlobal()

	custom := &Settings{Verbose: true}
	SetGlobal(custom)

	if Global() != custom {
		t.Error("SetGlobal should set the global settings")
	}

	ResetGlobal()
}

func TestWriteDefaultConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := WriteDefaultConfig()
	if err != nil {
		t.Fatalf("WriteDefaultConfig() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, err := WriteDefaultConfig(); err == nil {
		t.Error("second WriteDefaultConfig() should fail")
	}

	settings, err := Load(&LoadOptions{SkipEnv: true})
	if err != nil {
		t.Fatalf("default config should load: %v", err)
	}
	if settings.AccentColor != DefaultAccentColor {
		t.Errorf("AccentColor = %q, want %q", settings.AccentColor, DefaultAccentColor)
	}
}

func TestValidationResults_WriteWarnings(t *testing.T) {
	result := ValidationResults{
		Warnings: []ValidationWarning{
			{Field: "test", Message: "warning 1"},
			{Field: "test2", Message: "warning 2"},
		},
	}

	var buf bytes.Buffer
	result.WriteWarnings(&buf)

	if strings.Count(buf.String(), "config warning") != 2 {
		t.Errorf("WriteWarnings should produce one line per warning, got %q", buf.String())
	}
}
