// Package config provides configuration types and defaults for sprs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sprs/sprs/internal/log"
	"github.com/sprs/sprs/internal/tracing"
)

// Interaction modes for the default command.
const (
	ModeTUI   = "tui"
	ModePlain = "plain"
)

// Output formats for the batch command.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Config holds all configuration options for sprs.
type Config struct {
	Debug    bool           `mapstructure:"debug" yaml:"debug"`
	LogFile  string         `mapstructure:"log_file" yaml:"log_file"`
	LogLevel string         `mapstructure:"log_level" yaml:"log_level"`
	UI       UIConfig       `mapstructure:"ui" yaml:"ui"`
	Theme    ThemeConfig    `mapstructure:"theme" yaml:"theme"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Tracing  tracing.Config `mapstructure:"tracing" yaml:"tracing"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	Mode          string `mapstructure:"mode" yaml:"mode"`                     // "tui" (default) or "plain"
	MarkdownStyle string `mapstructure:"markdown_style" yaml:"markdown_style"` // glamour style for the help screen
	ShowActivity  bool   `mapstructure:"show_activity" yaml:"show_activity"`   // recent changes panel
}

// ThemeConfig overrides the TUI colours. Values are hex strings.
type ThemeConfig struct {
	Highlight string `mapstructure:"highlight" yaml:"highlight"`
	Subtle    string `mapstructure:"subtle" yaml:"subtle"`
	Error     string `mapstructure:"error" yaml:"error"`
	Success   string `mapstructure:"success" yaml:"success"`
}

// CacheConfig controls the patient lookup cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// OutputConfig controls non-interactive output.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		LogFile:  "debug.log",
		LogLevel: "debug",
		UI: UIConfig{
			Mode:          ModeTUI,
			MarkdownStyle: "dark",
			ShowActivity:  true,
		},
		Theme: ThemeConfig{
			Highlight: "#7D56F4",
			Subtle:    "#666666",
			Error:     "#FF8787",
			Success:   "#73F59F",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Output: OutputConfig{
			Format: FormatTable,
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// DefaultTracesFilePath returns the trace file used when tracing is enabled
// with the file exporter and no path is configured.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".sprs", "traces", "traces.jsonl")
	}
	return filepath.Join(home, ".config", "sprs", "traces", "traces.jsonl")
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks every section of cfg.
func Validate(cfg Config) error {
	if err := ValidateLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	if err := ValidateUI(cfg.UI); err != nil {
		return err
	}
	if err := ValidateTheme(cfg.Theme); err != nil {
		return err
	}
	if err := ValidateCache(cfg.Cache); err != nil {
		return err
	}
	if err := ValidateOutput(cfg.Output); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateLogLevel checks the log_level key. Empty means debug.
func ValidateLogLevel(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", level)
	}
}

// ValidateUI checks the ui section.
func ValidateUI(ui UIConfig) error {
	switch ui.Mode {
	case "", ModeTUI, ModePlain:
		return nil
	default:
		return fmt.Errorf("ui.mode must be %q or %q, got %q", ModeTUI, ModePlain, ui.Mode)
	}
}

// ValidateTheme checks that every set colour is a hex colour.
func ValidateTheme(theme ThemeConfig) error {
	colors := []struct {
		key, value string
	}{
		{"theme.highlight", theme.Highlight},
		{"theme.subtle", theme.Subtle},
		{"theme.error", theme.Error},
		{"theme.success", theme.Success},
	}
	for _, c := range colors {
		if c.value != "" && !hexColor.MatchString(c.value) {
			return fmt.Errorf("%s must be a hex color like #7D56F4, got %q", c.key, c.value)
		}
	}
	return nil
}

// ValidateCache checks the cache section.
func ValidateCache(cache CacheConfig) error {
	if cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", cache.TTL)
	}
	return nil
}

// ValidateOutput checks the output section.
func ValidateOutput(out OutputConfig) error {
	return ValidateFormat(out.Format)
}

// ValidateFormat checks a batch output format name. Empty means the default.
func ValidateFormat(format string) error {
	switch format {
	case "", FormatTable, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("output format must be %q, %q or %q, got %q", FormatTable, FormatJSON, FormatYAML, format)
	}
}

// ValidateTracing checks tracing configuration for errors.
// Empty values fall back to defaults.
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	switch tc.Exporter {
	case "", tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
	}

	if tc.Enabled && tc.Exporter == tracing.ExporterOTLP && tc.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# SPRS configuration

# Write a debug log (same as --debug or SPRS_DEBUG=1)
debug: false
log_file: debug.log
log_level: debug         # minimum level written: debug, info, warn or error

ui:
  mode: tui              # "tui" (default) or "plain" line prompts
  markdown_style: dark   # help screen style: "dark", "light" or "notty"
  show_activity: true    # show recent registry changes in the TUI

theme:
  highlight: "#7D56F4"
  subtle: "#666666"
  error: "#FF8787"
  success: "#73F59F"

# Lookup cache for "Retrieve patient by ID"
cache:
  enabled: true
  ttl: 10m

# Default format for "sprs batch": table, json or yaml
output:
  format: table

# OpenTelemetry tracing of registry operations
tracing:
  enabled: false
  exporter: file         # none, file, stdout or otlp
  # file_path: ~/.config/sprs/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
