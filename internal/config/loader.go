package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.elacheck.yaml",               // Project-specific config (highest priority)
	"~/.config/elacheck/config.yaml", // User config
	"/etc/elacheck/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig builds the effective configuration. Later sources win:
// built-in defaults, /etc/elacheck/config.yaml,
// ~/.config/elacheck/config.yaml, ./.elacheck.yaml, then ELACHECK_*
// environment variables. Command line flags are applied by the caller.
// With customPath set, only that file is read.
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			path := expandPath(l.configPaths[i])
			if !fileExists(path) {
				continue
			}
			// Unreadable files are skipped with a warning
			if err := l.loadFromFile(config, path); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", path, err)
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile merges the non-zero values of a YAML file into config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or fixed
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	mergeConfigs(config, &fileConfig)
	return nil
}

// envOverride binds one ELACHECK_* variable to a setting
type envOverride struct {
	name string
	set  func(c *Config, v string) error
}

func setString(field func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

var envOverrides = []envOverride{
	{"ELACHECK_SERVICE_BASE_URL", setString(func(c *Config) *string { return &c.Service.BaseURL })},
	{"ELACHECK_SERVICE_PREVIEW_PATH", setString(func(c *Config) *string { return &c.Service.PreviewPath })},
	{"ELACHECK_SERVICE_ANALYZE_PATH", setString(func(c *Config) *string { return &c.Service.AnalyzePath })},
	{"ELACHECK_SERVICE_FIELD_NAME", setString(func(c *Config) *string { return &c.Service.FieldName })},

	{"ELACHECK_UI_THEME", setString(func(c *Config) *string { return &c.UI.Theme })},
	{"ELACHECK_UI_START_DIR", setString(func(c *Config) *string { return &c.UI.StartDir })},
	{"ELACHECK_UI_DROP_DIR", setString(func(c *Config) *string { return &c.UI.DropDir })},
	{"ELACHECK_UI_DROP_DEBOUNCE", func(c *Config, v string) error { return parseDuration(v, &c.UI.DropDebounce) }},
	{"ELACHECK_UI_DISABLE_EMOJI", func(c *Config, v string) error { return parseBool(v, &c.UI.DisableEmoji) }},

	{"ELACHECK_OUTPUT_DEFAULT_FORMAT", setString(func(c *Config) *string { return &c.Output.DefaultFormat })},
	{"ELACHECK_OUTPUT_COLOR_MODE", setString(func(c *Config) *string { return &c.Output.ColorMode })},
	{"ELACHECK_OUTPUT_VERBOSE", func(c *Config, v string) error { return parseBool(v, &c.Output.Verbose) }},
	{"ELACHECK_OUTPUT_LOG_FILE", setString(func(c *Config) *string { return &c.Output.LogFile })},
}

// applyEnvOverrides applies the set ELACHECK_* variables to config
func (l *Loader) applyEnvOverrides(config *Config) error {
	for _, o := range envOverrides {
		value := os.Getenv(o.name)
		if value == "" {
			continue
		}
		if err := o.set(config, value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", o.name, err)
		}
	}
	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	// Clean the path to resolve any ".." components
	cleanPath := filepath.Clean(path)

	// Check for path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// Ensure it's a YAML file
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	// Convert to absolute path for additional validation
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	// Basic sanity check - ensure it's not in sensitive system directories
	if strings.HasPrefix(absPath, "/etc/passwd") ||
		strings.HasPrefix(absPath, "/etc/shadow") ||
		strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mergeConfigs merges source config into destination config
// Only non-zero values from source overwrite destination
func mergeConfigs(dst, src *Config) {
	// Version
	if src.Version != "" {
		dst.Version = src.Version
	}

	mergeServiceConfig(&dst.Service, &src.Service)
	mergeUIConfig(&dst.UI, &src.UI)
	mergeOutputConfig(&dst.Output, &src.Output)
}

// mergeServiceConfig merges service configuration
func mergeServiceConfig(dst, src *ServiceConfig) {
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.PreviewPath != "" {
		dst.PreviewPath = src.PreviewPath
	}
	if src.AnalyzePath != "" {
		dst.AnalyzePath = src.AnalyzePath
	}
	if src.FieldName != "" {
		dst.FieldName = src.FieldName
	}
}

// mergeUIConfig merges UI configuration
func mergeUIConfig(dst, src *UIConfig) {
	if src.Theme != "" {
		dst.Theme = src.Theme
	}
	if src.StartDir != "" {
		dst.StartDir = src.StartDir
	}
	if src.DropDir != "" {
		dst.DropDir = src.DropDir
	}
	if src.DropDebounce != 0 {
		dst.DropDebounce = src.DropDebounce
	}
	mergeIfSet(&dst.DisableEmoji, src.DisableEmoji)
}

// mergeOutputConfig merges output configuration
func mergeOutputConfig(dst, src *OutputConfig) {
	if src.DefaultFormat != "" {
		dst.DefaultFormat = src.DefaultFormat
	}
	if src.ColorMode != "" {
		dst.ColorMode = src.ColorMode
	}
	if src.LogFile != "" {
		dst.LogFile = src.LogFile
	}
	mergeIfSet(&dst.Verbose, src.Verbose)
}

// mergeIfSet merges a boolean that defaults to false. A false in a
// higher-priority file cannot be told apart from an absent key, so only
// true propagates; the environment overrides can still turn a flag off.
func mergeIfSet(dst *bool, src bool) {
	if src {
		*dst = true
	}
}

// Type conversion helpers

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
