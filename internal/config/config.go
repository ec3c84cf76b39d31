package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version string        `yaml:"version" json:"version"`
	Service ServiceConfig `yaml:"service" json:"service"`
	UI      UIConfig      `yaml:"ui" json:"ui"`
	Output  OutputConfig  `yaml:"output" json:"output"`
}

// ServiceConfig configures the Analysis Service connection
type ServiceConfig struct {
	BaseURL     string `yaml:"base_url" json:"base_url"`         // service root URL
	PreviewPath string `yaml:"preview_path" json:"preview_path"` // preview route
	AnalyzePath string `yaml:"analyze_path" json:"analyze_path"` // analyze route
	FieldName   string `yaml:"field_name" json:"field_name"`     // multipart field carrying the image
}

// UIConfig configures the terminal interface
type UIConfig struct {
	Theme        string        `yaml:"theme" json:"theme"`                 // default|high-contrast|minimal
	StartDir     string        `yaml:"start_dir" json:"start_dir"`         // file picker starting directory
	DropDir      string        `yaml:"drop_dir" json:"drop_dir"`           // watched drop folder, empty disables it
	DropDebounce time.Duration `yaml:"drop_debounce" json:"drop_debounce"` // quiet period before a drop fires
	DisableEmoji bool          `yaml:"disable_emoji" json:"disable_emoji"` // plain text markers
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // json|text|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`               // default verbosity
	LogFile       string `yaml:"log_file" json:"log_file"`             // log destination, empty for default
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Service: ServiceConfig{
			BaseURL:     "http://127.0.0.1:5000",
			PreviewPath: "/preview",
			AnalyzePath: "/analyze",
			FieldName:   "image",
		},
		UI: UIConfig{
			Theme:        "default",
			StartDir:     ".",
			DropDir:      "",
			DropDebounce: 300 * time.Millisecond,
			DisableEmoji: false,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
			LogFile:       "",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServiceConfig(); err != nil {
		return err
	}
	if err := c.validateUIConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	return nil
}

// validateServiceConfig validates service-related configuration
func (c *Config) validateServiceConfig() error {
	if c.Service.BaseURL == "" {
		return fmt.Errorf("service base_url is required")
	}
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid service base_url: %s (must be an http or https URL)", c.Service.BaseURL)
	}
	if c.Service.PreviewPath == "" || c.Service.AnalyzePath == "" {
		return fmt.Errorf("service preview_path and analyze_path are required")
	}
	if c.Service.FieldName == "" {
		return fmt.Errorf("service field_name is required")
	}
	return nil
}

// validateUIConfig validates UI-related configuration
func (c *Config) validateUIConfig() error {
	if c.UI.Theme != "" {
		validThemes := map[string]bool{
			"default":       true,
			"high-contrast": true,
			"minimal":       true,
		}
		if !validThemes[c.UI.Theme] {
			return fmt.Errorf("invalid theme: %s (must be one of: default, high-contrast, minimal)", c.UI.Theme)
		}
	}
	if c.UI.DropDebounce < 0 {
		return fmt.Errorf("drop_debounce must be non-negative")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}
