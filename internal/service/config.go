package service

import (
	"net/url"
	"strings"
)

// Config holds Analysis Service connection settings
type Config struct {
	// BaseURL is the service root, e.g. http://127.0.0.1:5000
	BaseURL string `json:"base_url"`

	// PreviewPath is the route of the Preview operation
	PreviewPath string `json:"preview_path"`

	// AnalyzePath is the route of the Analyze operation
	AnalyzePath string `json:"analyze_path"`

	// FieldName is the multipart form field carrying the image
	FieldName string `json:"field_name"`
}

// DefaultConfig returns the settings of a local development server
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "http://127.0.0.1:5000",
		PreviewPath: "/preview",
		AnalyzePath: "/analyze",
		FieldName:   "image",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return NewRemoteError(ErrKindConfiguration, "", "base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return NewRemoteErrorWithCause(ErrKindConfiguration, "", "invalid base URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewRemoteError(ErrKindConfiguration, "", "base URL must use http or https")
	}
	if u.Host == "" {
		return NewRemoteError(ErrKindConfiguration, "", "base URL must include a host")
	}
	if c.PreviewPath == "" {
		return NewRemoteError(ErrKindConfiguration, "", "preview path is required")
	}
	if c.AnalyzePath == "" {
		return NewRemoteError(ErrKindConfiguration, "", "analyze path is required")
	}
	if c.FieldName == "" {
		return NewRemoteError(ErrKindConfiguration, "", "form field name is required")
	}
	return nil
}
