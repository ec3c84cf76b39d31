package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if len(loader.configPaths) != 3 {
		t.Errorf("Expected 3 config paths, got %d", len(loader.configPaths))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	loader := NewLoader()

	// Test loading with no config files (should use defaults)
	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	// Verify it's using defaults
	if cfg.Service.AnalyzePath != "/analyze" {
		t.Errorf("Expected default analyze path /analyze, got %s", cfg.Service.AnalyzePath)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected default output format text, got %s", cfg.Output.DefaultFormat)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	// Create a temporary config file
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	configContent := `version: "1.0"
service:
  base_url: "http://gpu-box:5000"
  field_name: "upload"
ui:
  theme: "high-contrast"
  drop_debounce: 1s
output:
  default_format: "json"
  verbose: true
`

	err := os.WriteFile(configPath, []byte(configContent), 0o600)
	if err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loader := NewLoader()
	cfg, err := loader.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config from file: %v", err)
	}

	// Verify the config was loaded correctly
	if cfg.Service.BaseURL != "http://gpu-box:5000" {
		t.Errorf("Expected base URL http://gpu-box:5000, got %s", cfg.Service.BaseURL)
	}
	if cfg.Service.FieldName != "upload" {
		t.Errorf("Expected field name upload, got %s", cfg.Service.FieldName)
	}
	if cfg.Service.PreviewPath != "/preview" {
		t.Errorf("Expected default preview path to survive, got %s", cfg.Service.PreviewPath)
	}
	if cfg.UI.Theme != "high-contrast" {
		t.Errorf("Expected theme high-contrast, got %s", cfg.UI.Theme)
	}
	if cfg.UI.DropDebounce != time.Second {
		t.Errorf("Expected drop debounce 1s, got %v", cfg.UI.DropDebounce)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("Expected output format json, got %s", cfg.Output.DefaultFormat)
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
}

func TestLoadConfigSearchOrder(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "project.yaml")
	system := filepath.Join(dir, "system.yaml")

	files := map[string]string{
		project: "service:\n  base_url: \"http://project:5000\"\n",
		system:  "service:\n  base_url: \"http://system:5000\"\n  field_name: \"file\"\n",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}

	loader := &Loader{configPaths: []string{project, filepath.Join(dir, "missing.yaml"), system}}
	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Service.BaseURL != "http://project:5000" {
		t.Errorf("Expected the higher priority file to win, got %s", cfg.Service.BaseURL)
	}
	if cfg.Service.FieldName != "file" {
		t.Errorf("Expected lower priority values to survive, got %s", cfg.Service.FieldName)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bad.yaml")

	if err := os.WriteFile(configPath, []byte("service:\n  base_url: \"not a url\"\n"), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loader := NewLoader()
	if _, err := loader.LoadConfig(configPath); err == nil {
		t.Error("Expected validation error, but got none")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	// Create a temporary config file with invalid YAML
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid-config.yaml")

	invalidConfigContent := `version: "1.0"
service:
  base_url: "http://localhost:5000"
  # Invalid YAML - missing closing quote
output:
  default_format: "json
  verbose: true
`

	err := os.WriteFile(configPath, []byte(invalidConfigContent), 0o600)
	if err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loader := NewLoader()
	_, err = loader.LoadConfig(configPath)
	if err == nil {
		t.Error("Expected error loading invalid YAML config, but got none")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	envVars := map[string]string{
		"ELACHECK_SERVICE_BASE_URL":      "https://ela.example.com",
		"ELACHECK_UI_DROP_DIR":           "/srv/drop",
		"ELACHECK_UI_DROP_DEBOUNCE":      "750ms",
		"ELACHECK_UI_DISABLE_EMOJI":      "true",
		"ELACHECK_OUTPUT_VERBOSE":        "true",
		"ELACHECK_OUTPUT_DEFAULT_FORMAT": "markdown",
	}

	for key, value := range envVars {
		t.Setenv(key, value)
	}

	loader := NewLoader()
	cfg := DefaultConfig()

	err := loader.applyEnvOverrides(cfg)
	if err != nil {
		t.Fatalf("Failed to apply env overrides: %v", err)
	}

	// Check that environment variables were applied
	if cfg.Service.BaseURL != "https://ela.example.com" {
		t.Errorf("Expected base URL override, got %s", cfg.Service.BaseURL)
	}
	if cfg.UI.DropDir != "/srv/drop" {
		t.Errorf("Expected drop dir /srv/drop, got %s", cfg.UI.DropDir)
	}
	if cfg.UI.DropDebounce != 750*time.Millisecond {
		t.Errorf("Expected drop debounce 750ms, got %v", cfg.UI.DropDebounce)
	}
	if !cfg.UI.DisableEmoji {
		t.Errorf("Expected emoji to be disabled")
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
	if cfg.Output.DefaultFormat != "markdown" {
		t.Errorf("Expected format markdown, got %s", cfg.Output.DefaultFormat)
	}
}

func TestApplyEnvOverridesInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"invalid bool", "ELACHECK_OUTPUT_VERBOSE", "not-a-bool"},
		{"invalid duration", "ELACHECK_UI_DROP_DEBOUNCE", "not-a-duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			loader := NewLoader()
			cfg := DefaultConfig()

			err := loader.applyEnvOverrides(cfg)
			if err == nil {
				t.Error("Expected error for invalid env var value, but got none")
			}
		})
	}
}

func TestParseHelpers(t *testing.T) {
	tests := []struct {
		input    string
		wantBool bool
		boolErr  bool
		wantDur  time.Duration
		durErr   bool
	}{
		{input: "true", wantBool: true, durErr: true},
		{input: "false", wantBool: false, durErr: true},
		{input: "300ms", boolErr: true, wantDur: 300 * time.Millisecond},
		{input: "2s", boolErr: true, wantDur: 2 * time.Second},
		{input: "soon", boolErr: true, durErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var b bool
			if err := parseBool(tt.input, &b); (err != nil) != tt.boolErr {
				t.Errorf("parseBool(%q) error = %v, wantErr %v", tt.input, err, tt.boolErr)
			} else if err == nil && b != tt.wantBool {
				t.Errorf("parseBool(%q) = %v, want %v", tt.input, b, tt.wantBool)
			}

			var d time.Duration
			if err := parseDuration(tt.input, &d); (err != nil) != tt.durErr {
				t.Errorf("parseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.durErr)
			} else if err == nil && d != tt.wantDur {
				t.Errorf("parseDuration(%q) = %v, want %v", tt.input, d, tt.wantDur)
			}
		})
	}

	if fileExists(filepath.Join(t.TempDir(), "missing.yaml")) {
		t.Error("fileExists reported a missing file")
	}
}

func TestFindConfigFile(t *testing.T) {
	// Test when no config file exists
	_, found := FindConfigFile()
	if found {
		t.Error("Expected no config file to be found, but one was found")
	}

	// Create a temporary config file in current directory
	tempConfigPath := "./.elacheck.yaml"
	err := os.WriteFile(tempConfigPath, []byte("version: 1.0"), 0o600)
	if err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	defer func() { _ = os.Remove(tempConfigPath) }()

	configPath, found := FindConfigFile()
	if !found {
		t.Error("Expected config file to be found, but none was found")
	}
	if configPath != tempConfigPath {
		t.Errorf("Expected config path %s, got %s", tempConfigPath, configPath)
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid yaml file",
			path:    "config.yaml",
			wantErr: false,
		},
		{
			name:    "valid yml file",
			path:    "config.yml",
			wantErr: false,
		},
		{
			name:    "path traversal attempt",
			path:    "../../../etc/passwd",
			wantErr: true,
			errMsg:  "path traversal not allowed",
		},
		{
			name:    "non-yaml file",
			path:    "config.txt",
			wantErr: true,
			errMsg:  "config file must have .yaml or .yml extension",
		},
		{
			name:    "system file access",
			path:    "/etc/passwd.yaml",
			wantErr: true,
			errMsg:  "access to system files not allowed",
		},
		{
			name:    "proc filesystem access",
			path:    "/proc/version.yaml",
			wantErr: true,
			errMsg:  "access to system files not allowed",
		},
		{
			name:    "relative path with valid extension",
			path:    "./configs/app.yaml",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error message to contain '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
			}
		})
	}
}
