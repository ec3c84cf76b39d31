package config

// SampleConfig returns a fully documented configuration file
func SampleConfig() string {
	return `# elacheck configuration
#
# Search order (highest priority first):
#   ./.elacheck.yaml
#   ~/.config/elacheck/config.yaml
#   /etc/elacheck/config.yaml
# Environment variables prefixed with ELACHECK_ override file settings,
# e.g. ELACHECK_SERVICE_BASE_URL=http://gpu-box:5000

version: "1.0"

# Analysis Service connection
service:
  # Root URL of the server exposing the preview and analyze routes
  base_url: "http://127.0.0.1:5000"
  # Route returning a normalized preview rendering
  preview_path: "/preview"
  # Route returning the verdict, confidence and ELA rendering
  analyze_path: "/analyze"
  # Multipart form field carrying the image
  field_name: "image"

# Terminal interface
ui:
  # Color theme: default, high-contrast, minimal
  theme: "default"
  # Directory the file picker opens in
  start_dir: "."
  # Files landing in this directory are treated as dropped; empty disables it
  drop_dir: ""
  # Quiet period before a landed file is picked up
  drop_debounce: 300ms
  # Replace emoji with plain text markers
  disable_emoji: false

# Output of the headless analyze command
output:
  # Report format: text, json, markdown, csv
  default_format: "text"
  # Color output: auto, always, never
  color_mode: "auto"
  # Log debug and info messages
  verbose: false
  # Log destination; empty discards logs in the UI and uses stderr otherwise
  log_file: ""
`
}

// MinimalSampleConfig returns a compact configuration with essential settings
func MinimalSampleConfig() string {
	return `version: "1.0"

service:
  base_url: "http://127.0.0.1:5000"

ui:
  theme: "default"
  drop_dir: ""

output:
  default_format: "text"
`
}
