package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/yildizm/elacheck/internal/config"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".elacheck.yaml"

// newConfigCommand creates the config command with subcommands
func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage elacheck configuration",
		Long: `Create, inspect, and check elacheck configuration files.

Settings are merged from defaults, every config file found on the search
path (or only --config), and ELACHECK_* environment variables.`,
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		minimal    bool
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		Example: `  # Documented config in the current directory
  elacheck config init

  # Only the service and drop folder settings
  elacheck config init --minimal

  # Per-user config
  elacheck config init --output ~/.config/elacheck/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				outputPath = defaultConfigFile
			}
			content := config.SampleConfig()
			if minimal {
				content = config.MinimalSampleConfig()
			}

			path, err := writeConfigFile(expandHome(outputPath), content, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", GetEmoji("success"), path)
			fmt.Fprintf(cmd.OutOrStdout(), "Point service.base_url at your ELA server, then run: elacheck config validate --config %s\n", path)
			return nil
		},
	}

	initCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path for config file (default: "+defaultConfigFile+")")
	initCmd.Flags().BoolVarP(&minimal, "minimal", "m", false, "create minimal configuration")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing config file")

	return initCmd
}

// writeConfigFile writes content to path, refusing to replace an existing
// file unless force is set.
func writeConfigFile(path, content string, force bool) (string, error) {
	path = filepath.Clean(path)
	if !force && fileExists(path) {
		return "", fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

func newConfigShowCommand() *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Example: `  elacheck config show
  elacheck config show --format json
  ELACHECK_SERVICE_BASE_URL=http://gpu-box:5000 elacheck config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return printConfig(cmd.OutOrStdout(), cfg, format)
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")

	return showCmd
}

func printConfig(w io.Writer, cfg *config.Config, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	case "yaml", "yml":
		data, err = yaml.Marshal(cfg)
	default:
		return fmt.Errorf("unsupported format: %s (use json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a configuration file",
		Long: `Load the configuration the same way the upload screen does and report
the first problem found: YAML syntax, an unusable service URL or route, an
unknown theme, a negative drop debounce, or an unknown output format.`,
		Example: `  elacheck config validate
  elacheck config validate --config ./ela-lab.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				fmt.Fprintf(out, "%s Configuration is invalid: %v\n", GetEmoji("error"), err)
				return err
			}

			fmt.Fprintf(out, "%s Configuration is valid\n", GetEmoji("success"))
			printConfigSummary(out, cfg)
			return nil
		},
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "   Service:  %s (preview %s, analyze %s, field %q)\n",
		cfg.Service.BaseURL, cfg.Service.PreviewPath, cfg.Service.AnalyzePath, cfg.Service.FieldName)
	fmt.Fprintf(w, "   Theme:    %s\n", cfg.UI.Theme)
	if cfg.UI.DropDir != "" {
		fmt.Fprintf(w, "   Drops:    %s (debounce %s)\n", cfg.UI.DropDir, cfg.UI.DropDebounce)
	} else {
		fmt.Fprintf(w, "   Drops:    disabled\n")
	}
	fmt.Fprintf(w, "   Output:   %s, color %s\n", cfg.Output.DefaultFormat, cfg.Output.ColorMode)
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, found := config.FindConfigFile()

			fmt.Fprintf(out, "%s Config files, highest priority first:\n", GetEmoji("folder"))
			for i, path := range config.GetConfigPaths() {
				status := "not found"
				if fileExists(path) {
					status = "exists"
				}
				fmt.Fprintf(out, "  %d. %-40s %s\n", i+1, path, status)
			}

			if cfgFile != "" {
				fmt.Fprintf(out, "\n--config %s overrides the search path\n", cfgFile)
			} else if !found {
				fmt.Fprintln(out, "\nNo config file found, using defaults")
			}
			fmt.Fprintln(out, "ELACHECK_* environment variables override file settings")
		},
	}
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
