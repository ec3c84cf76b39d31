package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/yildizm/elacheck/internal/config"
	"github.com/yildizm/elacheck/internal/emoji"
	"github.com/yildizm/elacheck/internal/logger"
	"github.com/yildizm/elacheck/internal/service"
	"github.com/yildizm/elacheck/internal/ui"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	logFile   string
	serverURL string

	globalConfig *config.Config
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "elacheck [image]",
		Short: "Image tampering check against an ELA service",
		Long: `elacheck uploads an image to an Error Level Analysis service, shows the
server-rendered preview, and reports whether the image looks authentic.

Without a subcommand it opens the interactive upload screen. Images can be
picked with the file browser, pasted or dragged into the terminal, or dropped
into a watched folder.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}
			emoji.SetEmojiDisabled(noEmoji)
			ui.SetColorDisabled(noColor)
			return nil
		},
		RunE: runInteractive,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write diagnostic logs to this file")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "analysis service base URL (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			fmt.Printf("elacheck %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// GetGlobalConfig loads the configuration once and applies the global flag
// overrides on top of it.
func GetGlobalConfig() (*config.Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if serverURL != "" {
		cfg.Service.BaseURL = serverURL
	}
	if logFile != "" {
		cfg.Output.LogFile = logFile
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if cfg.UI.DisableEmoji {
		emoji.SetEmojiDisabled(true)
	}
	if cfg.Output.ColorMode == "never" {
		ui.SetColorDisabled(true)
	}
	ui.SetThemeByName(cfg.UI.Theme)

	globalConfig = cfg
	return cfg, nil
}

// serviceConfig maps the service section onto client settings
func serviceConfig(cfg *config.Config) *service.Config {
	return &service.Config{
		BaseURL:     cfg.Service.BaseURL,
		PreviewPath: cfg.Service.PreviewPath,
		AnalyzePath: cfg.Service.AnalyzePath,
		FieldName:   cfg.Service.FieldName,
	}
}

// setupLogger builds the root logger. Without a log file the interactive
// screen discards diagnostics, headless runs keep them on stderr.
func setupLogger(cfg *config.Config, interactive bool) (*logger.Logger, func(), error) {
	log := logger.NewWithCallback("elacheck", isVerbose)
	closer := func() {}

	switch {
	case cfg.Output.LogFile != "":
		path := filepath.Clean(expandHome(cfg.Output.LogFile))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		log.SetOutput(f)
		browser.Stderr = f
		closer = func() { _ = f.Close() }
	case interactive:
		log.SetOutput(io.Discard)
		browser.Stderr = io.Discard
	}
	if interactive {
		// The browser launcher must not write over the alt screen
		browser.Stdout = io.Discard
	}

	return log, closer, nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Global helpers
func isVerbose() bool {
	if verbose {
		return true
	}
	return globalConfig != nil && globalConfig.Output.Verbose
}

func useColor(cfg *config.Config) bool {
	if noColor || ui.IsColorDisabled() {
		return false
	}
	switch cfg.Output.ColorMode {
	case "always":
		return true
	case "never":
		return false
	}
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
