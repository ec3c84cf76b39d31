package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/yildizm/elacheck/internal/controller"
	"github.com/yildizm/elacheck/internal/emoji"
	"github.com/yildizm/elacheck/internal/formatter"
	"github.com/yildizm/elacheck/internal/logger"
	"github.com/yildizm/elacheck/internal/service"
)

var (
	analyzeFormat      string
	analyzeOutputFile  string
	analyzePreviewOnly bool
)

// errNoVerdict is returned after the report is written when the session
// ended without a verdict.
var errNoVerdict = errors.New("analysis did not produce a verdict")

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [image]",
		Short: "Analyze an image without the interactive screen",
		Long: `Upload an image for preview and Error Level Analysis, then print a report.

The same preview then analyze sequence as the interactive screen is run
once. The report can be written as text, JSON, Markdown, or CSV.`,
		Example: `  # Analyze an image and print a terminal report
  elacheck analyze photo.jpg

  # Write a JSON report to a file
  elacheck analyze photo.jpg --format json --output-file report.json

  # Use a different service
  elacheck analyze photo.jpg --server http://ela.internal:5000`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeFormat, "format", "f", "", "output format (text, json, markdown, csv)")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "write output to file instead of stdout")
	cmd.Flags().BoolVar(&analyzePreviewOnly, "preview-only", false, "stop after the preview round trip")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := setupLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	path := filepath.Clean(args[0])
	if err := validateFilePath(path); err != nil {
		return fmt.Errorf("invalid input file: %w", err)
	}

	format := analyzeFormat
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	f, err := getFormatter(format, useColor(cfg))
	if err != nil {
		return err
	}

	client, err := service.New(serviceConfig(cfg), log)
	if err != nil {
		return fmt.Errorf("invalid service configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	report, err := runSession(ctx, client, path, !analyzePreviewOnly, log)
	if err != nil {
		return err
	}
	report.Service = client.BaseURL()
	report.Duration = time.Since(start).Round(time.Millisecond).String()

	output, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	if err := handleOutputDestination(output); err != nil {
		return err
	}

	if !analyzePreviewOnly && !report.Succeeded() {
		return errNoVerdict
	}
	return nil
}

// resolvingService is a controller.Service that can also resolve the
// references it returns.
type resolvingService interface {
	controller.Service
	ResolveRef(ref string) string
}

// runSession drives the controller through one selection, preview, and
// optional analysis. Each command runs to completion before the next
// operation, so there is never a stale reply to discard. A blocking
// notice ends the session with its message as the error.
func runSession(ctx context.Context, svc resolvingService, path string, analyze bool, log *logger.Logger) (*formatter.Report, error) {
	ctrl := controller.New(ctx, svc, log)

	cmd, err := ctrl.SelectPath(path)
	if err != nil {
		return nil, noticeError(ctrl, err)
	}
	if err := complete(ctx, ctrl, cmd); err != nil {
		return nil, err
	}
	if ctrl.Notice() != nil {
		return nil, noticeError(ctrl, nil)
	}

	previewRef := ctrl.Results().PreviewRef

	if analyze {
		cmd, err := ctrl.TriggerAnalysis()
		if err != nil {
			return nil, noticeError(ctrl, err)
		}
		if err := complete(ctx, ctrl, cmd); err != nil {
			return nil, err
		}
	}

	sel, _ := ctrl.Selected()
	return formatter.NewReport(sel, ctrl.State(), previewRef, ctrl.Results(), svc.ResolveRef), nil
}

// complete runs cmd and hands its message back to the controller
func complete(ctx context.Context, ctrl *controller.Controller, cmd tea.Cmd) error {
	if cmd == nil {
		return nil
	}
	ctrl.Handle(cmd())
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	return nil
}

func noticeError(ctrl *controller.Controller, cause error) error {
	n := ctrl.Notice()
	if n == nil {
		return cause
	}
	switch {
	case n.Err == nil:
		return errors.New(n.Message)
	case n.Err.Error() == n.Message:
		return n.Err
	default:
		return fmt.Errorf("%s: %w", n.Message, n.Err)
	}
}

func handleOutputDestination(output []byte) error {
	if analyzeOutputFile != "" {
		if err := validateOutputFilePath(analyzeOutputFile); err != nil {
			return fmt.Errorf("invalid output file path: %w", err)
		}

		if err := writeOutputBytesToFile(output, analyzeOutputFile); err != nil {
			return fmt.Errorf("failed to write output to file: %w", err)
		}

		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Output saved to: %s\n", analyzeOutputFile)
		}
	} else {
		fmt.Print(string(output))
	}

	return nil
}

func validateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", cleanPath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}

	return nil
}

func validateOutputFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}
	if info, err := os.Stat(filepath.Clean(path)); err == nil && info.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}
	return nil
}

// getFormatter returns the appropriate formatter for the given format. The
// text report honors --no-emoji and ui.disable_emoji.
func getFormatter(format string, color bool) (formatter.Formatter, error) {
	switch format {
	case "text", "terminal", "":
		return formatter.NewTerminalWithOptions(color, !emoji.IsEmojiDisabled()), nil
	}
	f, err := formatter.New(format, color)
	if err != nil {
		return nil, fmt.Errorf("unknown format: %s", format)
	}
	return f, nil
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	// Sync to ensure data is written
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	return nil
}
