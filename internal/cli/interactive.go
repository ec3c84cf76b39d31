package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/yildizm/elacheck/internal/controller"
	"github.com/yildizm/elacheck/internal/dropzone"
	"github.com/yildizm/elacheck/internal/service"
	"github.com/yildizm/elacheck/internal/ui"
)

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := setupLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := service.New(serviceConfig(cfg), log)
	if err != nil {
		return fmt.Errorf("invalid service configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := ui.Options{
		ServiceURL: client.BaseURL(),
		Resolve:    client.ResolveRef,
		OpenURL:    browser.OpenURL,
		StartDir:   expandHome(cfg.UI.StartDir),
		Log:        log,
	}
	if len(args) > 0 {
		opts.InitialPath = args[0]
	}

	if cfg.UI.DropDir != "" {
		watcher, err := dropzone.New(expandHome(cfg.UI.DropDir), cfg.UI.DropDebounce, log)
		if err != nil {
			return fmt.Errorf("failed to watch drop folder: %w", err)
		}
		defer func() { _ = watcher.Close() }()

		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("drop folder watcher stopped: %v", err)
			}
		}()
		opts.Drops = watcher.Drops()
		opts.DropDir = watcher.Dir()
	}

	log.Info("starting upload screen against %s", client.BaseURL())

	ctrl := controller.New(ctx, client, log)
	app := ui.NewApp(ctrl, opts)

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		// Ctrl+C and SIGTERM end the program through the context
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("interactive session failed: %w", err)
	}
	return nil
}
