package cli

import (
	"context"
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/focusflow/internal/app"
	"github.com/sandeepkv93/focusflow/internal/scheduler"
	"github.com/sandeepkv93/focusflow/internal/update"
)

func runTUI(ctx context.Context, flags *globalFlags, deps Deps) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	// the terminal belongs to the UI; logs go to a file or nowhere
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "focusflow")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	engine, err := scheduler.NewEngine(cfg.UI.TickInterval, cfg.UI.TickBuffer)
	if err != nil {
		return err
	}
	engine.Start()
	defer engine.Stop()

	rt, err := openRuntime(ctx, cfg, deps, app.WithTicker(engine))
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(ctx); err != nil {
			log.Printf("focusflow: %v", err)
		}
	}()

	model := update.NewModel(rt.session, engine.C(), update.ExecDesktopNotifier{}, cfg.UI)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
