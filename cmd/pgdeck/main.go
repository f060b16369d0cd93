package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pgdeck/pgdeck/internal/config"
	"github.com/pgdeck/pgdeck/internal/gateway"
	"github.com/pgdeck/pgdeck/internal/gateway/postgres"
	"github.com/pgdeck/pgdeck/internal/history"
	"github.com/pgdeck/pgdeck/internal/models"
	"github.com/pgdeck/pgdeck/internal/ui"
	"github.com/pgdeck/pgdeck/internal/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.GetDefaults()
	}

	dataDir, err := gateway.DefaultDataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving data directory: %v\n", err)
		os.Exit(1)
	}
	store, err := gateway.NewStorage(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data directory: %v\n", err)
		os.Exit(1)
	}

	open := func(ctx context.Context, cfg models.DBConfig) (gateway.Driver, error) {
		return postgres.Open(ctx, cfg)
	}
	gw := gateway.NewLocal(store, open)
	defer gw.Close()

	opts := []workspace.Option{}
	if cfg.History.Enabled {
		hist, err := history.NewStore(filepath.Join(dataDir, "history.db"), cfg.History.MaxEntries)
		if err != nil {
			log.Printf("Warning: query history disabled: %v", err)
		} else {
			defer func() { _ = hist.Close() }()
			opts = append(opts, workspace.WithHistory(hist))
		}
	}

	ws := workspace.New(gw, cfg, opts...)
	defer ws.Close()

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(ui.New(ws, cfg), programOpts...)
	ws.SetEventHandler(func(ev workspace.Event) {
		p.Send(ui.EventMsg{Event: ev})
	})

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
	ws.Flush()
}
