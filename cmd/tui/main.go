package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"workshop_monitor/internal/config"
	"workshop_monitor/internal/engine"
	"workshop_monitor/internal/logger"
	"workshop_monitor/internal/telemetry"
	"workshop_monitor/internal/tui"
	"workshop_monitor/internal/view"
)

func main() {
	// stdout belongs to the terminal UI; startup failures go to stderr
	log := logger.Stderr(logger.InfoLevel)

	cfg, err := config.Load(os.Getenv("ENVMON_CONFIG"))
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	opts, err := cfg.ProjectorOptions()
	if err != nil {
		log.Fatalw("invalid dashboard settings", "err", err)
	}
	projector := view.NewProjector(opts)

	// engine logs would corrupt the screen, so they are discarded
	eng := engine.New(
		telemetry.NewHTTPClient(telemetry.Options{BaseURL: cfg.Device.BaseURL, Timeout: cfg.Device.Timeout}),
		engine.Config{StatusInterval: cfg.Polling.StatusInterval, HistoryLimit: cfg.Polling.HistoryLimit},
		logger.Nop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := eng.Start(ctx); err != nil {
		log.Fatalw("failed to start polling engine", "err", err)
	}

	p := tea.NewProgram(tui.New(eng, projector, eng.Stop), tea.WithAltScreen())
	_, err = p.Run()
	eng.Stop()
	if err != nil {
		log.Fatalw("terminal ui failed", "err", err)
	}
}
