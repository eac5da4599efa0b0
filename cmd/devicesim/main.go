package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workshop_monitor/internal/config"
	"workshop_monitor/internal/handlers"
	"workshop_monitor/internal/logger"
	"workshop_monitor/internal/repository"
	"workshop_monitor/internal/repository/db"
	"workshop_monitor/internal/server"
	"workshop_monitor/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Getenv("ENVMON_CONFIG"))
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)

	// open DB
	conn, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewDeviceService(repos, service.SimulatorOptions{
		HistoryEvery: cfg.Simulator.HistoryEvery,
		Seed:         cfg.Simulator.Seed,
		Log:          log,
	})
	apiHandler := handlers.NewHandler(services, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go services.Simulator.Run(ctx, cfg.Simulator.Tick)

	srv := &server.Server{}
	go func() {
		log.Infow("device simulator listening", "port", cfg.Simulator.Port, "tick", cfg.Simulator.Tick)
		if err := srv.Run(cfg.Simulator.Port, apiHandler.InitDeviceRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down simulator...")
	cancel()

	sctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	path := cfg.Simulator.DBPath
	if path == "" {
		log.Infow("simulator.db_path not set in config; using default file", "default", "device.db")
		path = "device.db"
	}
	return db.InitDB(path)
}
