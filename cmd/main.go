package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "workshop_monitor/docs"
	"workshop_monitor/internal/config"
	"workshop_monitor/internal/engine"
	"workshop_monitor/internal/handlers"
	"workshop_monitor/internal/logger"
	"workshop_monitor/internal/server"
	"workshop_monitor/internal/service"
	"workshop_monitor/internal/telemetry"
	"workshop_monitor/internal/view"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Getenv("ENVMON_CONFIG"))
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.LogLevel)

	opts, err := cfg.ProjectorOptions()
	if err != nil {
		log.Fatalw("invalid dashboard settings", "err", err)
	}
	projector := view.NewProjector(opts)

	// wire dependencies
	client := telemetry.NewHTTPClient(telemetry.Options{
		BaseURL: cfg.Device.BaseURL,
		Timeout: cfg.Device.Timeout,
	})
	eng := engine.New(client, engine.Config{
		StatusInterval: cfg.Polling.StatusInterval,
		HistoryLimit:   cfg.Polling.HistoryLimit,
	}, log)
	services := service.NewDashboardService(eng, projector)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := eng.Start(ctx); err != nil {
		log.Fatalw("failed to start polling engine", "err", err)
	}
	log.Infow("polling device", "base_url", cfg.Device.BaseURL, "profile", cfg.Profile)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, eng, srv, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, cfg *config.Config, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		port := cfg.Port
		if port == "" {
			port = "8080"
		}
		h := server.WithCORS(handler.InitRoutes(), cfg.CORS.AllowedOrigins)
		if err := srv.Run(port, h); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, eng *engine.Engine, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop polling; in-flight fetches resolve as no-ops
	eng.Stop()
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
