package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/ordvet/internal/api"
	"github.com/dgallion1/ordvet/internal/config"
	"github.com/dgallion1/ordvet/internal/llm"
	"github.com/dgallion1/ordvet/internal/pipeline"
	"github.com/dgallion1/ordvet/internal/queue"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One slot queue bounds all in-flight OpenAI requests across workers.
	registry := queue.NewRegistry()
	slots := registry.GetOrCreate(llm.ServiceName, cfg.MaxLLMInFlight)
	client := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, slots, log)

	orch := pipeline.NewOrchestrator(cfg, client, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, client, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Drain HTTP before closing the job queue so an in-flight submit
		// never hits a stopped orchestrator.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting ordvet", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
