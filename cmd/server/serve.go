package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/mnemoflash/internal/api"
	"github.com/vytor/mnemoflash/internal/db"
	"github.com/vytor/mnemoflash/internal/dictionary"
	"github.com/vytor/mnemoflash/internal/gemini"
	"github.com/vytor/mnemoflash/internal/jobs"
	"github.com/vytor/mnemoflash/internal/pipeline"
	"github.com/vytor/mnemoflash/internal/repository/sqlite"
	"github.com/vytor/mnemoflash/internal/services"
	"github.com/vytor/mnemoflash/internal/worker"
)

const sessionSweepInterval = time.Minute

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	log.Info("===========================================")
	log.Info("MnemoFlash Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("gemini_model=%s", cfg.GeminiModel)
	log.Debug("imagen_model=%s", cfg.ImagenModel)
	log.Debug("generation_timeout=%v", cfg.GenerationTimeout)
	log.Debug("image_worker_count=%d", cfg.ImageWorkerCount)
	log.Debug("image_queue_size=%d", cfg.ImageQueueSize)
	log.Debug("session_ttl=%v", cfg.SessionTTL)
	log.Debug("max_prompt_enhancements=%d", cfg.MaxPromptEnhancements)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	geminiClient := gemini.New(gemini.OptionsFromConfig(cfg))
	if !geminiClient.Configured() {
		log.Warn("no Gemini API key configured, generation requests will fail")
	}
	dictClient := dictionary.New(cfg.DictionaryBaseURL)

	profileRepo := sqlite.NewProfileRepository(database.DB)
	cardRepo := sqlite.NewCardRepository(database.DB)
	reviewRepo := sqlite.NewReviewRepository(database.DB)
	statsRepo := sqlite.NewStatsRepository(database.DB)

	cardService := services.NewCardService(cardRepo, reviewRepo, profileRepo, dictClient)

	imagePool := worker.NewPool(cfg.ImageWorkerCount, cfg.ImageQueueSize)
	engine := pipeline.NewEngine(geminiClient, cardService, jobs.NewWorkerQueue(imagePool, cfg.GenerationTimeout),
		pipeline.WithMaxEnhancements(cfg.MaxPromptEnhancements))
	store := pipeline.NewStore(engine, cfg.SessionTTL)

	srv := &api.Server{
		DB:                database.DB,
		ProfileService:    services.NewProfileService(profileRepo),
		CardService:       cardService,
		ReviewService:     services.NewReviewService(reviewRepo),
		StatsService:      services.NewStatsService(statsRepo),
		AudioService:      services.NewAudioService(dictClient),
		GenerationService: services.NewGenerationService(geminiClient),
		CreationService:   services.NewCreationService(store, profileRepo),
		DataTimeout:       10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	imagePool.Start(ctx)
	go store.Run(ctx, sessionSweepInterval)

	httpServer := &http.Server{
		Addr:        cfg.Addr,
		Handler:     srv.Routes(),
		ReadTimeout: 15 * time.Second,
		// generation proxies wait on the model
		WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		log.Info("received signal %v, initiating graceful shutdown", sig)
	case err := <-serveErr:
		if err != nil {
			log.Error("HTTP server error: %v", err)
			cancel()
			imagePool.Stop()
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping image pool")
	cancel()
	imagePool.Stop()

	log.Info("===========================================")
	log.Info("MnemoFlash Server Stopped")
	log.Info("===========================================")
	return nil
}
