package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/card-optimizer/internal/api"
	"github.com/dvloznov/card-optimizer/internal/api/handlers"
	"github.com/dvloznov/card-optimizer/internal/catalog"
	"github.com/dvloznov/card-optimizer/internal/classifier"
	"github.com/dvloznov/card-optimizer/internal/config"
	"github.com/dvloznov/card-optimizer/internal/jobs/inmemory"
	"github.com/dvloznov/card-optimizer/internal/logger"
	"github.com/dvloznov/card-optimizer/internal/pipeline"
	"github.com/dvloznov/card-optimizer/internal/statement"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	port := flag.String("port", cfg.Server.Port, "HTTP server port (or set PORT env)")
	flag.Parse()

	log := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))
	ctx := logger.WithContext(context.Background(), log)

	// Load the catalog once; every request and job shares the snapshot.
	src, closeSource, err := catalog.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.Catalog.Source).Msg("Failed to open card catalog")
	}
	defer closeSource()

	snapshot, err := catalog.Load(ctx, src)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load card catalog")
	}

	loader := statement.NewCloudLoader(ctx, cfg.Gemini.Model)
	analysis := pipeline.NewAnalysisPipeline(loader, classifier.Default(), src)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(jobStore, inmemory.Options{
		BufferSize: cfg.Jobs.QueueSize,
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
	})

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, pipeline.JobHandler(analysis, snapshot)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	router := api.NewRouter(api.Handlers{
		Cards:    handlers.NewCardsHandler(snapshot, log),
		Classify: handlers.NewClassifyHandler(classifier.Default()),
		Analyze:  handlers.NewAnalyzeHandler(analysis, snapshot, log),
		Jobs:     handlers.NewJobsHandler(jobStore, jobQueue, log),
		Chat:     handlers.NewChatHandler(snapshot, jobStore, log),
	}, log)

	// PDF statements go through Gemini and can take a while.
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", *port).
			Str("catalog_source", snapshot.Source).
			Int("cards", len(snapshot.Cards)).
			Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
