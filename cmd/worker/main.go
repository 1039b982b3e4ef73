package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/card-optimizer/internal/catalog"
	"github.com/dvloznov/card-optimizer/internal/classifier"
	"github.com/dvloznov/card-optimizer/internal/config"
	"github.com/dvloznov/card-optimizer/internal/jobs"
	"github.com/dvloznov/card-optimizer/internal/jobs/inmemory"
	"github.com/dvloznov/card-optimizer/internal/logger"
	"github.com/dvloznov/card-optimizer/internal/pipeline"
	"github.com/dvloznov/card-optimizer/internal/rewards"
	"github.com/dvloznov/card-optimizer/internal/statement"
	"github.com/shopspring/decimal"
)

// worker analyses a batch of statements concurrently on the job queue and
// prints the savings found in each.
//
//	worker [-timeout 10m] STATEMENT...
func main() {
	timeout := flag.Duration("timeout", 10*time.Minute, "Give up on unfinished statements after this long")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))

	uris := flag.Args()
	if len(uris) == 0 {
		log.Fatal().Msg("Usage: worker [-timeout D] STATEMENT...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	// Stop early on interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info().Msg("Interrupted, stopping workers...")
		cancel()
	}()

	src, closeSource, err := catalog.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open card catalog")
	}
	defer closeSource()

	snapshot, err := catalog.Load(ctx, src)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load card catalog")
	}

	analysis := pipeline.NewAnalysisPipeline(statement.NewCloudLoader(ctx, cfg.Gemini.Model), classifier.Default(), src)

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(jobStore, inmemory.Options{
		BufferSize: len(uris),
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
	})

	log.Info().Int("statements", len(uris)).Int("workers", cfg.Jobs.Workers).Msg("Starting worker")

	if err := jobQueue.Start(ctx, pipeline.JobHandler(analysis, snapshot)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	ids := make([]string, 0, len(uris))
	for _, uri := range uris {
		job := &jobs.AnalyzeStatementJob{StatementURI: uri}
		if err := jobQueue.PublishAnalyzeStatement(ctx, job); err != nil {
			log.Fatal().Err(err).Str("statement_uri", uri).Msg("Failed to enqueue statement")
		}
		ids = append(ids, job.JobID)
	}

	finished := waitForJobs(ctx, jobStore, ids)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	failed := 0
	total := 0.0
	fmt.Println()
	for _, job := range finished {
		switch {
		case job.Status == jobs.JobStatusCompleted && job.Result != nil:
			report := job.Result.Report
			total += report.TotalSavings
			fmt.Printf("%-30s  %4d/%-4d spends earn more  saves ₹%s\n",
				statement.FilenameFromURI(job.StatementURI), recommendedCount(report), len(report.Recommendations),
				decimal.NewFromFloat(report.TotalSavings).StringFixed(2))
		default:
			failed++
			fmt.Printf("%-30s  %s: %s\n", statement.FilenameFromURI(job.StatementURI), job.Status, job.Error)
		}
	}
	fmt.Printf("\nTotal optimized savings: ₹%s across %d statements\n",
		decimal.NewFromFloat(total).StringFixed(2), len(finished)-failed)

	if failed > 0 {
		os.Exit(1)
	}
}

// waitForJobs polls the store until every job has completed or failed, or
// ctx ends. It returns the last known state of each job in input order.
func waitForJobs(ctx context.Context, store jobs.JobStore, ids []string) []*jobs.AnalyzeStatementJob {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		out := make([]*jobs.AnalyzeStatementJob, 0, len(ids))
		done := true
		for _, id := range ids {
			job, err := store.GetJob(ctx, id)
			if err != nil {
				job = &jobs.AnalyzeStatementJob{JobID: id, Status: jobs.JobStatusFailed, Error: err.Error()}
			}
			if job.Status != jobs.JobStatusCompleted && job.Status != jobs.JobStatusFailed {
				done = false
			}
			out = append(out, job)
		}
		if done {
			return out
		}

		select {
		case <-ctx.Done():
			return out
		case <-ticker.C:
		}
	}
}

// recommendedCount counts the spends for which some card earns a reward.
func recommendedCount(report *rewards.Report) int {
	n := 0
	for _, r := range report.Recommendations {
		if r.Recommended() {
			n++
		}
	}
	return n
}
