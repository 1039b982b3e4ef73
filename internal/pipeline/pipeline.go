// Package pipeline runs a statement through ingestion, classification and
// card optimization as a sequence of steps.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/card-optimizer/internal/catalog"
	"github.com/dvloznov/card-optimizer/internal/classifier"
	"github.com/dvloznov/card-optimizer/internal/logger"
)

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// NewAnalysisPipeline creates the standard statement analysis pipeline.
// cls may be nil to use the default keyword rules.
func NewAnalysisPipeline(loader StatementLoader, cls *classifier.Classifier, src catalog.Source) *Pipeline {
	return NewPipeline(
		&LoadStatementStep{Loader: loader},
		&ClassifyStep{Classifier: cls},
		&LoadCatalogStep{Source: src},
		&OptimizeStep{},
	)
}

// Execute runs all steps sequentially and stops at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *AnalysisState) error {
	log := logger.FromContext(ctx)

	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline step %d (%s) not started: %w", i+1, step.Name(), err)
		}

		start := time.Now()
		if err := step.Execute(ctx, state); err != nil {
			log.Error().Err(err).Str("step", step.Name()).Msg("Pipeline step failed")
			return fmt.Errorf("pipeline step %d (%s) failed: %w", i+1, step.Name(), err)
		}
		log.Debug().Str("step", step.Name()).Dur("duration", time.Since(start)).Msg("Pipeline step completed")
	}

	if state.Report != nil {
		log.Info().
			Str("statement_uri", state.StatementURI).
			Int("transactions", len(state.Report.Recommendations)).
			Float64("total_savings_inr", state.Report.TotalSavings).
			Msg("Statement analysed")
	}
	return nil
}
