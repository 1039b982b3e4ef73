package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/card-optimizer/internal/catalog"
	"github.com/dvloznov/card-optimizer/internal/jobs"
)

// JobHandler returns a jobs.JobHandler that runs p for each statement
// analysis job and stores the outcome on the job. snapshot may be nil, in
// which case the pipeline loads the catalog itself.
func JobHandler(p *Pipeline, snapshot *catalog.Snapshot) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		analyzeJob, ok := job.(*jobs.AnalyzeStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		state := &AnalysisState{StatementURI: analyzeJob.StatementURI, Catalog: snapshot}
		if err := p.Execute(ctx, state); err != nil {
			return err
		}

		analyzeJob.Result = &jobs.AnalysisResult{
			Report:  state.Report,
			Summary: state.Summary,
		}
		if state.Statement != nil {
			analyzeJob.Result.Stats = state.Statement.Stats
		}
		return nil
	}
}
