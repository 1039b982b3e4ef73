package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/card-optimizer/internal/catalog"
	"github.com/dvloznov/card-optimizer/internal/classifier"
	"github.com/dvloznov/card-optimizer/internal/domain"
	"github.com/dvloznov/card-optimizer/internal/rewards"
	"github.com/dvloznov/card-optimizer/internal/statement"
)

// PipelineStep represents a single step in the analysis pipeline.
type PipelineStep interface {
	Name() string
	Execute(ctx context.Context, state *AnalysisState) error
}

// StatementLoader reads and normalises statements.
type StatementLoader interface {
	Load(ctx context.Context, uri string) (*statement.Result, error)
	Parse(ctx context.Context, format statement.Format, data []byte) (*statement.Result, error)
}

// AnalysisState holds the shared state across all pipeline steps.
// Callers set either StatementURI or Format and Data; Catalog may be set
// up front to reuse an already loaded snapshot.
type AnalysisState struct {
	StatementURI string
	Format       statement.Format
	Data         []byte

	Statement    *statement.Result
	Transactions []domain.Transaction
	Catalog      *catalog.Snapshot
	Report       *rewards.Report
	Summary      []rewards.CategorySummary
}

// LoadStatementStep reads the statement into transactions.
type LoadStatementStep struct {
	Loader StatementLoader
}

func (s *LoadStatementStep) Name() string { return "load_statement" }

func (s *LoadStatementStep) Execute(ctx context.Context, state *AnalysisState) error {
	var res *statement.Result
	var err error
	if state.Data != nil {
		res, err = s.Loader.Parse(ctx, state.Format, state.Data)
	} else {
		res, err = s.Loader.Load(ctx, state.StatementURI)
	}
	if err != nil {
		return err
	}
	state.Statement = res
	state.Transactions = res.Transactions
	return nil
}

// ClassifyStep assigns a category to every transaction.
type ClassifyStep struct {
	Classifier *classifier.Classifier
}

func (s *ClassifyStep) Name() string { return "classify" }

func (s *ClassifyStep) Execute(ctx context.Context, state *AnalysisState) error {
	c := s.Classifier
	if c == nil {
		c = classifier.Default()
	}
	c.ClassifyAll(state.Transactions)
	return nil
}

// LoadCatalogStep reads the card catalog unless the state already has one.
type LoadCatalogStep struct {
	Source catalog.Source
}

func (s *LoadCatalogStep) Name() string { return "load_catalog" }

func (s *LoadCatalogStep) Execute(ctx context.Context, state *AnalysisState) error {
	if state.Catalog != nil {
		return nil
	}
	if s.Source == nil {
		return fmt.Errorf("LoadCatalogStep: no catalog source configured")
	}
	snap, err := catalog.Load(ctx, s.Source)
	if err != nil {
		return err
	}
	state.Catalog = snap
	return nil
}

// OptimizeStep picks the best card for every transaction and summarises the
// result per category.
type OptimizeStep struct{}

func (s *OptimizeStep) Name() string { return "optimize" }

func (s *OptimizeStep) Execute(ctx context.Context, state *AnalysisState) error {
	if state.Catalog == nil {
		return fmt.Errorf("OptimizeStep: catalog not loaded")
	}
	report, err := rewards.Optimize(state.Transactions, state.Catalog.Cards)
	if err != nil {
		return err
	}
	state.Report = report
	state.Summary = rewards.SummarizeByCategory(report.Recommendations)
	return nil
}
