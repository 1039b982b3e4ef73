package pipeline

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/dvloznov/card-optimizer/internal/catalog"
	"github.com/dvloznov/card-optimizer/internal/domain"
	"github.com/dvloznov/card-optimizer/internal/jobs"
	"github.com/dvloznov/card-optimizer/internal/statement"
)

// MockStatementLoader is a mock implementation of StatementLoader for testing.
type MockStatementLoader struct {
	LoadFunc  func(ctx context.Context, uri string) (*statement.Result, error)
	ParseFunc func(ctx context.Context, format statement.Format, data []byte) (*statement.Result, error)
}

func (m *MockStatementLoader) Load(ctx context.Context, uri string) (*statement.Result, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, uri)
	}
	return nil, errors.New("Load not implemented")
}

func (m *MockStatementLoader) Parse(ctx context.Context, format statement.Format, data []byte) (*statement.Result, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(ctx, format, data)
	}
	return nil, errors.New("Parse not implemented")
}

// MockSource is a mock implementation of catalog.Source for testing.
type MockSource struct {
	CardsFunc func(ctx context.Context) ([]domain.CardRecord, error)
	calls     int
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Cards(ctx context.Context) ([]domain.CardRecord, error) {
	m.calls++
	return m.CardsFunc(ctx)
}

func sampleResult() *statement.Result {
	return &statement.Result{
		Format: statement.FormatCSV,
		Transactions: []domain.Transaction{
			{Description: "UPI-SWIGGY BANGALORE", Amount: 1000, Type: "Debit"},
			{Description: "UBER TRIP", Amount: 1500, Type: "Debit"},
			{Description: "AIRTEL POSTPAID", Amount: 1000, Type: "Debit"},
		},
	}
}

func seedSource() *MockSource {
	return &MockSource{CardsFunc: func(ctx context.Context) ([]domain.CardRecord, error) {
		return catalog.SeedCards(), nil
	}}
}

func TestAnalysisPipeline_FromURI(t *testing.T) {
	loader := &MockStatementLoader{
		LoadFunc: func(ctx context.Context, uri string) (*statement.Result, error) {
			if uri != "gs://bucket/statements/march.csv" {
				t.Errorf("Load uri = %q", uri)
			}
			return sampleResult(), nil
		},
	}

	p := NewAnalysisPipeline(loader, nil, seedSource())
	state := &AnalysisState{StatementURI: "gs://bucket/statements/march.csv"}
	if err := p.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	wantCats := []domain.Category{domain.CategoryDining, domain.CategoryTravel, domain.CategoryUtilities}
	for i, tx := range state.Transactions {
		if tx.Category != wantCats[i] {
			t.Errorf("transaction %d category = %q, want %q", i, tx.Category, wantCats[i])
		}
	}

	wantCards := []string{"HDFC Infinia Metal", "HDFC Infinia Metal", "ICICI Amazon Pay"}
	for i, rec := range state.Report.Recommendations {
		if rec.RecommendedCard != wantCards[i] {
			t.Errorf("recommendation %d = %q, want %q", i, rec.RecommendedCard, wantCards[i])
		}
	}

	// 33.33 + 100 + 10
	if math.Abs(state.Report.TotalSavings-143.33) > 0.01 {
		t.Errorf("TotalSavings = %v, want ~143.33", state.Report.TotalSavings)
	}
	if len(state.Summary) != 3 {
		t.Errorf("Summary has %d categories, want 3", len(state.Summary))
	}
	if state.Catalog == nil || state.Catalog.Source != "mock" {
		t.Errorf("Catalog = %+v", state.Catalog)
	}
}

func TestAnalysisPipeline_FromBytes(t *testing.T) {
	var gotFormat statement.Format
	loader := &MockStatementLoader{
		ParseFunc: func(ctx context.Context, format statement.Format, data []byte) (*statement.Result, error) {
			gotFormat = format
			return sampleResult(), nil
		},
	}

	p := NewAnalysisPipeline(loader, nil, seedSource())
	state := &AnalysisState{Format: statement.FormatXLSX, Data: []byte("raw")}
	if err := p.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if gotFormat != statement.FormatXLSX {
		t.Errorf("Parse format = %q, want xlsx", gotFormat)
	}
	if len(state.Report.Recommendations) != 3 {
		t.Errorf("got %d recommendations, want 3", len(state.Report.Recommendations))
	}
}

func TestAnalysisPipeline_ReusesCatalog(t *testing.T) {
	src := seedSource()
	snap, err := catalog.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("catalog.Load() error = %v", err)
	}

	loader := &MockStatementLoader{
		LoadFunc: func(ctx context.Context, uri string) (*statement.Result, error) {
			return sampleResult(), nil
		},
	}
	p := NewAnalysisPipeline(loader, nil, src)
	state := &AnalysisState{StatementURI: "march.csv", Catalog: snap}
	if err := p.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if src.calls != 1 {
		t.Errorf("catalog read %d times, want 1", src.calls)
	}
}

func TestAnalysisPipeline_Errors(t *testing.T) {
	loadErr := errors.New("bucket unreachable")
	catalogErr := errors.New("table missing")

	tests := []struct {
		name     string
		loader   *MockStatementLoader
		source   catalog.Source
		wantErr  error
		wantStep string
	}{
		{
			name: "statement load fails",
			loader: &MockStatementLoader{LoadFunc: func(ctx context.Context, uri string) (*statement.Result, error) {
				return nil, loadErr
			}},
			source:   seedSource(),
			wantErr:  loadErr,
			wantStep: "pipeline step 1 (load_statement)",
		},
		{
			name: "catalog load fails",
			loader: &MockStatementLoader{LoadFunc: func(ctx context.Context, uri string) (*statement.Result, error) {
				return sampleResult(), nil
			}},
			source: &MockSource{CardsFunc: func(ctx context.Context) ([]domain.CardRecord, error) {
				return nil, catalogErr
			}},
			wantErr:  catalogErr,
			wantStep: "pipeline step 3 (load_catalog)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewAnalysisPipeline(tt.loader, nil, tt.source)
			err := p.Execute(context.Background(), &AnalysisState{StatementURI: "march.csv"})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Execute() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantStep) {
				t.Errorf("error %q does not name %q", err, tt.wantStep)
			}
		})
	}
}

func TestAnalysisPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := &MockStatementLoader{}
	err := NewAnalysisPipeline(loader, nil, seedSource()).Execute(ctx, &AnalysisState{StatementURI: "march.csv"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestOptimizeStep_RequiresCatalog(t *testing.T) {
	err := (&OptimizeStep{}).Execute(context.Background(), &AnalysisState{})
	if err == nil {
		t.Error("expected error without a catalog")
	}
}

func TestLoadCatalogStep_NoSource(t *testing.T) {
	err := (&LoadCatalogStep{}).Execute(context.Background(), &AnalysisState{})
	if err == nil {
		t.Error("expected error without a source")
	}
}

type otherJob struct{}

func (otherJob) GetID() string             { return "x" }
func (otherJob) GetType() jobs.JobType     { return "other" }
func (otherJob) GetStatus() jobs.JobStatus { return jobs.JobStatusPending }

func TestJobHandler(t *testing.T) {
	loader := &MockStatementLoader{
		LoadFunc: func(ctx context.Context, uri string) (*statement.Result, error) {
			res := sampleResult()
			res.Stats = statement.Stats{Rows: 4, Kept: 3, NonDebit: 1}
			return res, nil
		},
	}
	handler := JobHandler(NewAnalysisPipeline(loader, nil, seedSource()), nil)

	job := &jobs.AnalyzeStatementJob{JobID: "j1", StatementURI: "march.csv"}
	if err := handler(context.Background(), job); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if job.Result == nil || job.Result.Report == nil {
		t.Fatal("expected a result on the job")
	}
	if job.Result.Stats.NonDebit != 1 || len(job.Result.Summary) != 3 {
		t.Errorf("Result = %+v", job.Result)
	}

	if err := handler(context.Background(), otherJob{}); err == nil {
		t.Error("expected error for an unknown job type")
	}
}

func TestJobHandler_PipelineError(t *testing.T) {
	loader := &MockStatementLoader{
		LoadFunc: func(ctx context.Context, uri string) (*statement.Result, error) {
			return nil, statement.ErrUnsupportedFormat
		},
	}
	handler := JobHandler(NewAnalysisPipeline(loader, nil, seedSource()), nil)

	job := &jobs.AnalyzeStatementJob{JobID: "j1", StatementURI: "march.doc"}
	if err := handler(context.Background(), job); !errors.Is(err, statement.ErrUnsupportedFormat) {
		t.Errorf("handler error = %v", err)
	}
	if job.Result != nil {
		t.Error("failed job should carry no result")
	}
}
