package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dvloznov/card-optimizer/internal/api/middleware"
	"github.com/dvloznov/card-optimizer/internal/catalog"
	"github.com/dvloznov/card-optimizer/internal/classifier"
	"github.com/dvloznov/card-optimizer/internal/domain"
	"github.com/dvloznov/card-optimizer/internal/logger"
	"github.com/dvloznov/card-optimizer/internal/pipeline"
	"github.com/dvloznov/card-optimizer/internal/rewards"
	"github.com/dvloznov/card-optimizer/internal/statement"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultMaxStatementBytes caps uploaded statement bodies.
const DefaultMaxStatementBytes = 10 << 20

// defaultTop is how many top recommendations an analysis response carries.
const defaultTop = 10

// Analyzer runs a statement through the analysis pipeline.
type Analyzer interface {
	Execute(ctx context.Context, state *pipeline.AnalysisState) error
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// CardsHandler serves the loaded card catalog.
type CardsHandler struct {
	snapshot *catalog.Snapshot
	log      zerolog.Logger
}

// NewCardsHandler creates a new cards handler.
func NewCardsHandler(snapshot *catalog.Snapshot, log zerolog.Logger) *CardsHandler {
	return &CardsHandler{snapshot: snapshot, log: log}
}

type cardView struct {
	domain.CardRecord
	Name        string `json:"name"`
	Malformed   bool   `json:"malformed"`
	DecodeError string `json:"decode_error,omitempty"`
}

// ListCards handles GET /api/cards
func (h *CardsHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards := make([]cardView, 0, len(h.snapshot.Cards))
	for _, c := range h.snapshot.Cards {
		v := cardView{CardRecord: c, Name: c.DisplayName(), Malformed: c.Malformed()}
		if c.DecodeErr != nil {
			v.DecodeError = c.DecodeErr.Error()
		}
		cards = append(cards, v)
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cards":     cards,
		"count":     len(cards),
		"source":    h.snapshot.Source,
		"loaded_at": h.snapshot.LoadedAt,
		"malformed": h.snapshot.Malformed,
	})
}

// ClassifyHandler exposes the category classifier.
type ClassifyHandler struct {
	classifier *classifier.Classifier
}

// NewClassifyHandler creates a new classify handler. A nil classifier uses
// the default keyword rules.
func NewClassifyHandler(c *classifier.Classifier) *ClassifyHandler {
	if c == nil {
		c = classifier.Default()
	}
	return &ClassifyHandler{classifier: c}
}

// Classify handles POST /api/classify
func (h *ClassifyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"description": req.Description,
		"category":    string(h.classifier.Classify(req.Description)),
	})
}

// AnalyzeHandler analyses statements uploaded in the request body.
type AnalyzeHandler struct {
	analyzer Analyzer
	snapshot *catalog.Snapshot
	maxBytes int64
	log      zerolog.Logger
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(analyzer Analyzer, snapshot *catalog.Snapshot, log zerolog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		snapshot: snapshot,
		maxBytes: DefaultMaxStatementBytes,
		log:      log,
	}
}

// AnalysisView is the JSON shape of an analysed statement.
type AnalysisView struct {
	Source              string                    `json:"source,omitempty"`
	Format              statement.Format          `json:"format"`
	Stats               statement.Stats           `json:"stats"`
	TotalSavings        float64                   `json:"total_savings"`
	TotalSavingsDisplay string                    `json:"total_savings_display"`
	Recommendations     []rewards.Recommendation  `json:"recommendations"`
	Top                 []rewards.Recommendation  `json:"top"`
	Summary             []rewards.CategorySummary `json:"summary"`
}

// NewAnalysisView builds the response for a finished pipeline run.
func NewAnalysisView(state *pipeline.AnalysisState, top int) AnalysisView {
	v := AnalysisView{
		Source:          state.StatementURI,
		Format:          state.Format,
		Recommendations: []rewards.Recommendation{},
		Top:             []rewards.Recommendation{},
		Summary:         state.Summary,
	}
	if state.Statement != nil {
		v.Format = state.Statement.Format
		v.Stats = state.Statement.Stats
	}
	if state.Report != nil {
		v.TotalSavings = state.Report.TotalSavings
		v.Recommendations = state.Report.Recommendations
		v.Top = rewards.TopBySavings(state.Report.Recommendations, top)
	}
	if v.Summary == nil {
		v.Summary = []rewards.CategorySummary{}
	}
	v.TotalSavingsDisplay = "₹" + decimal.NewFromFloat(v.TotalSavings).StringFixed(2)
	return v
}

// Analyze handles POST /api/analyze?format=csv|xlsx|pdf
// The request body is the raw statement file.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	format, err := statement.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "format must be one of csv, xlsx, pdf")
		return
	}

	top := defaultTop
	if topStr := r.URL.Query().Get("top"); topStr != "" {
		n, err := strconv.Atoi(topStr)
		if err != nil || n < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "top must be a non-negative integer")
			return
		}
		top = n
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Statement is too large")
			return
		}
		log.Warn().Err(err).Msg("Failed to read statement body")
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read statement body")
		return
	}
	if len(data) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Statement body is empty")
		return
	}

	state := &pipeline.AnalysisState{Format: format, Data: data, Catalog: h.snapshot}
	if err := h.analyzer.Execute(ctx, state); err != nil {
		status := statusForAnalysisError(err)
		log.Error().Err(err).Str("format", string(format)).Msg("Failed to analyse statement")
		middleware.WriteError(w, status, http.StatusText(status)+": "+err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, NewAnalysisView(state, top))
}

// statusForAnalysisError maps errors caused by the uploaded statement to
// 422 and everything else to 500.
func statusForAnalysisError(err error) int {
	switch {
	case errors.Is(err, statement.ErrUnsupportedFormat),
		errors.Is(err, statement.ErrMissingColumn),
		errors.Is(err, rewards.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
