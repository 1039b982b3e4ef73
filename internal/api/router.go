// Package api wires the HTTP handlers into a router.
package api

import (
	"net/http"
	"strings"

	"github.com/dvloznov/card-optimizer/internal/api/handlers"
	"github.com/dvloznov/card-optimizer/internal/api/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the endpoint handlers served by the router.
type Handlers struct {
	Cards    *handlers.CardsHandler
	Classify *handlers.ClassifyHandler
	Analyze  *handlers.AnalyzeHandler
	Jobs     *handlers.JobsHandler
	Chat     *handlers.ChatHandler
}

// NewRouter registers all routes and applies the middleware chain.
func NewRouter(h Handlers, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/cards", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.Cards.ListCards(w, r)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/classify", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.Classify.Classify(w, r)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/analyze", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.Analyze.Analyze(w, r)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.Jobs.ListJobs(w, r)
		case http.MethodPost:
			h.Jobs.EnqueueAnalysis(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			h.Jobs.GetJob(w, r, jobID)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.Chat.Chat(w, r)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/health", handlers.Health)

	return middleware.Recovery(log)(
		middleware.RequestID(log)(
			middleware.Logger(log)(
				middleware.CORS(mux),
			),
		),
	)
}

func methodNotAllowed(w http.ResponseWriter) {
	middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
