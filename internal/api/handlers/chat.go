package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dvloznov/card-optimizer/internal/api/middleware"
	"github.com/dvloznov/card-optimizer/internal/catalog"
	"github.com/dvloznov/card-optimizer/internal/chat"
	"github.com/dvloznov/card-optimizer/internal/jobs"
	"github.com/dvloznov/card-optimizer/internal/rewards"
	"github.com/rs/zerolog"
)

// ChatHandler answers chat messages against the catalog and, when a job ID
// is given, that job's analysis.
type ChatHandler struct {
	snapshot *catalog.Snapshot
	store    jobs.JobStore
	log      zerolog.Logger
}

// NewChatHandler creates a new chat handler. store may be nil, in which case
// job IDs are rejected.
func NewChatHandler(snapshot *catalog.Snapshot, store jobs.JobStore, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{snapshot: snapshot, store: store, log: log}
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
		JobID   string `json:"job_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "message is required")
		return
	}

	var report *rewards.Report
	if req.JobID != "" {
		if h.store == nil {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}

		job, err := h.store.GetJob(r.Context(), req.JobID)
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		if err != nil {
			h.log.Error().Err(err).Str("job_id", req.JobID).Msg("Failed to get job")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
			return
		}
		if job.Status != jobs.JobStatusCompleted || job.Result == nil {
			middleware.WriteError(w, http.StatusConflict, "Job has not completed")
			return
		}
		report = job.Result.Report
	}

	agent := chat.NewAgent(h.snapshot.CardsCopy(), report)
	middleware.WriteJSON(w, http.StatusOK, agent.Respond(req.Message))
}
