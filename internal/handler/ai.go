package handler

import (
	"net/http"

	"log/slog"

	"github.com/sakif/daily-diary/internal/service"
)

// AIHandler exposes the two generated-text operations.
//
//	POST /api/ai/summary  → one-line summary of a day, persisted on the entry
//	POST /api/ai/insight  → free-form reflection on a day, never persisted
//
// Neither endpoint errors when the text provider misbehaves — the service
// returns a friendly placeholder line instead, so the UI always has
// something to show.
type AIHandler struct {
	entries *service.EntryService
	logger  *slog.Logger
}

// NewAIHandler creates an AIHandler.
func NewAIHandler(entries *service.EntryService, logger *slog.Logger) *AIHandler {
	return &AIHandler{entries: entries, logger: logger}
}

type summaryRequest struct {
	Date string `json:"date"`
}

type reflectRequest struct {
	Date   string `json:"date"`
	Prompt string `json:"prompt"`
}

// HandleSummary generates and stores the day summary for an entry.
//
// HTTP: POST /api/ai/summary
// Body: {"date": "2024-01-01"}
//
// The date must already have an entry (404 otherwise). Responds with
// {"summary": "..."} — the same line a subsequent GET of the entry will
// carry in myDaySummary.
func (h *AIHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(w, r)
	if userID == "" {
		return
	}

	var req summaryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.entries.SummarizeDay(r.Context(), userID, req.Date)
	if err != nil {
		h.logger.Error("summary generation failed",
			slog.String("userID", userID),
			slog.String("date", req.Date),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// HandleReflect answers a question about one day's entry.
//
// HTTP: POST /api/ai/insight
// Body: {"date": "2024-01-01", "prompt": "How was my mood?"}
//
// Responds with {"insight": "..."}. The answer is not stored anywhere.
func (h *AIHandler) HandleReflect(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(w, r)
	if userID == "" {
		return
	}

	var req reflectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	answer, err := h.entries.Reflect(r.Context(), userID, req.Date, req.Prompt)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"insight": answer})
}
