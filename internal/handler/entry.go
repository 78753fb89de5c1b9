package handler

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/daily-diary/internal/model"
	"github.com/sakif/daily-diary/internal/repository"
	"github.com/sakif/daily-diary/internal/service"
)

// EntryHandler exposes the diary entry aggregate over HTTP.
//
// Entries are addressed by DATE, never by internal ID — the URL for a day's
// entry is stable from the moment the user first opens that day:
//
//	GET    /api/entries          → all entries, keyed by date
//	GET    /api/entries/{date}   → one entry
//	PUT    /api/entries/{date}   → create or fully replace one entry
//	DELETE /api/entries/{date}   → remove one entry and everything in it
//
// All routes require auth; the userID comes from the request context.
type EntryHandler struct {
	entries *service.EntryService
	logger  *slog.Logger
}

// NewEntryHandler creates an EntryHandler.
func NewEntryHandler(entries *service.EntryService, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{entries: entries, logger: logger}
}

// saveEntryRequest is the PUT body: the complete desired state of one day.
// Todos, expenses, and media are the FULL new collections — anything the
// client omits is deleted.
type saveEntryRequest struct {
	Insight      string          `json:"insight"`
	MyDaySummary string          `json:"myDaySummary"`
	Todos        []model.Todo    `json:"todos"`
	Expenses     []model.Expense `json:"expenses"`
	Media        []model.Media   `json:"media"`
}

// entryResponse wraps one entry. The pointer encodes a missing entry as
// {"entry": null} — for the frontend, "nothing written that day" is a blank
// page, not an error.
type entryResponse struct {
	Entry *model.EntryView `json:"entry"`
}

// HandleGetAll returns every entry the user owns.
//
// HTTP: GET /api/entries
//
// The entries member is a JSON object keyed by date — the same shape the
// frontend keeps in memory — so a calendar view can hydrate from one
// request. A user with no entries gets {"entries": {}}.
func (h *EntryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(w, r)
	if userID == "" {
		return
	}

	views, err := h.entries.GetAll(r.Context(), userID)
	if err != nil {
		h.logger.Error("listing entries failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": views})
}

// HandleGetByDate returns one entry, or {"entry": null} for a date with
// nothing written yet.
//
// HTTP: GET /api/entries/{date}
func (h *EntryHandler) HandleGetByDate(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(w, r)
	if userID == "" {
		return
	}
	date := chi.URLParam(r, "date")

	view, err := h.entries.GetByDate(r.Context(), userID, date)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entryResponse{Entry: view})
}

// HandleSave creates or fully replaces the entry for a date.
//
// HTTP: PUT /api/entries/{date}
//
// PUT (not PATCH) is the honest verb here: the body is the complete new
// state and the server stores exactly that. The response echoes the entry
// as persisted, so the client can reconcile IDs generated for new children.
func (h *EntryHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(w, r)
	if userID == "" {
		return
	}
	date := chi.URLParam(r, "date")

	var req saveEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.entries.Save(r.Context(), userID, date, repository.EntryInput{
		Insight:      req.Insight,
		MyDaySummary: req.MyDaySummary,
		Todos:        req.Todos,
		Expenses:     req.Expenses,
		Media:        req.Media,
	})
	if err != nil {
		h.logger.Error("saving entry failed",
			slog.String("userID", userID),
			slog.String("date", date),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entryResponse{Entry: view})
}

// HandleDelete removes an entry and all its children.
//
// HTTP: DELETE /api/entries/{date}
//
// Succeeds whether or not an entry existed — after the call the date is
// empty either way.
func (h *EntryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(w, r)
	if userID == "" {
		return
	}
	date := chi.URLParam(r, "date")

	if err := h.entries.Delete(r.Context(), userID, date); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Entry deleted"})
}
