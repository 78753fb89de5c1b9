package handler

import (
	"net/http"

	"log/slog"

	"github.com/sakif/daily-diary/internal/linkpreview"
)

// LinkPreviewHandler resolves a URL into link-card metadata.
//
//	POST /api/link-preview  {"url": "https://..."}
//
// The fetch is bounded and best-effort: an unreachable or scrape-hostile
// page still returns 200 with the URL echoed as the title. Only a missing
// or syntactically invalid URL is a 400.
type LinkPreviewHandler struct {
	previews linkpreview.Previewer
	logger   *slog.Logger
}

// NewLinkPreviewHandler creates a LinkPreviewHandler.
func NewLinkPreviewHandler(previews linkpreview.Previewer, logger *slog.Logger) *LinkPreviewHandler {
	return &LinkPreviewHandler{previews: previews, logger: logger}
}

type previewRequest struct {
	URL string `json:"url"`
}

// HandlePreview fetches and returns preview metadata for one URL.
func (h *LinkPreviewHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	preview, err := h.previews.Preview(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}
