package handler

import (
	"io"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/daily-diary/internal/apperror"
	"github.com/sakif/daily-diary/internal/service"
)

// UploadHandler accepts media files and deletes them again.
//
//	POST   /api/upload       → multipart upload, attach to an entry
//	DELETE /api/upload/{id}  → remove one media item (row + file)
type UploadHandler struct {
	media  *service.MediaService
	logger *slog.Logger
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(media *service.MediaService, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{media: media, logger: logger}
}

// HandleUpload stores one uploaded file and attaches it to an entry.
//
// HTTP: POST /api/upload (multipart/form-data)
// Form fields:
//   - file      → the file itself (required)
//   - entryId   → attach to this existing entry, or
//   - entryDate → attach to this date, creating the entry if needed
//
// Exactly one of entryId/entryDate must be present. Responds 201 with
// {"media": row}; the row's url field is servable under /uploads/.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(w, r)
	if userID == "" {
		return
	}

	// MaxBytesReader aborts the read mid-stream once the cap is crossed, so
	// an oversized upload never buffers fully in memory.
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadBytes+1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperror.ValidationFailed("file", "a file form field is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperror.ValidationFailed("file", "could not read uploaded file"))
		return
	}

	m, err := h.media.Upload(
		r.Context(),
		userID,
		r.FormValue("entryId"),
		r.FormValue("entryDate"),
		header.Filename,
		header.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		h.logger.Error("upload failed",
			slog.String("userID", userID),
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"media": m})
}

// HandleDelete removes one media item.
//
// HTTP: DELETE /api/upload/{id}
//
// An unknown media ID is 404; a media ID under someone else's entry is 403.
func (h *UploadHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(w, r)
	if userID == "" {
		return
	}
	mediaID := chi.URLParam(r, "id")

	if err := h.media.Delete(r.Context(), userID, mediaID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "File deleted"})
}
