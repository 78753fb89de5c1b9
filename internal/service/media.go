// service/media.go — upload and delete logic for files attached to entries.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/google/uuid"
	"github.com/sakif/daily-diary/internal/apperror"
	"github.com/sakif/daily-diary/internal/model"
	"github.com/sakif/daily-diary/internal/repository"
)

// MaxUploadBytes caps a single uploaded file at 50 MB. The handler also
// enforces this on the multipart reader so an oversized body is rejected
// while streaming, not after buffering.
const MaxUploadBytes = 50 << 20

// BlobStore is the slice of the storage layer the media service needs:
// write a blob, remove a blob, and best-effort convert an image to a
// browser-friendly format.
type BlobStore interface {
	Save(name string, data []byte) error
	Delete(name string) error
	TranscodeForBrowser(name string) (string, error)
}

// Extension allow-lists, lowercased with the leading dot. Classification
// prefers the declared Content-Type prefix (image/, video/, audio/) and
// falls back to the filename extension, so a file with a generic
// octet-stream type but a .png name still classifies as an image.
var (
	imageExts = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
		".webp": true, ".heic": true, ".heif": true, ".bmp": true,
		".tiff": true, ".tif": true, ".svg": true,
	}
	videoExts = map[string]bool{
		".mp4": true, ".webm": true, ".mov": true,
	}
	audioExts = map[string]bool{
		".mp3": true, ".wav": true, ".ogg": true,
	}
)

// MediaService handles uploading files into entries and deleting them again.
//
// UPLOAD TARGETS AN ENTRY TWO WAYS:
//   - by entry ID: the client already has an entry open and knows its ID;
//     the ID is verified to belong to the calling user before anything is
//     written
//   - by date: the client drops a file on a calendar day; if no entry exists
//     for that day yet, a minimal one is created implicitly
//
// Exactly one of the two must be supplied.
type MediaService struct {
	entries repository.EntryRepository
	media   repository.MediaRepository
	blobs   BlobStore
	logger  *slog.Logger
}

// NewMediaService creates a MediaService with all required dependencies.
func NewMediaService(
	entries repository.EntryRepository,
	media repository.MediaRepository,
	blobs BlobStore,
	logger *slog.Logger,
) *MediaService {
	return &MediaService{
		entries: entries,
		media:   media,
		blobs:   blobs,
		logger:  logger,
	}
}

// Upload stores a file and attaches it to an entry owned by userID.
//
// The pipeline:
//
//  1. Classify the file (image/video/audio) — unsupported types are rejected
//     before any byte hits disk or any row is written
//  2. Resolve the target entry (verify entryID ownership, or find-or-create
//     by entryDate)
//  3. Write the blob under a generated name (never the client's filename)
//  4. For images, attempt a browser-friendly transcode — a failed transcode
//     keeps the original file and is never an error
//  5. Insert the media row
//
// Returns the persisted media row, whose URL is servable under /uploads/.
func (s *MediaService) Upload(
	ctx context.Context,
	userID, entryID, entryDate string,
	filename, contentType string,
	data []byte,
) (*model.Media, error) {
	if len(data) == 0 {
		return nil, apperror.ValidationFailed("file", "file is empty")
	}
	if len(data) > MaxUploadBytes {
		return nil, apperror.ValidationFailed("file", "file exceeds the 50MB limit")
	}

	kind, ok := classify(filename, contentType)
	if !ok {
		return nil, apperror.UnsupportedMediaType(filename)
	}

	targetEntryID, err := s.resolveEntry(ctx, userID, entryID, entryDate)
	if err != nil {
		return nil, err
	}

	// Stored under a generated name: client filenames can collide, carry
	// path separators, or be unrepresentable on the filesystem. The original
	// name survives only as display metadata on the row.
	stored := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	if err := s.blobs.Save(stored, data); err != nil {
		return nil, fmt.Errorf("service/media: saving file: %w", err)
	}

	if kind == model.MediaImage {
		converted, err := s.blobs.TranscodeForBrowser(stored)
		if err != nil {
			return nil, fmt.Errorf("service/media: transcoding %s: %w", stored, err)
		}
		stored = converted
	}

	m := &model.Media{
		EntryID: targetEntryID,
		Type:    kind,
		URL:     "/uploads/" + stored,
		Name:    filename,
	}
	if err := s.media.AttachMedia(ctx, m); err != nil {
		// Keep storage consistent with the database: the row failed, so the
		// orphaned blob goes too.
		if delErr := s.blobs.Delete(stored); delErr != nil {
			s.logger.Warn("orphaned upload left on disk",
				slog.String("file", stored),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("service/media: attaching media: %w", err)
	}

	s.logger.Info("media uploaded",
		slog.String("userID", userID),
		slog.String("mediaID", m.ID),
		slog.String("type", kind),
		slog.Int("bytes", len(data)),
	)
	return m, nil
}

// Delete removes one media item: the row first, then the backing file.
//
// Ownership runs through the parent entry: an unknown media ID is NotFound,
// a known one under someone else's entry is Forbidden. A row whose backing
// file is already gone still deletes cleanly; the file removal is logged but
// never blocks the row delete.
func (s *MediaService) Delete(ctx context.Context, userID, mediaID string) error {
	if mediaID == "" {
		return apperror.ValidationFailed("id", "media id is required")
	}

	m, ownerID, err := s.media.GetMediaOwner(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("service/media: looking up media %s: %w", mediaID, err)
	}
	if ownerID != userID {
		return apperror.Forbidden("not authorized to delete this file")
	}

	if err := s.media.DeleteMedia(ctx, mediaID); err != nil {
		return fmt.Errorf("service/media: deleting media %s: %w", mediaID, err)
	}

	if name, ok := strings.CutPrefix(m.URL, "/uploads/"); ok {
		if err := s.blobs.Delete(name); err != nil {
			s.logger.Warn("media file removal failed",
				slog.String("mediaID", mediaID),
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("media deleted",
		slog.String("userID", userID),
		slog.String("mediaID", mediaID),
	)
	return nil
}

// resolveEntry turns the (entryID, entryDate) pair into a verified entry ID.
func (s *MediaService) resolveEntry(ctx context.Context, userID, entryID, entryDate string) (string, error) {
	switch {
	case entryID != "":
		ownerID, err := s.entries.GetEntryOwner(ctx, entryID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return "", apperror.NotFound("entry", entryID)
			}
			return "", fmt.Errorf("service/media: verifying entry %s: %w", entryID, err)
		}
		// Same response for "no such entry" and "someone else's entry".
		if ownerID != userID {
			return "", apperror.NotFound("entry", entryID)
		}
		return entryID, nil

	case entryDate != "":
		id, err := s.entries.FindOrCreate(ctx, userID, entryDate)
		if err != nil {
			return "", fmt.Errorf("service/media: creating entry for %s: %w", entryDate, err)
		}
		return id, nil

	default:
		return "", apperror.ValidationFailed("entryId", "either entryId or entryDate is required")
	}
}

// classify decides image/video/audio from the Content-Type prefix, falling
// back to the filename extension. Returns ok=false for anything outside the
// allow-lists.
func classify(filename, contentType string) (string, bool) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return model.MediaImage, true
	case strings.HasPrefix(contentType, "video/"):
		return model.MediaVideo, true
	case strings.HasPrefix(contentType, "audio/"):
		return model.MediaAudio, true
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case imageExts[ext]:
		return model.MediaImage, true
	case videoExts[ext]:
		return model.MediaVideo, true
	case audioExts[ext]:
		return model.MediaAudio, true
	}
	return "", false
}
