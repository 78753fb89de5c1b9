package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/daily-diary/internal/apperror"
	"github.com/sakif/daily-diary/internal/model"
	"github.com/sakif/daily-diary/internal/repository"
)

// compile-time check that *DB implements repository.MediaRepository
var _ repository.MediaRepository = (*DB)(nil)

// AttachMedia inserts a media row under an existing entry. The caller
// (MediaService) is responsible for having resolved or created the entry
// first — this method assumes m.EntryID is valid and lets the foreign key
// reject anything else.
func (db *DB) AttachMedia(ctx context.Context, m *model.Media) error {
	if m.ID == "" {
		m.ID = xid.New().String()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO media (id, entry_id, type, url, name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.EntryID, m.Type, m.URL, m.Name, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: attaching media: %w", err)
	}

	return nil
}

// GetMediaOwner returns the media row plus the user ID that owns its parent
// entry, in one JOIN.
//
// This is the ownership lookup behind media deletion: media rows don't carry
// a user_id themselves, so "who owns this file?" is answered through the
// entry. Returns apperror.ErrNotFound when the ID matches nothing.
func (db *DB) GetMediaOwner(ctx context.Context, mediaID string) (*model.Media, string, error) {
	var m model.Media
	var ownerID string

	err := db.conn.QueryRowContext(ctx,
		`SELECT m.id, m.entry_id, m.type, m.url, m.name, e.user_id
		 FROM media m
		 JOIN entries e ON m.entry_id = e.id
		 WHERE m.id = ?`,
		mediaID,
	).Scan(&m.ID, &m.EntryID, &m.Type, &m.URL, &m.Name, &ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", apperror.NotFound("media", mediaID)
		}
		return nil, "", fmt.Errorf("sqlite: getting media %s: %w", mediaID, err)
	}

	return &m, ownerID, nil
}

// DeleteMedia removes a single media row. The parent entry stays — deleting
// one photo must not wipe the day's text and todos.
func (db *DB) DeleteMedia(ctx context.Context, mediaID string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, mediaID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting media %s: %w", mediaID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("media", mediaID)
	}

	return nil
}
