package repository

import (
	"context"

	"github.com/sakif/daily-diary/internal/model"
)

// EntryInput is the full desired state of an entry aggregate for one save.
//
// Saves are full-replace: the child slices are the COMPLETE new collections,
// not deltas. A child element with a non-empty ID keeps that ID across the
// save (the frontend resubmits existing children verbatim); an element with
// an empty ID gets a freshly generated one.
type EntryInput struct {
	Insight      string
	MyDaySummary string
	Todos        []model.Todo
	Expenses     []model.Expense
	Media        []model.Media
}

// EntryRepository owns the entry aggregate and its atomic save/delete
// protocol. Every method takes the calling user's ID and scopes each query
// by it — an entry belonging to another user is unreachable here no matter
// what id or date is supplied.
type EntryRepository interface {
	// GetAll returns every entry the user owns, keyed by date, newest date
	// first at the SQL level. An empty map (not an error) means no entries.
	GetAll(ctx context.Context, userID string) (map[string]*model.EntryView, error)

	// GetByDate returns the entry for (userID, date), or (nil, nil) when no
	// entry exists yet — "no entry" is a normal outcome for a diary lookup.
	GetByDate(ctx context.Context, userID, date string) (*model.EntryView, error)

	// Upsert creates or updates the entry for (userID, date) and replaces
	// all child collections, in one transaction. Returns the persisted view.
	Upsert(ctx context.Context, userID, date string, in EntryInput) (*model.EntryView, error)

	// Delete removes the entry and its children for (userID, date).
	// Deleting a nonexistent entry is a silent no-op.
	Delete(ctx context.Context, userID, date string) error

	// UpdateDaySummary overwrites just the AI-generated summary line.
	// Returns apperror.ErrNotFound if the user has no entry for the date.
	UpdateDaySummary(ctx context.Context, userID, date, summary string) error

	// FindOrCreate returns the entry ID for (userID, date), creating a
	// minimal entry (empty scalars) if none exists. This is the implicit
	// entry-creation path used by media upload.
	FindOrCreate(ctx context.Context, userID, date string) (string, error)

	// GetEntryOwner returns the user ID owning the entry with the given
	// entry ID, or apperror.ErrNotFound. Used by the media store to verify
	// a client-supplied entry ID before attaching a file to it.
	GetEntryOwner(ctx context.Context, entryID string) (string, error)
}

// UserRepository persists user identities.
type UserRepository interface {
	// Create inserts a new user. Fails with apperror.ErrConflict when the
	// email is already registered (case-sensitive exact match).
	Create(ctx context.Context, user *model.User) error

	// GetByEmail returns the user with that exact email, or
	// apperror.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID returns the user with that internal ID, or apperror.ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// DeleteUser removes the user row. Entries and their children go with it
	// via cascade. Out-of-scope for the HTTP surface; used by admin tooling
	// and the cascade tests.
	DeleteUser(ctx context.Context, id string) error
}

// MediaRepository covers the media rows that have a lifecycle independent of
// their parent entry's save cycle: upload attaches a row, and a single row
// can be deleted on its own.
type MediaRepository interface {
	// AttachMedia inserts a media row under the given entry.
	AttachMedia(ctx context.Context, m *model.Media) error

	// GetMediaOwner returns the media row and the user ID owning its parent
	// entry. Returns apperror.ErrNotFound if no such row exists.
	GetMediaOwner(ctx context.Context, mediaID string) (*model.Media, string, error)

	// DeleteMedia removes a single media row by ID.
	DeleteMedia(ctx context.Context, mediaID string) error
}
