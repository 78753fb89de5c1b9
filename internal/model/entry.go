// Package model defines the data structures used throughout the application.
package model

import "time"

// Media kind values. The schema enforces the same set with a CHECK constraint,
// so a bad value fails loudly at the database instead of persisting garbage.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
)

// Entry is the diary record for one user on one calendar date.
//
// THE (user_id, date) KEY:
// A user has AT MOST ONE entry per date — the database enforces this with a
// UNIQUE(user_id, date) constraint. The date is an opaque string key (the
// frontend sends ISO dates like "2024-01-01", but this code never parses it —
// it's only ever compared for equality). ID and date are immutable once the
// entry exists; saves overwrite the scalar fields and replace the children.
type Entry struct {
	ID           string    `json:"id"           db:"id"`
	UserID       string    `json:"userId"       db:"user_id"`
	Date         string    `json:"date"         db:"date"`
	Insight      string    `json:"insight"      db:"insight"`
	MyDaySummary string    `json:"myDaySummary" db:"my_day_summary"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"    db:"updated_at"`
}

// Todo is a to-do item belonging to one entry. It has no lifecycle of its
// own — every save of the parent entry replaces the full todo list.
type Todo struct {
	ID        string `json:"id"        db:"id"`
	EntryID   string `json:"-"         db:"entry_id"`
	Text      string `json:"text"      db:"text"`
	Completed bool   `json:"completed" db:"completed"`
}

// Expense is a spent-money line belonging to one entry. Amount carries
// non-negative decimal semantics by convention; the schema stores a REAL and
// does not enforce the sign.
type Expense struct {
	ID      string  `json:"id"     db:"id"`
	EntryID string  `json:"-"      db:"entry_id"`
	Item    string  `json:"item"   db:"item"`
	Amount  float64 `json:"amount" db:"amount"`
}

// Media is an uploaded file attached to one entry.
//
// Unlike todos and expenses, media has an independent delete path: a single
// media item can be removed (row + backing file) without touching the parent
// entry. URL is the storage locator served under the /uploads/ static prefix;
// Name is the original client filename, kept for display only.
type Media struct {
	ID      string `json:"id"   db:"id"`
	EntryID string `json:"-"    db:"entry_id"`
	Type    string `json:"type" db:"type"`
	URL     string `json:"url"  db:"url"`
	Name    string `json:"name" db:"name"`
}

// EntryView is the handler-facing shape of a full entry aggregate — the
// scalar fields plus all child collections, read and written as one unit.
//
// WHY A SEPARATE VIEW TYPE?
// The frontend never sees entry IDs or user IDs — it addresses entries by
// date. The view flattens the aggregate into exactly what the API contract
// promises: {date, insight, myDaySummary, todos, expenses, media, lastSavedAt}.
// Child slices are always non-nil so the JSON encodes [] rather than null.
type EntryView struct {
	Date         string    `json:"date"`
	Insight      string    `json:"insight"`
	MyDaySummary string    `json:"myDaySummary"`
	Todos        []Todo    `json:"todos"`
	Expenses     []Expense `json:"expenses"`
	Media        []Media   `json:"media"`
	LastSavedAt  time.Time `json:"lastSavedAt"`
}
