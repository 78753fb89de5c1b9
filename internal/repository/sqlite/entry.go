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

// Compile-time check that *DB implements repository.EntryRepository.
// If a method is missing or has the wrong signature, the build fails here
// instead of at some distant call site.
var _ repository.EntryRepository = (*DB)(nil)

// querier is the subset of database operations shared by *sql.DB and
// *sql.Tx. The child-collection readers below take a querier so the same
// code serves both the plain read paths and the re-read inside Upsert's
// transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// GetAll returns every entry owned by userID as a date-keyed map.
//
// The SQL orders by date DESC per the API contract; Go maps don't preserve
// order, but the handler serialises a map anyway (the frontend keys into it
// by date), so the ordering only matters for deterministic child loading.
func (db *DB) GetAll(ctx context.Context, userID string) (map[string]*model.EntryView, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, date, insight, my_day_summary, updated_at
		 FROM entries
		 WHERE user_id = ?
		 ORDER BY date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing entries: %w", err)
	}
	defer rows.Close()

	type row struct {
		id   string
		view *model.EntryView
	}
	var scanned []row

	for rows.Next() {
		var id string
		v := &model.EntryView{}
		if err := rows.Scan(&id, &v.Date, &v.Insight, &v.MyDaySummary, &v.LastSavedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning entry row: %w", err)
		}
		scanned = append(scanned, row{id: id, view: v})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating entries: %w", err)
	}

	// Load children AFTER the entry rows are fully consumed — sql.Rows holds
	// a pool connection, and nesting queries inside the iteration would tie
	// up a second connection per entry.
	result := make(map[string]*model.EntryView, len(scanned))
	for _, r := range scanned {
		if err := db.loadChildren(ctx, db.conn, r.id, r.view); err != nil {
			return nil, err
		}
		result[r.view.Date] = r.view
	}

	return result, nil
}

// GetByDate returns the full entry view for (userID, date).
//
// CONTRACT: (nil, nil) means "no entry yet" — a normal outcome for a diary,
// not an error. Callers that need a hard failure (none do today) must check
// for nil themselves. The userID predicate is the authorization boundary:
// another user's entry on the same date simply doesn't match.
func (db *DB) GetByDate(ctx context.Context, userID, date string) (*model.EntryView, error) {
	var id string
	v := &model.EntryView{}

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, date, insight, my_day_summary, updated_at
		 FROM entries
		 WHERE user_id = ? AND date = ?`,
		userID, date,
	).Scan(&id, &v.Date, &v.Insight, &v.MyDaySummary, &v.LastSavedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: getting entry for %s: %w", date, err)
	}

	if err := db.loadChildren(ctx, db.conn, id, v); err != nil {
		return nil, err
	}

	return v, nil
}

// Upsert creates or updates the entry for (userID, date) and replaces its
// child collections, all inside one transaction.
//
// THE PROTOCOL (full-replace, not diff/merge):
//  1. find the entry by (user_id, date); missing → INSERT with a fresh ID
//  2. present → overwrite insight/my_day_summary, bump updated_at
//     (id and date are immutable once created)
//  3. DELETE all existing todos/expenses/media for the entry
//  4. re-INSERT the supplied collections verbatim; children keep their
//     client-supplied IDs, children without an ID get a generated one
//  5. commit, then re-read and return the persisted view
//
// If anything fails mid-way the deferred Rollback undoes it all — no child
// rows half-deleted, no scalar update applied.
//
// WHY FULL-REPLACE?
// The diary UI edits a whole day as one unit and always submits the complete
// desired state. Replace-all keeps the save path trivial; the cost is that
// two concurrent saves of the same date are last-writer-wins.
func (db *DB) Upsert(ctx context.Context, userID, date string, in repository.EntryInput) (*model.EntryView, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning upsert tx: %w", err)
	}
	// Rollback after a successful Commit is a no-op, so this defer safely
	// covers every early-return error path below.
	defer tx.Rollback()

	now := time.Now()

	// Step 1/2: find or create the entry row, overwriting scalars.
	var entryID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM entries WHERE user_id = ? AND date = ?`,
		userID, date,
	).Scan(&entryID)

	switch {
	case err == sql.ErrNoRows:
		entryID = xid.New().String()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO entries (id, user_id, date, insight, my_day_summary, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			entryID, userID, date, in.Insight, in.MyDaySummary, now, now,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: inserting entry for %s: %w", date, err)
		}
	case err != nil:
		return nil, fmt.Errorf("sqlite: locating entry for %s: %w", date, err)
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE entries SET insight = ?, my_day_summary = ?, updated_at = ? WHERE id = ?`,
			in.Insight, in.MyDaySummary, now, entryID,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: updating entry %s: %w", entryID, err)
		}
	}

	// Step 3: clear the old child collections unconditionally.
	for _, table := range []string{"todos", "expenses", "media"} {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE entry_id = ?`, entryID,
		); err != nil {
			return nil, fmt.Errorf("sqlite: clearing %s for entry %s: %w", table, entryID, err)
		}
	}

	// Step 4: re-insert the supplied collections.
	for _, todo := range in.Todos {
		id := todo.ID
		if id == "" {
			id = xid.New().String()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO todos (id, entry_id, text, completed, created_at) VALUES (?, ?, ?, ?, ?)`,
			id, entryID, todo.Text, todo.Completed, now,
		); err != nil {
			return nil, fmt.Errorf("sqlite: inserting todo: %w", err)
		}
	}
	for _, exp := range in.Expenses {
		id := exp.ID
		if id == "" {
			id = xid.New().String()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, entry_id, item, amount, created_at) VALUES (?, ?, ?, ?, ?)`,
			id, entryID, exp.Item, exp.Amount, now,
		); err != nil {
			return nil, fmt.Errorf("sqlite: inserting expense: %w", err)
		}
	}
	for _, m := range in.Media {
		id := m.ID
		if id == "" {
			id = xid.New().String()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO media (id, entry_id, type, url, name, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			id, entryID, m.Type, m.URL, m.Name, now,
		); err != nil {
			return nil, fmt.Errorf("sqlite: inserting media: %w", err)
		}
	}

	// Step 5: re-read inside the same transaction so the returned view is
	// exactly what this save persisted, then commit.
	v := &model.EntryView{}
	err = tx.QueryRowContext(ctx,
		`SELECT date, insight, my_day_summary, updated_at FROM entries WHERE id = ?`,
		entryID,
	).Scan(&v.Date, &v.Insight, &v.MyDaySummary, &v.LastSavedAt)
	if err != nil {
		return nil, fmt.Errorf("sqlite: re-reading entry %s: %w", entryID, err)
	}
	if err := db.loadChildren(ctx, tx, entryID, v); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing upsert: %w", err)
	}

	return v, nil
}

// Delete removes the entry for (userID, date) with all its children.
//
// Deleting a date that has no entry is a silent no-op — the end state ("no
// entry for that date") is what the caller asked for either way. The child
// deletes are technically redundant with ON DELETE CASCADE, but spelling
// them out keeps the aggregate protocol visible in one place and doesn't
// depend on the foreign_keys pragma being on.
func (db *DB) Delete(ctx context.Context, userID, date string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete tx: %w", err)
	}
	defer tx.Rollback()

	var entryID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM entries WHERE user_id = ? AND date = ?`,
		userID, date,
	).Scan(&entryID)
	if err == sql.ErrNoRows {
		return nil // nothing to delete
	}
	if err != nil {
		return fmt.Errorf("sqlite: locating entry for %s: %w", date, err)
	}

	for _, table := range []string{"todos", "expenses", "media"} {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE entry_id = ?`, entryID,
		); err != nil {
			return fmt.Errorf("sqlite: deleting %s for entry %s: %w", table, entryID, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, entryID); err != nil {
		return fmt.Errorf("sqlite: deleting entry %s: %w", entryID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete: %w", err)
	}

	return nil
}

// UpdateDaySummary overwrites only the my_day_summary column. Used by the AI
// summary endpoint to write the generated line back after the fact.
func (db *DB) UpdateDaySummary(ctx context.Context, userID, date, summary string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE entries SET my_day_summary = ?, updated_at = ? WHERE user_id = ? AND date = ?`,
		summary, time.Now(), userID, date,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating day summary for %s: %w", date, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("entry", date)
	}

	return nil
}

// FindOrCreate returns the entry ID for (userID, date), creating a minimal
// entry (empty scalar fields) when none exists. Media upload uses this so
// that attaching a photo to an empty day works without a prior text save.
func (db *DB) FindOrCreate(ctx context.Context, userID, date string) (string, error) {
	var entryID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM entries WHERE user_id = ? AND date = ?`,
		userID, date,
	).Scan(&entryID)
	if err == nil {
		return entryID, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("sqlite: locating entry for %s: %w", date, err)
	}

	now := time.Now()
	entryID = xid.New().String()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO entries (id, user_id, date, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		entryID, userID, date, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("sqlite: creating entry for %s: %w", date, err)
	}

	return entryID, nil
}

// GetEntryOwner returns the user ID owning an entry. NotFound when the
// entry ID matches nothing — callers treat that the same as "not yours".
func (db *DB) GetEntryOwner(ctx context.Context, entryID string) (string, error) {
	var ownerID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id FROM entries WHERE id = ?`, entryID,
	).Scan(&ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", apperror.NotFound("entry", entryID)
		}
		return "", fmt.Errorf("sqlite: getting entry owner: %w", err)
	}
	return ownerID, nil
}

// loadChildren fills the view's todo/expense/media slices for one entry.
//
// rowid ordering preserves insertion order, which is the order the client
// submitted the collections in — created_at alone can't, because every child
// written by one Upsert shares the same timestamp.
func (db *DB) loadChildren(ctx context.Context, q querier, entryID string, v *model.EntryView) error {
	v.Todos = make([]model.Todo, 0, 4)
	v.Expenses = make([]model.Expense, 0, 4)
	v.Media = make([]model.Media, 0, 4)

	rows, err := q.QueryContext(ctx,
		`SELECT id, text, completed FROM todos WHERE entry_id = ? ORDER BY rowid`, entryID)
	if err != nil {
		return fmt.Errorf("sqlite: loading todos: %w", err)
	}
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed); err != nil {
			rows.Close()
			return fmt.Errorf("sqlite: scanning todo: %w", err)
		}
		v.Todos = append(v.Todos, t)
	}
	if err := closeRows(rows); err != nil {
		return fmt.Errorf("sqlite: iterating todos: %w", err)
	}

	rows, err = q.QueryContext(ctx,
		`SELECT id, item, amount FROM expenses WHERE entry_id = ? ORDER BY rowid`, entryID)
	if err != nil {
		return fmt.Errorf("sqlite: loading expenses: %w", err)
	}
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.Item, &e.Amount); err != nil {
			rows.Close()
			return fmt.Errorf("sqlite: scanning expense: %w", err)
		}
		v.Expenses = append(v.Expenses, e)
	}
	if err := closeRows(rows); err != nil {
		return fmt.Errorf("sqlite: iterating expenses: %w", err)
	}

	rows, err = q.QueryContext(ctx,
		`SELECT id, type, url, name FROM media WHERE entry_id = ? ORDER BY rowid`, entryID)
	if err != nil {
		return fmt.Errorf("sqlite: loading media: %w", err)
	}
	for rows.Next() {
		var m model.Media
		if err := rows.Scan(&m.ID, &m.Type, &m.URL, &m.Name); err != nil {
			rows.Close()
			return fmt.Errorf("sqlite: scanning media: %w", err)
		}
		v.Media = append(v.Media, m)
	}
	if err := closeRows(rows); err != nil {
		return fmt.Errorf("sqlite: iterating media: %w", err)
	}

	return nil
}

// closeRows closes the rows and reports any iteration error in one step.
func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}
