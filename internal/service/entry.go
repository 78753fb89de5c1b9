// service/entry.go — business logic for the diary entry aggregate.
package service

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/sakif/daily-diary/internal/ai"
	"github.com/sakif/daily-diary/internal/apperror"
	"github.com/sakif/daily-diary/internal/model"
	"github.com/sakif/daily-diary/internal/repository"
)

// EntryService handles reading and writing diary entries, plus the two
// AI-assisted operations (day summary and reflection).
//
// The save model is deliberately simple: the client always sends the FULL
// desired state of a day's entry, and the repository replaces whatever was
// there. No patching, no merge conflicts, no per-field endpoints.
type EntryService struct {
	entries repository.EntryRepository
	gen     ai.Generator
	logger  *slog.Logger
}

// NewEntryService creates an EntryService with all required dependencies.
func NewEntryService(entries repository.EntryRepository, gen ai.Generator, logger *slog.Logger) *EntryService {
	return &EntryService{
		entries: entries,
		gen:     gen,
		logger:  logger,
	}
}

// GetAll returns every entry the user owns, keyed by date. A user with no
// entries gets an empty map, not an error.
func (s *EntryService) GetAll(ctx context.Context, userID string) (map[string]*model.EntryView, error) {
	views, err := s.entries.GetAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/entry: listing entries: %w", err)
	}
	return views, nil
}

// GetByDate returns the entry for one date, or (nil, nil) when the user has
// not written anything that day — the handler turns that into a 404.
func (s *EntryService) GetByDate(ctx context.Context, userID, date string) (*model.EntryView, error) {
	if date == "" {
		return nil, apperror.ValidationFailed("date", "date is required")
	}
	view, err := s.entries.GetByDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("service/entry: fetching entry for %s: %w", date, err)
	}
	return view, nil
}

// Save creates or fully replaces the entry for (userID, date) and returns
// the persisted state, exactly as a subsequent GetByDate would report it.
func (s *EntryService) Save(ctx context.Context, userID, date string, in repository.EntryInput) (*model.EntryView, error) {
	if date == "" {
		return nil, apperror.ValidationFailed("date", "date is required")
	}

	view, err := s.entries.Upsert(ctx, userID, date, in)
	if err != nil {
		return nil, fmt.Errorf("service/entry: saving entry for %s: %w", date, err)
	}

	s.logger.Info("entry saved",
		slog.String("userID", userID),
		slog.String("date", date),
		slog.Int("todos", len(view.Todos)),
		slog.Int("expenses", len(view.Expenses)),
		slog.Int("media", len(view.Media)),
	)
	return view, nil
}

// Delete removes the entry and all its children for one date. Deleting a
// date that has no entry succeeds silently — the end state is the same.
func (s *EntryService) Delete(ctx context.Context, userID, date string) error {
	if date == "" {
		return apperror.ValidationFailed("date", "date is required")
	}
	if err := s.entries.Delete(ctx, userID, date); err != nil {
		return fmt.Errorf("service/entry: deleting entry for %s: %w", date, err)
	}
	s.logger.Info("entry deleted",
		slog.String("userID", userID),
		slog.String("date", date),
	)
	return nil
}

// SummarizeDay generates the one-line AI summary for a day, persists it on
// the entry, and returns it.
//
// The entry must already exist — summarizing a day with nothing written is
// a 404, not an implicit create. The generated line is stored via
// UpdateDaySummary so it survives until the next save or regeneration.
//
// Note that the generator never fails soft: provider errors come back as a
// placeholder line, and the placeholder is persisted like any other summary.
// Only context cancellation aborts the operation.
func (s *EntryService) SummarizeDay(ctx context.Context, userID, date string) (string, error) {
	if date == "" {
		return "", apperror.ValidationFailed("date", "date is required")
	}

	view, err := s.entries.GetByDate(ctx, userID, date)
	if err != nil {
		return "", fmt.Errorf("service/entry: fetching entry for %s: %w", date, err)
	}
	if view == nil {
		return "", apperror.NotFound("entry", date)
	}

	summary, err := s.gen.Summarize(ctx, renderDay(view))
	if err != nil {
		return "", fmt.Errorf("service/entry: generating summary for %s: %w", date, err)
	}

	if err := s.entries.UpdateDaySummary(ctx, userID, date, summary); err != nil {
		return "", fmt.Errorf("service/entry: storing summary for %s: %w", date, err)
	}

	s.logger.Info("day summary generated",
		slog.String("userID", userID),
		slog.String("date", date),
	)
	return summary, nil
}

// Reflect answers a free-form question about one day's entry, grounded in
// the insight text the user wrote that day. The answer is returned to the
// caller but never persisted — reflections are ephemeral by design.
func (s *EntryService) Reflect(ctx context.Context, userID, date, question string) (string, error) {
	if date == "" {
		return "", apperror.ValidationFailed("date", "date is required")
	}
	if strings.TrimSpace(question) == "" {
		return "", apperror.ValidationFailed("prompt", "prompt is required")
	}

	view, err := s.entries.GetByDate(ctx, userID, date)
	if err != nil {
		return "", fmt.Errorf("service/entry: fetching entry for %s: %w", date, err)
	}
	if view == nil {
		return "", apperror.NotFound("entry", date)
	}

	answer, err := s.gen.Reflect(ctx, view.Insight, question)
	if err != nil {
		return "", fmt.Errorf("service/entry: generating reflection for %s: %w", date, err)
	}
	return answer, nil
}

// renderDay flattens an entry into the plain-text digest the summarizer
// reads: the insight first, then todos with their done-state, then expenses
// with amounts. Sections with no content are omitted entirely.
func renderDay(view *model.EntryView) string {
	var b strings.Builder

	if view.Insight != "" {
		b.WriteString("Journal: ")
		b.WriteString(view.Insight)
		b.WriteString("\n")
	}
	if len(view.Todos) > 0 {
		b.WriteString("Tasks:\n")
		for _, todo := range view.Todos {
			mark := "[ ]"
			if todo.Completed {
				mark = "[x]"
			}
			fmt.Fprintf(&b, "%s %s\n", mark, todo.Text)
		}
	}
	if len(view.Expenses) > 0 {
		b.WriteString("Spending:\n")
		for _, exp := range view.Expenses {
			fmt.Fprintf(&b, "- %s: %.2f\n", exp.Item, exp.Amount)
		}
	}
	return strings.TrimSpace(b.String())
}
