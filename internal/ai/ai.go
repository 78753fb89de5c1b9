// Package ai is the boundary to the external text-generation service.
//
// The rest of the app only sees the Generator interface: rendered text in,
// short natural-language text out. That keeps the diary core testable with
// a deterministic stub and makes the provider swappable — nothing outside
// this package knows Gemini exists.
//
// FAILURE CONTRACT:
// A diary entry must never show the user a raw transport or provider error.
// Every failure path in the Gemini client — missing key, timeout, non-200,
// empty candidates — degrades to a fixed, user-legible placeholder. No
// retries, no caching, no fallback provider.
package ai

import "context"

// Character budgets. The prompts ask the model to stay short, but prompts
// are suggestions — these truncations are the mechanical guarantee.
const (
	SummaryMaxChars    = 120
	ReflectionMaxChars = 400
)

// Placeholder strings returned when generation fails. User-facing copy, not
// error messages.
const (
	SummaryPlaceholder    = "An ordinary day, special in its own way."
	ReflectionPlaceholder = "Let me think about that one a little longer..."
)

// Generator produces short natural-language text for diary entries.
//
// Implementations must honour the failure contract above: the error return
// is reserved for context cancellation; provider trouble yields the
// placeholder with a nil error.
type Generator interface {
	// Summarize turns a textual rendering of one day's entry into a
	// single-line "my day" summary.
	Summarize(ctx context.Context, renderedContent string) (string, error)

	// Reflect answers the user's question in light of their written
	// insight for the day.
	Reflect(ctx context.Context, priorInsight, userQuestion string) (string, error)
}

// truncate cuts s to at most max runes. Byte-based slicing could split a
// multi-byte character in half; diary summaries are frequently non-ASCII.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
