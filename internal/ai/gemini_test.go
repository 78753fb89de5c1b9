package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newFakeProvider spins up an httptest server speaking just enough of the
// generateContent wire format, and a Gemini client pointed at it.
func newFakeProvider(t *testing.T, handler http.HandlerFunc) *Gemini {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGemini("test-key", "test-model", srv.URL, testLogger())
}

func candidateResponse(text string) generateResponse {
	return generateResponse{
		Candidates: []struct {
			Content content `json:"content"`
		}{
			{Content: content{Parts: []part{{Text: text}}}},
		},
	}
}

func TestSummarize_ReturnsProviderText(t *testing.T) {
	g := newFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key query param = %q, want test-key", r.URL.Query().Get("key"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(candidateResponse("  A quiet rainy afternoon  "))
	})

	got, err := g.Summarize(context.Background(), "rain all day, read a book")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "A quiet rainy afternoon" {
		t.Errorf("Summarize() = %q, want trimmed provider text", got)
	}
}

func TestSummarize_TruncatesLongOutput(t *testing.T) {
	long := strings.Repeat("词", SummaryMaxChars+50)
	g := newFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(candidateResponse(long))
	})

	got, err := g.Summarize(context.Background(), "content")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if n := len([]rune(got)); n != SummaryMaxChars {
		t.Errorf("len = %d runes, want truncated to %d", n, SummaryMaxChars)
	}
}

// TestSummarize_ProviderErrorsBecomePlaceholder: a 500, an empty candidate
// list, and blank text all degrade to the fixed placeholder — the caller
// never sees a provider error.
func TestSummarize_ProviderErrorsBecomePlaceholder(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"http 500": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal", http.StatusInternalServerError)
		},
		"no candidates": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(generateResponse{})
		},
		"blank text": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(candidateResponse("   "))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			g := newFakeProvider(t, handler)
			got, err := g.Summarize(context.Background(), "content")
			if err != nil {
				t.Fatalf("Summarize() error = %v, provider failures must not error", err)
			}
			if got != SummaryPlaceholder {
				t.Errorf("Summarize() = %q, want placeholder %q", got, SummaryPlaceholder)
			}
		})
	}
}

// TestSummarize_NoAPIKey: an unconfigured client answers immediately with
// the placeholder and performs no request.
func TestSummarize_NoAPIKey(t *testing.T) {
	g := NewGemini("", "test-model", "http://127.0.0.1:0", testLogger())

	got, err := g.Summarize(context.Background(), "content")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != SummaryPlaceholder {
		t.Errorf("Summarize() = %q, want placeholder", got)
	}
}

func TestReflect_SubstitutesEmptyInsight(t *testing.T) {
	var seenPrompt string
	g := newFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		seenPrompt = req.Contents[0].Parts[0].Text
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(candidateResponse("some reflection"))
	})

	if _, err := g.Reflect(context.Background(), "", "why do I feel tired?"); err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}
	if !strings.Contains(seenPrompt, "None provided") {
		t.Errorf("prompt should mark the missing insight, got %q", seenPrompt)
	}
	if !strings.Contains(seenPrompt, "why do I feel tired?") {
		t.Errorf("prompt should carry the user question, got %q", seenPrompt)
	}
}
