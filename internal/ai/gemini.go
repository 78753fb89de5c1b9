package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// aiTimeout bounds the generation call. The request is abandoned past the
// deadline — no retry — and the caller gets the placeholder. No database
// transaction is ever held open across this call.
const aiTimeout = 15 * time.Second

// Gemini calls Google's generateContent REST endpoint.
//
// Constructed once at startup; safe for concurrent use (resty clients are).
// With an empty API key the client is "disabled": every call returns the
// placeholder immediately, so the server runs fine without AI configured.
type Gemini struct {
	client *resty.Client
	apiKey string
	model  string
	logger *slog.Logger
}

// compile-time check that *Gemini implements Generator
var _ Generator = (*Gemini)(nil)

// NewGemini creates the Gemini-backed generator. baseURL is overridable for
// tests; pass "" for the real endpoint.
func NewGemini(apiKey, model, baseURL string, logger *slog.Logger) *Gemini {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(aiTimeout)

	return &Gemini{
		client: client,
		apiKey: apiKey,
		model:  model,
		logger: logger,
	}
}

// Wire shapes for the generateContent endpoint. Only the fields we touch.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Summarize generates the one-line "my day" summary.
func (g *Gemini) Summarize(ctx context.Context, renderedContent string) (string, error) {
	prompt := fmt.Sprintf(`You are a diary assistant with an eye for the small moments of a day.
From the user's notes below, write ONE short "my day" line.

Rules:
1. At most 25 words.
2. Don't cover everything — pick the single most memorable moment or feeling.
3. Match the tone to the content: playful, warm, wistful, or wry.
4. Write like a friend, not a report.
5. Return only the line itself — no quotes, no trailing punctuation, no explanation.

The user's notes for today:
%s`, renderedContent)

	text, err := g.generate(ctx, prompt, SummaryPlaceholder)
	if err != nil {
		return "", err
	}
	return truncate(text, SummaryMaxChars), nil
}

// Reflect answers the user's question about their own entry.
func (g *Gemini) Reflect(ctx context.Context, priorInsight, userQuestion string) (string, error) {
	if priorInsight == "" {
		priorInsight = "None provided"
	}
	prompt := fmt.Sprintf(`Based on the user's diary entry and their question, offer a thoughtful
reflection. Keep it concise and meaningful — a few sentences at most.

User's entry: %s
User's question: %s`, priorInsight, userQuestion)

	text, err := g.generate(ctx, prompt, ReflectionPlaceholder)
	if err != nil {
		return "", err
	}
	return truncate(text, ReflectionMaxChars), nil
}

// generate runs one prompt through the provider, mapping every provider-side
// failure to the given placeholder. The only non-nil error out of here is a
// cancelled/deadlined caller context.
func (g *Gemini) generate(ctx context.Context, prompt, placeholder string) (string, error) {
	if g.apiKey == "" {
		return placeholder, nil
	}

	var out generateResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetBody(generateRequest{
			Contents: []content{{Parts: []part{{Text: prompt}}}},
		}).
		SetResult(&out).
		Post(fmt.Sprintf("/models/%s:generateContent", g.model))

	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		g.logger.Warn("ai: generation request failed", slog.String("error", err.Error()))
		return placeholder, nil
	}
	if resp.IsError() {
		g.logger.Warn("ai: provider returned error status",
			slog.Int("status", resp.StatusCode()),
		)
		return placeholder, nil
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		g.logger.Warn("ai: provider returned no candidates")
		return placeholder, nil
	}

	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return placeholder, nil
	}
	return text, nil
}
