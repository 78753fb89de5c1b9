package linkpreview

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sakif/daily-diary/internal/apperror"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// === OPEN GRAPH EXTRACTION ===

func TestPreview_OpenGraphTags(t *testing.T) {
	const page = `<!DOCTYPE html>
<html><head>
<title>Fallback Title</title>
<meta property="og:title" content="A Great Article" />
<meta property="og:description" content="It explains things." />
<meta property="og:image" content="https://cdn.example.com/hero.png" />
<meta property="og:site_name" content="Example Blog" />
</head><body><p>hello</p></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, page)
	}))
	defer srv.Close()

	p, err := newTestClient(t).Preview(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if p.Title != "A Great Article" {
		t.Errorf("title = %q, want og:title", p.Title)
	}
	if p.Description != "It explains things." {
		t.Errorf("description = %q", p.Description)
	}
	if p.Image != "https://cdn.example.com/hero.png" {
		t.Errorf("image = %q", p.Image)
	}
	if p.SiteName != "Example Blog" {
		t.Errorf("siteName = %q", p.SiteName)
	}
	if p.URL != srv.URL {
		t.Errorf("url = %q, want %q", p.URL, srv.URL)
	}
}

func TestPreview_FallsBackToTitleTag(t *testing.T) {
	const page = `<html><head><title>  Plain Old Title  </title></head><body></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, page)
	}))
	defer srv.Close()

	p, err := newTestClient(t).Preview(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if p.Title != "Plain Old Title" {
		t.Errorf("title = %q, want trimmed <title> text", p.Title)
	}
}

func TestPreview_TwitterCardFallback(t *testing.T) {
	const page = `<html><head>
<meta name="twitter:title" content="Tweet Title">
<meta name="twitter:description" content="Tweet description">
</head></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, page)
	}))
	defer srv.Close()

	p, err := newTestClient(t).Preview(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if p.Title != "Tweet Title" {
		t.Errorf("title = %q, want twitter:title", p.Title)
	}
	if p.Description != "Tweet description" {
		t.Errorf("description = %q", p.Description)
	}
}

// === DEGRADED PREVIEWS ===

func TestPreview_UnreachableHostDegrades(t *testing.T) {
	// A server that is started and immediately closed gives a connection
	// refused without waiting on a timeout.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := srv.URL
	srv.Close()

	p, err := newTestClient(t).Preview(context.Background(), deadURL)
	if err != nil {
		t.Fatalf("Preview should degrade, not fail: %v", err)
	}
	if p.Title != deadURL || p.URL != deadURL {
		t.Errorf("degraded preview should echo URL, got %+v", p)
	}
	if p.Description != "" || p.Image != "" {
		t.Errorf("degraded preview should be otherwise empty, got %+v", p)
	}
}

func TestPreview_NonHTMLBodyDegradesGracefully(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte{0x00, 0x01, 0x02, 0xff})
	}))
	defer srv.Close()

	p, err := newTestClient(t).Preview(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	// No meta tags found: title falls back to the URL itself.
	if p.Title != srv.URL {
		t.Errorf("title = %q, want URL echo", p.Title)
	}
}

// === VALIDATION ===

func TestPreview_InvalidURL(t *testing.T) {
	cases := []string{
		"",
		"not a url",
		"ftp://example.com/file",
		"javascript:alert(1)",
		"http://",
	}
	c := newTestClient(t)
	for _, raw := range cases {
		if _, err := c.Preview(context.Background(), raw); !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Preview(%q) error = %v, want validation error", raw, err)
		}
	}
}
