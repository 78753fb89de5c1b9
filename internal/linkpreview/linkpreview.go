// Package linkpreview fetches a web page and extracts the metadata needed to
// render a link card: title, description, preview image, and site name.
//
// DEGRADE, DON'T FAIL:
// A link card is decoration. If the target site is down, slow, or hostile to
// scrapers, the preview degrades to just echoing the URL — the save that
// embedded the link must never break because a third-party page didn't
// cooperate. The only hard error out of Preview is a URL that isn't a URL.
package linkpreview

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"log/slog"

	"github.com/go-resty/resty/v2"
	"github.com/sakif/daily-diary/internal/apperror"
	"golang.org/x/net/html"
)

// fetchTimeout caps the whole fetch. Past the deadline the request is
// abandoned — no retry — and the degraded preview is returned.
const fetchTimeout = 8 * time.Second

// Some sites serve bot-hostile stubs to unknown user agents; a mainstream
// browser string gets the same HTML a person would.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Preview is the metadata card for one URL.
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	SiteName    string `json:"siteName"`
}

// Previewer is what handlers depend on; tests substitute a deterministic
// implementation instead of the network.
type Previewer interface {
	Preview(ctx context.Context, rawURL string) (*Preview, error)
}

// Client fetches pages over HTTP with a bounded timeout.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

var _ Previewer = (*Client)(nil)

// New creates a preview client.
func New(logger *slog.Logger) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(fetchTimeout).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
			SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)),
		logger: logger,
	}
}

// Preview fetches rawURL and scrapes its meta tags.
//
// Failures after URL validation (timeout, DNS, non-HTML garbage) return the
// degraded preview — URL echoed as the title, everything else empty — with
// a nil error.
func (c *Client) Preview(ctx context.Context, rawURL string) (*Preview, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, apperror.ValidationFailed("url", "invalid URL")
	}

	fallback := &Preview{URL: rawURL, Title: rawURL}

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		c.logger.Warn("link preview fetch failed",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return fallback, nil
	}
	body := resp.RawBody()
	defer body.Close()

	meta := parseMeta(body)

	title := firstNonEmpty(meta["og:title"], meta["twitter:title"], meta["~title"])
	p := &Preview{
		URL:         rawURL,
		Title:       firstNonEmpty(title, rawURL),
		Description: firstNonEmpty(meta["og:description"], meta["twitter:description"], meta["description"]),
		Image:       firstNonEmpty(meta["og:image"], meta["twitter:image"]),
		SiteName:    firstNonEmpty(meta["og:site_name"], parsed.Hostname()),
	}
	return p, nil
}

// parseMeta tokenizes HTML and collects <meta property|name=... content=...>
// pairs plus the <title> text (stored under the reserved key "~title").
//
// A streaming tokenizer (not a full DOM parse) is enough here: meta tags
// live in <head>, so the loop usually stops within the first few KB. It also
// shrugs off the broken markup real pages ship, which is exactly where
// regex-based scraping falls apart.
func parseMeta(r io.Reader) map[string]string {
	meta := make(map[string]string)
	z := html.NewTokenizer(r)

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input — either way, done.
			return meta
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "meta":
				var key, val string
				for _, a := range tok.Attr {
					switch a.Key {
					case "property", "name":
						key = a.Val
					case "content":
						val = a.Val
					}
				}
				if key != "" && meta[key] == "" {
					meta[key] = val
				}
			case "title":
				if z.Next() == html.TextToken {
					if meta["~title"] == "" {
						meta["~title"] = strings.TrimSpace(z.Token().Data)
					}
				}
			case "body":
				// Meta tags belong to <head>; no point scanning the page.
				return meta
			}
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
