package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/gapfill/internal/model"
	"github.com/ppiankov/gapfill/internal/util"
)

// DefaultMaxBytes caps a fetched dialogue document
const DefaultMaxBytes = 4 << 20

// ErrTooLarge is returned when a remote dialogue exceeds the size limit
var ErrTooLarge = errors.New("dialogue document too large")

// Throttle paces requests per key; fetches are keyed by host
type Throttle interface {
	Wait(ctx context.Context, key string) error
}

// Fetcher loads tagged dialogues from a tagger service or static host
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	throttle   Throttle
}

// FetchOption customizes a Fetcher
type FetchOption func(*Fetcher)

// WithThrottle paces requests per host
func WithThrottle(t Throttle) FetchOption {
	return func(f *Fetcher) {
		f.throttle = t
	}
}

// NewFetcher creates a new Fetcher. A nil client gets a plain one with timeout.
// A caller's client is copied, never modified.
func NewFetcher(client *http.Client, timeout time.Duration, userAgent string, maxBytes int64, opts ...FetchOption) *Fetcher {
	if client == nil {
		client = util.NewHTTPClient(timeout, "", "", "")
	} else {
		c := *client
		client = &c
	}
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if userAgent == "" {
		userAgent = "gapfill/1 (+https://github.com/ppiankov/gapfill)"
	}
	f := &Fetcher{
		httpClient: client,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsURL reports whether the input names an http(s) resource
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch retrieves and parses a remote dialogue. The format comes from the
// Content-Type, then the URL extension. A dialogue without a title gets one
// from the last URL path segment.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.Dialogue, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if f.throttle != nil {
		if err := f.throttle.Wait(ctx, req.URL.Host); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, text/yaml;q=0.9, */*;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	// Read one byte past the limit to detect oversized bodies
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}

	finalURL := resp.Request.URL.String()
	format := formatFromContentType(resp.Header.Get("Content-Type"), finalURL)

	d, err := ParseDialogue(body, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", finalURL, err)
	}
	if d.Title == "" {
		d.Title = SubjectFromURL(finalURL)
	}

	return d, nil
}

func formatFromContentType(contentType, rawURL string) Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil {
		switch {
		case strings.HasSuffix(mediaType, "json"):
			return FormatJSON
		case strings.HasSuffix(mediaType, "yaml"):
			return FormatYAML
		}
	}

	if parsed, err := url.Parse(rawURL); err == nil {
		return FormatFromPath(parsed.Path)
	}
	return FormatJSON
}

// SubjectFromURL extracts a human-readable subject from the URL
func SubjectFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	// Extract last path segment
	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]

	// Remove file extensions
	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}

	// De-slugify: replace underscores and hyphens with spaces
	last = strings.ReplaceAll(last, "_", " ")
	last = strings.ReplaceAll(last, "-", " ")

	return last
}
