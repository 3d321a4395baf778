package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Entry is one raw feed item as delivered by a Source.
type Entry struct {
	Title   string
	Summary string
	Link    string
	// Published is the raw publication time, empty when the feed omits it.
	Published string
	// PublishedParsed is nil when the source could not parse Published.
	PublishedParsed *time.Time
}

// Source turns a composed search URL into entries in server order.
type Source interface {
	Fetch(ctx context.Context, url string) ([]Entry, error)
}

// pathQuote turns QueryEscape output into path-style quoting: spaces become
// %20 and "/" stays literal.
var pathQuote = strings.NewReplacer("+", "%20", "%2F", "/")

// SearchURL appends the recency filter to query, percent-encodes it with
// spaces as %20 and "/" left raw, and appends it to base.
func SearchURL(base, query, recency string) string {
	q := query
	if recency != "" {
		q += " when:" + recency
	}
	return base + pathQuote.Replace(url.QueryEscape(q))
}

// GofeedSource fetches and parses RSS/Atom feeds over HTTP with gofeed.
type GofeedSource struct {
	parser *gofeed.Parser
}

// NewGofeedSource creates a source whose requests are bounded by timeout.
func NewGofeedSource(timeout time.Duration, userAgent string) *GofeedSource {
	fp := gofeed.NewParser()
	fp.Client = &http.Client{Timeout: timeout}
	if userAgent != "" {
		fp.UserAgent = userAgent
	}
	return &GofeedSource{parser: fp}
}

// Fetch downloads and parses the feed at url.
func (s *GofeedSource) Fetch(ctx context.Context, url string) ([]Entry, error) {
	parsed, err := s.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, Entry{
			Title:           item.Title,
			Summary:         item.Description,
			Link:            item.Link,
			Published:       item.Published,
			PublishedParsed: item.PublishedParsed,
		})
	}
	return entries, nil
}
