package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/DeafMist/igaming-news-radar/internal/config"
	"github.com/DeafMist/igaming-news-radar/internal/feed"
	"github.com/DeafMist/igaming-news-radar/internal/models"
	"github.com/DeafMist/igaming-news-radar/internal/processing"
)

// DefaultMaxItems caps the number of items kept per category.
const DefaultMaxItems = 20

// Clock returns the current instant.
type Clock func() time.Time

// Result is the outcome of fetching one category: either Items or Err.
type Result struct {
	Category string
	Items    []models.NewsItem
	Err      error
}

// Failed reports whether the fetch failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Fetcher maps one category query onto normalized news items.
type Fetcher struct {
	Source   feed.Source
	BaseURL  string
	Recency  string
	MaxItems int
	// Timeout bounds a single category fetch. Zero means no extra bound.
	Timeout time.Duration
	Clock   Clock
}

// FetchCategory queries the source for cat and normalizes at most MaxItems
// entries in delivery order. Source failures are returned in Result.Err.
func (f *Fetcher) FetchCategory(ctx context.Context, cat config.Category) Result {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	u := feed.SearchURL(f.BaseURL, cat.Query, f.Recency)
	entries, err := f.Source.Fetch(ctx, u)
	if err != nil {
		return Result{Category: cat.ID, Err: fmt.Errorf("fetch %s: %w", cat.ID, err)}
	}

	limit := f.MaxItems
	if limit <= 0 {
		limit = DefaultMaxItems
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	items := make([]models.NewsItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, f.buildItem(e))
	}
	return Result{Category: cat.ID, Items: items}
}

func (f *Fetcher) buildItem(e feed.Entry) models.NewsItem {
	title, source := processing.SplitTitleSource(e.Title)
	return models.NewsItem{
		Title:     title,
		Desc:      processing.Description(e.Summary),
		Source:    source,
		Link:      e.Link,
		Timestamp: f.timestamp(e),
	}
}

// timestamp prefers the source-parsed time, then a lenient parse of the raw
// field, then the clock at the moment the item is built.
func (f *Fetcher) timestamp(e feed.Entry) int64 {
	if e.PublishedParsed != nil {
		return e.PublishedParsed.Unix()
	}
	if raw := strings.TrimSpace(e.Published); raw != "" {
		if t, err := dateparse.ParseIn(raw, time.UTC); err == nil {
			return t.Unix()
		}
	}
	return f.now().Unix()
}

func (f *Fetcher) now() time.Time {
	if f.Clock != nil {
		return f.Clock()
	}
	return time.Now()
}
