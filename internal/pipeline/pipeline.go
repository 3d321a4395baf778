package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/DeafMist/igaming-news-radar/internal/config"
	"github.com/DeafMist/igaming-news-radar/internal/logger"
	"github.com/DeafMist/igaming-news-radar/internal/models"
	"github.com/DeafMist/igaming-news-radar/internal/processing"
)

// CategoryFetcher fetches one category. *Fetcher implements it.
type CategoryFetcher interface {
	FetchCategory(ctx context.Context, cat config.Category) Result
}

// Recorder observes run outcomes, typically for metrics.
type Recorder interface {
	ObserveCategory(category string, items int, err error)
	ObserveRun(duration time.Duration, failed int)
}

// Options configures a Pipeline.
type Options struct {
	Categories config.Categories
	Fetcher    CategoryFetcher
	StopWords  processing.StopWords
	TrendLimit int
	Clock      Clock
	Logger     *slog.Logger
	Recorder   Recorder
}

// Pipeline runs every category in order and assembles a snapshot.
type Pipeline struct {
	categories config.Categories
	fetcher    CategoryFetcher
	stop       processing.StopWords
	trendLimit int
	clock      Clock
	log        *slog.Logger
	recorder   Recorder
}

// New builds a pipeline. The category table is copied.
func New(opts Options) *Pipeline {
	cats := make(config.Categories, len(opts.Categories))
	copy(cats, opts.Categories)

	p := &Pipeline{
		categories: cats,
		fetcher:    opts.Fetcher,
		stop:       opts.StopWords,
		trendLimit: opts.TrendLimit,
		clock:      opts.Clock,
		log:        opts.Logger,
		recorder:   opts.Recorder,
	}
	if p.stop == nil {
		p.stop = processing.DefaultTrendStopWords
	}
	if p.trendLimit <= 0 {
		p.trendLimit = processing.DefaultTrendLimit
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	if p.log == nil {
		p.log = logger.Discard()
	}
	return p
}

// Run fetches all categories sequentially. A failed category is stored as an
// empty list and does not stop the run.
func (p *Pipeline) Run(ctx context.Context) models.Snapshot {
	start := p.clock()
	data := models.NewCategoryData(len(p.categories))
	var titles []string
	failed := 0

	for _, cat := range p.categories {
		res := p.fetcher.FetchCategory(ctx, cat)
		if p.recorder != nil {
			p.recorder.ObserveCategory(cat.ID, len(res.Items), res.Err)
		}

		if res.Failed() {
			failed++
			p.log.Warn("category fetch failed",
				slog.String("category", cat.ID),
				slog.Any("err", res.Err),
			)
			data.Set(cat.ID, nil)
			continue
		}

		data.Set(cat.ID, res.Items)
		for _, item := range res.Items {
			titles = append(titles, item.Title)
		}
		p.log.Debug("category fetched",
			slog.String("category", cat.ID),
			slog.Int("items", len(res.Items)),
		)
	}

	now := p.clock()
	if p.recorder != nil {
		p.recorder.ObserveRun(now.Sub(start), failed)
	}

	return models.Snapshot{
		LastUpdated:  models.FormatLastUpdated(now),
		TrendingTags: processing.ExtractTrending(titles, p.stop, p.trendLimit),
		Data:         data,
	}
}

// Categories returns a copy of the configured category table.
func (p *Pipeline) Categories() config.Categories {
	out := make(config.Categories, len(p.categories))
	copy(out, p.categories)
	return out
}
