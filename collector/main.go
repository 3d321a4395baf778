package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DeafMist/igaming-news-radar/internal/config"
	"github.com/DeafMist/igaming-news-radar/internal/feed"
	"github.com/DeafMist/igaming-news-radar/internal/logger"
	"github.com/DeafMist/igaming-news-radar/internal/metrics"
	"github.com/DeafMist/igaming-news-radar/internal/models"
	"github.com/DeafMist/igaming-news-radar/internal/pipeline"
	"github.com/DeafMist/igaming-news-radar/internal/processing"
	"github.com/DeafMist/igaming-news-radar/internal/scheduler"
	"github.com/DeafMist/igaming-news-radar/internal/snapshot"
	"github.com/DeafMist/igaming-news-radar/internal/stream"
)

type snapshotRunner interface {
	Run(ctx context.Context) models.Snapshot
}

type snapshotWriter interface {
	Write(snap models.Snapshot) error
}

type itemPublisher interface {
	Publish(ctx context.Context, runID string, snap models.Snapshot) (int, error)
}

type publishObserver interface {
	ObservePublished(n int)
}

// collector wires one run: pipeline, snapshot file, optional fan-out.
type collector struct {
	log       *slog.Logger
	pipeline  snapshotRunner
	writer    snapshotWriter
	publisher itemPublisher
	observer  publishObserver
	newRunID  func() string
}

func main() {
	log := logger.New("collector")
	if err := run(log); err != nil {
		log.Error("collector failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.LoadCollector()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	queries, err := config.LoadQueries(cfg.QueriesFile)
	if err != nil {
		return fmt.Errorf("load queries: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reg := prometheus.NewRegistry()
	rec := metrics.NewCollector(reg)
	if cfg.MetricsAddr != "" {
		go metrics.Serve(ctx, log, cfg.MetricsAddr, reg)
	}

	fetcher := &pipeline.Fetcher{
		Source:   feed.NewGofeedSource(cfg.FeedTimeout, cfg.FeedUserAgent),
		BaseURL:  cfg.FeedBaseURL,
		Recency:  cfg.FeedRecency,
		MaxItems: cfg.MaxItems,
		Timeout:  cfg.FeedTimeout,
		Clock:    time.Now,
	}

	c := &collector{
		log: log,
		pipeline: pipeline.New(pipeline.Options{
			Categories: queries.Categories,
			Fetcher:    fetcher,
			StopWords:  processing.DefaultTrendStopWords.With(queries.StopWords...),
			TrendLimit: cfg.TrendingLimit,
			Clock:      time.Now,
			Logger:     log,
			Recorder:   rec,
		}),
		writer:   snapshot.NewFileWriter(cfg.SnapshotPath),
		observer: rec,
		newRunID: uuid.NewString,
	}

	if cfg.PublishEnabled() {
		pub := stream.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.PublishTimeout)
		defer func() {
			if err := pub.Close(); err != nil {
				log.Warn("close publisher", slog.Any("err", err))
			}
		}()
		c.publisher = pub
	}

	log.Info("collector started",
		slog.Int("categories", len(queries.Categories)),
		slog.String("snapshot", cfg.SnapshotPath),
		slog.Bool("publish", cfg.PublishEnabled()),
	)

	if cfg.Schedule == "" {
		return c.runOnce(ctx)
	}

	sched, err := scheduler.New(cfg.Schedule, func(ctx context.Context) {
		if err := c.runOnce(ctx); err != nil {
			log.Error("collect", slog.Any("err", err))
		}
	}, log)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	sched.Run(ctx, true)
	return nil
}

// runOnce is collect with shutdown treated as a clean stop.
func (c *collector) runOnce(ctx context.Context) error {
	err := c.collect(ctx)
	if errors.Is(err, errInterrupted) {
		c.log.Warn("run interrupted, previous snapshot kept", slog.Any("err", err))
		return nil
	}
	return err
}

// errInterrupted marks a run whose context ended before all categories were
// fetched. Its snapshot is discarded.
var errInterrupted = errors.New("run interrupted")

// collect runs the pipeline once and persists the snapshot. A cancelled run
// or a write failure is returned; publishing problems are logged.
func (c *collector) collect(ctx context.Context) error {
	runID := c.newRunID()
	log := c.log.With(slog.String("run_id", runID))

	snap := c.pipeline.Run(ctx)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errInterrupted, err)
	}
	items := 0
	for _, id := range snap.Data.Keys() {
		list, _ := snap.Data.Get(id)
		items += len(list)
	}

	if err := c.writer.Write(snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	log.Info("snapshot written",
		slog.String("last_updated", snap.LastUpdated),
		slog.Int("categories", snap.Data.Len()),
		slog.Int("items", items),
		slog.Any("trending", snap.TrendingTags),
	)

	if c.publisher == nil {
		return nil
	}
	n, err := c.publisher.Publish(ctx, runID, snap)
	if err != nil {
		log.Warn("publish items failed", slog.Any("err", err))
		return nil
	}
	if c.observer != nil {
		c.observer.ObservePublished(n)
	}
	log.Info("items published", slog.Int("count", n))
	return nil
}
