package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeafMist/igaming-news-radar/internal/config"
	"github.com/DeafMist/igaming-news-radar/internal/elasticsearch"
	"github.com/DeafMist/igaming-news-radar/internal/logger"
	"github.com/DeafMist/igaming-news-radar/internal/scheduler"
)

type archivePruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

func main() {
	log := logger.New("retention")
	cfg, err := config.LoadRetention()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := esClient.Ping(pingCtx); err != nil {
		// The job still starts; every run reports its own failure.
		log.Warn("elasticsearch not reachable yet", slog.Any("err", err))
	}
	cancel()

	sched, err := scheduler.New(cfg.Schedule, func(ctx context.Context) {
		runOnce(ctx, log, esClient, cfg.MaxAge, time.Now)
	}, log)
	if err != nil {
		log.Error("init scheduler", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("retention job running",
		slog.String("schedule", cfg.Schedule),
		slog.Duration("max_age", cfg.MaxAge),
	)
	sched.Run(ctx, true)
}

func runOnce(ctx context.Context, log *slog.Logger, pruner archivePruner, maxAge time.Duration, now func() time.Time) {
	subCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	cutoff := now().Add(-maxAge)
	deleted, err := pruner.DeleteOlderThan(subCtx, cutoff)
	if err != nil {
		log.Warn("retention run failed (will retry on next schedule)", slog.Any("err", err))
		return
	}

	if deleted > 0 {
		log.Info("retention run completed", slog.Int64("deleted", deleted), slog.Time("cutoff", cutoff))
	} else {
		log.Debug("retention run completed, no old documents found")
	}
}
