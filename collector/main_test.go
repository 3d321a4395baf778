package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/igaming-news-radar/internal/logger"
	"github.com/DeafMist/igaming-news-radar/internal/models"
	"github.com/DeafMist/igaming-news-radar/internal/snapshot"
)

type stubRunner struct {
	snap models.Snapshot
	runs int
}

func (s *stubRunner) Run(context.Context) models.Snapshot {
	s.runs++
	return s.snap
}

type stubPublisher struct {
	runIDs []string
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, runID string, snap models.Snapshot) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	p.runIDs = append(p.runIDs, runID)
	items, _ := snap.Data.Get("lottery")
	return len(items), nil
}

type countingObserver struct{ published int }

func (o *countingObserver) ObservePublished(n int) { o.published += n }

type failingWriter struct{}

func (failingWriter) Write(models.Snapshot) error { return errors.New("disk full") }

func fixture() models.Snapshot {
	data := models.NewCategoryData(2)
	data.Set("lottery", []models.NewsItem{
		{Title: "Lottery jackpot climbs", Source: "AP", Link: "https://x/1", Timestamp: 1},
		{Title: "Syndicate wins draw", Source: "News", Link: "https://x/2", Timestamp: 2},
	})
	data.Set("legal", nil)
	return models.Snapshot{LastUpdated: "2025-10-08 12:00:00 UTC", TrendingTags: []string{"lottery"}, Data: data}
}

func TestCollectWritesAndPublishes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")
	pub := &stubPublisher{}
	obs := &countingObserver{}
	c := &collector{
		log:       logger.Discard(),
		pipeline:  &stubRunner{snap: fixture()},
		writer:    snapshot.NewFileWriter(path),
		publisher: pub,
		observer:  obs,
		newRunID:  func() string { return "run-1" },
	}

	require.NoError(t, c.collect(context.Background()))

	loaded, err := snapshot.Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"lottery", "legal"}, loaded.Data.Keys())
	require.Equal(t, []string{"run-1"}, pub.runIDs)
	require.Equal(t, 2, obs.published)
}

func TestCollectWithoutPublisher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")
	runner := &stubRunner{snap: fixture()}
	c := &collector{
		log:      logger.Discard(),
		pipeline: runner,
		writer:   snapshot.NewFileWriter(path),
		newRunID: func() string { return "run" },
	}

	require.NoError(t, c.collect(context.Background()))
	require.Equal(t, 1, runner.runs)
	require.FileExists(t, path)
}

func TestCollectWriteFailureIsReturned(t *testing.T) {
	pub := &stubPublisher{}
	c := &collector{
		log:       logger.Discard(),
		pipeline:  &stubRunner{snap: fixture()},
		writer:    failingWriter{},
		publisher: pub,
		newRunID:  func() string { return "run" },
	}

	err := c.collect(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
	require.Empty(t, pub.runIDs, "nothing is published when the snapshot was not written")
}

func TestCollectPublishFailureDoesNotFailRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")
	obs := &countingObserver{}
	c := &collector{
		log:       logger.Discard(),
		pipeline:  &stubRunner{snap: fixture()},
		writer:    snapshot.NewFileWriter(path),
		publisher: &stubPublisher{err: errors.New("broker down")},
		observer:  obs,
		newRunID:  func() string { return "run" },
	}

	require.NoError(t, c.collect(context.Background()))
	require.FileExists(t, path)
	require.Zero(t, obs.published)
}

type recordingWriter struct{ writes int }

func (w *recordingWriter) Write(models.Snapshot) error {
	w.writes++
	return nil
}

// cancellingRunner simulates a shutdown signal arriving during the fetch loop.
type cancellingRunner struct {
	cancel context.CancelFunc
}

func (r cancellingRunner) Run(context.Context) models.Snapshot {
	r.cancel()
	data := models.NewCategoryData(1)
	data.Set("lottery", nil)
	return models.Snapshot{LastUpdated: "2025-10-08 12:00:00 UTC", TrendingTags: []string{}, Data: data}
}

func TestCollectCancelledRunKeepsPreviousSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := &recordingWriter{}
	pub := &stubPublisher{}
	c := &collector{
		log:       logger.Discard(),
		pipeline:  cancellingRunner{cancel: cancel},
		writer:    w,
		publisher: pub,
		newRunID:  func() string { return "run" },
	}

	err := c.collect(ctx)
	require.ErrorIs(t, err, errInterrupted)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, w.writes)
	require.Empty(t, pub.runIDs)
}

func TestRunOnceTreatsShutdownAsCleanStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &recordingWriter{}
	c := &collector{
		log:      logger.Discard(),
		pipeline: &stubRunner{snap: fixture()},
		writer:   w,
		newRunID: func() string { return "run" },
	}

	require.NoError(t, c.runOnce(ctx))
	require.Zero(t, w.writes)
}

func TestRunOnceReturnsWriteFailure(t *testing.T) {
	c := &collector{
		log:      logger.Discard(),
		pipeline: &stubRunner{snap: fixture()},
		writer:   failingWriter{},
		newRunID: func() string { return "run" },
	}

	require.Error(t, c.runOnce(context.Background()))
}
