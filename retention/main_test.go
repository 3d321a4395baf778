package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/igaming-news-radar/internal/logger"
)

type stubPruner struct {
	cutoffs []time.Time
	err     error
}

func (p *stubPruner) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("missing deadline")
	}
	p.cutoffs = append(p.cutoffs, cutoff)
	return 3, p.err
}

func TestRunOnceUsesMaxAge(t *testing.T) {
	now := time.Date(2025, 10, 8, 3, 0, 0, 0, time.UTC)
	p := &stubPruner{}

	runOnce(context.Background(), logger.Discard(), p, 7*24*time.Hour, func() time.Time { return now })

	require.Len(t, p.cutoffs, 1)
	require.Equal(t, time.Date(2025, 10, 1, 3, 0, 0, 0, time.UTC), p.cutoffs[0])
}

func TestRunOnceToleratesErrors(t *testing.T) {
	p := &stubPruner{err: errors.New("cluster red")}
	require.NotPanics(t, func() {
		runOnce(context.Background(), logger.Discard(), p, time.Hour, time.Now)
	})
	require.Len(t, p.cutoffs, 1)
}
