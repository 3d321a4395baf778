package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/DeafMist/igaming-news-radar/internal/metrics"
)

func TestCollectorObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.ObserveCategory("esports", 12, nil)
	c.ObserveCategory("legal", 0, errors.New("timeout"))
	c.ObserveRun(3*time.Second, 1)
	c.ObserveRun(2*time.Second, 0)
	c.ObservePublished(12)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	series := map[string]int{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			series[mf.GetName()]++
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] += m.GetGauge().GetValue()
			}
		}
	}
	require.Equal(t, 2, series["news_radar_category_fetches_total"])
	require.Equal(t, 2, series["news_radar_category_items"])
	require.Equal(t, 2, series["news_radar_runs_total"])
	require.Equal(t, float64(12), values["news_radar_published_items_total"])
	require.Equal(t, float64(2), values["news_radar_runs_total"])
	require.Greater(t, values["news_radar_last_success_timestamp_seconds"], float64(0))
}

func TestArchiveAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := metrics.NewArchive(reg)
	a.Indexed()
	a.Indexed()
	a.Duplicate()
	a.DeadLettered()

	srv := httptest.NewServer(metrics.Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `news_radar_archive_messages_total{result="indexed"} 2`)
	require.Contains(t, string(body), `news_radar_archive_messages_total{result="dlq"} 1`)
}
