package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "news_radar"

// Collector records pipeline run outcomes.
type Collector struct {
	fetches     *prometheus.CounterVec
	items       *prometheus.GaugeVec
	runDuration prometheus.Histogram
	runs        *prometheus.CounterVec
	lastSuccess prometheus.Gauge
	published   prometheus.Counter
	now         func() time.Time
}

// NewCollector registers collector metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_fetches_total",
			Help:      "Category fetches by outcome",
		}, []string{"category", "outcome"}),
		items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "category_items",
			Help:      "Items stored for a category in the latest run",
		}, []string{"category"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time spent on one pipeline run",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome",
		}, []string{"outcome"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run in which every category succeeded",
		}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_items_total",
			Help:      "Items fanned out to Kafka",
		}),
		now: time.Now,
	}
	reg.MustRegister(c.fetches, c.items, c.runDuration, c.runs, c.lastSuccess, c.published)
	return c
}

// ObserveCategory counts one category fetch.
func (c *Collector) ObserveCategory(category string, items int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.fetches.WithLabelValues(category, outcome).Inc()
	c.items.WithLabelValues(category).Set(float64(items))
}

// ObserveRun records run duration and whether any category failed.
func (c *Collector) ObserveRun(duration time.Duration, failed int) {
	c.runDuration.Observe(duration.Seconds())
	if failed > 0 {
		c.runs.WithLabelValues("partial").Inc()
		return
	}
	c.runs.WithLabelValues("ok").Inc()
	c.lastSuccess.Set(float64(c.now().Unix()))
}

// ObservePublished counts items written to Kafka.
func (c *Collector) ObservePublished(n int) {
	c.published.Add(float64(n))
}

// Archive records worker outcomes.
type Archive struct {
	messages *prometheus.CounterVec
}

// NewArchive registers worker metrics on reg.
func NewArchive(reg prometheus.Registerer) *Archive {
	a := &Archive{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_messages_total",
			Help:      "Consumed item messages by result",
		}, []string{"result"}),
	}
	reg.MustRegister(a.messages)
	return a
}

// Indexed counts an item written to the archive.
func (a *Archive) Indexed() { a.messages.WithLabelValues("indexed").Inc() }

// Duplicate counts an item skipped by the dedupe cache.
func (a *Archive) Duplicate() { a.messages.WithLabelValues("duplicate").Inc() }

// DeadLettered counts an item parked on the DLQ.
func (a *Archive) DeadLettered() { a.messages.WithLabelValues("dlq").Inc() }

// Handler exposes metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, log *slog.Logger, addr string, g prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server", slog.Any("err", err))
	}
}
