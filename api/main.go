package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/DeafMist/igaming-news-radar/internal/config"
	"github.com/DeafMist/igaming-news-radar/internal/elasticsearch"
	"github.com/DeafMist/igaming-news-radar/internal/logger"
	"github.com/DeafMist/igaming-news-radar/internal/metrics"
	"github.com/DeafMist/igaming-news-radar/internal/models"
	"github.com/DeafMist/igaming-news-radar/internal/snapshot"
)

type archive interface {
	Health(ctx context.Context) error
	SearchNews(ctx context.Context, params elasticsearch.SearchParams) (*elasticsearch.SearchResult, error)
}

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &server{
		log:      log,
		cfg:      cfg,
		es:       esClient,
		snapshot: func() (models.Snapshot, error) { return snapshot.Load(cfg.SnapshotPath) },
		gatherer: reg,
	}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type server struct {
	log      *slog.Logger
	cfg      *config.API
	es       archive
	snapshot func() (models.Snapshot, error)
	gatherer prometheus.Gatherer
}

type errorResponse struct {
	Error string `json:"error"`
}

type categoryResponse struct {
	Category    string            `json:"category"`
	LastUpdated string            `json:"last_updated"`
	Items       []models.NewsItem `json:"items"`
}

type trendingResponse struct {
	LastUpdated  string   `json:"last_updated"`
	TrendingTags []string `json:"trending_tags"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/snapshot/{category}", s.handleCategory)
	r.Get("/trending", s.handleTrending)
	r.Get("/news", s.handleSearch)
	if s.gatherer != nil {
		r.Handle("/metrics", metrics.Handler(s.gatherer))
	}
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "archive": "ok", "snapshot": "ok"}
	code := http.StatusOK

	if err := s.es.Health(ctx); err != nil {
		status["archive"] = err.Error()
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}
	if _, err := s.snapshot(); err != nil {
		status["snapshot"] = err.Error()
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, status)
}

func (s *server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) handleCategory(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}
	id := chi.URLParam(r, "category")
	items, found := snap.Data.Get(id)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown category " + id})
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{Category: id, LastUpdated: snap.LastUpdated, Items: items})
}

func (s *server) handleTrending(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, trendingResponse{LastUpdated: snap.LastUpdated, TrendingTags: snap.TrendingTags})
}

func (s *server) loadSnapshot(w http.ResponseWriter) (models.Snapshot, bool) {
	snap, err := s.snapshot()
	if err != nil {
		s.log.Warn("load snapshot", slog.Any("err", err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "snapshot not available"})
		return models.Snapshot{}, false
	}
	return snap, true
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	params := elasticsearch.SearchParams{
		Query:    strings.TrimSpace(q.Get("q")),
		Category: strings.TrimSpace(q.Get("category")),
		Keywords: parseCSV(q.Get("keywords")),
		Source:   strings.TrimSpace(q.Get("source")),
		From:     clampInt(q.Get("from"), 0, 10_000),
		Size:     clampInt(q.Get("size"), s.cfg.DefaultPage, s.cfg.MaxPage),
		Sort:     strings.TrimSpace(q.Get("sort")),
		Start:    parseTime(q.Get("start")),
		End:      parseTime(q.Get("end")),
	}

	result, err := s.es.SearchNews(ctx, params)
	if err != nil {
		s.log.Error("search", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func parseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts
	}
	if ts, err := time.Parse(time.DateOnly, raw); err == nil {
		return &ts
	}
	return nil
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func clampInt(raw string, fallback, max int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
