package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/igaming-news-radar/internal/config"
	"github.com/DeafMist/igaming-news-radar/internal/dedupe"
	"github.com/DeafMist/igaming-news-radar/internal/elasticsearch"
	"github.com/DeafMist/igaming-news-radar/internal/logger"
	"github.com/DeafMist/igaming-news-radar/internal/metrics"
	"github.com/DeafMist/igaming-news-radar/internal/models"
	"github.com/DeafMist/igaming-news-radar/internal/processing"
	"github.com/DeafMist/igaming-news-radar/internal/stream"
)

type newsIndexer interface {
	IndexNews(ctx context.Context, doc models.NewsDocument) error
}

type outcomeObserver interface {
	Indexed()
	Duplicate()
	DeadLettered()
}

type archiver struct {
	log      *slog.Logger
	indexer  newsIndexer
	cache    *dedupe.Cache
	cfg      *config.Worker
	keywords processing.KeywordExtractor
	observer outcomeObserver
	now      func() time.Time
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

func main() {
	log := logger.New("worker")
	if err := run(log); err != nil {
		log.Error("worker failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.LoadWorker()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		return fmt.Errorf("init elasticsearch: %w", err)
	}
	if err := esClient.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	reg := prometheus.NewRegistry()
	if cfg.MetricsAddr != "" {
		go metrics.Serve(ctx, log, cfg.MetricsAddr, reg)
	}

	a := &archiver{
		log:      log,
		indexer:  esClient,
		cache:    dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL),
		cfg:      cfg,
		keywords: processing.NewKeywordExtractor(cfg.KeywordLimit, cfg.KeywordMinLength),
		observer: metrics.NewArchive(reg),
		now:      time.Now,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: cfg.CommitInterval,
	})
	defer reader.Close()

	dlqWriter := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.DLQTopic(),
		MaxAttempts:            5,
		WriteBackoffMin:        time.Second,
		WriteBackoffMax:        16 * time.Second,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", cfg.DLQTopic()),
	)

	return a.consume(ctx, reader, dlqWriter)
}

// consume archives messages until ctx ends. A message that can be neither
// archived nor dead-lettered stops the loop with its offset uncommitted, so a
// restarted worker resumes from it.
func (a *archiver) consume(ctx context.Context, reader messageReader, dlq messageWriter) error {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				a.log.Info("stopping", slog.Any("reason", err))
				return nil
			}
			a.log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := a.processMessage(ctx, msg); err != nil {
			a.log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)
			if dlqErr := dlq.WriteMessages(ctx, a.deadLetter(msg, err)); dlqErr != nil {
				return fmt.Errorf("dead-letter partition %d offset %d: %w", msg.Partition, msg.Offset, dlqErr)
			}
			if a.observer != nil {
				a.observer.DeadLettered()
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			a.log.Error("commit message", slog.Any("err", err))
		}
	}
}

// processMessage archives one item. Duplicates inside the dedupe window are
// acknowledged without indexing.
func (a *archiver) processMessage(ctx context.Context, msg kafka.Message) error {
	item, err := stream.DecodeItem(msg.Value)
	if err != nil {
		return err
	}

	doc := a.buildDocument(item)
	if a.cache.IsSeen(doc.ID) {
		a.log.Debug("duplicate item", slog.String("id", doc.ID))
		if a.observer != nil {
			a.observer.Duplicate()
		}
		return nil
	}

	if err := a.indexer.IndexNews(ctx, doc); err != nil {
		return fmt.Errorf("index %s: %w", doc.ID, err)
	}

	a.cache.MarkSeen(doc.ID)
	if a.observer != nil {
		a.observer.Indexed()
	}
	a.log.Info("indexed item",
		slog.String("id", doc.ID),
		slog.String("category", doc.Category),
		slog.String("title", doc.Title),
	)
	return nil
}

func (a *archiver) buildDocument(item stream.ItemMessage) models.NewsDocument {
	collected := item.CollectedAt
	if collected.IsZero() {
		collected = a.now().UTC()
	}
	published := collected
	if item.Timestamp > 0 {
		published = time.Unix(item.Timestamp, 0).UTC()
	}

	source := strings.TrimSpace(item.Source)
	if source == "" {
		source = "News"
	}

	id := uuid.NewString()
	if item.Link != "" {
		id = models.DocumentID(item.Category, item.Link)
	}

	return models.NewsDocument{
		ID:          id,
		Category:    item.Category,
		Title:       item.Title,
		Text:        item.Desc,
		Timestamp:   published,
		CollectedAt: collected,
		Keywords:    a.keywords.Extract(item.Title + " " + item.Desc),
		Source:      source,
		Link:        item.Link,
	}
}

func (a *archiver) deadLetter(msg kafka.Message, cause error) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers)+4)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "original_partition", Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: "original_offset", Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: "error", Value: []byte(cause.Error())},
		kafka.Header{Key: "timestamp", Value: []byte(a.now().UTC().Format(time.RFC3339))},
	)
	return kafka.Message{Key: msg.Key, Value: msg.Value, Headers: headers}
}
