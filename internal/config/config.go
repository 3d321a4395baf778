package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultFeedBaseURL is the Google News RSS search endpoint with fixed
// locale parameters. The encoded query is appended to it.
const DefaultFeedBaseURL = "https://news.google.com/rss/search?hl=en-US&gl=US&ceid=US:en&q="

// Common contains Elasticsearch parameters shared by the archive services.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// Collector configures the fetch-normalize-aggregate run.
type Collector struct {
	SnapshotPath   string
	FeedBaseURL    string
	FeedRecency    string
	FeedTimeout    time.Duration
	FeedUserAgent  string
	MaxItems       int
	TrendingLimit  int
	QueriesFile    string
	Schedule       string
	MetricsAddr    string
	KafkaBrokers   []string
	KafkaTopic     string
	PublishTimeout time.Duration
}

// PublishEnabled reports whether collected items are fanned out to Kafka.
func (c *Collector) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Worker holds configuration for the Kafka -> Elasticsearch archive worker.
type Worker struct {
	Common
	KafkaBrokers     []string
	KafkaTopic       string
	KafkaConsumer    string
	KeywordLimit     int
	KeywordMinLength int
	DedupeCapacity   int
	DedupeTTL        time.Duration
	CommitInterval   time.Duration
	MetricsAddr      string
}

// DLQTopic is where messages that cannot be archived are parked.
func (w *Worker) DLQTopic() string {
	return w.KafkaTopic + "_dlq"
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr     string
	SnapshotPath string
	DefaultPage  int
	MaxPage      int
}

// Retention configures the archive cleanup job.
type Retention struct {
	Common
	Schedule string
	MaxAge   time.Duration
}

// LoadCollector builds a Collector config from environment variables.
func LoadCollector() (*Collector, error) {
	c := &Collector{
		SnapshotPath:   getEnv("SNAPSHOT_PATH", "news.json"),
		FeedBaseURL:    getEnv("FEED_BASE_URL", DefaultFeedBaseURL),
		FeedRecency:    getEnv("FEED_RECENCY", "7d"),
		FeedTimeout:    getDuration("FEED_TIMEOUT", "30s"),
		FeedUserAgent:  getEnv("FEED_USER_AGENT", "igaming-news-radar/1.0"),
		MaxItems:       getInt("MAX_ITEMS_PER_CATEGORY", 20),
		TrendingLimit:  getInt("TRENDING_LIMIT", 5),
		QueriesFile:    getEnv("QUERIES_FILE", ""),
		Schedule:       getEnv("COLLECTOR_CRON", ""),
		MetricsAddr:    getEnv("METRICS_ADDR", ""),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "news_items"),
		PublishTimeout: getDuration("KAFKA_PUBLISH_TIMEOUT", "10s"),
	}

	if c.SnapshotPath == "" {
		return nil, fmt.Errorf("SNAPSHOT_PATH must not be empty")
	}
	if c.FeedTimeout <= 0 {
		return nil, fmt.Errorf("FEED_TIMEOUT must be positive")
	}
	if c.MaxItems <= 0 {
		return nil, fmt.Errorf("MAX_ITEMS_PER_CATEGORY must be positive")
	}
	if c.TrendingLimit <= 0 {
		return nil, fmt.Errorf("TRENDING_LIMIT must be positive")
	}
	if c.PublishEnabled() && c.KafkaTopic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC must be set when KAFKA_BROKERS is")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:           loadCommon(),
		KafkaBrokers:     splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "news_items"),
		KafkaConsumer:    getEnv("KAFKA_CONSUMER_GROUP", "news-archiver"),
		KeywordLimit:     getInt("WORKER_KEYWORD_LIMIT", 8),
		KeywordMinLength: getInt("WORKER_KEYWORD_MIN_LEN", 4),
		DedupeCapacity:   getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:        getDuration("WORKER_DEDUPE_TTL", "24h"),
		CommitInterval:   getDuration("WORKER_COMMIT_INTERVAL", "2s"),
		MetricsAddr:      getEnv("METRICS_ADDR", ""),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}
	if c.KeywordLimit <= 0 {
		return nil, fmt.Errorf("WORKER_KEYWORD_LIMIT must be positive")
	}
	if c.KeywordMinLength < 0 {
		return nil, fmt.Errorf("WORKER_KEYWORD_MIN_LEN cannot be negative")
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:       loadCommon(),
		BindAddr:     getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		SnapshotPath: getEnv("SNAPSHOT_PATH", "news.json"),
		DefaultPage:  getInt("API_PAGE_SIZE", 20),
		MaxPage:      getInt("API_MAX_PAGE_SIZE", 100),
	}

	if c.DefaultPage <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxPage <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPage > c.MaxPage {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:   loadCommon(),
		Schedule: getEnv("RETENTION_CRON", "@every 24h"),
		MaxAge:   getDuration("RETENTION_MAX_AGE", "168h"),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}

	return c, nil
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "igaming-news"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err == nil {
		return d
	}
	fd, ferr := time.ParseDuration(fallback)
	if ferr != nil {
		panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
	}
	return fd
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
