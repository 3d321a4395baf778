package config_test

import (
	"testing"
	"time"

	"github.com/DeafMist/igaming-news-radar/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadCollectorDefaults(t *testing.T) {
	for _, key := range []string{
		"SNAPSHOT_PATH", "FEED_BASE_URL", "FEED_RECENCY", "FEED_TIMEOUT",
		"MAX_ITEMS_PER_CATEGORY", "TRENDING_LIMIT", "QUERIES_FILE",
		"COLLECTOR_CRON", "METRICS_ADDR", "KAFKA_BROKERS", "KAFKA_TOPIC",
	} {
		t.Setenv(key, "")
	}

	cfg, err := config.LoadCollector()
	require.NoError(t, err)

	require.Equal(t, "news.json", cfg.SnapshotPath)
	require.Equal(t, config.DefaultFeedBaseURL, cfg.FeedBaseURL)
	require.Equal(t, "7d", cfg.FeedRecency)
	require.Equal(t, 30*time.Second, cfg.FeedTimeout)
	require.Equal(t, 20, cfg.MaxItems)
	require.Equal(t, 5, cfg.TrendingLimit)
	require.Empty(t, cfg.Schedule)
	require.Empty(t, cfg.KafkaBrokers)
	require.False(t, cfg.PublishEnabled())
	require.Equal(t, "news_items", cfg.KafkaTopic)
}

func TestLoadCollectorOverrides(t *testing.T) {
	t.Setenv("SNAPSHOT_PATH", "/srv/site/news.json")
	t.Setenv("FEED_TIMEOUT", "5s")
	t.Setenv("MAX_ITEMS_PER_CATEGORY", "7")
	t.Setenv("COLLECTOR_CRON", "@every 1h")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092, broker-b:29093")

	cfg, err := config.LoadCollector()
	require.NoError(t, err)

	require.Equal(t, "/srv/site/news.json", cfg.SnapshotPath)
	require.Equal(t, 5*time.Second, cfg.FeedTimeout)
	require.Equal(t, 7, cfg.MaxItems)
	require.Equal(t, "@every 1h", cfg.Schedule)
	require.Equal(t, []string{"broker-a:29092", "broker-b:29093"}, cfg.KafkaBrokers)
	require.True(t, cfg.PublishEnabled())
}

func TestLoadCollectorRejectsInvalid(t *testing.T) {
	t.Setenv("MAX_ITEMS_PER_CATEGORY", "-1")
	_, err := config.LoadCollector()
	require.Error(t, err)
}

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "igaming-news", cfg.ElasticsearchIndex)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "news_items", cfg.KafkaTopic)
	require.Equal(t, "news_items_dlq", cfg.DLQTopic())
	require.Equal(t, "news-archiver", cfg.KafkaConsumer)
}

func TestLoadWorkerOverrides(t *testing.T) {
	t.Setenv("KAFKA_TOPIC", "custom_topic")
	t.Setenv("WORKER_KEYWORD_LIMIT", "12")
	t.Setenv("WORKER_KEYWORD_MIN_LEN", "5")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")
	t.Setenv("WORKER_COMMIT_INTERVAL", "5s")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "custom_topic_dlq", cfg.DLQTopic())
	require.Equal(t, 12, cfg.KeywordLimit)
	require.Equal(t, 5, cfg.KeywordMinLength)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
	require.Equal(t, 5*time.Second, cfg.CommitInterval)
}

func TestLoadAPI(t *testing.T) {
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("API_PAGE_SIZE", "15")
	t.Setenv("API_MAX_PAGE_SIZE", "200")
	t.Setenv("SNAPSHOT_PATH", "/data/news.json")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, 15, cfg.DefaultPage)
	require.Equal(t, 200, cfg.MaxPage)
	require.Equal(t, "/data/news.json", cfg.SnapshotPath)
}

func TestLoadAPIPageBounds(t *testing.T) {
	t.Setenv("API_PAGE_SIZE", "50")
	t.Setenv("API_MAX_PAGE_SIZE", "10")

	_, err := config.LoadAPI()
	require.Error(t, err)
}

func TestLoadRetention(t *testing.T) {
	t.Setenv("RETENTION_CRON", "0 3 * * *")
	t.Setenv("RETENTION_MAX_AGE", "36h")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)

	require.Equal(t, "0 3 * * *", cfg.Schedule)
	require.Equal(t, 36*time.Hour, cfg.MaxAge)
}
