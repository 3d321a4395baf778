package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DeafMist/igaming-news-radar/internal/models"
)

// ErrEmptyItem is returned for messages without a title or link.
var ErrEmptyItem = errors.New("item has no title or link")

// ItemMessage is one collected news item published to Kafka.
type ItemMessage struct {
	RunID       string    `json:"run_id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Desc        string    `json:"desc"`
	Source      string    `json:"source"`
	Link        string    `json:"link"`
	Timestamp   int64     `json:"timestamp"`
	CollectedAt time.Time `json:"collected_at"`
}

// NewItemMessages flattens a snapshot into messages in category order.
func NewItemMessages(runID string, snap models.Snapshot, collectedAt time.Time) []ItemMessage {
	var out []ItemMessage
	for _, cat := range snap.Data.Keys() {
		items, _ := snap.Data.Get(cat)
		for _, item := range items {
			out = append(out, ItemMessage{
				RunID:       runID,
				Category:    cat,
				Title:       item.Title,
				Desc:        item.Desc,
				Source:      item.Source,
				Link:        item.Link,
				Timestamp:   item.Timestamp,
				CollectedAt: collectedAt.UTC(),
			})
		}
	}
	return out
}

// DecodeItem parses and validates a message payload.
func DecodeItem(raw []byte) (ItemMessage, error) {
	var msg ItemMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ItemMessage{}, fmt.Errorf("decode item: %w", err)
	}
	msg.Title = strings.TrimSpace(msg.Title)
	msg.Link = strings.TrimSpace(msg.Link)
	if msg.Title == "" && msg.Link == "" {
		return ItemMessage{}, ErrEmptyItem
	}
	return msg, nil
}
