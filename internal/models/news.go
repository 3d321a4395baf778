package models

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LastUpdatedLayout is the Go layout behind "YYYY-MM-DD HH:MM:SS UTC".
const LastUpdatedLayout = "2006-01-02 15:04:05 UTC"

// NewsItem is the normalized unit written into the snapshot.
type NewsItem struct {
	Title     string `json:"title"`
	Desc      string `json:"desc"`
	Source    string `json:"source"`
	Link      string `json:"link"`
	Timestamp int64  `json:"timestamp"`
}

// Snapshot is the single artifact produced by one pipeline run.
type Snapshot struct {
	LastUpdated  string       `json:"last_updated"`
	TrendingTags []string     `json:"trending_tags"`
	Data         CategoryData `json:"data"`
}

// FormatLastUpdated renders t the way Snapshot.LastUpdated expects it.
func FormatLastUpdated(t time.Time) string {
	return t.UTC().Format(LastUpdatedLayout)
}

// CategoryData maps category IDs to items while remembering insertion order,
// so the JSON object keys follow the configured category order.
type CategoryData struct {
	keys  []string
	items map[string][]NewsItem
}

// NewCategoryData returns an empty mapping sized for n categories.
func NewCategoryData(n int) CategoryData {
	return CategoryData{
		keys:  make([]string, 0, n),
		items: make(map[string][]NewsItem, n),
	}
}

// Set stores items under id. A nil slice is stored as an empty one.
func (d *CategoryData) Set(id string, items []NewsItem) {
	if d.items == nil {
		d.items = make(map[string][]NewsItem)
	}
	if items == nil {
		items = []NewsItem{}
	}
	if _, ok := d.items[id]; !ok {
		d.keys = append(d.keys, id)
	}
	d.items[id] = items
}

// Get returns the items for id and whether the category is present.
func (d CategoryData) Get(id string) ([]NewsItem, bool) {
	items, ok := d.items[id]
	return items, ok
}

// Keys returns category IDs in insertion order.
func (d CategoryData) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len reports the number of categories.
func (d CategoryData) Len() int {
	return len(d.keys)
}

// MarshalJSON writes the object with keys in insertion order.
func (d CategoryData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, fmt.Errorf("marshal category key: %w", err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(d.items[id])
		if err != nil {
			return nil, fmt.Errorf("marshal category %s: %w", id, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object and keeps the key order found in the input.
func (d *CategoryData) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("category data: expected object, got %v", tok)
	}

	*d = NewCategoryData(0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("category data: expected string key, got %v", tok)
		}
		var items []NewsItem
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("category data %s: %w", id, err)
		}
		d.Set(id, items)
	}
	_, err = dec.Token()
	return err
}

// NewsDocument represents an archived item stored in Elasticsearch.
type NewsDocument struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	CollectedAt time.Time `json:"collected_at"`
	Keywords    []string  `json:"keywords"`
	Source      string    `json:"source"`
	Link        string    `json:"link"`
}

// DocumentID hashes category and link, so an item seen again in a later run
// maps onto the same archive document.
func DocumentID(category, link string) string {
	sum := sha1.Sum([]byte(category + "|" + strings.TrimSpace(link)))
	return hex.EncodeToString(sum[:])
}
