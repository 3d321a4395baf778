package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoCategories is returned when a queries file defines no category.
var ErrNoCategories = errors.New("no categories defined")

// Category is one named topic bucket and the search query behind it.
type Category struct {
	ID    string `yaml:"id"`
	Query string `yaml:"query"`
}

// Categories is the ordered category table. The order is the order of keys
// in the snapshot and of title accumulation for trend extraction.
type Categories []Category

// IDs returns the category identifiers in order.
func (c Categories) IDs() []string {
	ids := make([]string, len(c))
	for i, cat := range c {
		ids[i] = cat.ID
	}
	return ids
}

// Validate checks that every category has a unique id and a query.
func (c Categories) Validate() error {
	if len(c) == 0 {
		return ErrNoCategories
	}
	seen := make(map[string]struct{}, len(c))
	for i, cat := range c {
		if cat.ID == "" {
			return fmt.Errorf("category %d: id is required", i)
		}
		if strings.TrimSpace(cat.Query) == "" {
			return fmt.Errorf("category %q: query is required", cat.ID)
		}
		if _, dup := seen[cat.ID]; dup {
			return fmt.Errorf("category %q: duplicate id", cat.ID)
		}
		seen[cat.ID] = struct{}{}
	}
	return nil
}

// Queries is the content of a queries file.
type Queries struct {
	Categories Categories `yaml:"categories"`
	StopWords  []string   `yaml:"stop_words"`
}

// LoadQueries reads the category table from a YAML file. An empty path
// yields the built-in table.
func LoadQueries(path string) (*Queries, error) {
	if path == "" {
		return &Queries{Categories: DefaultCategories()}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read queries file %s: %w", path, err)
	}

	var q Queries
	if err := yaml.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("parse queries file %s: %w", path, err)
	}
	for i := range q.Categories {
		q.Categories[i].ID = strings.TrimSpace(q.Categories[i].ID)
	}
	if err := q.Categories.Validate(); err != nil {
		return nil, fmt.Errorf("queries file %s: %w", path, err)
	}

	return &q, nil
}

// DefaultCategories returns a fresh copy of the built-in category table.
func DefaultCategories() Categories {
	out := make(Categories, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

var defaultCategories = Categories{
	{ID: "top_stories", Query: `"online gambling" OR "online casino" OR "igaming news"`},
	{ID: "all", Query: `iGaming OR "online casino" OR "sports betting" OR "gambling news"`},
	{ID: "casino", Query: `"new slot release" OR "table game" OR "Pragmatic Play" OR "Evolution Gaming" OR "Play’n GO" OR "game mechanics" OR Megaways OR "buy bonus" OR RTP OR "jackpot win" OR "live casino innovation" OR "crypto casino launch"`},
	{ID: "industry", Query: `"gambling regulation" OR "gambling license" OR "payment methods casino" OR "provably fair" OR "casino merger" OR "gambling affiliate" OR "responsible gambling tools"`},
	{ID: "sports_betting", Query: `"odds movement" OR "betting market shifts" OR "injury reports betting" OR "sharp money" OR "betting tips" OR "player props" OR "micro-bets" OR "same game parlay" OR "live betting"`},
	{ID: "legal", Query: `"gambling legalization" OR "betting tax" OR "gambling license approval" OR "gambling blacklist" OR "gambling advertising rules"`},
	{ID: "bonuses", Query: `"welcome bonus" OR "free bets" OR "low wager bonus" OR "wager free" OR "VIP promo" OR "high roller bonus" OR "casino promo code" OR "limited time offer"`},
	{ID: "strategy", Query: `"betting strategy" OR "bankroll management" OR "RTP explanation" OR "poker math" OR "blackjack strategy" OR "sports betting model" OR "betting mistakes"`},
	{ID: "tech", Query: `"AI betting tools" OR "blockchain gambling" OR "NFT gambling" OR "VR casino" OR "metaverse casino" OR "gamification betting" OR "crash games"`},
	{ID: "scandals", Query: `"huge casino win" OR "match fixing" OR "betting scandal" OR "casino dispute" OR "player ban" OR "famous bettor"`},
	{ID: "esports", Query: `"esports betting" OR "CS2 betting" OR "LoL odds" OR "Dota 2 betting" OR "Valorant betting" OR "esports market movement" OR "esports match fixing"`},
	{ID: "fantasy", Query: `"daily fantasy sports" OR DFS OR "player projections" OR "best ball" OR "fantasy prize pool" OR DraftKings OR FanDuel OR "fantasy legal news"`},
	{ID: "lottery", Query: `"lottery jackpot" OR "lottery results" OR "online lottery" OR "instant win games" OR "lottery strategy" OR "syndicate"`},
	{ID: "skill", Query: `"skill based casino" OR "arcade betting" OR "real money mini games" OR "PvP casino" OR "gambling tournaments"`},
	{ID: "crypto", Query: `"crypto betting" OR "tokenized gambling" OR "DAO casino" OR "NFT utility gambling" OR "on-chain jackpot" OR "no-kyc casino"`},
	{ID: "social", Query: `"social casino" OR "sweepstakes casino" OR "free to play casino" OR "social betting" OR "influencer casino"`},
	{ID: "emerging", Query: `"new igaming market" OR "latam betting" OR "asian gambling market" OR "african betting market" OR "igaming localization"`},
}
