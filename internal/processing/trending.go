package processing

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultTrendLimit is how many trending keywords a snapshot carries.
const DefaultTrendLimit = 5

var (
	wordRun    = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)
	trendToken = regexp.MustCompile(`^[a-z]{4,15}$`)
)

// StopWords is a set of tokens excluded from trend analysis.
type StopWords map[string]struct{}

// NewStopWords builds a set from words, lower-cased.
func NewStopWords(words ...string) StopWords {
	s := make(StopWords, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

// With returns a copy of s extended with words.
func (s StopWords) With(words ...string) StopWords {
	out := make(StopWords, len(s)+len(words))
	for w := range s {
		out[w] = struct{}{}
	}
	for w := range NewStopWords(words...) {
		out[w] = struct{}{}
	}
	return out
}

// Contains reports whether word is a stop word.
func (s StopWords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// DefaultTrendStopWords holds English function words and terms that are
// generic for the iGaming domain. Short entries like "us" or year tokens can
// never match the token pattern; they are listed so the set stays complete
// if the pattern is widened.
var DefaultTrendStopWords = NewStopWords(
	// domain-generic
	"casino", "casinos", "betting", "gambling", "online", "game", "games",
	"new", "best", "guide", "review", "reviews", "top", "news", "igaming",
	// years and country codes
	"2023", "2024", "2025", "2026", "us", "uk", "usa",
	// pronouns
	"they", "them", "their", "theirs", "your", "yours", "ours", "this",
	"that", "these", "those", "what", "which", "whom", "whose", "itself",
	// prepositions
	"about", "above", "across", "after", "against", "along", "amid", "among",
	"around", "before", "behind", "below", "between", "beyond", "during",
	"from", "inside", "into", "near", "onto", "over", "past", "since",
	"through", "toward", "towards", "under", "until", "upon", "with",
	"within", "without",
	// conjunctions and common function words
	"also", "although", "because", "both", "either", "neither", "nor",
	"once", "than", "then", "though", "unless", "when", "where", "whether",
	"while", "been", "being", "have", "having", "were", "will", "would",
	"could", "should", "shall", "must", "just", "more", "most", "some",
	"such", "only", "very", "here", "there", "says", "said", "like",
	"make", "makes", "first", "year", "years", "week",
)

// ExtractTrending returns up to limit frequent keywords across titles, most
// frequent first, ties in order of first appearance. A limit <= 0 means
// DefaultTrendLimit.
func ExtractTrending(titles []string, stop StopWords, limit int) []string {
	if limit <= 0 {
		limit = DefaultTrendLimit
	}
	if len(titles) == 0 {
		return []string{}
	}

	text := strings.ToLower(strings.Join(titles, " "))
	// Tokens are whole Unicode word runs; an accented or alphanumeric word
	// is dropped as a unit rather than leaving an ASCII fragment behind.
	counts, order := tally(wordRun.FindAllString(text, -1), func(token string) bool {
		return trendToken.MatchString(token) && !stop.Contains(token)
	})

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order
}
