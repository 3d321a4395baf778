package processing

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	urlPattern   = regexp.MustCompile(`https?://[^\s]+`)
	runsOfSpace  = regexp.MustCompile(`\s+`)
	nonWordRunes = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
)

// archiveStopWords adds the short function words an archive extractor sees
// once the four letter floor of the trend pattern is gone.
var archiveStopWords = DefaultTrendStopWords.With(
	"a", "an", "the", "to", "in", "for", "of", "on", "at", "by", "and", "or",
	"is", "are", "was", "be", "it", "its", "as", "how", "why", "who", "all",
	"can", "not", "has", "had", "but", "our", "out", "off", "per", "via",
)

// RemoveURLs blanks every http(s) URL in input.
func RemoveURLs(input string) string {
	return urlPattern.ReplaceAllString(input, " ")
}

// CleanText decodes entities, drops URLs and punctuation and squeezes
// whitespace. It is meant for archive text, not for snapshot fields.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	out := RemoveURLs(html.UnescapeString(input))
	out = nonWordRunes.ReplaceAllString(out, " ")
	return strings.TrimSpace(runsOfSpace.ReplaceAllString(out, " "))
}

// KeywordExtractor tags archived items with their most frequent words.
type KeywordExtractor struct {
	Stop   StopWords
	Limit  int
	MinLen int
}

// NewKeywordExtractor uses the archive stop list extended with extra.
func NewKeywordExtractor(limit, minLen int, extra ...string) KeywordExtractor {
	return KeywordExtractor{Stop: archiveStopWords.With(extra...), Limit: limit, MinLen: minLen}
}

// Extract returns up to Limit keywords of text, most frequent first. Ties are
// alphabetical so documents indexed twice carry identical tags. A Limit <= 0
// returns every candidate.
func (k KeywordExtractor) Extract(text string) []string {
	clean := strings.ToLower(CleanText(text))
	if clean == "" {
		return nil
	}

	counts, words := tally(strings.Fields(clean), func(token string) bool {
		return utf8.RuneCountInString(token) >= k.MinLen && !k.Stop.Contains(token)
	})
	if len(words) == 0 {
		return nil
	}

	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] == counts[words[j]] {
			return words[i] < words[j]
		}
		return counts[words[i]] > counts[words[j]]
	})

	if k.Limit > 0 && len(words) > k.Limit {
		words = words[:k.Limit]
	}
	return words
}

// tally counts the tokens accepted by keep and lists each distinct one in
// order of first appearance.
func tally(tokens []string, keep func(string) bool) (map[string]int, []string) {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, token := range tokens {
		if !keep(token) {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}
	return counts, order
}
