package processing

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	titleSourceSeparator = " - "
	defaultSourceName    = "News"

	minDescriptionLength = 20
	boilerplatePrefix    = "View full coverage"
)

// markupTag matches anything from '<' to the next '>'.
var markupTag = regexp.MustCompile(`<.*?>`)

// SplitTitleSource splits a feed title of the form "Headline - Publisher" on the
// last separator. Titles without a separator keep their text and get the
// default source name.
func SplitTitleSource(title string) (string, string) {
	idx := strings.LastIndex(title, titleSourceSeparator)
	if idx < 0 {
		return title, defaultSourceName
	}
	return title[:idx], title[idx+len(titleSourceSeparator):]
}

// StripMarkup removes tag-like substrings, turns &nbsp; into spaces and trims
// the result. It is a lexical cleanup: a '<' with no closing '>' after it is
// left in place, and other entities such as &amp; are not decoded.
func StripMarkup(raw string) string {
	text := markupTag.ReplaceAllString(raw, "")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	return strings.TrimSpace(text)
}

// AcceptDescription drops descriptions that say nothing beyond the title:
// anything shorter than 20 characters or starting with the aggregator's
// "View full coverage" boilerplate.
func AcceptDescription(cleaned string) string {
	if utf8.RuneCountInString(cleaned) < minDescriptionLength {
		return ""
	}
	if strings.HasPrefix(cleaned, boilerplatePrefix) {
		return ""
	}
	return cleaned
}

// Description runs StripMarkup and AcceptDescription over a raw summary.
func Description(summary string) string {
	if summary == "" {
		return ""
	}
	return AcceptDescription(StripMarkup(summary))
}
