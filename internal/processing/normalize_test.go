package processing_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/igaming-news-radar/internal/processing"
)

func TestSplitTitleSource(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		wantTitle  string
		wantSource string
	}{
		{name: "simple", title: "Big Win - SourceX", wantTitle: "Big Win", wantSource: "SourceX"},
		{name: "last separator wins", title: "Big Win - Site - SourceX", wantTitle: "Big Win - Site", wantSource: "SourceX"},
		{name: "no separator", title: "Big Win", wantTitle: "Big Win", wantSource: "News"},
		{name: "hyphen without spaces", title: "Play-n-GO hits record", wantTitle: "Play-n-GO hits record", wantSource: "News"},
		{name: "empty", title: "", wantTitle: "", wantSource: "News"},
		{name: "empty source", title: "Headline - ", wantTitle: "Headline", wantSource: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, source := processing.SplitTitleSource(tt.title)
			require.Equal(t, tt.wantTitle, title)
			require.Equal(t, tt.wantSource, source)
		})
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain", input: "  plain text  ", want: "plain text"},
		{
			name:  "google news summary",
			input: `<a href="https://news.example/x" target="_blank">Sweepstakes bill advances</a>&nbsp;&nbsp;<font color="#6f6f6f">Gaming Today</font>`,
			want:  "Sweepstakes bill advances  Gaming Today",
		},
		{name: "nested fragments", input: "<<b>bold</b>>", want: "bold>"},
		{name: "unclosed lt survives", input: "odds < 2.0 today", want: "odds < 2.0 today"},
		{name: "other entities kept", input: "Slots &amp; Tables", want: "Slots &amp; Tables"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.StripMarkup(tt.input))
		})
	}
}

func TestStripMarkupIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"<p>Hello&nbsp;world</p>",
		"&nb<i>sp;",
		" <a>x</a> <b",
		"a < b > c <d",
		"<<b>bold</b>>",
		"&nbsp;<br/>&nbsp;text&nbsp;",
	}
	for _, in := range inputs {
		once := processing.StripMarkup(in)
		require.Equal(t, once, processing.StripMarkup(once), "input %q", in)
	}
}

func TestAcceptDescription(t *testing.T) {
	require.Equal(t, "", processing.AcceptDescription("Short"))
	require.Equal(t, "", processing.AcceptDescription("View full coverage of today's top casino stories"))

	accepted := "Regulator fines operator"
	require.Len(t, accepted, 24)
	require.Equal(t, accepted, processing.AcceptDescription(accepted))

	exact := strings.Repeat("x", 20)
	require.Equal(t, exact, processing.AcceptDescription(exact))
	require.Equal(t, "", processing.AcceptDescription(strings.Repeat("x", 19)))

	// Length counts characters, not bytes.
	require.Equal(t, "", processing.AcceptDescription(strings.Repeat("é", 19)))
}

func TestDescription(t *testing.T) {
	require.Equal(t, "", processing.Description(""))
	require.Equal(t, "", processing.Description("<b>tiny</b>"))
	require.Equal(t,
		"Operator launches new live dealer studio",
		processing.Description("<p>Operator launches new live dealer studio</p>"),
	)
}
