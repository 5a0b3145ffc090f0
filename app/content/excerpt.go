package content

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const excerptLength = 200

// excerpt derives a short plain-text summary from rendered post HTML. It tries
// readability first and falls back to the document text.
func excerpt(html string) string {
	text := ""

	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		slog.Debug("Readability extraction failed", "error", err)
	} else {
		text = article.Excerpt
		if text == "" {
			text = article.TextContent
		}
	}

	if strings.TrimSpace(text) == "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return ""
		}
		text = doc.Text()
	}

	return truncate(strings.Join(strings.Fields(text), " "), excerptLength)
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	cut := strings.TrimRight(string(runes[:limit]), " ")
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
