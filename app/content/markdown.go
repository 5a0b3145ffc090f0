package content

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

type Markdown struct {
	md goldmark.Markdown
}

func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

func (m *Markdown) Render(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// parseFrontMatter splits a YAML front matter block delimited by "---" lines
// from the Markdown body. Documents without front matter return zero metadata.
func parseFrontMatter(document string) (PostMeta, string, error) {
	var meta PostMeta

	document = strings.ReplaceAll(document, "\r\n", "\n")
	if !strings.HasPrefix(document, frontMatterDelimiter+"\n") {
		return meta, document, nil
	}

	rest := document[len(frontMatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontMatterDelimiter)
	if end < 0 {
		return meta, "", fmt.Errorf("front matter is not terminated")
	}

	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return meta, "", fmt.Errorf("failed to parse front matter: %w", err)
	}

	body := rest[end+1+len(frontMatterDelimiter):]
	body = strings.TrimPrefix(body, "\n")
	if meta.Tags == nil {
		meta.Tags = []string{}
	}

	return meta, body, nil
}

var readmeLinkPattern = regexp.MustCompile(`\]\(([^)\s]+)\)`)

// rewriteRelativeLinks points relative Markdown links at the repository's
// main branch on github.com.
func rewriteRelativeLinks(markdown, owner, repo string) string {
	base := fmt.Sprintf("https://github.com/%s/%s/blob/main/", owner, repo)

	return readmeLinkPattern.ReplaceAllStringFunc(markdown, func(match string) string {
		target := match[2 : len(match)-1]
		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") ||
			strings.HasPrefix(target, "#") || strings.HasPrefix(target, "mailto:") {
			return match
		}
		return "](" + base + strings.TrimPrefix(target, "./") + ")"
	})
}

var (
	slugInvalid    = regexp.MustCompile(`[^\w\s-]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugDashes     = regexp.MustCompile(`-+`)
)

func slugify(text string) string {
	slug := strings.ToLower(strings.TrimSpace(text))
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// ExtractHeadings collects h2-h4 headings for a table of contents. Headings
// without an id get one derived from their text; existing ids are kept.
func ExtractHeadings(content string) (string, []TocItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	items := []TocItem{}
	doc.Find("h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		id, ok := s.Attr("id")
		if !ok || id == "" {
			id = slugify(text)
			s.SetAttr("id", id)
		}

		items = append(items, TocItem{
			ID:    id,
			Level: int(goquery.NodeName(s)[1] - '0'),
			Text:  text,
		})
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", nil, fmt.Errorf("failed to render HTML: %w", err)
	}

	return out, items, nil
}
