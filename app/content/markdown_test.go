package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontMatter(t *testing.T) {
	doc := "---\r\ntitle: \"Windows\"\r\ndate: \"2024-01-01\"\r\nheader-image: true\r\n---\r\nBody line\r\n"

	meta, body, err := parseFrontMatter(doc)
	require.NoError(t, err)
	assert.Equal(t, "Windows", meta.Title)
	assert.Equal(t, "2024-01-01", meta.Date)
	assert.True(t, meta.HeaderImage)
	assert.False(t, meta.IsPreview)
	assert.Equal(t, []string{}, meta.Tags)
	assert.Equal(t, "Body line\n", body)
}

func TestParseFrontMatterMissing(t *testing.T) {
	meta, body, err := parseFrontMatter("# Just markdown\n")
	require.NoError(t, err)
	assert.Empty(t, meta.Title)
	assert.Equal(t, "# Just markdown\n", body)
}

func TestParseFrontMatterErrors(t *testing.T) {
	_, _, err := parseFrontMatter("---\ntitle: x\nno closing delimiter\n")
	assert.Error(t, err)

	_, _, err = parseFrontMatter("---\ntitle: [unclosed\n---\nbody\n")
	assert.Error(t, err)
}

func TestRewriteRelativeLinks(t *testing.T) {
	in := "[a](docs/a.md) [b](./b.png) [c](https://x.dev) [d](#usage) [e](mailto:me@x.dev)"
	out := rewriteRelativeLinks(in, "me", "repo")

	assert.Equal(t,
		"[a](https://github.com/me/repo/blob/main/docs/a.md) [b](https://github.com/me/repo/blob/main/b.png) [c](https://x.dev) [d](#usage) [e](mailto:me@x.dev)",
		out)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello World":      "hello-world",
		"  What's new?  ":  "whats-new",
		"Go -- generics":   "go-generics",
		"Snake_case stays": "snake_case-stays",
	}
	for in, want := range tests {
		assert.Equal(t, want, slugify(in), in)
	}
}

func TestExtractHeadings(t *testing.T) {
	html := `<h1>Title</h1><h2>First Part</h2><p>text</p><h3 id="custom">Nested <em>bit</em></h3><h4>Deep</h4><h5>Ignored</h5>`

	out, toc, err := ExtractHeadings(html)
	require.NoError(t, err)

	assert.Equal(t, []TocItem{
		{ID: "first-part", Level: 2, Text: "First Part"},
		{ID: "custom", Level: 3, Text: "Nested bit"},
		{ID: "deep", Level: 4, Text: "Deep"},
	}, toc)
	assert.Contains(t, out, `<h2 id="first-part">First Part</h2>`)
	assert.Contains(t, out, `<h3 id="custom">`)
	assert.NotContains(t, out, "<body>")
}

func TestMarkdownRender(t *testing.T) {
	html, err := NewMarkdown().Render([]byte("## Heading\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n<div>raw</div>\n"))
	require.NoError(t, err)

	assert.Contains(t, html, `<h2 id="heading">Heading</h2>`)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<div>raw</div>")
}

func TestExcerpt(t *testing.T) {
	long := "<p>" + strings.Repeat("word ", 100) + "</p>"
	got := excerpt(long)

	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), excerptLength+1)

	assert.Equal(t, "short text", truncate("short text", 20))
	assert.Equal(t, "héllo…", truncate("héllo wörld again", 8))
}
