package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/4ster-light/site/app/content"
)

type Generator struct {
	baseURL     string
	title       string
	description string
	version     string
	now         func() time.Time
}

func NewGenerator(baseURL, title, description, version string) *Generator {
	return &Generator{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		title:       title,
		description: description,
		version:     version,
		now:         time.Now,
	}
}

// Run renders posts as an RSS 2.0 document. Preview posts are left out.
func (g *Generator) Run(posts []content.Post) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", g.title, 4)
	g.writeElement(&buf, "link", g.baseURL+"/", 4)
	description := g.description
	if description == "" {
		description = fmt.Sprintf("Posts from %s", g.title)
	}
	g.writeElement(&buf, "description", description, 4)

	fmt.Fprintf(&buf, "    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(g.baseURL+"/feed.xml"))

	var published []content.Post
	for _, post := range posts {
		if !post.IsPreview {
			published = append(published, post)
		}
	}

	lastBuildDate := g.now()
	if len(published) > 0 {
		if t, ok := parseDate(published[0].Date); ok {
			lastBuildDate = t
		}
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Site/%s", g.version), 4)

	for _, post := range published {
		g.writeItem(&buf, post)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, post content.Post) {
	link := fmt.Sprintf("%s/posts/%s", g.baseURL, post.Slug)

	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"true\">")
	xml.EscapeText(buf, []byte(link))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", post.Title, 6)
	g.writeElement(buf, "link", link, 6)
	g.writeElement(buf, "description", post.Description, 6)

	if post.Content != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(post.Content, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	if t, ok := parseDate(post.Date); ok {
		g.writeElement(buf, "pubDate", t.Format(time.RFC1123Z), 6)
	}

	for _, tag := range post.Tags {
		g.writeElement(buf, "category", tag, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, text string, indent int) {
	if text == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(text))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
