package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/4ster-light/site/app/content"
	"github.com/mmcdole/gofeed"
)

func samplePosts() []content.Post {
	return []content.Post{
		{
			Slug:    "second",
			Content: "<p>Second <strong>body</strong></p>",
			PostMeta: content.PostMeta{
				Title:       "Second Post",
				Description: "Second description",
				Date:        "2024-03-04",
				Tags:        []string{"go", "web"},
			},
		},
		{
			Slug:     "draft",
			Content:  "<p>not yet</p>",
			PostMeta: content.PostMeta{Title: "Draft", Date: "2024-02-01", IsPreview: true},
		},
		{
			Slug:     "first",
			Content:  "<p>First</p>",
			PostMeta: content.PostMeta{Title: "First Post", Description: "First description", Date: "2024-01-02"},
		},
	}
}

func TestGenerateRSS(t *testing.T) {
	generator := NewGenerator("https://4ster.dev/", "Aster's blog", "", "1.2.3")

	rss, err := generator.Run(samplePosts())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(rss, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("RSS should contain XML declaration")
	}

	if !strings.Contains(rss, `<atom:link href="https://4ster.dev/feed.xml" rel="self" type="application/rss+xml" />`) {
		t.Error("RSS should contain atom:link self reference")
	}

	if !strings.Contains(rss, "<generator>Site/1.2.3</generator>") {
		t.Error("RSS should contain generator with version")
	}

	if !strings.Contains(rss, "<content:encoded><![CDATA[<p>Second <strong>body</strong></p>]]></content:encoded>") {
		t.Error("Post content should be in CDATA without escaping")
	}

	feed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("Expected generated RSS to parse, got: %v", err)
	}

	if feed.Title != "Aster's blog" {
		t.Errorf("Expected title %q, got %q", "Aster's blog", feed.Title)
	}

	if feed.Description != "Posts from Aster's blog" {
		t.Errorf("Expected default description, got %q", feed.Description)
	}

	if len(feed.Items) != 2 {
		t.Fatalf("Expected 2 items (preview skipped), got %d", len(feed.Items))
	}

	item := feed.Items[0]
	if item.Title != "Second Post" {
		t.Errorf("Expected first item title 'Second Post', got %q", item.Title)
	}

	if item.Link != "https://4ster.dev/posts/second" {
		t.Errorf("Expected item link, got %q", item.Link)
	}

	if item.GUID != "https://4ster.dev/posts/second" {
		t.Errorf("Expected item GUID to be the permalink, got %q", item.GUID)
	}

	if item.Description != "Second description" {
		t.Errorf("Expected item description, got %q", item.Description)
	}

	if len(item.Categories) != 2 || item.Categories[0] != "go" || item.Categories[1] != "web" {
		t.Errorf("Expected categories [go web], got %v", item.Categories)
	}

	want := time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)
	if item.PublishedParsed == nil || !item.PublishedParsed.Equal(want) {
		t.Errorf("Expected published date %v, got %v", want, item.PublishedParsed)
	}

	if feed.Items[1].Title != "First Post" {
		t.Errorf("Expected second item 'First Post', got %q", feed.Items[1].Title)
	}
}

func TestGenerateWithSpecialCharacters(t *testing.T) {
	generator := NewGenerator("https://4ster.dev", "Blog <&>", "Notes & \"thoughts\"", "dev")

	posts := []content.Post{
		{
			Slug:    "special",
			Content: "<p>contains ]]> terminator</p>",
			PostMeta: content.PostMeta{
				Title:       "Item with <tags> & \"quotes\"",
				Description: "Description with <em>emphasis</em>",
				Tags:        []string{"C & C++"},
			},
		},
	}

	rss, err := generator.Run(posts)
	if err != nil {
		t.Fatalf("Expected no error with special characters, got: %v", err)
	}

	if !strings.Contains(rss, "Blog &lt;&amp;&gt;") {
		t.Error("Feed title should have escaped special characters")
	}

	if !strings.Contains(rss, "Item with &lt;tags&gt; &amp; &#34;quotes&#34;") {
		t.Error("Item title should have escaped special characters")
	}

	if !strings.Contains(rss, "<category>C &amp; C++</category>") {
		t.Error("Category with ampersand should be escaped")
	}

	feed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("Expected RSS with special characters to parse, got: %v", err)
	}

	if len(feed.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(feed.Items))
	}

	if !strings.Contains(feed.Items[0].Content, "]]> terminator") {
		t.Errorf("Expected CDATA terminator to survive, got %q", feed.Items[0].Content)
	}

	if feed.Items[0].PublishedParsed != nil {
		t.Error("Post without a date should have no pubDate")
	}
}

func TestGenerateWithEmptyPosts(t *testing.T) {
	generator := NewGenerator("https://4ster.dev", "Empty", "", "dev")
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	generator.now = func() time.Time { return fixed }

	rss, err := generator.Run(nil)
	if err != nil {
		t.Fatalf("Expected no error with no posts, got: %v", err)
	}

	if strings.Contains(rss, "<item>") {
		t.Error("Empty RSS should not contain any items")
	}

	if !strings.Contains(rss, "<lastBuildDate>Sat, 01 Jun 2024 12:00:00 +0000</lastBuildDate>") {
		t.Error("Empty RSS should use the current time as lastBuildDate")
	}

	if !strings.HasSuffix(rss, "</rss>") {
		t.Error("Empty RSS should end with closing rss tag")
	}
}
