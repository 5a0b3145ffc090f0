package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func taggedPosts() []Post {
	return []Post{
		{Slug: "a", PostMeta: PostMeta{Tags: []string{"Go", "web"}}},
		{Slug: "b", PostMeta: PostMeta{Tags: []string{"go", "GO"}}},
		{Slug: "c", PostMeta: PostMeta{Tags: []string{"Rust"}}},
		{Slug: "d"},
	}
}

func TestPostsByTag(t *testing.T) {
	got := PostsByTag(taggedPosts(), " gO ")

	slugs := []string{}
	for _, p := range got {
		slugs = append(slugs, p.Slug)
	}
	assert.Equal(t, []string{"a", "b"}, slugs)

	assert.Empty(t, PostsByTag(taggedPosts(), "python"))
}

func TestTagCounts(t *testing.T) {
	assert.Equal(t, []TagCount{
		{Tag: "Go", Count: 2},
		{Tag: "Rust", Count: 1},
		{Tag: "web", Count: 1},
	}, TagCounts(taggedPosts()))

	assert.Equal(t, []TagCount{}, TagCounts(nil))
}
