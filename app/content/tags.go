package content

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// PostsByTag keeps the posts carrying tag, compared case-insensitively.
func PostsByTag(posts []Post, tag string) []Post {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(tag))

	matched := []Post{}
	for _, post := range posts {
		for _, t := range post.Tags {
			if fold.String(t) == want {
				matched = append(matched, post)
				break
			}
		}
	}
	return matched
}

// TagCounts tallies tags across posts, most used first. The first spelling
// seen for a tag is the one reported.
func TagCounts(posts []Post) []TagCount {
	fold := cases.Fold()
	index := map[string]int{}

	counts := []TagCount{}
	for _, post := range posts {
		seen := map[string]bool{}
		for _, t := range post.Tags {
			key := fold.String(t)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true

			if i, ok := index[key]; ok {
				counts[i].Count++
				continue
			}
			index[key] = len(counts)
			counts = append(counts, TagCount{Tag: t, Count: 1})
		}
	}

	slices.SortStableFunc(counts, func(a, b TagCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), strings.Compare(a.Tag, b.Tag))
	})
	return counts
}
