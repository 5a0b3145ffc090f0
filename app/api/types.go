package api

import (
	"context"

	"github.com/4ster-light/site/app/cache"
	"github.com/4ster-light/site/app/content"
	"github.com/4ster-light/site/app/feed"
)

type ContentService interface {
	Posts(ctx context.Context) ([]content.Post, error)
	Post(ctx context.Context, slug string) (content.Post, []content.TocItem, error)
	PostsByTag(ctx context.Context, tag string) ([]content.Post, error)
	Tags(ctx context.Context) ([]content.TagCount, error)
	Repositories(ctx context.Context) ([]content.Repository, error)
	Repository(ctx context.Context, name string) (content.Repository, error)
	Profile(ctx context.Context) (content.Profile, error)
}

var _ ContentService = (*content.Service)(nil)

type CacheInterface interface {
	Invalidate(ctx context.Context, name string) error
	InvalidateAll(ctx context.Context) (int, error)
	Size(ctx context.Context) (int, error)
}

var _ CacheInterface = (*cache.Cache)(nil)

type GeneratorInterface interface {
	Run(posts []content.Post) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	content     ContentService
	cache       CacheInterface
	generator   GeneratorInterface
	cacheSecret string
	version     string
}

// clearAll is the clear request key that empties the whole cache.
const clearAll = "all"

type clearRequest struct {
	Key string `json:"key"`
}
