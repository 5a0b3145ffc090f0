package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/4ster-light/site/app/cache"
)

var ErrNotFound = errors.New("content not found")

// Fetcher loads site content from its upstream source.
type Fetcher interface {
	FetchPosts(ctx context.Context) ([]Post, error)
	FetchRepositories(ctx context.Context) ([]Repository, error)
	FetchProfile(ctx context.Context) (Profile, error)
}

var _ Fetcher = (*GitHub)(nil)

type TTLs struct {
	Posts        time.Duration
	Repositories time.Duration
	Profile      time.Duration
}

// Service serves site content through the cache, refreshing from the
// fetcher on a miss.
type Service struct {
	cache   *cache.Cache
	fetcher Fetcher
	ttls    TTLs
}

func NewService(c *cache.Cache, fetcher Fetcher, ttls TTLs) *Service {
	return &Service{cache: c, fetcher: fetcher, ttls: ttls}
}

func (s *Service) Posts(ctx context.Context) ([]Post, error) {
	return cache.CachedArray(ctx, s.cache, CollectionPosts, s.ttls.Posts,
		func(p Post) string { return p.Slug },
		s.fetcher.FetchPosts)
}

// Post returns a single post with ids assigned to its headings and the
// matching table of contents.
func (s *Service) Post(ctx context.Context, slug string) (Post, []TocItem, error) {
	posts, err := s.Posts(ctx)
	if err != nil {
		return Post{}, nil, err
	}

	for _, post := range posts {
		if post.Slug != slug {
			continue
		}
		html, toc, err := ExtractHeadings(post.Content)
		if err != nil {
			return Post{}, nil, fmt.Errorf("failed to build table of contents for %s: %w", slug, err)
		}
		post.Content = html
		return post, toc, nil
	}

	return Post{}, nil, ErrNotFound
}

func (s *Service) PostsByTag(ctx context.Context, tag string) ([]Post, error) {
	posts, err := s.Posts(ctx)
	if err != nil {
		return nil, err
	}
	return PostsByTag(posts, tag), nil
}

func (s *Service) Tags(ctx context.Context) ([]TagCount, error) {
	posts, err := s.Posts(ctx)
	if err != nil {
		return nil, err
	}
	return TagCounts(posts), nil
}

func (s *Service) Repositories(ctx context.Context) ([]Repository, error) {
	return cache.CachedArray(ctx, s.cache, CollectionRepositories, s.ttls.Repositories,
		func(r Repository) string { return r.Name },
		s.fetcher.FetchRepositories)
}

func (s *Service) Repository(ctx context.Context, name string) (Repository, error) {
	repos, err := s.Repositories(ctx)
	if err != nil {
		return Repository{}, err
	}

	for _, repo := range repos {
		if repo.Name == name {
			return repo, nil
		}
	}
	return Repository{}, ErrNotFound
}

func (s *Service) Profile(ctx context.Context) (Profile, error) {
	return cache.Cached(ctx, s.cache, ValueProfile, s.ttls.Profile, s.fetcher.FetchProfile)
}

// Warm loads the named content so that the next reader hits the cache.
func (s *Service) Warm(ctx context.Context, name string) error {
	var err error
	switch name {
	case CollectionPosts:
		_, err = s.Posts(ctx)
	case CollectionRepositories:
		_, err = s.Repositories(ctx)
	case ValueProfile:
		_, err = s.Profile(ctx)
	default:
		return fmt.Errorf("unknown content %q", name)
	}
	return err
}
