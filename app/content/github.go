package content

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/go-github/v67/github"
	"golang.org/x/sync/errgroup"
)

const (
	postFileName       = "content.md"
	defaultConcurrency = 4
)

type GitHubOption func(*GitHub)

// WithBaseURL points the client at a different API root, such as a GitHub
// Enterprise host or a test server.
func WithBaseURL(rawURL string) GitHubOption {
	return func(g *GitHub) {
		if rawURL == "" {
			return
		}
		if !strings.HasSuffix(rawURL, "/") {
			rawURL += "/"
		}
		u, err := url.Parse(rawURL)
		if err != nil {
			slog.Warn("Ignoring invalid GitHub API URL", "url", rawURL, "error", err)
			return
		}
		g.client.BaseURL = u
	}
}

func WithUserAgent(userAgent string) GitHubOption {
	return func(g *GitHub) {
		if userAgent != "" {
			g.client.UserAgent = userAgent
		}
	}
}

// GitHub fetches blog posts, repositories and the owner profile from the
// GitHub REST API.
type GitHub struct {
	client   *github.Client
	markdown *Markdown
	owner    string
	blogRepo string
}

func NewGitHub(token, owner, blogRepo string, opts ...GitHubOption) *GitHub {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	g := &GitHub{
		client:   client,
		markdown: NewMarkdown(),
		owner:    owner,
		blogRepo: blogRepo,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FetchPosts reads every top-level directory of the blog repository as a post
// and returns them newest first.
func (g *GitHub) FetchPosts(ctx context.Context) ([]Post, error) {
	_, entries, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.blogRepo, "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog repository: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.GetType() == "dir" {
			dirs = append(dirs, entry.GetName())
		}
	}

	posts := make([]Post, len(dirs))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(defaultConcurrency)
	for i, dir := range dirs {
		eg.Go(func() error {
			post, err := g.fetchPost(egctx, dir)
			if err != nil {
				return err
			}
			posts[i] = post
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(posts, func(a, b Post) int {
		return postTime(b).Compare(postTime(a))
	})

	slog.Debug("Posts fetched", "count", len(posts))
	return posts, nil
}

func (g *GitHub) fetchPost(ctx context.Context, dir string) (Post, error) {
	file, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.blogRepo, path.Join(dir, postFileName), nil)
	if err != nil {
		return Post{}, fmt.Errorf("failed to fetch post %s: %w", dir, err)
	}
	if file == nil {
		return Post{}, fmt.Errorf("post %s is not a file", dir)
	}

	raw, err := file.GetContent()
	if err != nil {
		return Post{}, fmt.Errorf("failed to decode post %s: %w", dir, err)
	}

	meta, body, err := parseFrontMatter(raw)
	if err != nil {
		return Post{}, fmt.Errorf("post %s: %w", dir, err)
	}

	html, err := g.markdown.Render([]byte(body))
	if err != nil {
		return Post{}, fmt.Errorf("post %s: %w", dir, err)
	}

	if meta.Description == "" {
		meta.Description = excerpt(html)
	}

	return Post{PostMeta: meta, Slug: dir, Content: html}, nil
}

// FetchRepositories lists the authenticated user's starred-at-least-once
// repositories, most stars first, with rendered READMEs.
func (g *GitHub) FetchRepositories(ctx context.Context) ([]Repository, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var raw []*github.Repository
	for {
		page, resp, err := g.client.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories: %w", err)
		}
		raw = append(raw, page...)
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	raw = slices.DeleteFunc(raw, func(r *github.Repository) bool {
		return r.GetName() == g.owner || r.GetStargazersCount() == 0
	})
	slices.SortStableFunc(raw, func(a, b *github.Repository) int {
		return b.GetStargazersCount() - a.GetStargazersCount()
	})

	repos := make([]Repository, len(raw))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(defaultConcurrency)
	for i, r := range raw {
		eg.Go(func() error {
			repos[i] = Repository{
				Name:        r.GetName(),
				URL:         r.GetHTMLURL(),
				Description: r.GetDescription(),
				Stars:       r.GetStargazersCount(),
				Forks:       r.GetForksCount(),
				Language:    r.GetLanguage(),
				UpdatedAt:   r.GetUpdatedAt().Format(time.DateOnly),
				Readme:      g.fetchReadme(egctx, r.GetOwner().GetLogin(), r.GetName()),
			}
			return nil
		})
	}
	_ = eg.Wait()

	slog.Debug("Repositories fetched", "count", len(repos))
	return repos, nil
}

// fetchReadme renders a repository README, returning "" when it is missing
// or unreadable.
func (g *GitHub) fetchReadme(ctx context.Context, owner, repo string) string {
	if owner == "" {
		owner = g.owner
	}

	file, _, err := g.client.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		slog.Warn("Failed to fetch README", "repository", owner+"/"+repo, "error", err)
		return ""
	}

	raw, err := file.GetContent()
	if err != nil {
		slog.Warn("Failed to decode README", "repository", owner+"/"+repo, "error", err)
		return ""
	}

	html, err := g.markdown.Render([]byte(rewriteRelativeLinks(raw, owner, repo)))
	if err != nil {
		slog.Warn("Failed to render README", "repository", owner+"/"+repo, "error", err)
		return ""
	}
	return html
}

func (g *GitHub) FetchProfile(ctx context.Context) (Profile, error) {
	user, _, err := g.client.Users.Get(ctx, "")
	if err != nil {
		return Profile{}, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return Profile{
		Login:       user.GetLogin(),
		Name:        user.GetName(),
		Bio:         user.GetBio(),
		AvatarURL:   user.GetAvatarURL(),
		HTMLURL:     user.GetHTMLURL(),
		Followers:   user.GetFollowers(),
		PublicRepos: user.GetPublicRepos(),
	}, nil
}

func postTime(p Post) time.Time {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, p.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}
