package api

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/4ster-light/site/app/content"
	"github.com/gin-gonic/gin"
)

func NewHandler(service ContentService, c CacheInterface, generator GeneratorInterface, cacheSecret, version string) *Handler {
	return &Handler{
		content:     service,
		cache:       c,
		generator:   generator,
		cacheSecret: cacheSecret,
		version:     version,
	}
}

// unavailable answers a request whose content could not be fetched.
func unavailable(c *gin.Context, operation string, err error) {
	slog.Error("Content unavailable", "operation", operation, "error", err)
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Content unavailable"})
}

func (h *Handler) GetPosts(c *gin.Context) {
	posts, err := h.content.Posts(c.Request.Context())
	if err != nil {
		unavailable(c, "get_posts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"total": len(posts),
	})
}

func (h *Handler) GetPost(c *gin.Context) {
	slug := c.Param("slug")

	post, toc, err := h.content.Post(c.Request.Context(), slug)
	if errors.Is(err, content.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		unavailable(c, "get_post", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post": post,
		"toc":  toc,
	})
}

func (h *Handler) GetTags(c *gin.Context) {
	tags, err := h.content.Tags(c.Request.Context())
	if err != nil {
		unavailable(c, "get_tags", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (h *Handler) GetPostsByTag(c *gin.Context) {
	tag := c.Param("tag")

	posts, err := h.content.PostsByTag(c.Request.Context(), tag)
	if err != nil {
		unavailable(c, "get_posts_by_tag", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tag":   tag,
		"posts": posts,
		"total": len(posts),
	})
}

func (h *Handler) GetProjects(c *gin.Context) {
	repos, err := h.content.Repositories(c.Request.Context())
	if err != nil {
		unavailable(c, "get_projects", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": repos,
		"total":    len(repos),
	})
}

func (h *Handler) GetProject(c *gin.Context) {
	name := c.Param("name")

	repo, err := h.content.Repository(c.Request.Context(), name)
	if errors.Is(err, content.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	if err != nil {
		unavailable(c, "get_project", err)
		return
	}

	c.JSON(http.StatusOK, repo)
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.content.Profile(c.Request.Context())
	if err != nil {
		unavailable(c, "get_profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *Handler) GetFeed(c *gin.Context) {
	posts, err := h.content.Posts(c.Request.Context())
	if err != nil {
		unavailable(c, "get_feed", err)
		return
	}

	rss, err := h.generator.Run(posts)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Feed-Items", strconv.Itoa(len(posts)))
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if entries, err := h.cache.Size(c.Request.Context()); err == nil {
		health["cache_entries"] = entries
	} else {
		slog.Warn("Failed to count cache entries", "error", err)
	}

	c.JSON(http.StatusOK, health)
}

// ClearCache drops one named cache or, for "all", every cache entry.
func (h *Handler) ClearCache(c *gin.Context) {
	if h.cacheSecret == "" {
		slog.Error("Cache clear rejected, CACHE_SECRET not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server misconfigured"})
		return
	}

	expected := "Bearer " + h.cacheSecret
	if subtle.ConstantTimeCompare([]byte(c.GetHeader("Authorization")), []byte(expected)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	valid := append(slices.Clone(content.Names), clearAll)

	var req clearRequest
	if err := c.ShouldBindJSON(&req); err != nil || !slices.Contains(valid, req.Key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid key", "valid": valid})
		return
	}

	ctx := c.Request.Context()

	if req.Key == clearAll {
		count, err := h.cache.InvalidateAll(ctx)
		if err != nil {
			slog.Error("Cache clear failed", "key", req.Key, "deleted", count, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Cache clear failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cleared": clearAll, "count": count})
		return
	}

	if err := h.cache.Invalidate(ctx, req.Key); err != nil {
		slog.Error("Cache clear failed", "key", req.Key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cache clear failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": req.Key})
}
