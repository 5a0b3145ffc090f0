package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl is sent with every content response so that a CDN can serve
// and revalidate pages without reaching the origin.
const CacheControl = "public, s-maxage=600, stale-while-revalidate=1800"

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.GetHealth)

	public := r.Group("/", cacheHeaders())
	{
		public.GET("/feed.xml", handler.GetFeed)
		public.GET("/api/posts", handler.GetPosts)
		public.GET("/api/posts/:slug", handler.GetPost)
		public.GET("/api/tags", handler.GetTags)
		public.GET("/api/tags/:tag", handler.GetPostsByTag)
		public.GET("/api/projects", handler.GetProjects)
		public.GET("/api/projects/:name", handler.GetProject)
		public.GET("/api/profile", handler.GetProfile)
	}

	r.POST("/api/cache/clear", handler.ClearCache)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "4ster.dev",
			"version": handler.version,
			"endpoints": map[string]string{
				"posts":    "/api/posts",
				"post":     "/api/posts/<slug>",
				"tags":     "/api/tags",
				"tag":      "/api/tags/<tag>",
				"projects": "/api/projects",
				"project":  "/api/projects/<name>",
				"profile":  "/api/profile",
				"feed":     "/feed.xml",
				"health":   "/health",
				"clear":    "/api/cache/clear (POST, requires Authorization: Bearer <CACHE_SECRET>)",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// cacheHeaders marks content responses as publicly cacheable. Handlers that
// fail to reach the upstream replace it with no-store.
func cacheHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", CacheControl)
		c.Next()
	}
}
