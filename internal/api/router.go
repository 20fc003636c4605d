package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/LJTian/Updevted/internal/aggregator"
	"github.com/LJTian/Updevted/internal/collector"
	"github.com/LJTian/Updevted/internal/llm"
	"github.com/LJTian/Updevted/internal/storage"
	"github.com/gin-gonic/gin"
)

const maxArticleLimit = 200

// Assistant AI 助手的三个操作加连通性测试，由 llm.Client 实现
type Assistant interface {
	ExplainCode(ctx context.Context, code, language string) (*llm.CodeExplanation, error)
	CompareTech(ctx context.Context, technologies []string) (*llm.TechComparison, error)
	LearningPath(ctx context.Context, technology string) ([]string, error)
	TestConnection(ctx context.Context) error
}

type Server struct {
	agg      *aggregator.Aggregator
	store    *storage.Store
	trending *collector.TrendingFetcher
	// ai 为 nil 表示未配置 API key
	ai Assistant
}

func NewServer(agg *aggregator.Aggregator, store *storage.Store, trending *collector.TrendingFetcher, ai Assistant) *Server {
	return &Server{agg: agg, store: store, trending: trending, ai: ai}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/manifest.json", s.manifest)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/articles", s.listArticles)
		v1.GET("/categories", s.listCategories)
		v1.GET("/trending", s.listTrending)

		v1.GET("/bookmarks", s.listBookmarks)
		v1.POST("/bookmarks", s.addBookmark)
		// repo 的 id 形如 owner/name，用通配参数接收
		v1.GET("/bookmarks/:kind/*id", s.isBookmarked)
		v1.DELETE("/bookmarks/:kind/*id", s.removeBookmark)

		v1.GET("/roadmaps", s.listRoadmaps)
		v1.GET("/roadmaps/:id", s.getRoadmap)
		v1.PUT("/roadmaps/:id/topics/*topic", s.setTopicStatus)
		v1.GET("/jobs", s.listJobs)
	}

	ai := r.Group("/api/ai")
	{
		ai.POST("/explain-code", s.explainCode)
		ai.POST("/compare-tech", s.compareTech)
		ai.POST("/learning-path", s.learningPath)
		ai.GET("/test-connection", s.testConnection)
	}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    data,
	})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) manifest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":             "Updevted",
		"short_name":       "Updevted",
		"description":      "Stay ahead in tech with the latest tools, trends, and discussions",
		"start_url":        "/",
		"display":          "standalone",
		"background_color": "#15202B",
		"theme_color":      "#1DA1F2",
		"icons": []gin.H{
			{
				"src":   "https://cdn.jsdelivr.net/gh/twitter/twemoji@latest/assets/72x72/1f4bb.png",
				"sizes": "72x72",
				"type":  "image/png",
			},
			{
				"src":   "https://cdn.jsdelivr.net/gh/twitter/twemoji@latest/assets/svg/1f4bb.svg",
				"sizes": "150x150",
				"type":  "image/svg+xml",
			},
		},
	})
}

func (s *Server) listArticles(c *gin.Context) {
	category := c.Query("category")
	tag := strings.TrimSpace(c.Query("tag"))

	limitStr := c.DefaultQuery("limit", strconv.Itoa(aggregator.DefaultLimit))
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = aggregator.DefaultLimit
	}
	if limit > maxArticleLimit {
		limit = maxArticleLimit
	}

	var cache aggregator.ArticleCache
	if s.store != nil {
		cache = s.store
	}
	items, err := s.agg.Cached(c.Request.Context(), cache, category, tag, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	ok(c, items)
}

func (s *Server) listCategories(c *gin.Context) {
	ok(c, collector.Categories())
}

func (s *Server) listTrending(c *gin.Context) {
	language := strings.TrimSpace(c.Query("language"))
	since := collector.NormalizeSince(c.Query("since"))
	ctx := c.Request.Context()

	if s.store != nil {
		if repos, hit := s.store.GetTrending(ctx, language, since); hit {
			ok(c, repos)
			return
		}
	}

	// 趋势接口内部已有兜底，永不为空
	repos := s.trending.Fetch(ctx, language, since)
	if s.store != nil {
		_ = s.store.SetTrending(ctx, language, since, repos)
	}
	ok(c, repos)
}
