package main

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/LJTian/Updevted/internal/aggregator"
	"github.com/LJTian/Updevted/internal/api"
	"github.com/LJTian/Updevted/internal/collector"
	"github.com/LJTian/Updevted/internal/config"
	"github.com/LJTian/Updevted/internal/llm"
	"github.com/LJTian/Updevted/internal/scheduler"
	"github.com/LJTian/Updevted/internal/storage"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	store := storage.NewStore(cfg.RedisAddr, cfg.CacheTTL)
	agg := aggregator.NewFromConfig(cfg)
	trending := collector.NewTrendingFetcher(cfg.TrendingAPIURL, cfg.UserAgent, cfg.HTTPTimeout)

	// 未配置 key 时 AI 接口统一返回未配置错误，其余功能不受影响
	var assistant api.Assistant
	client, err := llm.NewClient(cfg.LLMBaseURL, cfg.GroqAPIKey, cfg.LLMModel)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		slog.Warn("GROQ_API_KEY not set, ai endpoints disabled")
	case err != nil:
		slog.Error("init llm client failed", "error", err)
		os.Exit(1)
	default:
		assistant = client
	}

	s, err := scheduler.New(cfg.CronSpec, agg, store, trending, store)
	if err != nil {
		slog.Error("init scheduler failed", "error", err)
		os.Exit(1)
	}
	s.Start()
	defer s.Stop()

	r := gin.Default()
	// 若配置了全局访问密码，则启用 Basic Auth 保护（/health 和 /manifest.json 免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	apiServer := api.NewServer(agg, store, trending, assistant)
	apiServer.RegisterRoutes(r)

	// 若配置了前端目录，则托管 SPA 静态文件并做 fallback
	if cfg.WebRoot != "" {
		assetsDir := filepath.Join(cfg.WebRoot, "assets")
		indexFile := filepath.Join(cfg.WebRoot, "index.html")
		r.Static("/assets", assetsDir)
		r.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet {
				c.Status(http.StatusNotFound)
				return
			}
			c.File(indexFile)
		})
	}

	addr := ":" + cfg.AppPort
	slog.Info("starting api server", "addr", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("server exit", "error", err)
		os.Exit(1)
	}
}

func basicAuthMiddleware(user, pass string) gin.HandlerFunc {
	const realm = "Restricted"
	uBytes := []byte(user)
	pBytes := []byte(pass)

	return func(c *gin.Context) {
		switch c.Request.URL.Path {
		case "/health", "/manifest.json":
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), uBytes) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pBytes) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
