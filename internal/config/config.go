package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	// RedisAddr 为空时只使用进程内缓存
	RedisAddr string
	CronSpec  string
	CacheTTL  time.Duration

	HTTPTimeout time.Duration
	UserAgent   string

	NewsAPIKey      string
	RedditSubreddit string
	MediumFeedURL   string
	TrendingAPIURL  string

	GroqAPIKey string
	LLMBaseURL string
	LLMModel   string

	// 站点访问密码，两者都配置时才启用 Basic Auth
	BasicAuthUser string
	BasicAuthPass string
	// WebRoot 前端构建产物目录，为空时不托管静态文件
	WebRoot string
}

func Load() *Config {
	// .env 不存在时静默忽略，环境变量优先
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:         getEnv("APP_PORT", "9000"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		CronSpec:        getEnv("CRON_SPEC", "*/15 * * * *"),
		CacheTTL:        getDuration("CACHE_TTL", 5*time.Minute),
		HTTPTimeout:     getDuration("HTTP_TIMEOUT", 10*time.Second),
		UserAgent:       getEnv("USER_AGENT", "UpdevtedBot/1.0"),
		NewsAPIKey:      getEnv("NEWSAPI_KEY", ""),
		RedditSubreddit: getEnv("REDDIT_SUBREDDIT", "programming"),
		MediumFeedURL:   getEnv("MEDIUM_FEED_URL", "https://medium.com/feed/topic/technology"),
		TrendingAPIURL:  getEnv("TRENDING_API_URL", "https://github-trending-api.de.a9sapp.eu/repositories"),
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		LLMBaseURL:      getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:        getEnv("LLM_MODEL", "llama3-8b-8192"),
		BasicAuthUser:   getEnv("APP_BASIC_USER", ""),
		BasicAuthPass:   getEnv("APP_BASIC_PASS", ""),
		WebRoot:         getEnv("WEB_ROOT", ""),
	}

	slog.Info("config loaded",
		"port", cfg.AppPort,
		"cron", cfg.CronSpec,
		"redis", cfg.RedisAddr != "",
		"llm", cfg.GroqAPIKey != "",
	)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getDuration 解析形如 "5m"、"30s" 的时长，非法值回退默认
func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("config: invalid duration, using default", "key", key, "value", v)
		return def
	}
	return d
}
