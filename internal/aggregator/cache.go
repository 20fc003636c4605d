package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/LJTian/Updevted/internal/collector"
	"github.com/LJTian/Updevted/internal/processor"
)

// ArticleCache 聚合结果缓存，只用于减少上游调用，不改变结果语义
type ArticleCache interface {
	GetArticles(ctx context.Context, key string) ([]collector.Article, bool)
	SetArticles(ctx context.Context, key string, items []collector.Article) error
}

// CacheKey 同一组参数对应同一个 key；"all"、"All Tech" 与空分类视为同一视图
func CacheKey(category, tag string, limit int) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "all" || category == "all tech" {
		category = ""
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return fmt.Sprintf("articles:list:%s:%s:%d", category, strings.ToLower(strings.TrimSpace(tag)), limit)
}

// Cached 先查缓存，未命中再聚合并回写。cache 为 nil 时等同于 Aggregate
func (a *Aggregator) Cached(ctx context.Context, cache ArticleCache, category, tag string, limit int) ([]collector.Article, error) {
	if cache == nil {
		return a.Aggregate(ctx, category, tag, limit)
	}
	key := CacheKey(category, tag, limit)
	if items, ok := cache.GetArticles(ctx, key); ok {
		return items, nil
	}
	return a.Refresh(ctx, cache, category, tag, limit)
}

// Refresh 强制重新聚合并写入缓存，定时预热使用
func (a *Aggregator) Refresh(ctx context.Context, cache ArticleCache, category, tag string, limit int) ([]collector.Article, error) {
	items, err := a.Aggregate(ctx, category, tag, limit)
	if err != nil {
		return nil, err
	}
	// 空结果不缓存，下次请求重新尝试上游
	if cache != nil && len(items) > 0 {
		if err := cache.SetArticles(ctx, CacheKey(category, tag, limit), items); err != nil {
			slog.Warn("aggregate: write cache", "error", err)
		}
	}
	return items, nil
}

// RefreshCategories 只做一次不带分类的聚合，再按分类过滤后分别写入缓存。
// 结果与逐个分类调用 Refresh 相同，但上游只请求一轮。
func (a *Aggregator) RefreshCategories(ctx context.Context, cache ArticleCache, tag string, limit int, categories []string) (map[string]int, error) {
	all, err := a.Aggregate(ctx, "", tag, limit)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(categories)+1)
	views := append([]string{""}, categories...)
	for _, c := range views {
		items := processor.FilterByCategory(all, c)
		counts[c] = len(items)
		if cache == nil || len(items) == 0 {
			continue
		}
		if err := cache.SetArticles(ctx, CacheKey(c, tag, limit), items); err != nil {
			slog.Warn("aggregate: write cache", "category", c, "error", err)
		}
	}
	return counts, nil
}
