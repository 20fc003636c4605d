package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/LJTian/Updevted/internal/collector"
	"github.com/LJTian/Updevted/internal/config"
	"github.com/LJTian/Updevted/internal/processor"
	"golang.org/x/sync/errgroup"
)

// DefaultLimit 首页默认拉取的文章总数
const DefaultLimit = 60

// Source 一个参与聚合的数据源
type Source struct {
	Fetcher collector.Fetcher
	// Filler 为 true 的补位源只分到一半预算
	Filler bool
}

// Aggregator 并发调用所有数据源，单个数据源失败时按空列表计入，
// 合并后统一清洗、按时间倒序并做分类过滤。
type Aggregator struct {
	sources   []Source
	processor *processor.SimpleProcessor
}

func New(sources ...Source) *Aggregator {
	return &Aggregator{
		sources:   sources,
		processor: processor.NewSimpleProcessor(),
	}
}

// NewFromConfig 生产环境使用的全部数据源
func NewFromConfig(cfg *config.Config) *Aggregator {
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	ua := cfg.UserAgent
	return New(
		Source{Fetcher: &collector.DevToFetcher{Client: client, UserAgent: ua}},
		Source{Fetcher: &collector.HackerNewsFetcher{Client: client, UserAgent: ua}},
		Source{Fetcher: &collector.RedditFetcher{Subreddit: cfg.RedditSubreddit, Client: client, UserAgent: ua}},
		Source{Fetcher: &collector.NewsAPIFetcher{APIKey: cfg.NewsAPIKey, Client: client, UserAgent: ua}},
		Source{Fetcher: &collector.StackExchangeFetcher{Client: client, UserAgent: ua}},
		Source{Fetcher: &collector.MediumFetcher{FeedURL: cfg.MediumFeedURL, Client: client, UserAgent: ua}},
		Source{Fetcher: &collector.CommunityFetcher{Client: client, UserAgent: ua}, Filler: true},
	)
}

// Budget 每个常规数据源的条数预算：limit 按常规数据源个数均分（向下取整）
func (a *Aggregator) Budget(limit int) (perSource, filler int) {
	n := 0
	for _, s := range a.sources {
		if !s.Filler {
			n++
		}
	}
	if n == 0 {
		n = len(a.sources)
	}
	if n == 0 || limit <= 0 {
		return 0, 0
	}
	perSource = limit / n
	return perSource, perSource / 2
}

// Aggregate 返回合并、排序、过滤后的文章列表。
// 单个数据源的失败（包括 panic）只记录日志，不影响其它数据源，也不会返回 error。
func (a *Aggregator) Aggregate(ctx context.Context, category, tag string, limit int) ([]collector.Article, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	perSource, filler := a.Budget(limit)

	results := make([][]collector.Article, len(a.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		budget := perSource
		if src.Filler {
			budget = filler
		}
		if budget < 1 {
			continue
		}
		g.Go(func() error {
			results[i] = settle(gctx, src.Fetcher, collector.Query{Tag: tag, Page: 1, PerPage: budget})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	all := make([]collector.Article, 0, total)
	for _, r := range results {
		all = append(all, r...)
	}

	all = a.processor.Process(all)
	processor.SortNewestFirst(all)
	return processor.FilterByCategory(all, category), nil
}

// settle 调用单个数据源，任何失败都折算为空列表
func settle(ctx context.Context, f collector.Fetcher, q collector.Query) (items []collector.Article) {
	name := f.Name()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("aggregate: source panicked", "source", name, "panic", r)
			items = []collector.Article{}
		}
	}()

	items, err := f.Fetch(ctx, q)
	if err != nil {
		slog.Warn("aggregate: source failed", "source", name, "error", err)
		return []collector.Article{}
	}
	if items == nil {
		items = []collector.Article{}
	}
	slog.Debug("aggregate: source done", "source", name, "count", len(items), "cost", time.Since(start))
	return items
}
