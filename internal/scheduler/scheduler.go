package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LJTian/Updevted/internal/aggregator"
	"github.com/LJTian/Updevted/internal/collector"
	"github.com/robfig/cron/v3"
)

// TrendingCache 趋势仓库缓存
type TrendingCache interface {
	SetTrending(ctx context.Context, language, since string, repos []collector.TrendingRepo) error
}

// Scheduler 定时预热首页与各分类视图的缓存，让用户请求尽量命中缓存。
// 预热只是刷新缓存，不改变聚合结果本身。
type Scheduler struct {
	cron       *cron.Cron
	aggregator *aggregator.Aggregator
	articles   aggregator.ArticleCache
	trending   *collector.TrendingFetcher
	trendCache TrendingCache
	timeout    time.Duration

	// 防止上一轮未结束时重复执行
	running sync.Mutex
}

func New(spec string, agg *aggregator.Aggregator, articles aggregator.ArticleCache,
	trending *collector.TrendingFetcher, trendCache TrendingCache) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:       c,
		aggregator: agg,
		articles:   articles,
		trending:   trending,
		trendCache: trendCache,
		timeout:    2 * time.Minute,
	}

	_, err := c.AddFunc(spec, s.runOnce)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 延迟执行首轮预热，避免与用户首次打开页面的请求争抢上游
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.runOnce()
	})
}

// Stop 停止调度，返回的 context 在正在执行的任务结束后关闭
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发预热
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	if !s.running.TryLock() {
		slog.Warn("scheduler: previous warm-up still running, skip")
		return
	}
	defer s.running.Unlock()

	slog.Info("start cache warm-up job...")
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		counts, err := s.aggregator.RefreshCategories(ctx, s.articles, "", aggregator.DefaultLimit, collector.Categories())
		if err != nil {
			slog.Warn("scheduler: warm articles", "error", err)
			return
		}
		slog.Info("scheduler: articles warmed", "all", counts[""], "views", len(counts))
	}()

	if s.trending != nil && s.trendCache != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repos := s.trending.Fetch(ctx, "", collector.SinceDaily)
			if err := s.trendCache.SetTrending(ctx, "", collector.SinceDaily, repos); err != nil {
				slog.Warn("scheduler: cache trending", "error", err)
				return
			}
			slog.Info("scheduler: trending warmed", "count", len(repos))
		}()
	}

	wg.Wait()
	slog.Info("cache warm-up job done", "cost", time.Since(start))
}
