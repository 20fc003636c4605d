package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LJTian/Updevted/internal/collector"
	"github.com/redis/go-redis/v9"
)

// 列表缓存默认 5 分钟
const defaultListTTL = 5 * time.Minute

// Store 所有持久化状态都经过 KV：聚合列表缓存、趋势缓存、收藏与学习进度
type Store struct {
	KV KV
	// ListTTL 聚合列表与趋势列表的缓存时长
	ListTTL time.Duration
	Now     func() time.Time
}

// NewStore redisAddr 为空或 Redis 不可用时退回进程内存储
func NewStore(redisAddr string, listTTL time.Duration) *Store {
	if listTTL <= 0 {
		listTTL = defaultListTTL
	}
	s := &Store{KV: NewMemoryKV(), ListTTL: listTTL, Now: time.Now}
	if redisAddr == "" {
		slog.Info("storage: REDIS_ADDR not set, using in-memory store")
		return s
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("storage: redis ping failed, using in-memory store", "addr", redisAddr, "error", err)
		_ = rdb.Close()
		return s
	}

	s.KV = &RedisKV{Client: rdb}
	return s
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) getJSON(ctx context.Context, key string, out any) error {
	bs, err := s.KV.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(bs, out); err != nil {
		return fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return s.KV.Set(ctx, key, bs, ttl)
}

// GetArticles 读取缓存的聚合结果；未命中或数据损坏都视为未命中
func (s *Store) GetArticles(ctx context.Context, key string) ([]collector.Article, bool) {
	var cached []collector.Article
	if err := s.getJSON(ctx, key, &cached); err != nil {
		return nil, false
	}
	return cached, true
}

// SetArticles 回写聚合结果，按 ListTTL 自然过期，不做主动失效
func (s *Store) SetArticles(ctx context.Context, key string, items []collector.Article) error {
	return s.setJSON(ctx, key, items, s.ListTTL)
}

func trendingKey(language, since string) string {
	return fmt.Sprintf("trending:list:%s:%s", strings.ToLower(strings.TrimSpace(language)), collector.NormalizeSince(since))
}

// GetTrending 读取趋势仓库缓存
func (s *Store) GetTrending(ctx context.Context, language, since string) ([]collector.TrendingRepo, bool) {
	var cached []collector.TrendingRepo
	if err := s.getJSON(ctx, trendingKey(language, since), &cached); err != nil {
		return nil, false
	}
	return cached, true
}

func (s *Store) SetTrending(ctx context.Context, language, since string, repos []collector.TrendingRepo) error {
	return s.setJSON(ctx, trendingKey(language, since), repos, s.ListTTL)
}
