package collector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	hnBaseURL         = "https://hacker-news.firebaseio.com/v0"
	hnImage           = "https://images.unsplash.com/photo-1591453089816-0fbb971b454c?w=800&h=400&fit=crop"
	hnAvatar          = "https://images.unsplash.com/photo-1573496359142-b8d87734a5a2?w=50&h=50&fit=crop"
	hnItemClientLimit = 5 * time.Second
)

// HackerNewsFetcher 通过官方 Firebase API 抓取 Hacker News 热门故事
type HackerNewsFetcher struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string
}

func (h *HackerNewsFetcher) Name() string {
	return "hackernews"
}

type hnItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
	Score int    `json:"score"`
	By    string `json:"by"`
	Time  int64  `json:"time"`
	Type  string `json:"type"`
	Kids  []int  `json:"kids"`
}

// Fetch 分两步：先取排行 id 列表并按页切片，再并发拉取每个条目
func (h *HackerNewsFetcher) Fetch(ctx context.Context, q Query) ([]Article, error) {
	slog.Debug("fetch Hacker News top stories...")

	client := h.client()
	var ids []int
	if err := getJSON(ctx, client, h.base()+"/topstories.json", h.UserAgent, &ids); err != nil {
		return nil, fmt.Errorf("hackernews: fetch top stories: %w", err)
	}

	perPage := q.perPage(15)
	start := (q.page() - 1) * perPage
	if start >= len(ids) {
		return []Article{}, nil
	}
	end := start + perPage
	if end > len(ids) {
		end = len(ids)
	}
	ids = ids[start:end]

	// 按排行位置写入，保证输出顺序与 id 列表一致
	items := make([]*hnItem, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			it, err := h.fetchItem(gctx, client, id)
			if err != nil {
				slog.Warn("hackernews: fetch item", "id", id, "error", err)
				return nil
			}
			items[i] = it
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Article, 0, len(items))
	for _, it := range items {
		// 已删除的帖子、招聘等没有标题
		if it == nil || it.Title == "" {
			continue
		}
		out = append(out, mapHNItem(*it))
	}
	return out, nil
}

func (h *HackerNewsFetcher) fetchItem(ctx context.Context, client *http.Client, id int) (*hnItem, error) {
	ctx, cancel := context.WithTimeout(ctx, hnItemClientLimit)
	defer cancel()

	var it *hnItem
	if err := getJSON(ctx, client, fmt.Sprintf("%s/item/%d.json", h.base(), id), h.UserAgent, &it); err != nil {
		return nil, err
	}
	return it, nil
}

func (h *HackerNewsFetcher) base() string {
	if h.BaseURL != "" {
		return h.BaseURL
	}
	return hnBaseURL
}

func (h *HackerNewsFetcher) client() *http.Client {
	if h.Client != nil {
		return h.Client
	}
	return newHTTPClient(0)
}

func mapHNItem(it hnItem) Article {
	domain := hostOf(it.URL)
	text := CleanHTML(it.Text)

	signals := []string{domain}
	if text != "" {
		signals = append(signals, text)
	}
	category := Classify(signals, it.Title)

	description := text
	if description == "" {
		where := domain
		if where == "" {
			where = "Hacker News"
		}
		description = "Discussion on " + where
	}

	itemURL := it.URL
	if itemURL == "" {
		itemURL = "https://news.ycombinator.com/item?id=" + strconv.Itoa(it.ID)
	}

	author := it.By
	if author == "" {
		author = "Anonymous"
	}

	domainTag := domain
	if domainTag == "" {
		domainTag = "hackernews"
	}

	return Article{
		ID:          strconv.Itoa(it.ID),
		Title:       it.Title,
		Description: description,
		Content:     text,
		URL:         itemURL,
		ImageURL:    hnImage,
		PublishedAt: time.Unix(it.Time, 0).UTC(),
		Author:      Author{Name: author, ImageURL: hnAvatar},
		Source:      SourceHackerNews,
		ReadTime:    engagementReadTime(len(text), 1000, len(it.Kids), 10, 5),
		Tags: []Tag{
			{Name: domainTag},
			{Name: compactLabel(category)},
		},
		Category:  category,
		ReadInApp: text != "",
	}
}

// hostOf 返回去掉 www. 前缀的主机名，解析失败返回空串
func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// compactLabel "Web Dev" -> "webdev"
func compactLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
