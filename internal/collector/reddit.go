package collector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	redditBaseURL = "https://www.reddit.com"
	redditImage   = "https://images.unsplash.com/photo-1607799279861-4dd421887fb3?w=800&h=400&fit=crop"
	redditAvatar  = "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=50&h=50&fit=crop"
)

// RedditFetcher 拉取某个 subreddit 的热门帖子，默认 r/programming
type RedditFetcher struct {
	Subreddit string
	BaseURL   string
	Client    *http.Client
	UserAgent string
}

func (r *RedditFetcher) Name() string {
	return "reddit"
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Selftext      string  `json:"selftext"`
	Permalink     string  `json:"permalink"`
	URL           string  `json:"url"`
	Thumbnail     string  `json:"thumbnail"`
	Author        string  `json:"author"`
	CreatedUTC    float64 `json:"created_utc"`
	NumComments   int     `json:"num_comments"`
	LinkFlairText string  `json:"link_flair_text"`
	Stickied      bool    `json:"stickied"`
	IsVideo       bool    `json:"is_video"`
	Preview       *struct {
		Images []struct {
			Source struct {
				URL string `json:"url"`
			} `json:"source"`
		} `json:"images"`
	} `json:"preview"`
}

func (r *RedditFetcher) Fetch(ctx context.Context, q Query) ([]Article, error) {
	sub := r.subreddit()
	slog.Debug("fetch Reddit posts...", "subreddit", sub)

	base := r.BaseURL
	if base == "" {
		base = redditBaseURL
	}
	apiURL := fmt.Sprintf("%s/r/%s.json?limit=%d", base, url.PathEscape(sub), q.perPage(15))

	client := r.Client
	if client == nil {
		client = newHTTPClient(0)
	}

	// 失败时静默返回空列表，不影响其他数据源
	var listing redditListing
	if err := getJSON(ctx, client, apiURL, r.UserAgent, &listing); err != nil {
		slog.Warn("reddit: fetch posts", "subreddit", sub, "error", err)
		return []Article{}, nil
	}

	out := make([]Article, 0, len(listing.Data.Children))
	for _, c := range listing.Data.Children {
		p := c.Data
		// 置顶帖与视频帖不展示
		if p.Stickied || p.IsVideo {
			continue
		}
		out = append(out, mapRedditPost(p, sub))
	}
	return out, nil
}

func (r *RedditFetcher) subreddit() string {
	if r.Subreddit == "" {
		return "programming"
	}
	return r.Subreddit
}

func mapRedditPost(p redditPost, sub string) Article {
	flair := strings.ToLower(strings.TrimSpace(p.LinkFlairText))

	tags := []Tag{{Name: "r/" + sub}}
	signals := []string{}
	if flair != "" {
		tags = append(tags, Tag{Name: flair})
		signals = append(signals, flair)
	}

	description := ""
	if p.Selftext != "" {
		description = truncateRunes(p.Selftext, 250)
	}

	return Article{
		ID:          p.ID,
		Title:       p.Title,
		Description: description,
		Content:     p.Selftext,
		URL:         redditBaseURL + p.Permalink,
		ImageURL:    redditImageURL(p),
		PublishedAt: time.Unix(int64(p.CreatedUTC), 0).UTC(),
		Author:      Author{Name: p.Author, ImageURL: redditAvatar},
		Source:      SourceReddit,
		ReadTime:    engagementReadTime(len(p.Selftext), 1500, p.NumComments, 20, 4),
		Tags:        tags,
		Category:    Classify(signals, p.Title),
		ReadInApp:   len(p.Selftext) > 100,
	}
}

// redditImageURL 优先缩略图，其次预览图（需还原 &amp;），最后用占位图
func redditImageURL(p redditPost) string {
	if isRedditThumbnail(p.Thumbnail) {
		return p.Thumbnail
	}
	if p.Preview != nil && len(p.Preview.Images) > 0 && p.Preview.Images[0].Source.URL != "" {
		return strings.ReplaceAll(p.Preview.Images[0].Source.URL, "&amp;", "&")
	}
	return redditImage
}

// Reddit 用 "self"、"default" 等占位值表示没有缩略图
func isRedditThumbnail(s string) bool {
	switch s {
	case "", "self", "default", "nsfw", "spoiler", "image":
		return false
	}
	return strings.HasPrefix(s, "http")
}
