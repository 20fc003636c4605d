package collector

import (
	"context"
	"time"
)

// Author 文章作者
type Author struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// Tag 文章标签，保持与前端 {name} 结构一致
type Tag struct {
	Name string `json:"name"`
}

// Article 所有数据源归一化后的统一结构
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"imageUrl"`
	PublishedAt time.Time `json:"publishedAt"`
	Author      Author    `json:"author"`
	Source      string    `json:"source"`
	// 阅读时长（分钟），至少为 1
	ReadTime int    `json:"readTime"`
	Tags     []Tag  `json:"tags"`
	Category string `json:"category"`
	// 是否有完整正文可在应用内阅读，否则只能跳转原文
	ReadInApp bool `json:"readInApp"`
}

// TagNames 返回标签名称列表
func (a Article) TagNames() []string {
	names := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Query 每个数据源都接受的可选参数
type Query struct {
	Tag     string
	Page    int
	PerPage int
}

func (q Query) page() int {
	if q.Page < 1 {
		return 1
	}
	return q.Page
}

func (q Query) perPage(def int) int {
	if q.PerPage < 1 {
		return def
	}
	return q.PerPage
}

// Fetcher 抽象每一个文章数据源
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]Article, error)
}

// 数据源展示名称
const (
	SourceDevTo         = "Dev.to"
	SourceHackerNews    = "Hacker News"
	SourceReddit        = "Reddit"
	SourceNewsAPI       = "News API"
	SourceStackOverflow = "Stack Overflow"
	SourceMedium        = "Medium"
	SourceQuoraLike     = "Quora-like"
)

// 上游缺图时使用的占位图
const (
	defaultCoverImage  = "https://images.unsplash.com/photo-1633356122544-f134324a6cee?w=800&h=400&fit=crop"
	defaultAvatarImage = "https://images.unsplash.com/photo-1506794778202-cad84cf45f1d?w=50&h=50&fit=crop"
)
