package collector

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const newsAPIBaseURL = "https://newsapi.org"

// NewsAPIFetcher 拉取 NewsAPI 科技类头条。免费 key 每天额度有限，失败时返回空列表
type NewsAPIFetcher struct {
	APIKey    string
	BaseURL   string
	Client    *http.Client
	UserAgent string
	Now       func() time.Time
}

func (n *NewsAPIFetcher) Name() string {
	return "newsapi"
}

type newsAPIResp struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
		Content     string `json:"content"`
	} `json:"articles"`
}

func (n *NewsAPIFetcher) Fetch(ctx context.Context, q Query) ([]Article, error) {
	if n.APIKey == "" {
		slog.Warn("newsapi: skip fetch, NEWSAPI_KEY not configured")
		return []Article{}, nil
	}

	params := url.Values{}
	params.Set("country", "us")
	params.Set("category", "technology")
	params.Set("pageSize", strconv.Itoa(q.perPage(10)))
	params.Set("page", strconv.Itoa(q.page()))
	params.Set("apiKey", n.APIKey)

	base := n.BaseURL
	if base == "" {
		base = newsAPIBaseURL
	}
	client := n.Client
	if client == nil {
		client = newHTTPClient(0)
	}

	var resp newsAPIResp
	if err := getJSON(ctx, client, base+"/v2/top-headlines?"+params.Encode(), n.UserAgent, &resp); err != nil {
		slog.Warn("newsapi: fetch top headlines", "error", err)
		return []Article{}, nil
	}
	if resp.Status != "ok" {
		slog.Warn("newsapi: api error", "status", resp.Status, "message", resp.Message)
		return []Article{}, nil
	}

	now := time.Now
	if n.Now != nil {
		now = n.Now
	}

	out := make([]Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		sourceName := a.Source.Name
		if sourceName == "" {
			sourceName = "tech"
		}

		content := a.Content
		if content == "" {
			content = a.Description
		}
		image := a.URLToImage
		if image == "" {
			image = defaultCoverImage
		}
		author := a.Author
		if author == "" {
			author = a.Source.Name
		}
		if author == "" {
			author = "Unknown"
		}

		published, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			published = now().UTC()
		}

		out = append(out, Article{
			ID:          "news-" + shortHash(a.URL+"|"+a.Title),
			Title:       a.Title,
			Description: a.Description,
			Content:     content,
			URL:         a.URL,
			ImageURL:    image,
			PublishedAt: published,
			Author:      Author{Name: author, ImageURL: defaultAvatarImage},
			Source:      SourceNewsAPI,
			ReadTime:    ReadTime(content),
			Tags:        []Tag{{Name: sourceName}, {Name: "news"}},
			Category:    Classify([]string{sourceName, a.Title, a.Description}, a.Title),
			ReadInApp:   false,
		})
	}
	return out, nil
}

// shortHash 为没有稳定 id 的上游生成确定性 id
func shortHash(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
