package collector

import (
	"bytes"
	"cmp"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	mediumFeedURL = "https://medium.com/feed/topic/technology"
	mediumImage   = "https://miro.medium.com/max/1200/1*jfdwtvU6V6g99q3G7gq7dQ.png"
	mediumAvatar  = "https://miro.medium.com/fit/c/96/96/1*6_fgYnisCa9V21mymySIvA.png"
)

// MediumFetcher 解析 Medium 话题 RSS。RSS 没有分页，按页手动切片
type MediumFetcher struct {
	FeedURL   string
	Client    *http.Client
	UserAgent string
}

func (m *MediumFetcher) Name() string {
	return "medium"
}

func (m *MediumFetcher) Fetch(ctx context.Context, q Query) ([]Article, error) {
	feedURL := cmp.Or(m.FeedURL, mediumFeedURL)
	client := m.Client
	if client == nil {
		client = newHTTPClient(0)
	}

	body, err := getBody(ctx, client, feedURL, m.UserAgent)
	if err != nil {
		slog.Warn("medium: fetch feed", "url", feedURL, "error", err)
		return []Article{}, nil
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		slog.Warn("medium: parse feed", "url", feedURL, "error", err)
		return []Article{}, nil
	}

	perPage := q.perPage(10)
	start := (q.page() - 1) * perPage
	if start >= len(feed.Items) {
		return []Article{}, nil
	}
	end := min(start+perPage, len(feed.Items))

	out := make([]Article, 0, end-start)
	for _, it := range feed.Items[start:end] {
		if it == nil {
			continue
		}
		out = append(out, mapMediumItem(it))
	}
	return out, nil
}

func mapMediumItem(it *gofeed.Item) Article {
	rawContent := cmp.Or(it.Content, it.Description)
	content := CleanHTML(rawContent)
	description := CleanHTML(cmp.Or(it.Description, it.Content))

	author := "Medium"
	if it.Author != nil && it.Author.Name != "" {
		author = it.Author.Name
	} else if len(it.Authors) > 0 && it.Authors[0] != nil && it.Authors[0].Name != "" {
		author = it.Authors[0].Name
	}

	var published time.Time
	if it.PublishedParsed != nil {
		published = it.PublishedParsed.UTC()
	} else if it.UpdatedParsed != nil {
		published = it.UpdatedParsed.UTC()
	}

	categories := it.Categories
	if categories == nil {
		categories = []string{}
	}

	return Article{
		ID:          "medium-" + shortHash(cmp.Or(it.GUID, it.Link)),
		Title:       it.Title,
		Description: excerpt(description, 200),
		Content:     content,
		URL:         it.Link,
		ImageURL:    mediumImageURL(it, rawContent),
		PublishedAt: published,
		Author:      Author{Name: author, ImageURL: mediumAvatar},
		Source:      SourceMedium,
		ReadTime:    ReadTime(content),
		Tags:        toTags(categories),
		Category:    Classify(categories, it.Title),
		ReadInApp:   content != "",
	}
}

// mediumImageURL 依次取 item 图片、图片类 enclosure、正文第一张图，最后用占位图
func mediumImageURL(it *gofeed.Item, html string) string {
	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}
	for _, e := range it.Enclosures {
		if e != nil && e.URL != "" && (e.Type == "" || strings.HasPrefix(e.Type, "image/")) {
			return e.URL
		}
	}
	if html != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			if src, ok := doc.Find("img").First().Attr("src"); ok && src != "" {
				return src
			}
		}
	}
	return mediumImage
}
