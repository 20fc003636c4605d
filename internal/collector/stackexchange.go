package collector

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	stackExchangeBaseURL = "https://api.stackexchange.com"
	stackOverflowImage   = "https://cdn.sstatic.net/Sites/stackoverflow/Img/apple-touch-icon@2.png?v=73d79a89bded"
	stackOverflowAvatar  = "https://www.gravatar.com/avatar/0?d=identicon&s=50"
)

// StackExchangeFetcher 拉取 Stack Overflow 热门问题（filter=withbody 带正文）
type StackExchangeFetcher struct {
	Site      string
	BaseURL   string
	Client    *http.Client
	UserAgent string
}

func (s *StackExchangeFetcher) Name() string {
	return "stackexchange"
}

type stackExchangeResp struct {
	Items []struct {
		QuestionID   int      `json:"question_id"`
		Title        string   `json:"title"`
		Body         string   `json:"body"`
		BodyMarkdown string   `json:"body_markdown"`
		Link         string   `json:"link"`
		CreationDate int64    `json:"creation_date"`
		Tags         []string `json:"tags"`
		Owner        struct {
			DisplayName  string `json:"display_name"`
			ProfileImage string `json:"profile_image"`
		} `json:"owner"`
	} `json:"items"`
}

func (s *StackExchangeFetcher) Fetch(ctx context.Context, q Query) ([]Article, error) {
	site := s.Site
	if site == "" {
		site = "stackoverflow"
	}

	params := url.Values{}
	params.Set("pagesize", strconv.Itoa(q.perPage(10)))
	params.Set("page", strconv.Itoa(q.page()))
	params.Set("order", "desc")
	params.Set("sort", "hot")
	params.Set("site", site)
	params.Set("filter", "withbody")
	if q.Tag != "" {
		params.Set("tagged", q.Tag)
	}

	base := s.BaseURL
	if base == "" {
		base = stackExchangeBaseURL
	}
	client := s.Client
	if client == nil {
		client = newHTTPClient(0)
	}

	var resp stackExchangeResp
	if err := getJSON(ctx, client, base+"/2.3/questions?"+params.Encode(), s.UserAgent, &resp); err != nil {
		slog.Warn("stackexchange: fetch questions", "error", err)
		return []Article{}, nil
	}

	out := make([]Article, 0, len(resp.Items))
	for _, it := range resp.Items {
		raw := it.BodyMarkdown
		if raw == "" {
			raw = it.Body
		}
		body := CleanHTML(raw)

		author := it.Owner.DisplayName
		if author == "" {
			author = "Stack Overflow User"
		}
		avatar := it.Owner.ProfileImage
		if avatar == "" {
			avatar = stackOverflowAvatar
		}
		tags := it.Tags
		if tags == nil {
			tags = []string{}
		}

		out = append(out, Article{
			ID:          "stack-" + strconv.Itoa(it.QuestionID),
			Title:       it.Title,
			Description: excerpt(body, 200),
			Content:     body,
			URL:         it.Link,
			ImageURL:    stackOverflowImage,
			PublishedAt: time.Unix(it.CreationDate, 0).UTC(),
			Author:      Author{Name: author, ImageURL: avatar},
			Source:      SourceStackOverflow,
			ReadTime:    ReadTime(body),
			Tags:        toTags(tags),
			Category:    Classify(tags, it.Title),
			ReadInApp:   body != "",
		})
	}
	return out, nil
}
