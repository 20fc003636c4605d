package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const devToBaseURL = "https://dev.to"

// DevToFetcher 通过 Dev.to 公开 API 拉取文章
type DevToFetcher struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string
}

func (d *DevToFetcher) Name() string {
	return "devto"
}

type devToArticle struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	BodyMarkdown       string   `json:"body_markdown"`
	URL                string   `json:"url"`
	CoverImage         string   `json:"cover_image"`
	PublishedAt        string   `json:"published_at"`
	ReadingTimeMinutes int      `json:"reading_time_minutes"`
	TagList            flexTags `json:"tag_list"`
	Tags               flexTags `json:"tags"`
	User               struct {
		Name           string `json:"name"`
		ProfileImage90 string `json:"profile_image_90"`
	} `json:"user"`
}

// flexTags Dev.to 的列表接口与详情接口分别用数组和逗号分隔字符串表示标签，两者都接受
type flexTags []string

func (f *flexTags) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*f = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// 其它类型（null、数字）视为无标签
		*f = nil
		return nil
	}
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*f = out
	return nil
}

func (d *DevToFetcher) Fetch(ctx context.Context, q Query) ([]Article, error) {
	slog.Debug("fetch Dev.to articles...", "tag", q.Tag)

	params := url.Values{}
	params.Set("page", strconv.Itoa(q.page()))
	params.Set("per_page", strconv.Itoa(q.perPage(15)))
	if q.Tag != "" {
		params.Set("tag", q.Tag)
	}

	base := d.BaseURL
	if base == "" {
		base = devToBaseURL
	}
	apiURL := base + "/api/articles?" + params.Encode()

	var raw []devToArticle
	if err := getJSON(ctx, d.client(), apiURL, d.UserAgent, &raw); err != nil {
		return nil, fmt.Errorf("devto: fetch articles: %w", err)
	}

	out := make([]Article, 0, len(raw))
	for _, a := range raw {
		out = append(out, mapDevToArticle(a))
	}
	return out, nil
}

func (d *DevToFetcher) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return newHTTPClient(0)
}

func mapDevToArticle(a devToArticle) Article {
	tags := []string(a.TagList)
	if len(tags) == 0 {
		tags = []string(a.Tags)
	}

	body := a.BodyMarkdown
	if body == "" {
		body = a.Description
	}

	readTime := a.ReadingTimeMinutes
	if readTime < 1 {
		readTime = ReadTime(body)
	}

	image := a.CoverImage
	if image == "" {
		image = defaultCoverImage
	}
	avatar := a.User.ProfileImage90
	if avatar == "" {
		avatar = defaultAvatarImage
	}

	published, _ := time.Parse(time.RFC3339, a.PublishedAt)

	return Article{
		ID:          strconv.Itoa(a.ID),
		Title:       a.Title,
		Description: a.Description,
		Content:     body,
		URL:         a.URL,
		ImageURL:    image,
		PublishedAt: published,
		Author:      Author{Name: a.User.Name, ImageURL: avatar},
		Source:      SourceDevTo,
		ReadTime:    readTime,
		Tags:        toTags(tags),
		Category:    Classify(tags, a.Title),
		ReadInApp:   a.BodyMarkdown != "",
	}
}

func toTags(names []string) []Tag {
	tags := make([]Tag, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			tags = append(tags, Tag{Name: n})
		}
	}
	return tags
}
