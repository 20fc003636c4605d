package collector

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	trendingAPIURL       = "https://github-trending-api.de.a9sapp.eu/repositories"
	trendingScrapeURL    = "https://github.com/trending"
	defaultLanguageColor = "#f1e05a"
)

// 趋势统计周期
const (
	SinceDaily   = "daily"
	SinceWeekly  = "weekly"
	SinceMonthly = "monthly"
)

// NormalizeSince 非法值一律按 daily 处理
func NormalizeSince(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case SinceWeekly:
		return SinceWeekly
	case SinceMonthly:
		return SinceMonthly
	default:
		return SinceDaily
	}
}

// Contributor 仓库贡献者
type Contributor struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// TrendingRepo GitHub 趋势仓库
type TrendingRepo struct {
	// ID 与 Name 相同，均为 owner/name
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Description        string        `json:"description"`
	URL                string        `json:"url"`
	Language           string        `json:"language"`
	LanguageColor      string        `json:"languageColor"`
	Stars              int           `json:"stars"`
	Forks              int           `json:"forks"`
	CurrentPeriodStars int           `json:"currentPeriodStars"`
	BuiltBy            []Contributor `json:"builtBy"`
}

// TrendingFetcher 获取 GitHub 趋势仓库：先调排行 API，失败时（配置了 ScrapeURL 的情况下）
// 用 colly 抓取 Trending 页面，仍失败则返回固定的兜底列表。结果永远不为空。
type TrendingFetcher struct {
	APIURL    string
	ScrapeURL string
	Client    *http.Client
	UserAgent string
}

// NewTrendingFetcher 生产环境使用：API + 页面抓取 + 兜底
func NewTrendingFetcher(apiURL, userAgent string, timeout time.Duration) *TrendingFetcher {
	return &TrendingFetcher{
		APIURL:    apiURL,
		ScrapeURL: trendingScrapeURL,
		Client:    newHTTPClient(timeout),
		UserAgent: userAgent,
	}
}

type trendingAPIRepo struct {
	Author             string `json:"author"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	URL                string `json:"url"`
	Language           string `json:"language"`
	LanguageColor      string `json:"languageColor"`
	Stars              int    `json:"stars"`
	Forks              int    `json:"forks"`
	CurrentPeriodStars int    `json:"currentPeriodStars"`
	BuiltBy            []struct {
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
	} `json:"builtBy"`
}

func (t *TrendingFetcher) Fetch(ctx context.Context, language, since string) []TrendingRepo {
	since = NormalizeSince(since)

	repos, err := t.fetchAPI(ctx, language, since)
	if err == nil && len(repos) > 0 {
		return repos
	}
	if err != nil {
		slog.Warn("trending: api failed", "error", err)
	}

	if t.ScrapeURL != "" && ctx.Err() == nil {
		if scraped := t.scrape(ctx, language, since); len(scraped) > 0 {
			return scraped
		}
	}

	slog.Warn("trending: using fallback repositories")
	return FallbackTrendingRepos()
}

func (t *TrendingFetcher) fetchAPI(ctx context.Context, language, since string) ([]TrendingRepo, error) {
	base := t.APIURL
	if base == "" {
		base = trendingAPIURL
	}
	client := t.Client
	if client == nil {
		client = newHTTPClient(0)
	}

	var raw []trendingAPIRepo
	if err := getJSON(ctx, client, trendingURL(base, language, since), t.UserAgent, &raw); err != nil {
		return nil, err
	}

	out := make([]TrendingRepo, 0, len(raw))
	for _, r := range raw {
		full := r.Author + "/" + r.Name
		repoURL := r.URL
		if repoURL == "" {
			repoURL = "https://github.com/" + full
		}
		color := r.LanguageColor
		if color == "" {
			color = defaultLanguageColor
		}
		builtBy := make([]Contributor, 0, len(r.BuiltBy))
		for _, b := range r.BuiltBy {
			builtBy = append(builtBy, Contributor{Username: b.Username, Avatar: b.Avatar})
		}
		out = append(out, TrendingRepo{
			ID:                 full,
			Name:               full,
			Description:        r.Description,
			URL:                repoURL,
			Language:           r.Language,
			LanguageColor:      color,
			Stars:              nonNegative(r.Stars),
			Forks:              nonNegative(r.Forks),
			CurrentPeriodStars: nonNegative(r.CurrentPeriodStars),
			BuiltBy:            builtBy,
		})
	}
	return out, nil
}

// trendingURL 只有非 daily 时才带 since 参数
func trendingURL(base, language, since string) string {
	params := url.Values{}
	if language != "" {
		params.Set("language", language)
	}
	if since != SinceDaily {
		params.Set("since", since)
	}
	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}

var cssColorRe = regexp.MustCompile(`#[0-9a-fA-F]{3,8}`)

// scrape 抓取 Trending 页面（article.Box-row），与 API 字段对齐
func (t *TrendingFetcher) scrape(ctx context.Context, language, since string) []TrendingRepo {
	pageURL := strings.TrimSuffix(t.ScrapeURL, "/")
	if language != "" {
		pageURL += "/" + url.PathEscape(strings.ToLower(language))
	}
	pageURL += "?since=" + since

	ua := t.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	c := colly.NewCollector(colly.UserAgent(ua), colly.StdlibContext(ctx))
	timeout := defaultClientTimeout
	if t.Client != nil && t.Client.Timeout > 0 {
		timeout = t.Client.Timeout
	}
	c.SetRequestTimeout(timeout)

	results := make([]TrendingRepo, 0, 25)

	c.OnHTML("article.Box-row", func(e *colly.HTMLElement) {
		href := strings.TrimSpace(e.ChildAttr("h2 a", "href"))
		full := strings.Trim(href, "/")
		if full == "" || !strings.Contains(full, "/") {
			return
		}

		color := defaultLanguageColor
		if style := e.ChildAttr("span.repo-language-color", "style"); style != "" {
			if m := cssColorRe.FindString(style); m != "" {
				color = m
			}
		}

		var builtBy []Contributor
		e.ForEach("span a img.avatar", func(_ int, img *colly.HTMLElement) {
			builtBy = append(builtBy, Contributor{
				Username: strings.TrimPrefix(img.Attr("alt"), "@"),
				Avatar:   img.Attr("src"),
			})
		})
		if builtBy == nil {
			builtBy = []Contributor{}
		}

		results = append(results, TrendingRepo{
			ID:                 full,
			Name:               full,
			Description:        strings.TrimSpace(e.ChildText("p")),
			URL:                "https://github.com/" + full,
			Language:           strings.TrimSpace(e.ChildText("span[itemprop=programmingLanguage]")),
			LanguageColor:      color,
			Stars:              parseStars(e.ChildText(`a[href$="/stargazers"]`)),
			Forks:              parseStars(e.ChildText(`a[href$="/forks"]`)),
			CurrentPeriodStars: parseStars(firstNumber(e.ChildText("span.float-sm-right"))),
			BuiltBy:            builtBy,
		})
	})

	if err := c.Visit(pageURL); err != nil {
		slog.Warn("trending: scrape failed", "url", pageURL, "error", err)
		return nil
	}
	return results
}

// parseStars 将 "12.3k"、"1,024" 之类的文本解析为整数
func parseStars(text string) int {
	text = strings.ReplaceAll(text, ",", "")
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	multiplier := 1.0
	if strings.HasSuffix(text, "k") || strings.HasSuffix(text, "K") {
		multiplier = 1000
		text = strings.TrimSuffix(strings.TrimSuffix(text, "k"), "K")
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(f * multiplier)
}

// firstNumber "1,234 stars today" -> "1,234"
func firstNumber(s string) string {
	for _, f := range strings.Fields(s) {
		if f != "" && f[0] >= '0' && f[0] <= '9' {
			return f
		}
	}
	return ""
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// FallbackTrendingRepos 上游不可用时展示的固定列表，允许过时但不能为空
func FallbackTrendingRepos() []TrendingRepo {
	return []TrendingRepo{
		{
			ID:                 "facebook/react",
			Name:               "facebook/react",
			Description:        "A declarative, efficient, and flexible JavaScript library for building user interfaces.",
			URL:                "https://github.com/facebook/react",
			Language:           "JavaScript",
			LanguageColor:      "#f1e05a",
			Stars:              210500,
			Forks:              44200,
			CurrentPeriodStars: 234,
			BuiltBy:            []Contributor{{Username: "gaearon", Avatar: "https://avatars.githubusercontent.com/u/810438?v=4"}},
		},
		{
			ID:                 "microsoft/autogen",
			Name:               "microsoft/autogen",
			Description:        "Multi-agent conversation framework for LLM-based applications.",
			URL:                "https://github.com/microsoft/autogen",
			Language:           "Python",
			LanguageColor:      "#3572A5",
			Stars:              49800,
			Forks:              6100,
			CurrentPeriodStars: 1023,
			BuiltBy:            []Contributor{{Username: "microsoft", Avatar: "https://avatars.githubusercontent.com/u/6154722?v=4"}},
		},
		{
			ID:                 "rust-lang/rust",
			Name:               "rust-lang/rust",
			Description:        "Empowering everyone to build reliable and efficient software.",
			URL:                "https://github.com/rust-lang/rust",
			Language:           "Rust",
			LanguageColor:      "#dea584",
			Stars:              88300,
			Forks:              11700,
			CurrentPeriodStars: 432,
			BuiltBy:            []Contributor{{Username: "steveklabnik", Avatar: "https://avatars.githubusercontent.com/u/27786?v=4"}},
		},
		{
			ID:                 "denoland/deno",
			Name:               "denoland/deno",
			Description:        "A modern runtime for JavaScript and TypeScript.",
			URL:                "https://github.com/denoland/deno",
			Language:           "TypeScript",
			LanguageColor:      "#2b7489",
			Stars:              92400,
			Forks:              5100,
			CurrentPeriodStars: 321,
			BuiltBy:            []Contributor{{Username: "ry", Avatar: "https://avatars.githubusercontent.com/u/80?v=4"}},
		},
		{
			ID:                 "vercel/next.js",
			Name:               "vercel/next.js",
			Description:        "The React Framework for the Web",
			URL:                "https://github.com/vercel/next.js",
			Language:           "TypeScript",
			LanguageColor:      "#2b7489",
			Stars:              111700,
			Forks:              24900,
			CurrentPeriodStars: 567,
			BuiltBy:            []Contributor{{Username: "timneutkens", Avatar: "https://avatars.githubusercontent.com/u/6324199?v=4"}},
		},
	}
}
