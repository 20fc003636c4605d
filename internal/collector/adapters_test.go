package collector

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func serve(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func failing(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func assertCanonical(t *testing.T, arts []Article) {
	t.Helper()
	for _, a := range arts {
		if a.ReadTime < 1 {
			t.Fatalf("%s/%s: readTime = %d", a.Source, a.ID, a.ReadTime)
		}
		if !IsKnownCategory(a.Category) {
			t.Fatalf("%s/%s: unknown category %q", a.Source, a.ID, a.Category)
		}
		if a.Tags == nil {
			t.Fatalf("%s/%s: tags must not be nil", a.Source, a.ID)
		}
		if a.ImageURL == "" || a.Author.ImageURL == "" {
			t.Fatalf("%s/%s: image fallbacks missing", a.Source, a.ID)
		}
	}
}

func TestDevToFetcherMapsArticles(t *testing.T) {
	srv := serve(t, map[string]string{
		"/api/articles": `[
			{"id": 42, "title": "Hooks in depth", "description": "desc", "url": "https://dev.to/a/42",
			 "cover_image": null, "published_at": "2024-05-01T10:00:00Z", "reading_time_minutes": 0,
			 "tag_list": ["react", "javascript"], "user": {"name": "Ann", "profile_image_90": ""}},
			{"id": 43, "title": "Docker tips", "description": "short", "body_markdown": "full body",
			 "url": "https://dev.to/a/43", "cover_image": "https://img/43.png",
			 "published_at": "2024-05-02T10:00:00Z", "reading_time_minutes": 7,
			 "tags": "docker, kubernetes", "user": {"name": "Bob", "profile_image_90": "https://img/bob.png"}}
		]`,
	})

	f := &DevToFetcher{BaseURL: srv.URL}
	arts, err := f.Fetch(context.Background(), Query{PerPage: 10})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(arts) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(arts))
	}
	assertCanonical(t, arts)

	a := arts[0]
	if a.ID != "42" || a.Source != SourceDevTo {
		t.Fatalf("unexpected id/source: %+v", a)
	}
	if a.ImageURL != defaultCoverImage || a.Author.ImageURL != defaultAvatarImage {
		t.Fatalf("expected placeholder images, got %q / %q", a.ImageURL, a.Author.ImageURL)
	}
	if a.Category != CategoryWebDev || a.ReadInApp {
		t.Fatalf("unexpected category/readInApp: %q %v", a.Category, a.ReadInApp)
	}
	if a.ReadTime != 1 {
		t.Fatalf("read time should be computed from description, got %d", a.ReadTime)
	}

	b := arts[1]
	if b.ReadTime != 7 || !b.ReadInApp || b.Content != "full body" {
		t.Fatalf("unexpected second article: %+v", b)
	}
	if len(b.Tags) != 2 || b.Tags[1].Name != "kubernetes" {
		t.Fatalf("comma separated tags not parsed: %+v", b.Tags)
	}
	if b.Category != CategoryDevOps {
		t.Fatalf("category = %q, want DevOps", b.Category)
	}
}

func TestDevToFetcherPropagatesFailure(t *testing.T) {
	srv := failing(t, http.StatusServiceUnavailable)
	_, err := (&DevToFetcher{BaseURL: srv.URL}).Fetch(context.Background(), Query{})
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
}

func TestHackerNewsFetcherPaginatesAndDropsUntitled(t *testing.T) {
	srv := serve(t, map[string]string{
		"/topstories.json": `[1, 2, 3, 4, 5]`,
		"/item/3.json":     `{"id": 3, "title": "Show HN: a Kubernetes operator", "url": "https://www.example.com/k8s", "by": "pg", "time": 1714557600, "kids": [1,2,3]}`,
		"/item/4.json":     `{"id": 4, "title": "", "time": 1714557600}`,
		"/item/5.json":     `null`,
		"/item/2.json":     `{"id": 2, "title": "Ask HN: What are you working on?", "text": "<p>Tell us about <i>your</i> project</p>", "time": 1714557000}`,
	})

	f := &HackerNewsFetcher{BaseURL: srv.URL}
	arts, err := f.Fetch(context.Background(), Query{Page: 2, PerPage: 3})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	// 第二页只有 id 4、5：4 无标题，5 为 null
	if len(arts) != 0 {
		t.Fatalf("expected 0 articles on page 2, got %d", len(arts))
	}

	arts, err = f.Fetch(context.Background(), Query{Page: 1, PerPage: 3})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	// id 1 返回 404 被跳过
	if len(arts) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(arts))
	}
	assertCanonical(t, arts)

	ask := arts[0]
	if ask.ID != "2" || !ask.ReadInApp || ask.Content != "Tell us about your project" {
		t.Fatalf("unexpected ask HN item: %+v", ask)
	}
	if ask.URL != "https://news.ycombinator.com/item?id=2" || ask.Tags[0].Name != "hackernews" {
		t.Fatalf("ask HN fallbacks wrong: %+v", ask)
	}

	show := arts[1]
	if show.Tags[0].Name != "example.com" || show.Description != "Discussion on example.com" {
		t.Fatalf("domain handling wrong: %+v", show)
	}
	if show.Category != CategoryDevOps || show.Tags[1].Name != "devops" {
		t.Fatalf("category/tag = %q/%q", show.Category, show.Tags[1].Name)
	}
	if show.ReadInApp {
		t.Fatalf("link story without text must not be readable in app")
	}
}

func TestHackerNewsFetcherPropagatesIDListFailure(t *testing.T) {
	srv := failing(t, http.StatusBadGateway)
	if _, err := (&HackerNewsFetcher{BaseURL: srv.URL}).Fetch(context.Background(), Query{}); err == nil {
		t.Fatalf("expected error when id list fails")
	}
}

func TestRedditFetcherFiltersAndPicksImages(t *testing.T) {
	long := strings.Repeat("x", 300)
	srv := serve(t, map[string]string{
		"/r/golang.json": `{"data": {"children": [
			{"data": {"id": "a", "title": "Pinned", "stickied": true, "permalink": "/r/golang/a"}},
			{"data": {"id": "b", "title": "Video", "is_video": true, "permalink": "/r/golang/b"}},
			{"data": {"id": "c", "title": "Generics deep dive", "selftext": "` + long + `", "permalink": "/r/golang/c",
			          "thumbnail": "self", "created_utc": 1714557600, "num_comments": 100, "link_flair_text": "Discussion",
			          "preview": {"images": [{"source": {"url": "https://preview/img?a=1&amp;b=2"}}]}}},
			{"data": {"id": "d", "title": "Thumb post", "permalink": "/r/golang/d", "thumbnail": "https://thumb/d.jpg", "created_utc": 1714557000}},
			{"data": {"id": "e", "title": "Bare post", "permalink": "/r/golang/e", "thumbnail": "default", "created_utc": 1714556000}}
		]}}`,
	})

	f := &RedditFetcher{Subreddit: "golang", BaseURL: srv.URL}
	arts, err := f.Fetch(context.Background(), Query{PerPage: 5})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(arts) != 3 {
		t.Fatalf("expected pinned and video posts removed, got %d", len(arts))
	}
	assertCanonical(t, arts)

	c := arts[0]
	if c.ImageURL != "https://preview/img?a=1&b=2" {
		t.Fatalf("preview image not unescaped: %q", c.ImageURL)
	}
	if !c.ReadInApp || len([]rune(c.Description)) != 253 {
		t.Fatalf("unexpected description/readInApp: %d %v", len(c.Description), c.ReadInApp)
	}
	// ceil(300/1500)=1 + min(4, 100/20)=4
	if c.ReadTime != 5 {
		t.Fatalf("read time = %d, want 5", c.ReadTime)
	}
	if c.URL != "https://www.reddit.com/r/golang/c" || c.Tags[0].Name != "r/golang" || c.Tags[1].Name != "discussion" {
		t.Fatalf("url/tags wrong: %q %+v", c.URL, c.Tags)
	}

	if arts[1].ImageURL != "https://thumb/d.jpg" {
		t.Fatalf("thumbnail should be preferred: %q", arts[1].ImageURL)
	}
	if arts[2].ImageURL != redditImage || arts[2].ReadInApp {
		t.Fatalf("placeholder expected: %+v", arts[2])
	}
}

func TestRedditFetcherSwallowsFailures(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		srv  *httptest.Server
	}{
		{"unavailable", failing(t, http.StatusServiceUnavailable)},
		{"not json", serve(t, map[string]string{"/r/programming.json": `<html>not json</html>`})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			arts, err := (&RedditFetcher{BaseURL: tc.srv.URL}).Fetch(ctx, Query{})
			if err != nil {
				t.Fatalf("failure should be swallowed, got %v", err)
			}
			if arts == nil || len(arts) != 0 {
				t.Fatalf("expected empty non-nil list, got %#v", arts)
			}
		})
	}
}

func TestNewsAPIFetcherSwallowsFailures(t *testing.T) {
	ctx := context.Background()

	arts, err := (&NewsAPIFetcher{}).Fetch(ctx, Query{})
	if err != nil || arts == nil || len(arts) != 0 {
		t.Fatalf("missing key should produce empty list, got %v %v", arts, err)
	}

	srv := failing(t, http.StatusTooManyRequests)
	arts, err = (&NewsAPIFetcher{APIKey: "k", BaseURL: srv.URL}).Fetch(ctx, Query{})
	if err != nil || len(arts) != 0 {
		t.Fatalf("429 should produce empty list, got %v %v", arts, err)
	}

	bad := serve(t, map[string]string{"/v2/top-headlines": `{"status": "error", "message": "apiKeyInvalid"}`})
	arts, err = (&NewsAPIFetcher{APIKey: "k", BaseURL: bad.URL}).Fetch(ctx, Query{})
	if err != nil || len(arts) != 0 {
		t.Fatalf("error status should produce empty list, got %v %v", arts, err)
	}

	garbage := serve(t, map[string]string{"/v2/top-headlines": `<html>`})
	arts, err = (&NewsAPIFetcher{APIKey: "k", BaseURL: garbage.URL}).Fetch(ctx, Query{})
	if err != nil || len(arts) != 0 {
		t.Fatalf("malformed body should produce empty list, got %v %v", arts, err)
	}
}

func TestNewsAPIFetcherMapsArticles(t *testing.T) {
	srv := serve(t, map[string]string{"/v2/top-headlines": `{"status": "ok", "articles": [
		{"source": {"name": "The Verge"}, "author": "", "title": "OpenAI ships a model", "description": "d",
		 "url": "https://verge/1", "urlToImage": "", "publishedAt": "2024-05-01T08:00:00Z", "content": "body text"},
		{"source": {"name": ""}, "title": "No date", "url": "https://x/2", "publishedAt": ""}
	]}`})
	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	f := &NewsAPIFetcher{APIKey: "k", BaseURL: srv.URL, Now: func() time.Time { return fixed }}
	arts, err := f.Fetch(context.Background(), Query{})
	if err != nil || len(arts) != 2 {
		t.Fatalf("Fetch = %v, %v", arts, err)
	}
	assertCanonical(t, arts)

	if arts[0].Author.Name != "The Verge" || arts[0].Category != CategoryAIML || arts[0].ReadInApp {
		t.Fatalf("unexpected first article: %+v", arts[0])
	}
	if arts[1].Author.Name != "Unknown" || arts[1].Tags[0].Name != "tech" || !arts[1].PublishedAt.Equal(fixed) {
		t.Fatalf("unexpected fallbacks: %+v", arts[1])
	}

	again, _ := f.Fetch(context.Background(), Query{})
	if again[0].ID != arts[0].ID {
		t.Fatalf("ids should be deterministic: %q vs %q", again[0].ID, arts[0].ID)
	}
}

func TestStackExchangeFetcher(t *testing.T) {
	srv := serve(t, map[string]string{"/2.3/questions": `{"items": [
		{"question_id": 7, "title": "How do I center a div?", "body": "<p>I tried <code>margin: auto</code></p>",
		 "link": "https://so/q/7", "creation_date": 1714557600, "tags": ["css", "html"],
		 "owner": {"display_name": "", "profile_image": ""}}
	]}`})

	arts, err := (&StackExchangeFetcher{BaseURL: srv.URL}).Fetch(context.Background(), Query{})
	if err != nil || len(arts) != 1 {
		t.Fatalf("Fetch = %v, %v", arts, err)
	}
	assertCanonical(t, arts)
	a := arts[0]
	if a.ID != "stack-7" || a.Content != "I tried margin: auto" || !strings.HasSuffix(a.Description, "...") {
		t.Fatalf("unexpected article: %+v", a)
	}
	if a.Author.Name != "Stack Overflow User" || a.Category != CategoryWebDev || !a.ReadInApp {
		t.Fatalf("unexpected author/category: %+v", a)
	}

	broken := failing(t, http.StatusInternalServerError)
	arts, err = (&StackExchangeFetcher{BaseURL: broken.URL}).Fetch(context.Background(), Query{})
	if err != nil || arts == nil || len(arts) != 0 {
		t.Fatalf("failure should produce empty list, got %v %v", arts, err)
	}
}

const mediumFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
<title>Technology on Medium</title>
<item>
  <title>Why we moved to Terraform</title>
  <link>https://medium.com/p/1</link>
  <guid>https://medium.com/p/1</guid>
  <dc:creator>Jane</dc:creator>
  <category>devops</category>
  <category>terraform</category>
  <pubDate>Wed, 01 May 2024 10:00:00 GMT</pubDate>
  <content:encoded><![CDATA[<p>Some <img src="https://cdn/img1.png"/> words here</p>]]></content:encoded>
</item>
<item>
  <title>Second</title>
  <link>https://medium.com/p/2</link>
  <pubDate>Tue, 30 Apr 2024 10:00:00 GMT</pubDate>
  <description><![CDATA[<p>Plain</p>]]></description>
</item>
</channel>
</rss>`

func TestMediumFetcherParsesFeed(t *testing.T) {
	srv := serve(t, map[string]string{"/feed": mediumFeed})

	f := &MediumFetcher{FeedURL: srv.URL + "/feed"}
	arts, err := f.Fetch(context.Background(), Query{PerPage: 1})
	if err != nil || len(arts) != 1 {
		t.Fatalf("Fetch = %v, %v", arts, err)
	}
	assertCanonical(t, arts)
	a := arts[0]
	if a.Author.Name != "Jane" || a.ImageURL != "https://cdn/img1.png" || a.Category != CategoryDevOps {
		t.Fatalf("unexpected article: %+v", a)
	}
	if a.Content != "Some  words here" && a.Content != "Some words here" {
		t.Fatalf("content not cleaned: %q", a.Content)
	}
	if !strings.HasPrefix(a.ID, "medium-") {
		t.Fatalf("id = %q", a.ID)
	}

	page2, _ := f.Fetch(context.Background(), Query{Page: 2, PerPage: 1})
	if len(page2) != 1 || page2[0].Title != "Second" || page2[0].ImageURL != mediumImage {
		t.Fatalf("unexpected page 2: %+v", page2)
	}

	page3, _ := f.Fetch(context.Background(), Query{Page: 3, PerPage: 1})
	if page3 == nil || len(page3) != 0 {
		t.Fatalf("out of range page should be empty, got %+v", page3)
	}
}

func TestMediumFetcherSwallowsMalformedFeed(t *testing.T) {
	srv := serve(t, map[string]string{"/feed": `not a feed`})
	arts, err := (&MediumFetcher{FeedURL: srv.URL + "/feed"}).Fetch(context.Background(), Query{})
	if err != nil || arts == nil || len(arts) != 0 {
		t.Fatalf("malformed feed should produce empty list, got %v %v", arts, err)
	}
}

func TestCommunityFetcherGeneratesFillerOnFailure(t *testing.T) {
	srv := failing(t, http.StatusForbidden)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	f := &CommunityFetcher{
		BaseURL: srv.URL,
		Rand:    rand.New(rand.NewPCG(1, 2)),
		Now:     func() time.Time { return now },
	}
	arts, err := f.Fetch(context.Background(), Query{PerPage: 4})
	if err != nil {
		t.Fatalf("community fetcher must not fail: %v", err)
	}
	if len(arts) != 4 {
		t.Fatalf("expected 4 generated items, got %d", len(arts))
	}
	assertCanonical(t, arts)
	for _, a := range arts {
		if a.Source != SourceQuoraLike || a.ReadInApp {
			t.Fatalf("unexpected generated item: %+v", a)
		}
		if a.ReadTime < 5 || a.ReadTime > 14 {
			t.Fatalf("read time out of range: %d", a.ReadTime)
		}
		if a.PublishedAt.After(now) || now.Sub(a.PublishedAt) > communityMaxAge {
			t.Fatalf("timestamp not within the last week: %v", a.PublishedAt)
		}
		if !strings.Contains(a.Title, "2024") {
			t.Fatalf("title should mention the current year: %q", a.Title)
		}
	}
}

func TestCommunityFetcherReturnsEmptyWhenUpstreamReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "<html></html>")
	}))
	t.Cleanup(srv.Close)

	arts, err := (&CommunityFetcher{BaseURL: srv.URL}).Fetch(context.Background(), Query{PerPage: 3})
	if err != nil || arts == nil || len(arts) != 0 {
		t.Fatalf("expected empty list, got %v %v", arts, err)
	}
}
