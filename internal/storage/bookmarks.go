package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// 可收藏的条目类型
const (
	KindArticle = "article"
	KindRepo    = "repo"
)

var (
	ErrInvalidKind = errors.New("storage: invalid bookmark kind")
	ErrMissingID   = errors.New("storage: bookmark item has no id")
)

// Bookmark 收藏记录，Item 为原始条目（文章或仓库）的 JSON
type Bookmark struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Item      json.RawMessage `json:"item"`
	CreatedAt time.Time       `json:"createdAt"`
}

func ValidKind(kind string) bool {
	return kind == KindArticle || kind == KindRepo
}

func bookmarkPrefix(kind string) string {
	return "bookmark:" + kind + ":"
}

func bookmarkKey(kind, id string) string {
	return bookmarkPrefix(kind) + id
}

// IsBookmarked 同一个 id 在不同 kind 下互不影响
func (s *Store) IsBookmarked(ctx context.Context, id, kind string) (bool, error) {
	if !ValidKind(kind) {
		return false, ErrInvalidKind
	}
	_, err := s.KV.Get(ctx, bookmarkKey(kind, id))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddBookmark 收藏一个条目，id 取自条目 JSON 的 "id" 字段；重复收藏覆盖原记录
func (s *Store) AddBookmark(ctx context.Context, item json.RawMessage, kind string) (Bookmark, error) {
	if !ValidKind(kind) {
		return Bookmark{}, ErrInvalidKind
	}

	var head struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(item, &head); err != nil {
		return Bookmark{}, fmt.Errorf("storage: decode bookmark item: %w", err)
	}
	id := rawID(head.ID)
	if id == "" {
		return Bookmark{}, ErrMissingID
	}

	b := Bookmark{ID: id, Kind: kind, Item: item, CreatedAt: s.now().UTC()}
	if err := s.setJSON(ctx, bookmarkKey(kind, id), b, 0); err != nil {
		return Bookmark{}, err
	}
	return b, nil
}

// rawID id 既可能是字符串也可能是数字
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// RemoveBookmark 删除不存在的收藏不报错
func (s *Store) RemoveBookmark(ctx context.Context, id, kind string) error {
	if !ValidKind(kind) {
		return ErrInvalidKind
	}
	return s.KV.Delete(ctx, bookmarkKey(kind, id))
}

// ListBookmarks 按收藏时间倒序；kind 为空时返回全部类型
func (s *Store) ListBookmarks(ctx context.Context, kind string) ([]Bookmark, error) {
	kinds := []string{KindArticle, KindRepo}
	if kind != "" {
		if !ValidKind(kind) {
			return nil, ErrInvalidKind
		}
		kinds = []string{kind}
	}

	out := make([]Bookmark, 0)
	for _, k := range kinds {
		keys, err := s.KV.Keys(ctx, bookmarkPrefix(k))
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			var b Bookmark
			if err := s.getJSON(ctx, key, &b); err != nil {
				// 并发删除或数据损坏，跳过
				continue
			}
			out = append(out, b)
		}
	}

	slices.SortStableFunc(out, func(a, b Bookmark) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
