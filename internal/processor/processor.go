package processor

import (
	"slices"
	"strings"

	"github.com/LJTian/Updevted/internal/collector"
)

// SimpleProcessor 在各数据源结果合并后统一兜底：
// 保证阅读时长、分类与标签的约束成立。标题、简介保持上游原文，不做去重。
type SimpleProcessor struct{}

func NewSimpleProcessor() *SimpleProcessor {
	return &SimpleProcessor{}
}

func (p *SimpleProcessor) Process(items []collector.Article) []collector.Article {
	out := make([]collector.Article, 0, len(items))

	for _, it := range items {
		if it.ReadTime < 1 {
			it.ReadTime = 1
		}
		if !collector.IsKnownCategory(it.Category) {
			it.Category = collector.Classify(it.TagNames(), it.Title)
		}
		it.Tags = cleanTags(it.Tags)
		out = append(out, it)
	}

	return out
}

// cleanTags 去掉空标签，保证结果非 nil；空标签会让分类过滤匹配所有文章
func cleanTags(tags []collector.Tag) []collector.Tag {
	out := make([]collector.Tag, 0, len(tags))
	for _, t := range tags {
		if name := strings.TrimSpace(t.Name); name != "" {
			out = append(out, collector.Tag{Name: name})
		}
	}
	return out
}

// SortNewestFirst 按发布时间倒序，时间相同保持原有顺序
func SortNewestFirst(items []collector.Article) {
	slices.SortStableFunc(items, func(a, b collector.Article) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
}
