package processor

import (
	"strings"

	"github.com/LJTian/Updevted/internal/collector"
)

// specialCases 选中某个分类时额外放行的关键词。
// 匹配对象为归一化后的分类、小写标题和小写标签。
var specialCases = map[string][]string{
	"aiandml": {"ai", "artificialintelligence", "machinelearning", "ml", "gpt", "llm", "openai"},
	"devops":  {"docker", "kubernetes", "k8s", "cicd", "deployment", "automation", "pipeline"},
	"mobile":  {"android", "ios", "flutter", "reactnative", "mobiledev", "app"},
	"cloud":   {"aws", "azure", "gcp", "googlecloud", "serverless", "saas", "paas"},
	"uiux":    {"design", "userexperience", "userinterface", "figma", "sketch", "wireframe"},
}

// IsAllCategory 判断是否为 "全部" 哨兵值（空串、all、all tech）
func IsAllCategory(category string) bool {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "", "all", "all tech":
		return true
	}
	return false
}

// normalize 小写、去空白、& 替换为 and："AI & ML" -> "aiandml"
func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), "")
	return strings.ReplaceAll(s, "&", "and")
}

// FilterByCategory 宽松的分类过滤：宁可多放也不漏。
// 同一篇文章可能同时出现在多个分类视图中。
func FilterByCategory(items []collector.Article, category string) []collector.Article {
	if IsAllCategory(category) {
		return items
	}

	want := normalize(category)
	out := make([]collector.Article, 0, len(items))
	for _, a := range items {
		if matchCategory(a, want) {
			out = append(out, a)
		}
	}
	return out
}

func matchCategory(a collector.Article, want string) bool {
	cat := normalize(a.Category)
	if strings.Contains(cat, want) || strings.Contains(want, cat) {
		return true
	}

	for _, t := range a.Tags {
		tag := normalize(t.Name)
		if strings.Contains(tag, want) || strings.Contains(want, tag) {
			return true
		}
	}

	keywords, ok := specialCases[want]
	if !ok {
		return false
	}
	title := strings.ToLower(a.Title)
	for _, k := range keywords {
		if strings.Contains(cat, k) || strings.Contains(title, k) {
			return true
		}
		for _, t := range a.Tags {
			if strings.Contains(strings.ToLower(t.Name), k) {
				return true
			}
		}
	}
	return false
}
