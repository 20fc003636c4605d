package collector

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const wordsPerMinute = 200

// ReadTime 按 200 词/分钟估算阅读时长，至少 1 分钟
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// engagementReadTime 只有正文长度与评论数可用时的估算：
// ceil(len/charsPerMinute) + min(maxBonus, comments/commentsPerMinute)，至少 1 分钟
func engagementReadTime(textLen, charsPerMinute, comments, commentsPerMinute, maxBonus int) int {
	minutes := int(math.Ceil(float64(textLen) / float64(charsPerMinute)))
	bonus := comments / commentsPerMinute
	if bonus > maxBonus {
		bonus = maxBonus
	}
	if bonus < 0 {
		bonus = 0
	}
	minutes += bonus
	if minutes < 1 {
		return 1
	}
	return minutes
}

// CleanHTML 去除 HTML 标签，返回纯文本（实体会被解码）
func CleanHTML(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.TrimSpace(doc.Text())
}

// truncateRunes 按 rune 截断，超出时追加 "..."
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "..."
}

// excerpt 与原站展示一致：固定截取前 limit 个字符并总是追加 "..."
func excerpt(s string, limit int) string {
	rs := []rune(s)
	if len(rs) > limit {
		rs = rs[:limit]
	}
	return string(rs) + "..."
}
