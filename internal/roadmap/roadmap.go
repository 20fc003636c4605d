package roadmap

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// 主题学习状态
const (
	StatusCompleted  = "completed"
	StatusLearning   = "learning"
	StatusNotStarted = "not-started"
)

var (
	ErrNotFound      = errors.New("roadmap: not found")
	ErrInvalidStatus = errors.New("roadmap: invalid topic status")
	ErrUnknownTopic  = errors.New("roadmap: unknown topic")
)

type Resource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Topic struct {
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Resources []Resource `json:"resources"`
}

// Salary 年薪（美元）
type Salary struct {
	Entry  int `json:"entry"`
	Mid    int `json:"mid"`
	Senior int `json:"senior"`
}

// Career 一条职业路线
type Career struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Icon            string   `json:"icon"`
	Topics          []Topic  `json:"topics"`
	Salary          Salary   `json:"salary"`
	Companies       []string `json:"companies"`
	InterviewTopics []string `json:"interviewTopics"`
}

//go:embed roadmaps.json
var roadmapsJSON []byte

var careers []Career

func init() {
	if err := json.Unmarshal(roadmapsJSON, &careers); err != nil {
		panic(fmt.Sprintf("roadmap: decode embedded data: %v", err))
	}
	for i := range careers {
		for j := range careers[i].Topics {
			careers[i].Topics[j].Status = StatusNotStarted
		}
	}
}

// List 返回全部职业路线的副本，状态均为 not-started
func List() []Career {
	out := make([]Career, 0, len(careers))
	for _, c := range careers {
		out = append(out, c.clone())
	}
	return out
}

// Get 按 id 查找
func Get(id string) (Career, error) {
	for _, c := range careers {
		if c.ID == id {
			return c.clone(), nil
		}
	}
	return Career{}, ErrNotFound
}

func (c Career) clone() Career {
	topics := make([]Topic, len(c.Topics))
	copy(topics, c.Topics)
	c.Topics = topics
	return c
}

// WithProgress 把已保存的学习进度合并到路线上，未知主题的记录忽略
func (c Career) WithProgress(progress map[string]string) Career {
	c = c.clone()
	for i, t := range c.Topics {
		if s, ok := progress[t.Name]; ok && ValidStatus(s) {
			c.Topics[i].Status = s
		}
	}
	return c
}

// HasTopic 主题名大小写敏感
func (c Career) HasTopic(name string) bool {
	for _, t := range c.Topics {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Completion 已完成主题占比，0~100
func (c Career) Completion() int {
	if len(c.Topics) == 0 {
		return 0
	}
	done := 0
	for _, t := range c.Topics {
		if t.Status == StatusCompleted {
			done++
		}
	}
	return done * 100 / len(c.Topics)
}

// ValidateTopicStatus 先校验主题再校验状态，分别返回 ErrUnknownTopic / ErrInvalidStatus
func (c Career) ValidateTopicStatus(topic, status string) error {
	if !c.HasTopic(topic) {
		return fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}
	if !ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return nil
}

func ValidStatus(s string) bool {
	switch s {
	case StatusCompleted, StatusLearning, StatusNotStarted:
		return true
	}
	return false
}

// Job 招聘信息
type Job struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Salary      string `json:"salary"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

var jobs = []Job{
	{
		ID:          "1",
		Title:       "Senior Frontend Developer",
		Company:     "Airbnb",
		Location:    "Remote",
		Salary:      "$120K - $150K",
		Description: "Join our team to build amazing user experiences using React and modern frontend technologies.",
		URL:         "https://example.com/job/1",
	},
	{
		ID:          "2",
		Title:       "Frontend Engineer",
		Company:     "Stripe",
		Location:    "San Francisco, CA",
		Salary:      "$130K - $160K",
		Description: "Help us build the next generation of payment interfaces using TypeScript and React.",
		URL:         "https://example.com/job/2",
	},
	{
		ID:          "3",
		Title:       "UI Developer",
		Company:     "Netflix",
		Location:    "Remote",
		Salary:      "$110K - $140K",
		Description: "Create engaging user interfaces for our streaming platform using modern web technologies.",
		URL:         "https://example.com/job/3",
	},
	{
		ID:          "4",
		Title:       "Backend Engineer",
		Company:     "Shopify",
		Location:    "Remote",
		Salary:      "$125K - $155K",
		Description: "Design and scale the APIs behind millions of storefronts.",
		URL:         "https://example.com/job/4",
	},
	{
		ID:          "5",
		Title:       "DevOps Engineer",
		Company:     "GitLab",
		Location:    "Remote",
		Salary:      "$120K - $150K",
		Description: "Own CI/CD pipelines and Kubernetes infrastructure for a global product.",
		URL:         "https://example.com/job/5",
	},
	{
		ID:          "6",
		Title:       "Machine Learning Engineer",
		Company:     "OpenAI",
		Location:    "San Francisco, CA",
		Salary:      "$180K - $250K",
		Description: "Train and ship large language models to production.",
		URL:         "https://example.com/job/6",
	},
}

// Jobs 按角色关键词过滤招聘信息；没有匹配时返回全部，列表永不为空
func Jobs(role string) []Job {
	words := strings.FieldsFunc(strings.ToLower(role), func(r rune) bool {
		return r == '-' || r == ' ' || r == '_' || r == '/'
	})

	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		title := strings.ToLower(j.Title)
		for _, w := range words {
			// "developer"/"engineer" 太宽泛，不参与匹配
			if w == "developer" || w == "engineer" {
				continue
			}
			if strings.Contains(title, w) {
				out = append(out, j)
				break
			}
		}
	}
	if len(out) == 0 {
		return append([]Job(nil), jobs...)
	}
	return out
}
