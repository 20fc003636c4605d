package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrNotConfigured 没有配置 API key，构造时返回一次
	ErrNotConfigured = errors.New("llm: api key is not configured")
	// ErrUpstream 模型调用失败或返回内容无法解析
	ErrUpstream = errors.New("llm: upstream model call failed")
	// ErrInvalidInput 请求参数不完整
	ErrInvalidInput = errors.New("llm: invalid input")
)

const defaultModel = "llama3-8b-8192"

type Client struct {
	client *openai.Client
	model  string
}

// NewClient baseURL 指向任意 OpenAI 兼容接口（默认 Groq）
func NewClient(baseURL, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = defaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// CodeExplanation 代码讲解结果
type CodeExplanation struct {
	Explanation   string   `json:"explanation"`
	Concepts      []string `json:"concepts"`
	BestPractices []string `json:"bestPractices"`
}

type ProsCons struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

// TechComparison 技术对比结果，ProsCons 以技术名为 key
type TechComparison struct {
	Comparison     string              `json:"comparison"`
	ProsCons       map[string]ProsCons `json:"prosCons"`
	Recommendation string              `json:"recommendation"`
}

const explainSystemPrompt = `You are a coding tutor who explains code in simple, understandable terms. Return only valid JSON.`

func (c *Client) ExplainCode(ctx context.Context, code, language string) (*CodeExplanation, error) {
	if strings.TrimSpace(code) == "" || strings.TrimSpace(language) == "" {
		return nil, fmt.Errorf("%w: code and language are required", ErrInvalidInput)
	}

	prompt := fmt.Sprintf(`Please explain this %s code snippet in clear, simple terms. Return your response in JSON format:
{
  "explanation": "A clear explanation of what this code does",
  "concepts": ["Concept 1", "Concept 2", "Concept 3"],
  "bestPractices": ["Best practice 1", "Best practice 2"]
}

Code:
`+"```%s\n%s\n```", language, language, code)

	content, err := c.complete(ctx, explainSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var out CodeExplanation
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("%w: parse explanation: %v", ErrUpstream, err)
	}
	if out.Concepts == nil {
		out.Concepts = []string{}
	}
	if out.BestPractices == nil {
		out.BestPractices = []string{}
	}
	return &out, nil
}

const compareSystemPrompt = `You are a technology consultant who provides objective comparisons of different technologies. Return only valid JSON.`

func (c *Client) CompareTech(ctx context.Context, technologies []string) (*TechComparison, error) {
	techs := make([]string, 0, len(technologies))
	for _, t := range technologies {
		if t = strings.TrimSpace(t); t != "" {
			techs = append(techs, t)
		}
	}
	if len(techs) < 2 {
		return nil, fmt.Errorf("%w: at least two technologies are required", ErrInvalidInput)
	}

	templates := make([]string, 0, len(techs))
	for _, t := range techs {
		templates = append(templates, fmt.Sprintf(`%q: { "pros": ["Pro 1", "Pro 2", "Pro 3"], "cons": ["Con 1", "Con 2", "Con 3"] }`, t))
	}
	prompt := fmt.Sprintf(`Please compare these technologies: %s. Return your response in JSON format:
{
  "comparison": "A concise comparison of the technologies",
  "prosCons": {
    %s
  },
  "recommendation": "Your recommendation on when to use each technology"
}`, strings.Join(techs, ", "), strings.Join(templates, ",\n    "))

	content, err := c.complete(ctx, compareSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var out TechComparison
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("%w: parse comparison: %v", ErrUpstream, err)
	}
	if out.ProsCons == nil {
		out.ProsCons = map[string]ProsCons{}
	}
	return &out, nil
}

const learningPathSystemPrompt = `You are a tech education expert who creates learning paths for developers. Return only a valid JSON array.`

// LearningPath 返回有序的学习步骤
func (c *Client) LearningPath(ctx context.Context, technology string) ([]string, error) {
	technology = strings.TrimSpace(technology)
	if technology == "" {
		return nil, fmt.Errorf("%w: technology is required", ErrInvalidInput)
	}

	prompt := fmt.Sprintf(`Generate a learning path for someone who wants to learn %s.
Return your response as a JSON array of steps, each describing what to learn and in what order.
Example format: ["Step 1: Basic concepts", "Step 2: Intermediate skills", "Step 3: Advanced topics"]`, technology)

	content, err := c.complete(ctx, learningPathSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	steps, err := parseSteps(content)
	if err != nil {
		return nil, fmt.Errorf("%w: parse learning path: %v", ErrUpstream, err)
	}
	return steps, nil
}

// parseSteps 接受裸数组，或 {"steps": [...]}、{"path": [...]} 形式的对象
func parseSteps(content string) ([]string, error) {
	var steps []string
	if err := json.Unmarshal([]byte(content), &steps); err == nil {
		if steps == nil {
			steps = []string{}
		}
		return steps, nil
	}

	var obj struct {
		Steps []string `json:"steps"`
		Path  []string `json:"path"`
	}
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return nil, err
	}
	switch {
	case obj.Steps != nil:
		return obj.Steps, nil
	case obj.Path != nil:
		return obj.Path, nil
	default:
		return []string{}, nil
	}
}

// TestConnection 发一条极短的请求确认 key 与接口可用
func (c *Client) TestConnection(ctx context.Context) error {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "Say hello"},
		},
		MaxTokens: 5,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return fmt.Errorf("%w: empty response", ErrUpstream)
	}
	return nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrUpstream)
	}
	return stripCodeFences(resp.Choices[0].Message.Content), nil
}

// stripCodeFences 部分模型会用 markdown 代码块包裹 JSON
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
