package collector

import "strings"

// 固定的分类集合
const (
	CategoryWebDev = "Web Dev"
	CategoryAIML   = "AI & ML"
	CategoryMobile = "Mobile"
	CategoryDevOps = "DevOps"
	CategoryCloud  = "Cloud"
	CategoryUIUX   = "UI/UX"
	// CategoryGeneric 所有规则都未命中时的兜底分类
	CategoryGeneric = "Tech"
)

// Categories 返回用户可选的分类，顺序即规则优先级
func Categories() []string {
	return []string{CategoryWebDev, CategoryAIML, CategoryMobile, CategoryDevOps, CategoryCloud, CategoryUIUX}
}

// CategoryRule 一个分类及其关键词组，任一关键词作为子串出现即命中
type CategoryRule struct {
	Category string
	Keywords []string
}

// CategoryRules 有序规则表：首个命中的规则胜出，不做打分。
// 子串匹配会有误判（例如 "ai" 命中 "maintain"），这是刻意保留的行为。
var CategoryRules = []CategoryRule{
	{CategoryWebDev, []string{
		"javascript", "react", "vue", "angular", "svelte", "html", "css", "scss", "sass", "typescript",
		"webdev", "frontend", "backend", "node", "nodejs", "express", "api", "rest", "graphql", "apollo",
		"fullstack", "web development", "web design", "webassembly", "wasm", "pwa", "webpack", "vite",
		"next.js", "astro", "remix", "dom", "jquery", "php", "laravel", "symfony", "django", "flask",
		"rails", "ruby", "netlify", "vercel", "jamstack", "static site",
	}},
	{CategoryAIML, []string{
		"ai", "ml", "machine learning", "machinelearning", "artificialintelligence", "artificial intelligence",
		"deeplearning", "deep learning", "gpt", "llm", "large language model", "nlp", "natural language",
		"datascience", "data science", "neural network", "tensorflow", "pytorch", "huggingface", "openai",
		"anthropic", "claude", "chatgpt", "llama", "generative", "computer vision", "cv", "transformer",
		"bert", "gpt-4", "gpt-3", "stable diffusion", "diffusion", "midjourney", "dall-e", "vectorization",
		"embeddings", "semantic search", "reinforcement learning", "rag", "retrieval augmented",
	}},
	{CategoryMobile, []string{
		"android", "ios", "swift", "kotlin", "flutter", "reactnative", "react native", "mobiledev", "mobile",
		"app development", "xamarin", "maui", "ionic", "capacitor", "cordova", "phonegap", "objective-c",
		"swiftui", "jetpack compose", "wear os", "watchos", "tvos", "applewatch", "iphone", "ipad", "tablet",
		"smartphone", "appstore", "play store", "mobile app", "pwa", "progressive web app",
	}},
	{CategoryDevOps, []string{
		"devops", "devsecops", "docker", "kubernetes", "k8s", "cicd", "ci/cd", "continuous integration",
		"deployment", "automation", "jenkins", "gitlab", "github actions", "circleci", "travis", "argocd",
		"helm", "terraform", "ansible", "puppet", "chef", "infrastructure as code", "iac", "monitoring",
		"logging", "alerting", "sre", "site reliability", "prometheus", "grafana", "elk", "observability",
		"container", "containerd", "podman", "orchestration", "gitops", "version control", "git",
	}},
	{CategoryCloud, []string{
		"cloud", "aws", "amazon web services", "azure", "microsoft azure", "gcp", "google cloud", "serverless",
		"microservices", "lambda", "faas", "saas", "paas", "iaas", "function as a service", "platform as a service",
		"infrastructure as a service", "s3", "ec2", "rds", "dynamodb", "cosmos db", "bigquery", "firebase",
		"cloudflare", "vercel", "netlify", "heroku", "digital ocean", "linode", "virtual machine", "vm",
		"containers", "scalability", "load balancing", "cdn", "edge computing", "multi-cloud", "hybrid cloud",
	}},
	{CategoryUIUX, []string{
		"design", "ui", "ux", "ui/ux", "user interface", "user experience", "figma", "sketch", "adobe xd",
		"userexperience", "userinterface", "designsystem", "design system", "design thinking", "wireframe",
		"prototype", "mockup", "usability", "accessibility", "a11y", "wcag", "responsive design", "mobile first",
		"atomic design", "typography", "color theory", "styleguide", "style guide", "information architecture",
		"interaction design", "motion design", "visual design", "product design", "user research", "user testing",
	}},
}

// generalKeywords 泛软件类关键词，命中则归入 Web Dev
var generalKeywords = []string{
	"programming", "coding", "software", "developer", "development", "engineer", "github", "open source",
	"code", "tech", "technology", "algorithm", "data structure", "computer science", "language",
}

// Classify 根据标签与标题推断唯一分类，永远不会返回空串
func Classify(tags []string, title string) string {
	return classifyCorpus(buildCorpus(tags, title), CategoryRules)
}

func buildCorpus(tags []string, title string) string {
	parts := make([]string, 0, len(tags)+1)
	parts = append(parts, tags...)
	parts = append(parts, title)
	return strings.ToLower(strings.Join(parts, " "))
}

func classifyCorpus(corpus string, rules []CategoryRule) string {
	for _, r := range rules {
		if containsAny(corpus, r.Keywords) {
			return r.Category
		}
	}
	if containsAny(corpus, generalKeywords) {
		return CategoryWebDev
	}
	return CategoryGeneric
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// IsKnownCategory 判断是否属于固定分类集合（含兜底分类）
func IsKnownCategory(c string) bool {
	if c == CategoryGeneric {
		return true
	}
	for _, k := range Categories() {
		if k == c {
			return true
		}
	}
	return false
}
