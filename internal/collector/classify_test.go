package collector

import "testing"

func TestClassifyExamples(t *testing.T) {
	cases := []struct {
		name  string
		tags  []string
		title string
		want  string
	}{
		{"web dev by tags", []string{"react", "javascript"}, "Building a UI", CategoryWebDev},
		{"devops by tags", []string{"kubernetes", "ci/cd"}, "", CategoryDevOps},
		{"ai by title", nil, "Fine-tuning LLM adapters", CategoryAIML},
		{"mobile", []string{"flutter"}, "Shipping faster", CategoryMobile},
		{"cloud", []string{"aws"}, "Scaling on EC2", CategoryCloud},
		{"ui ux", []string{"figma"}, "Picking typefaces", CategoryUIUX},
		{"general falls back to web dev", []string{"career"}, "Becoming a better engineer", CategoryWebDev},
		{"nothing matches", []string{"gardening"}, "Tomatoes in spring", CategoryGeneric},
		{"empty input", nil, "", CategoryGeneric},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Classify(c.tags, c.title); got != c.want {
				t.Fatalf("Classify(%v, %q) = %q, want %q", c.tags, c.title, got, c.want)
			}
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// 同时命中 Web Dev 与 DevOps 时按规则顺序取 Web Dev
	if got := Classify([]string{"docker", "typescript"}, ""); got != CategoryWebDev {
		t.Fatalf("expected Web Dev to win over DevOps, got %q", got)
	}
}

func TestClassifySubstringFalsePositiveIsKept(t *testing.T) {
	// "maintainers" 包含 "ai"，按子串规则归入 AI & ML
	if got := Classify(nil, "Notes for maintainers"); got != CategoryAIML {
		t.Fatalf("substring match should classify as AI & ML, got %q", got)
	}
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	if got := Classify([]string{"KUBERNETES"}, ""); got != CategoryDevOps {
		t.Fatalf("expected DevOps, got %q", got)
	}
}

func TestCategoryRulesOrder(t *testing.T) {
	want := Categories()
	if len(CategoryRules) != len(want) {
		t.Fatalf("rules = %d, categories = %d", len(CategoryRules), len(want))
	}
	for i, r := range CategoryRules {
		if r.Category != want[i] {
			t.Fatalf("rule %d = %q, want %q", i, r.Category, want[i])
		}
		if len(r.Keywords) == 0 {
			t.Fatalf("rule %q has no keywords", r.Category)
		}
	}
}

func TestIsKnownCategory(t *testing.T) {
	for _, c := range append(Categories(), CategoryGeneric) {
		if !IsKnownCategory(c) {
			t.Fatalf("%q should be known", c)
		}
	}
	if IsKnownCategory("Gardening") {
		t.Fatalf("Gardening should not be known")
	}
}
