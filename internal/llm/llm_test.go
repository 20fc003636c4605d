package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeChat 模拟 OpenAI 兼容的 chat/completions 接口，固定返回 content
func fakeChat(t *testing.T, status int, content string) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var requests []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		requests = append(requests, body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error": {"message": "model overloaded", "type": "server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "llama3-8b-8192",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(srv.URL+"/v1", "test-key", "")
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", "  ", ""); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("NewClient without key = %v, want ErrNotConfigured", err)
	}
}

func TestExplainCode(t *testing.T) {
	srv, reqs := fakeChat(t, http.StatusOK, "```json\n{\"explanation\": \"Adds two numbers\", \"concepts\": [\"functions\"]}\n```")
	c := newTestClient(t, srv)

	out, err := c.ExplainCode(context.Background(), "func add(a, b int) int { return a + b }", "go")
	if err != nil {
		t.Fatalf("ExplainCode error: %v", err)
	}
	if out.Explanation != "Adds two numbers" || len(out.Concepts) != 1 || out.BestPractices == nil {
		t.Fatalf("unexpected explanation: %+v", out)
	}

	req := (*reqs)[0]
	if req["model"] != defaultModel {
		t.Fatalf("model = %v", req["model"])
	}
	msgs, _ := req["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(msgs))
	}
	user, _ := msgs[1].(map[string]any)
	if !strings.Contains(user["content"].(string), "```go\nfunc add") {
		t.Fatalf("code block missing from prompt: %v", user["content"])
	}
}

func TestExplainCodeValidatesInput(t *testing.T) {
	srv, reqs := fakeChat(t, http.StatusOK, "{}")
	c := newTestClient(t, srv)

	if _, err := c.ExplainCode(context.Background(), "", "go"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing code = %v", err)
	}
	if len(*reqs) != 0 {
		t.Fatalf("invalid input should not reach the model")
	}
}

func TestCompareTech(t *testing.T) {
	srv, reqs := fakeChat(t, http.StatusOK, `{"comparison": "Both are fine", "prosCons": {"Go": {"pros": ["fast"], "cons": ["verbose"]}, "Rust": {"pros": ["safe"], "cons": []}}, "recommendation": "Pick Go for services"}`)
	c := newTestClient(t, srv)

	if _, err := c.CompareTech(context.Background(), []string{"Go", " "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("single technology = %v", err)
	}

	out, err := c.CompareTech(context.Background(), []string{"Go", "Rust"})
	if err != nil {
		t.Fatalf("CompareTech error: %v", err)
	}
	if out.ProsCons["Go"].Pros[0] != "fast" || out.Recommendation == "" {
		t.Fatalf("unexpected comparison: %+v", out)
	}
	if len(*reqs) != 1 {
		t.Fatalf("expected exactly one model call, got %d", len(*reqs))
	}
}

func TestLearningPathAcceptsArrayOrObject(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    int
	}{
		{"array", `["Step 1: Basics", "Step 2: Concurrency"]`, 2},
		{"steps object", `{"steps": ["a", "b", "c"]}`, 3},
		{"path object", `{"path": ["a"]}`, 1},
		{"unknown object", `{"plan": ["a"]}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := fakeChat(t, http.StatusOK, tc.content)
			steps, err := newTestClient(t, srv).LearningPath(context.Background(), "Go")
			if err != nil {
				t.Fatalf("LearningPath error: %v", err)
			}
			if steps == nil || len(steps) != tc.want {
				t.Fatalf("steps = %v, want %d", steps, tc.want)
			}
		})
	}
}

func TestUpstreamFailuresAreDistinguishable(t *testing.T) {
	srv, _ := fakeChat(t, http.StatusInternalServerError, "")
	c := newTestClient(t, srv)
	ctx := context.Background()

	if _, err := c.LearningPath(ctx, "Go"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("LearningPath = %v, want ErrUpstream", err)
	}
	if err := c.TestConnection(ctx); !errors.Is(err, ErrUpstream) {
		t.Fatalf("TestConnection = %v, want ErrUpstream", err)
	}

	garbage, _ := fakeChat(t, http.StatusOK, "I cannot answer that")
	if _, err := newTestClient(t, garbage).ExplainCode(ctx, "x", "go"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("unparsable content = %v, want ErrUpstream", err)
	}
}

func TestTestConnection(t *testing.T) {
	srv, reqs := fakeChat(t, http.StatusOK, "Hello")
	if err := newTestClient(t, srv).TestConnection(context.Background()); err != nil {
		t.Fatalf("TestConnection error: %v", err)
	}
	if got := (*reqs)[0]["max_tokens"]; got != float64(5) {
		t.Fatalf("max_tokens = %v", got)
	}

	empty, _ := fakeChat(t, http.StatusOK, "")
	if err := newTestClient(t, empty).TestConnection(context.Background()); !errors.Is(err, ErrUpstream) {
		t.Fatalf("empty reply = %v, want ErrUpstream", err)
	}
}

func TestStripCodeFences(t *testing.T) {
	if got := stripCodeFences("```json\n{\"a\":1}\n```"); got != `{"a":1}` {
		t.Fatalf("stripCodeFences = %q", got)
	}
	if got := stripCodeFences("  {\"a\":1} "); got != `{"a":1}` {
		t.Fatalf("stripCodeFences = %q", got)
	}
}
