package leetcode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"leetcode-buddy/internal/domain"
)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func newFakeLeetCode(t *testing.T, handler func(req graphqlRequest) any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if err := json.NewEncoder(w).Encode(handler(req)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
}

func TestValidateUsername(t *testing.T) {
	server := newFakeLeetCode(t, func(req graphqlRequest) any {
		if req.Variables["username"] == "alice" {
			return map[string]any{"data": map[string]any{"matchedUser": map[string]any{"username": "alice"}}}
		}
		return map[string]any{"data": map[string]any{"matchedUser": nil}}
	})
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	ctx := context.Background()

	ok, err := client.ValidateUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !ok {
		t.Fatalf("alice should exist")
	}

	ok, err = client.ValidateUsername(ctx, "ghost")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if ok {
		t.Fatalf("ghost should not exist")
	}
}

func questionListResponse(questions ...map[string]any) any {
	return map[string]any{"data": map[string]any{"questionList": map[string]any{"questions": questions}}}
}

func TestFetchRandomQuestionFiltersPaidAndUsed(t *testing.T) {
	server := newFakeLeetCode(t, func(req graphqlRequest) any {
		return questionListResponse(
			map[string]any{"titleSlug": "premium-only", "title": "Premium", "difficulty": "Hard", "paidOnly": true},
			map[string]any{"titleSlug": "two-sum", "title": "Two Sum", "difficulty": "Easy", "paidOnly": false},
			map[string]any{"titleSlug": "lru-cache", "title": "LRU Cache", "difficulty": "Medium", "paidOnly": false},
		)
	})
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	question, err := client.FetchRandomQuestion(context.Background(), []string{"two-sum"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if question.Slug != "lru-cache" {
		t.Fatalf("expected the only eligible slug, got %q", question.Slug)
	}
}

func TestFetchRandomQuestionExhaustsRetries(t *testing.T) {
	calls := 0
	server := newFakeLeetCode(t, func(req graphqlRequest) any {
		calls++
		return questionListResponse(
			map[string]any{"titleSlug": "two-sum", "title": "Two Sum", "difficulty": "Easy", "paidOnly": false},
		)
	})
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.FetchRandomQuestion(context.Background(), []string{"two-sum"})
	if err != domain.ErrSourceExhausted {
		t.Fatalf("expected exhaustion, got %v", err)
	}
	if calls != fetchAttempts {
		t.Fatalf("expected %d bounded attempts, got %d", fetchAttempts, calls)
	}
}

func TestCheckSubmission(t *testing.T) {
	server := newFakeLeetCode(t, func(req graphqlRequest) any {
		return map[string]any{"data": map[string]any{"recentAcSubmissionList": []map[string]any{
			{"titleSlug": "two-sum", "timestamp": "1100"},
			{"titleSlug": "other", "timestamp": "2000"},
		}}}
	})
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	ctx := context.Background()

	solved, err := client.CheckSubmission(ctx, "alice", "two-sum", 1000)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !solved {
		t.Fatalf("submission at 1100 after 1000 should count")
	}

	solved, err = client.CheckSubmission(ctx, "alice", "two-sum", 1100)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if solved {
		t.Fatalf("submission at the cutoff must not count")
	}

	solved, _ = client.CheckSubmission(ctx, "alice", "three-sum", 0)
	if solved {
		t.Fatalf("unmatched slug must not count")
	}
}

func TestQueryRejectsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.ValidateUsername(context.Background(), "alice")
	if err == nil || !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("expected status error, got %v", err)
	}
}
