package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"leetcode-buddy/internal/domain"
)

const defaultBaseURL = "https://leetcode.com/graphql"

// fetchAttempts bounds the random-offset retries when a page yields no
// eligible question.
const fetchAttempts = 5

const userProfileQuery = `
query userProfile($username: String!) {
    matchedUser(username: $username) {
        username
    }
}`

const questionListQuery = `
query randomQuestion($categorySlug: String, $limit: Int, $skip: Int, $filters: QuestionListFilterInput) {
    questionList(categorySlug: $categorySlug, limit: $limit, skip: $skip, filters: $filters) {
        questions: data {
            difficulty
            paidOnly: isPaidOnly
            title
            titleSlug
        }
    }
}`

const recentAcSubmissionsQuery = `
query recentAcSubmissions($username: String!) {
    recentAcSubmissionList(username: $username, limit: 100) {
        titleSlug
        timestamp
    }
}`

// Client talks to LeetCode's public GraphQL endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	rnd        *rand.Rand
	sf         singleflight.Group
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *Client) query(ctx context.Context, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("leetcode: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

// ValidateUsername reports whether the handle exists on LeetCode.
// Concurrent lookups for the same handle are collapsed.
func (c *Client) ValidateUsername(ctx context.Context, handle string) (bool, error) {
	result, err, _ := c.sf.Do(handle, func() (interface{}, error) {
		var resp struct {
			Data struct {
				MatchedUser *struct {
					Username string `json:"username"`
				} `json:"matchedUser"`
			} `json:"data"`
		}
		if err := c.query(ctx, userProfileQuery, map[string]any{"username": handle}, &resp); err != nil {
			return false, err
		}
		return resp.Data.MatchedUser != nil, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// FetchRandomQuestion returns a free question whose slug is not in
// usedSlugs. Each attempt queries a page of 50 at a fresh random offset;
// after fetchAttempts empty pages it gives up with ErrSourceExhausted.
func (c *Client) FetchRandomQuestion(ctx context.Context, usedSlugs []string) (domain.Question, error) {
	used := make(map[string]struct{}, len(usedSlugs))
	for _, slug := range usedSlugs {
		used[slug] = struct{}{}
	}

	for attempt := 0; attempt < fetchAttempts; attempt++ {
		page, err := c.questionPage(ctx, c.rnd.Intn(2000))
		if err != nil {
			return domain.Question{}, err
		}

		eligible := page[:0]
		for _, q := range page {
			if q.PaidOnly {
				continue
			}
			if _, ok := used[q.Slug]; ok {
				continue
			}
			eligible = append(eligible, q)
		}
		if len(eligible) > 0 {
			return eligible[c.rnd.Intn(len(eligible))], nil
		}
	}
	return domain.Question{}, domain.ErrSourceExhausted
}

func (c *Client) questionPage(ctx context.Context, skip int) ([]domain.Question, error) {
	var resp struct {
		Data struct {
			QuestionList struct {
				Questions []struct {
					Difficulty string `json:"difficulty"`
					PaidOnly   bool   `json:"paidOnly"`
					Title      string `json:"title"`
					TitleSlug  string `json:"titleSlug"`
				} `json:"questions"`
			} `json:"questionList"`
		} `json:"data"`
	}
	variables := map[string]any{
		"categorySlug": "",
		"skip":         skip,
		"limit":        50,
		"filters":      map[string]any{},
	}
	if err := c.query(ctx, questionListQuery, variables, &resp); err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(resp.Data.QuestionList.Questions))
	for _, q := range resp.Data.QuestionList.Questions {
		questions = append(questions, domain.Question{
			Slug:       q.TitleSlug,
			Title:      q.Title,
			Difficulty: q.Difficulty,
			PaidOnly:   q.PaidOnly,
		})
	}
	return questions, nil
}

// CheckSubmission reports whether the handle has an accepted submission
// for slug strictly after afterUnix.
func (c *Client) CheckSubmission(ctx context.Context, handle, slug string, afterUnix int64) (bool, error) {
	var resp struct {
		Data struct {
			RecentAcSubmissionList []struct {
				TitleSlug string `json:"titleSlug"`
				Timestamp string `json:"timestamp"`
			} `json:"recentAcSubmissionList"`
		} `json:"data"`
	}
	if err := c.query(ctx, recentAcSubmissionsQuery, map[string]any{"username": handle}, &resp); err != nil {
		return false, err
	}

	for _, sub := range resp.Data.RecentAcSubmissionList {
		if sub.TitleSlug != slug {
			continue
		}
		var ts int64
		if _, err := fmt.Sscanf(sub.Timestamp, "%d", &ts); err != nil {
			continue
		}
		if ts > afterUnix {
			return true, nil
		}
	}
	return false, nil
}
