package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"trustgate/internal/trusterr"
)

const (
	judgeDefaultBaseURL = "https://api.openai.com/v1"
	judgeDefaultModel   = "gpt-4o-mini"
)

// JudgeClient asks an OpenAI-compatible chat completions endpoint for a
// single numeric verdict on a block of documentation text. Implements
// metrics.Judge.
type JudgeClient struct {
	baseURL  string
	apiKey   string
	model    string
	client   *http.Client
	limiter  *rate.Limiter
	observer Observer
}

// JudgeOption configures a JudgeClient.
type JudgeOption func(*JudgeClient)

// WithJudgeBaseURL points the client at a non-default endpoint.
func WithJudgeBaseURL(baseURL string) JudgeOption {
	return func(j *JudgeClient) {
		j.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithJudgeModel selects the completion model.
func WithJudgeModel(model string) JudgeOption {
	return func(j *JudgeClient) {
		j.model = model
	}
}

// WithJudgeObserver reports every completion call to the observer.
func WithJudgeObserver(o Observer) JudgeOption {
	return func(j *JudgeClient) {
		j.observer = o
	}
}

// NewJudgeClient creates a judge client. Returns nil when no API key is
// configured so callers can pass the absence straight to the metric catalog.
func NewJudgeClient(apiKey string, opts ...JudgeOption) *JudgeClient {
	if apiKey == "" {
		return nil
	}
	j := &JudgeClient{
		baseURL: judgeDefaultBaseURL,
		apiKey:  apiKey,
		model:   judgeDefaultModel,
		client:  &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Judge sends prompt and parses the strict {"score": ...} reply. Any failure
// comes back as a JudgeError so evaluators can degrade to undefined.
func (j *JudgeClient) Judge(ctx context.Context, prompt string) (float64, error) {
	start := time.Now()
	score, err := j.judge(ctx, prompt)
	observe(j.observer, "judge", "chat.completions", start, err)
	return score, err
}

func (j *JudgeClient) judge(ctx context.Context, prompt string) (float64, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return 0, trusterr.NewJudgeError("judge rate wait canceled", err)
	}

	payload, err := json.Marshal(chatRequest{
		Model: j.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a strict evaluator. Reply with a single JSON object and nothing else."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
		MaxTokens:   64,
	})
	if err != nil {
		return 0, trusterr.NewJudgeError("encoding judge request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return 0, trusterr.NewJudgeError("building judge request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+j.apiKey)

	resp, err := j.client.Do(req)
	if err != nil {
		return 0, trusterr.NewJudgeError("judge request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, trusterr.NewJudgeError("reading judge response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, trusterr.NewJudgeError(fmt.Sprintf("judge returned %d", resp.StatusCode), nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, trusterr.NewJudgeError("decoding judge response", err)
	}
	if parsed.Error != nil {
		return 0, trusterr.NewJudgeError("judge API error: "+parsed.Error.Message, nil)
	}
	if len(parsed.Choices) == 0 {
		return 0, trusterr.NewJudgeError("judge returned no choices", nil)
	}

	return parseScore(parsed.Choices[0].Message.Content)
}

// parseScore extracts the score from a reply, tolerating the markdown code
// fences some models insist on adding.
func parseScore(content string) (float64, error) {
	text := strings.TrimSpace(content)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var verdict struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return 0, trusterr.NewJudgeError(fmt.Sprintf("judge reply %q is not a score object", content), err)
	}
	if verdict.Score < 0 || verdict.Score > 1 {
		return 0, trusterr.NewJudgeError(fmt.Sprintf("judge score %v out of range", verdict.Score), nil)
	}
	return verdict.Score, nil
}
