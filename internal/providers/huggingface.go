package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"trustgate/internal/resilience"
	"trustgate/internal/trusterr"
	"trustgate/internal/types"
)

const (
	hfBaseURL      = "https://huggingface.co"
	hfCacheTTL     = 5 * time.Minute
	hfMaxCardBytes = 1 << 20
	hfMaxBodyBytes = 16 << 20
)

var (
	weightExtensions = map[string]string{
		".safetensors": "safetensors",
		".bin":         "pytorch",
		".pth":         "pytorch",
		".ckpt":        "checkpoint",
		".h5":          "keras",
		".onnx":        "onnx",
		".gguf":        "gguf",
		".msgpack":     "flax",
	}
	cardCodeLinkRe = regexp.MustCompile(`https?://github\.com/[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+`)
)

// hfRepoInfo is the hub API shape shared by models and datasets.
type hfRepoInfo struct {
	ID        string   `json:"id"`
	Tags      []string `json:"tags"`
	Downloads int      `json:"downloads"`
	Likes     int      `json:"likes"`
	CardData  struct {
		License  any      `json:"license"`
		Datasets []string `json:"datasets"`
	} `json:"cardData"`
	Siblings []struct {
		Filename string `json:"rfilename"`
		Size     int64  `json:"size"`
	} `json:"siblings"`
}

// HFClient fetches model and dataset metadata from the hub. Safe for
// concurrent use.
type HFClient struct {
	baseURL  string
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *resilience.CircuitBreaker
	cache    *responseCache
	retry    resilience.RetryConfig
	observer Observer
}

// HFOption configures an HFClient.
type HFOption func(*HFClient)

// WithHFObserver reports every hub call to the observer.
func WithHFObserver(o Observer) HFOption {
	return func(h *HFClient) {
		h.observer = o
	}
}

// NewHFClient creates a hub client with the default resilience stack.
func NewHFClient(opts ...HFOption) *HFClient {
	h := &HFClient{
		baseURL: hfBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{}),
		cache:   newResponseCache(hfCacheTTL),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewHFClientWithBaseURL is used by tests to point the client at a stub hub.
func NewHFClientWithBaseURL(baseURL string, opts ...HFOption) *HFClient {
	c := NewHFClient(opts...)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// FetchModel resolves a model repository snapshot.
func (h *HFClient) FetchModel(ctx context.Context, repoID, revision string) (*types.ModelInfo, error) {
	var info hfRepoInfo
	if err := h.getJSON(ctx, types.SourceModel, fmt.Sprintf("/api/models/%s?blobs=true", repoID), &info); err != nil {
		return nil, err
	}

	card, err := h.fetchCard(ctx, types.SourceModel, repoID, revision, false)
	if err != nil {
		// A model without a readme is a normal state.
		card = ""
	}

	weights := make(map[string]int64)
	for _, s := range info.Siblings {
		format, ok := weightExtensions[strings.ToLower(path.Ext(s.Filename))]
		if !ok {
			continue
		}
		weights[format] += s.Size
	}

	m := &types.ModelInfo{
		ID:          info.ID,
		CardText:    card,
		License:     licenseString(info.CardData.License),
		Tags:        info.Tags,
		WeightBytes: weights,
		Downloads:   info.Downloads,
		Likes:       info.Likes,
		Datasets:    info.CardData.Datasets,
	}
	if link := cardCodeLinkRe.FindString(card); link != "" {
		m.CodeRepo = link
	}
	return m, nil
}

// FetchDataset resolves a dataset repository snapshot.
func (h *HFClient) FetchDataset(ctx context.Context, repoID, revision string) (*types.DatasetInfo, error) {
	var info hfRepoInfo
	if err := h.getJSON(ctx, types.SourceDataset, fmt.Sprintf("/api/datasets/%s", repoID), &info); err != nil {
		return nil, err
	}

	card, err := h.fetchCard(ctx, types.SourceDataset, repoID, revision, true)
	if err != nil {
		card = ""
	}

	return &types.DatasetInfo{
		ID:        info.ID,
		CardText:  card,
		License:   licenseString(info.CardData.License),
		Downloads: info.Downloads,
		Likes:     info.Likes,
	}, nil
}

func (h *HFClient) fetchCard(ctx context.Context, source types.Source, repoID, revision string, dataset bool) (string, error) {
	if revision == "" {
		revision = "main"
	}
	prefix := ""
	if dataset {
		prefix = "/datasets"
	}
	body, err := h.get(ctx, source, fmt.Sprintf("%s/%s/raw/%s/README.md", prefix, repoID, revision))
	if err != nil {
		return "", err
	}
	if len(body) > hfMaxCardBytes {
		body = body[:hfMaxCardBytes]
	}
	return string(body), nil
}

func (h *HFClient) getJSON(ctx context.Context, source types.Source, path string, out any) error {
	body, err := h.get(ctx, source, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding hub response for %s: %w", path, err)
	}
	return nil
}

// get performs a GET with cache, rate limit, circuit breaker and bounded
// retry, mapping failures to the fetch error taxonomy.
func (h *HFClient) get(ctx context.Context, source types.Source, path string) ([]byte, error) {
	url := h.baseURL + path
	if body, ok := h.cache.get(url); ok {
		return body, nil
	}

	start := time.Now()
	var body []byte
	err := resilience.RetryWithConfig(ctx, h.retry, func() error {
		if err := h.limiter.Wait(ctx); err != nil {
			return err
		}
		return h.breaker.Call(func() error {
			var callErr error
			body, callErr = h.doGet(ctx, source, url)
			return callErr
		})
	})
	observe(h.observer, "huggingface", path, start, err)
	if err != nil {
		return nil, err
	}

	h.cache.set(url, body)
	return body, nil
}

func (h *HFClient) doGet(ctx context.Context, source types.Source, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "trustgate/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, trusterr.NewTimeout(source, "hub request timed out", err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// The card limit is applied after the fact by fetchCard; API
		// listings for repositories with many files can be far larger
		// than any readme, so the transport cap stays generous.
		return io.ReadAll(io.LimitReader(resp.Body, hfMaxBodyBytes))
	case resp.StatusCode == http.StatusNotFound:
		return nil, trusterr.NewNotFound(source, fmt.Sprintf("%s not found", url), nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, trusterr.NewUnauthorized(source, fmt.Sprintf("hub rejected credentials for %s", url), nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, trusterr.NewRateLimited(source, "hub rate limit exceeded", nil)
	case resp.StatusCode >= 500:
		return nil, trusterr.NewTimeout(source, fmt.Sprintf("hub error %d for %s", resp.StatusCode, url), nil)
	default:
		return nil, fmt.Errorf("unexpected hub status %d for %s", resp.StatusCode, url)
	}
}

func licenseString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []any:
		parts := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				parts = append(parts, str)
			}
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}
