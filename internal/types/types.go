package types

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Source identifies one of the three metadata origins of an artifact.
type Source string

const (
	SourceCode    Source = "code"
	SourceDataset Source = "dataset"
	SourceModel   Source = "model"
)

// ArtifactReference points at the artifact to be scored. The model URL is
// mandatory; code and dataset URLs are optional and their absence is a normal
// state, not an error.
type ArtifactReference struct {
	Name       string `json:"name,omitempty"`
	ModelURL   string `json:"model_url"`
	DatasetURL string `json:"dataset_url,omitempty"`
	CodeURL    string `json:"code_url,omitempty"`
	Revision   string `json:"revision,omitempty"`
}

// Validate checks the structural requirements of a reference.
func (r ArtifactReference) Validate() error {
	if strings.TrimSpace(r.ModelURL) == "" {
		return fmt.Errorf("model URL is required")
	}
	return nil
}

// Contributor holds one contributor's commit count on the code repository.
type Contributor struct {
	Login   string `json:"login"`
	Commits int    `json:"commits"`
}

// FileEntry is one entry of a repository or model file listing.
type FileEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// PullStats summarizes merged pull request review coverage.
type PullStats struct {
	MergedTotal    int `json:"merged_total"`
	MergedReviewed int `json:"merged_reviewed"`
}

// CodeInfo is the snapshot of the code-hosting source.
type CodeInfo struct {
	FullName     string        `json:"full_name"`
	License      string        `json:"license,omitempty"`
	Readme       string        `json:"readme,omitempty"`
	Contributors []Contributor `json:"contributors,omitempty"`
	LastCommit   time.Time     `json:"last_commit,omitempty"`
	Files        []FileEntry   `json:"files,omitempty"`
	HasCI        bool          `json:"has_ci"`
	Pulls        PullStats     `json:"pulls"`
}

// ModelInfo is the snapshot of the model-hosting source.
type ModelInfo struct {
	ID          string           `json:"id"`
	CardText    string           `json:"card_text,omitempty"`
	License     string           `json:"license,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	WeightBytes map[string]int64 `json:"weight_bytes,omitempty"`
	Downloads   int              `json:"downloads"`
	Likes       int              `json:"likes"`
	Datasets    []string         `json:"datasets,omitempty"`
	CodeRepo    string           `json:"code_repo,omitempty"`
}

// TotalWeightBytes sums the per-format weight file sizes.
func (m *ModelInfo) TotalWeightBytes() int64 {
	var total int64
	for _, n := range m.WeightBytes {
		total += n
	}
	return total
}

// DatasetInfo is the snapshot of the dataset-hosting source.
type DatasetInfo struct {
	ID        string `json:"id"`
	CardText  string `json:"card_text,omitempty"`
	License   string `json:"license,omitempty"`
	Downloads int    `json:"downloads"`
	Likes     int    `json:"likes"`
}

// Model is the aggregate metadata snapshot one evaluation runs against.
// It is built once per evaluation and treated as immutable by all metric
// evaluators. A nil section means the source was absent or unreachable;
// Failures records the reason per source.
type Model struct {
	Ref      ArtifactReference `json:"ref"`
	Code     *CodeInfo         `json:"code,omitempty"`
	Dataset  *DatasetInfo      `json:"dataset,omitempty"`
	Model    *ModelInfo        `json:"model,omitempty"`
	Failures map[Source]string `json:"failures,omitempty"`
}

// ReadmeText returns the best available documentation text: the code repo
// readme and the model card, joined. Empty when neither is populated.
func (m *Model) ReadmeText() string {
	var parts []string
	if m.Code != nil && m.Code.Readme != "" {
		parts = append(parts, m.Code.Readme)
	}
	if m.Model != nil && m.Model.CardText != "" {
		parts = append(parts, m.Model.CardText)
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// ParseRepoURL extracts "owner/repo" from a code-hosting URL.
func ParseRepoURL(raw string) (owner, repo string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("invalid repository URL %q: %w", raw, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository URL %q missing owner/repo", raw)
	}
	repo = strings.TrimSuffix(parts[1], ".git")
	return parts[0], repo, nil
}

// ParseHFRepoID extracts the hub repository ID ("org/name") from a model or
// dataset URL. Tree/blob suffixes and a "datasets/" prefix are stripped.
func ParseHFRepoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid hub URL %q: %w", raw, err)
	}
	path := strings.Trim(u.Path, "/")
	path = strings.TrimPrefix(path, "datasets/")
	if i := strings.Index(path, "/tree/"); i >= 0 {
		path = path[:i]
	}
	if i := strings.Index(path, "/blob/"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "", fmt.Errorf("hub URL %q missing repository id", raw)
	}
	return path, nil
}
