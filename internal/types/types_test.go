package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactReferenceValidate(t *testing.T) {
	assert.Error(t, ArtifactReference{}.Validate())
	assert.Error(t, ArtifactReference{ModelURL: "   "}.Validate())
	assert.NoError(t, ArtifactReference{ModelURL: "https://huggingface.co/org/m"}.Validate())
}

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		owner   string
		repo    string
		wantErr bool
	}{
		{
			name:  "plain repo url",
			url:   "https://github.com/google/go-github",
			owner: "google",
			repo:  "go-github",
		},
		{
			name:  "trailing git suffix",
			url:   "https://github.com/org/repo.git",
			owner: "org",
			repo:  "repo",
		},
		{
			name:  "deep path keeps owner and repo",
			url:   "https://github.com/org/repo/tree/main/src",
			owner: "org",
			repo:  "repo",
		},
		{
			name:    "missing repo segment",
			url:     "https://github.com/onlyowner",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}

func TestParseHFRepoID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{
			name:     "model url",
			url:      "https://huggingface.co/google/gemma-2b",
			expected: "google/gemma-2b",
		},
		{
			name:     "dataset url strips prefix",
			url:      "https://huggingface.co/datasets/squad_v2/squad_v2",
			expected: "squad_v2/squad_v2",
		},
		{
			name:     "tree suffix stripped",
			url:      "https://huggingface.co/org/m/tree/main",
			expected: "org/m",
		},
		{
			name:     "blob suffix stripped",
			url:      "https://huggingface.co/org/m/blob/main/README.md",
			expected: "org/m",
		},
		{
			name:    "empty path",
			url:     "https://huggingface.co/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseHFRepoID(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestModelReadmeText(t *testing.T) {
	m := &Model{}
	assert.Empty(t, m.ReadmeText())

	m.Model = &ModelInfo{CardText: "card"}
	assert.Equal(t, "card", m.ReadmeText())

	m.Code = &CodeInfo{Readme: "readme"}
	assert.Equal(t, "readme\n\ncard", m.ReadmeText())
}
