package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatchLine(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantErr    bool
		modelURL   string
		datasetURL string
		codeURL    string
	}{
		{
			name:       "all three fields",
			line:       "https://github.com/org/r,https://huggingface.co/datasets/org/d,https://huggingface.co/org/m",
			modelURL:   "https://huggingface.co/org/m",
			datasetURL: "https://huggingface.co/datasets/org/d",
			codeURL:    "https://github.com/org/r",
		},
		{
			name:     "model only",
			line:     ",,https://huggingface.co/org/m",
			modelURL: "https://huggingface.co/org/m",
		},
		{
			name:     "whitespace trimmed",
			line:     " , , https://huggingface.co/org/m ",
			modelURL: "https://huggingface.co/org/m",
		},
		{
			name:    "missing model url",
			line:    "https://github.com/org/r,,",
			wantErr: true,
		},
		{
			name:    "wrong field count",
			line:    "https://huggingface.co/org/m",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := parseBatchLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.modelURL, ref.ModelURL)
			assert.Equal(t, tt.datasetURL, ref.DatasetURL)
			assert.Equal(t, tt.codeURL, ref.CodeURL)
		})
	}
}

func TestReadBatchFileSkipsBlanksAndComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.txt")
	body := `# admission queue
,,https://huggingface.co/org/one

https://github.com/org/r,,https://huggingface.co/org/two
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	refs, err := readBatchFile(path)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "https://huggingface.co/org/one", refs[0].ModelURL)
	assert.Equal(t, "https://github.com/org/r", refs[1].CodeURL)
}

func TestReadBatchFileReportsLineNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.txt")
	require.NoError(t, os.WriteFile(path, []byte(",,https://huggingface.co/org/ok\nbroken-line\n"), 0644))

	_, err := readBatchFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseMode(t *testing.T) {
	_, err := parseMode("parallel")
	assert.Error(t, err)

	mode, err := parseMode("sequential")
	require.NoError(t, err)
	assert.Equal(t, "sequential", string(mode))

	mode, err = parseMode("")
	require.NoError(t, err)
	assert.Equal(t, "concurrent", string(mode))
}
