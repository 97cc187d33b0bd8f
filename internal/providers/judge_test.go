package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected float64
		wantErr  bool
	}{
		{
			name:     "bare json",
			content:  `{"score": 0.75}`,
			expected: 0.75,
		},
		{
			name:     "json fence",
			content:  "```json\n{\"score\": 0.4}\n```",
			expected: 0.4,
		},
		{
			name:     "plain fence",
			content:  "```\n{\"score\": 1.0}\n```",
			expected: 1.0,
		},
		{
			name:    "prose instead of json",
			content: "The documentation is quite good, I'd say 0.8.",
			wantErr: true,
		},
		{
			name:    "score out of range",
			content: `{"score": 1.5}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := parseScore(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, score, 1e-9)
		})
	}
}

func TestNewJudgeClientWithoutKeyIsNil(t *testing.T) {
	assert.Nil(t, NewJudgeClient(""))
}

func TestJudgeRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"score": 0.6}`}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	judge := NewJudgeClient("test-key", WithJudgeBaseURL(srv.URL))
	score, err := judge.Judge(context.Background(), "rate this readme")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, score, 1e-9)
}

func TestJudgeServerErrorWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	judge := NewJudgeClient("test-key", WithJudgeBaseURL(srv.URL))
	_, err := judge.Judge(context.Background(), "rate this readme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "judge")
}
