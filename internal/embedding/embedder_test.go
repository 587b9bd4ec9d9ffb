package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"skillfit-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbeddingServer 返回固定维度的递增向量, index倒序以验证排序
func fakeEmbeddingServer(t *testing.T, dim int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := embeddingResponse{Object: "list"}
		for i := len(req.Input) - 1; i >= 0; i-- {
			vec := make([]float64, dim)
			vec[0] = float64(i + 1)
			resp.Data = append(resp.Data, struct {
				Object    string    `json:"object"`
				Embedding []float64 `json:"embedding"`
				Index     int       `json:"index"`
			}{Object: "embedding", Embedding: vec, Index: i})
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestEmbedStrings(t *testing.T) {
	srv := fakeEmbeddingServer(t, 384)
	defer srv.Close()

	embedder, err := NewHTTPEmbedder(config.EmbeddingConfig{BaseURL: srv.URL, Dimensions: 384})
	require.NoError(t, err)

	vectors, err := embedder.EmbedStrings(context.Background(), []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	// 响应乱序也按index还原
	assert.Equal(t, 1.0, vectors[0][0])
	assert.Equal(t, 2.0, vectors[1][0])
	assert.Equal(t, 3.0, vectors[2][0])
	assert.Len(t, vectors[0], 384)
}

func TestEmbedStringsDimensionMismatch(t *testing.T) {
	srv := fakeEmbeddingServer(t, 100)
	defer srv.Close()

	embedder, err := NewHTTPEmbedder(config.EmbeddingConfig{BaseURL: srv.URL, Dimensions: 384})
	require.NoError(t, err)

	_, err = embedder.EmbedStrings(context.Background(), []string{"alpha"})
	assert.Error(t, err)
}

func TestEmbedStringsServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	embedder, err := NewHTTPEmbedder(config.EmbeddingConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = embedder.EmbedStrings(context.Background(), []string{"alpha"})
	assert.Error(t, err)
}

func TestEmbedStringsEmptyInput(t *testing.T) {
	embedder, err := NewHTTPEmbedder(config.EmbeddingConfig{BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	vectors, err := embedder.EmbedStrings(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestGenerateUserVectors(t *testing.T) {
	srv := fakeEmbeddingServer(t, 384)
	defer srv.Close()

	embedder, err := NewHTTPEmbedder(config.EmbeddingConfig{BaseURL: srv.URL, Dimensions: 384})
	require.NoError(t, err)

	uv, err := GenerateUserVectors(context.Background(), embedder, "resume text", []string{"python", "go"})
	require.NoError(t, err)
	assert.Len(t, uv.GlobalVector, 384)
	assert.Len(t, uv.SkillVector, 384)
	assert.True(t, uv.Valid())
}

func TestCleanText(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"N/A", ""},
		{"Hello   World", "hello world"},
		{`line one\nline two`, "line one line two"},
		{"<p>Data <b>Scientist</b></p>", "data scientist"},
		{"salary ₹ 12L", "salary rs 12l"},
		{"a – b — c", "a - b - c"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, CleanText(tc.input), "input=%q", tc.input)
	}
}
