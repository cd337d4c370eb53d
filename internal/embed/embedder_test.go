package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/boxcheck/internal/cache"
	"github.com/ppiankov/boxcheck/internal/model"
)

func TestOpenAIEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("Expected path /embeddings, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Model != "text-embedding-3-small" {
			t.Errorf("Unexpected model: %s", req.Model)
		}

		// Out of order on purpose: the embedder must sort by index
		resp := openai.EmbeddingResponse{
			Object: "list",
			Data: []openai.Embedding{
				{Object: "embedding", Index: 1, Embedding: []float32{0, 1}},
				{Object: "embedding", Index: 0, Embedding: []float32{1, 0}},
			},
			Model: openai.SmallEmbedding3,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	e, err := NewOpenAIEmbedder(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Failed to create embedder: %v", err)
	}

	vectors, err := e.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vectors) != 2 || vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Errorf("Unexpected vectors: %v", vectors)
	}
}

func TestOpenAIEmbedder_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIEmbedder(Config{}); err == nil {
		t.Error("Expected error without API key")
	}
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("Expected path /api/embed, got %s", r.URL.Path)
		}

		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}

		resp := ollamaEmbedResponse{Model: req.Model}
		for _, text := range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{float32(len(text)), 1})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	e, err := NewOllamaEmbedder(Config{BaseURL: server.URL + "/", Model: "nomic-embed-text"})
	if err != nil {
		t.Fatalf("Failed to create embedder: %v", err)
	}

	vectors, err := e.Embed(context.Background(), []string{"abc", "de"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vectors) != 2 || vectors[0][0] != 3 || vectors[1][0] != 2 {
		t.Errorf("Unexpected vectors: %v", vectors)
	}
}

func TestOllamaEmbedder_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ollamaError{Error: "model not found"})
	}))
	defer server.Close()

	e, err := NewOllamaEmbedder(Config{BaseURL: server.URL, Model: "missing"})
	if err != nil {
		t.Fatalf("Failed to create embedder: %v", err)
	}

	_, err = e.Embed(context.Background(), []string{"x"})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Errorf("Expected model not found error, got %v", err)
	}
}

func TestOllamaEmbedder_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{1}}})
	}))
	defer server.Close()

	e, _ := NewOllamaEmbedder(Config{BaseURL: server.URL, Model: "m"})
	if _, err := e.Embed(context.Background(), []string{"x", "y"}); err == nil {
		t.Error("Expected error when vector count differs from text count")
	}
}

type countingEmbedder struct {
	calls int32
	texts int32
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	atomic.AddInt32(&c.calls, 1)
	atomic.AddInt32(&c.texts, int32(len(texts)))
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func TestCachedEmbedder(t *testing.T) {
	next := &countingEmbedder{}
	store := cache.NewMemoryCache(time.Hour, time.Minute)
	e := NewCachedEmbedder(next, store, "m", nil)

	vectors, err := e.Embed(context.Background(), []string{"aa", "bbb", "aa"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if vectors[0][0] != 2 || vectors[1][0] != 3 || vectors[2][0] != 2 {
		t.Errorf("Unexpected vectors: %v", vectors)
	}
	if next.texts != 2 {
		t.Errorf("Expected duplicate texts to be embedded once, sent %d", next.texts)
	}

	if _, err := e.Embed(context.Background(), []string{"bbb", "aa"}); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if next.calls != 1 {
		t.Errorf("Expected cache hits to skip the backend, got %d calls", next.calls)
	}

	if _, err := e.Embed(context.Background(), []string{"aa", "c"}); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if next.calls != 2 || next.texts != 3 {
		t.Errorf("Expected only the miss to be sent, got calls=%d texts=%d", next.calls, next.texts)
	}
}

func TestNew(t *testing.T) {
	if _, err := New(Config{Provider: "bogus"}, model.CacheConfig{}, nil); err == nil {
		t.Error("Expected error for unknown provider")
	}

	e, err := New(Config{Provider: "ollama", Model: "nomic-embed-text"}, model.CacheConfig{Enabled: true, Dir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := e.(*CachedEmbedder); !ok {
		t.Errorf("Expected cached embedder, got %T", e)
	}

	e, err = New(Config{Provider: "ollama", Model: "nomic-embed-text"}, model.CacheConfig{}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := e.(*OllamaEmbedder); !ok {
		t.Errorf("Expected plain ollama embedder, got %T", e)
	}
}
