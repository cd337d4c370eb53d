package predict

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ppiankov/boxcheck/internal/model"
)

func TestClient_Predict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("Expected path /predict, got %s", r.URL.Path)
		}

		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}

		resp := predictResponse{}
		for _, id := range req.InputIDs {
			row := []float32{0, 0, 0}
			row[id%3] = 1
			resp.Logits = append(resp.Logits, row)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c, err := NewClient(model.ServiceConfig{Endpoint: server.URL, Timeout: 5 * time.Second}, nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	scores, err := c.Predict(context.Background(), []int{3, 4, 5})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	got := Argmax(scores)
	want := []int{0, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestClient_RowMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(predictResponse{Logits: [][]float32{{1, 0}}})
	}))
	defer server.Close()

	c, _ := NewClient(model.ServiceConfig{Endpoint: server.URL}, nil)
	if _, err := c.Predict(context.Background(), []int{1, 2}); err == nil {
		t.Error("Expected error for mismatched rows")
	}
}

func TestClient_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	c, _ := NewClient(model.ServiceConfig{Endpoint: server.URL}, nil)
	if _, err := c.Predict(context.Background(), []int{1}); err == nil {
		t.Error("Expected error for HTTP 500")
	}
}

func TestArgmax_Ties(t *testing.T) {
	got := Argmax([][]float32{{0.5, 0.5, 0.1}, {}, {-1, -2}})
	if got[0] != 0 || got[1] != 0 || got[2] != 0 {
		t.Errorf("unexpected argmax: %v", got)
	}
}
