// Package predict calls the token-classification model served over HTTP.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/boxcheck/internal/model"
	"github.com/ppiankov/boxcheck/internal/worker"
)

// Predictor scores every subword position against every label
type Predictor interface {
	Predict(ctx context.Context, inputIDs []int) ([][]float32, error)
}

// Client is the HTTP predictor
type Client struct {
	endpoint   string
	httpClient *http.Client
	throttle   worker.Throttle
}

type predictRequest struct {
	InputIDs []int `json:"input_ids"`
}

type predictResponse struct {
	Logits [][]float32 `json:"logits"`
}

// NewClient creates a predictor client
func NewClient(cfg model.ServiceConfig, throttle worker.Throttle) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("predictor endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if throttle == nil {
		throttle = worker.NoThrottle{}
	}
	return &Client{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
		throttle:   throttle,
	}, nil
}

// Predict returns one row of label scores per input position
func (c *Client) Predict(ctx context.Context, inputIDs []int) ([][]float32, error) {
	if err := c.throttle.Wait(ctx, c.endpoint); err != nil {
		return nil, err
	}

	body, err := json.Marshal(predictRequest{InputIDs: inputIDs})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("predictor error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out predictResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(out.Logits) != len(inputIDs) {
		return nil, fmt.Errorf("predictor returned %d rows for %d positions", len(out.Logits), len(inputIDs))
	}
	return out.Logits, nil
}

// Argmax picks the best label id per position. Ties go to the lower id.
func Argmax(scores [][]float32) []int {
	ids := make([]int, len(scores))
	for i, row := range scores {
		best := 0
		for j := 1; j < len(row); j++ {
			if row[j] > row[best] {
				best = j
			}
		}
		ids[i] = best
	}
	return ids
}
