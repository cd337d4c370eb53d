package ner

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

// HTTPRecognizer calls a spaCy-style service that returns character-offset
// entities for a text. Tokens are joined with single spaces before sending
// so offsets map back onto token boundaries.
type HTTPRecognizer struct {
	endpoint   string
	httpClient *http.Client
	throttle   worker.Throttle
}

type entsRequest struct {
	Text string `json:"text"`
}

type entsResponse struct {
	Ents []struct {
		Start int    `json:"start"`
		End   int    `json:"end"`
		Label string `json:"label"`
	} `json:"ents"`
}

// NewHTTPRecognizer creates a recognizer for the service at cfg.Endpoint
func NewHTTPRecognizer(cfg model.ServiceConfig, throttle worker.Throttle) (*HTTPRecognizer, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("NER endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if throttle == nil {
		throttle = worker.NoThrottle{}
	}
	return &HTTPRecognizer{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
		throttle:   throttle,
	}, nil
}

// Recognize implements Recognizer
func (r *HTTPRecognizer) Recognize(ctx context.Context, tokens []string) ([]model.Entity, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	if err := r.throttle.Wait(ctx, r.endpoint); err != nil {
		return nil, err
	}

	text := strings.Join(tokens, " ")
	body, err := json.Marshal(entsRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/ents", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NER error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out entsResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	var ents []model.Entity
	for _, e := range out.Ents {
		start, end, ok := tokenSpan(tokens, e.Start, e.End)
		if !ok {
			continue
		}
		ents = append(ents, span(tokens, start, end, model.EntityType(e.Label)))
	}
	return normalize(ents), nil
}

// tokenSpan maps a character range of the space-joined text onto the tokens
// it touches. Service offsets count characters, not bytes.
func tokenSpan(tokens []string, charStart, charEnd int) (int, int, bool) {
	start, end := -1, -1
	pos := 0
	for i, t := range tokens {
		n := len([]rune(t))
		if pos < charEnd && pos+n > charStart {
			if start < 0 {
				start = i
			}
			end = i + 1
		}
		pos += n + 1
	}
	return start, end, start >= 0
}
