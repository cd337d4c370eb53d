package tokenize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/boxcheck/internal/align"
	"github.com/ppiankov/boxcheck/internal/model"
	"github.com/ppiankov/boxcheck/internal/worker"
)

// Tokenizer encodes pre-split words into subword ids
type Tokenizer interface {
	Encode(ctx context.Context, words []string) (align.Encoding, error)
}

// Client calls a subword tokenizer service. The service receives the words
// already split and truncates from the right to MaxLength subwords.
type Client struct {
	endpoint   string
	maxLength  int
	httpClient *http.Client
	throttle   worker.Throttle
}

type encodeRequest struct {
	Words      []string `json:"words"`
	MaxLength  int      `json:"max_length"`
	Truncation string   `json:"truncation"`
}

type encodeResponse struct {
	InputIDs []int  `json:"input_ids"`
	WordIDs  []*int `json:"word_ids"`
	SepID    int    `json:"sep_id"`
}

// NewClient creates a tokenizer client
func NewClient(cfg model.TokenizerConfig, throttle worker.Throttle) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("tokenizer endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if throttle == nil {
		throttle = worker.NoThrottle{}
	}
	return &Client{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		maxLength:  cfg.MaxLength,
		httpClient: &http.Client{Timeout: timeout},
		throttle:   throttle,
	}, nil
}

// Encode implements Tokenizer
func (c *Client) Encode(ctx context.Context, words []string) (align.Encoding, error) {
	if err := c.throttle.Wait(ctx, c.endpoint); err != nil {
		return align.Encoding{}, err
	}

	body, err := json.Marshal(encodeRequest{Words: words, MaxLength: c.maxLength, Truncation: "right"})
	if err != nil {
		return align.Encoding{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/encode", bytes.NewReader(body))
	if err != nil {
		return align.Encoding{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return align.Encoding{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return align.Encoding{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return align.Encoding{}, fmt.Errorf("tokenizer error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out encodeResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return align.Encoding{}, fmt.Errorf("unmarshal response: %w", err)
	}

	enc := align.Encoding{
		InputIDs: out.InputIDs,
		WordIDs:  make([]int, len(out.WordIDs)),
		SepID:    out.SepID,
	}
	for i, w := range out.WordIDs {
		enc.WordIDs[i] = align.NoWord
		if w != nil {
			if *w < 0 || *w >= len(words) {
				return align.Encoding{}, fmt.Errorf("tokenizer returned word id %d for %d words", *w, len(words))
			}
			enc.WordIDs[i] = *w
		}
	}
	if err := enc.Validate(); err != nil {
		return align.Encoding{}, err
	}
	return enc, nil
}
