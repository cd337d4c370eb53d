package tokenize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/boxcheck/internal/align"
	"github.com/ppiankov/boxcheck/internal/model"
)

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"John Smith scored 20 points.", []string{"John", "Smith", "scored", "20", "points", "."}},
		{"shooting 88% (7-of-8)", []string{"shooting", "88%", "(", "7-of-8", ")"}},
		{"the Heat's 1,024th win", []string{"the", "Heat's", "1,024", "th", "win"}},
		{"   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Words(tt.in))
		})
	}
}

func TestSentences(t *testing.T) {
	text := "The Boston Celtics defeated the Miami Heat 105 - 98 on Monday. John Smith led the way with 20 points.\n" +
		"Dr. J was in attendance! Was it close? 7 players scored in double figures."

	assert.Equal(t, []string{
		"The Boston Celtics defeated the Miami Heat 105 - 98 on Monday.",
		"John Smith led the way with 20 points.",
		"Dr. J was in attendance!",
		"Was it close?",
		"7 players scored in double figures.",
	}, Sentences(text))
}

func TestSentences_Initials(t *testing.T) {
	assert.Equal(t, []string{"C.J. McCollum scored 30.", "Portland won."}, Sentences("C.J. McCollum scored 30. Portland won."))
	assert.Empty(t, Sentences(""))
}

func TestClient_Encode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/encode" {
			t.Errorf("Expected path /encode, got %s", r.URL.Path)
		}

		var req encodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.MaxLength != 16 || req.Truncation != "right" {
			t.Errorf("Unexpected truncation settings: %+v", req)
		}

		_, _ = w.Write([]byte(`{"input_ids":[0,10,2,20,21,2],"word_ids":[null,0,1,2,2,null],"sep_id":2}`))
	}))
	defer server.Close()

	c, err := NewClient(model.TokenizerConfig{Endpoint: server.URL + "/", MaxLength: 16}, nil)
	require.NoError(t, err)

	enc, err := c.Encode(context.Background(), []string{"won", "</s>", "Boston"})
	require.NoError(t, err)

	assert.Equal(t, align.Encoding{
		InputIDs: []int{0, 10, 2, 20, 21, 2},
		WordIDs:  []int{align.NoWord, 0, 1, 2, 2, align.NoWord},
		SepID:    2,
	}, enc)
}

func TestClient_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"input_ids":[0,10],"word_ids":[null,5],"sep_id":2}`))
	}))
	defer server.Close()

	c, err := NewClient(model.TokenizerConfig{Endpoint: server.URL}, nil)
	require.NoError(t, err)

	_, err = c.Encode(context.Background(), []string{"one"})
	assert.Error(t, err, "word id beyond the input")

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	c, err = NewClient(model.TokenizerConfig{Endpoint: failing.URL}, nil)
	require.NoError(t, err)
	_, err = c.Encode(context.Background(), []string{"one"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")

	_, err = NewClient(model.TokenizerConfig{}, nil)
	assert.Error(t, err)
}
