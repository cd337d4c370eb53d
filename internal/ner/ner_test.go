package ner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/boxcheck/internal/model"
)

func testGame() *model.GameRecord {
	return model.NewGameRecord(model.GameInfo{
		Index:    0,
		HomeName: "Celtics",
		HomeCity: "Boston",
		AwayName: "Heat",
		AwayCity: "Miami",
		Day:      "Monday",
	}, []string{"John Smith", "Mike Jones"}, nil)
}

func types(ents []model.Entity) []model.EntityType {
	out := make([]model.EntityType, len(ents))
	for i, e := range ents {
		out[i] = e.Type
	}
	return out
}

func TestGazetteer_PlayerAndNumber(t *testing.T) {
	g := NewGazetteer(testGame(), nil)
	tokens := []string{"John", "Smith", "scored", "20", "points", "."}

	ents, err := g.Recognize(context.Background(), tokens)
	require.NoError(t, err)
	require.Len(t, ents, 2)

	assert.Equal(t, model.EntityPerson, ents[0].Type)
	assert.Equal(t, 0, ents[0].Start)
	assert.Equal(t, 2, ents[0].End)
	assert.Equal(t, "John Smith", ents[0].Text)

	assert.Equal(t, model.EntityCardinal, ents[1].Type)
	assert.Equal(t, 3, ents[1].Start)
	assert.Equal(t, []string{"20"}, ents[1].Tokens)
}

func TestGazetteer_LongestMatchWins(t *testing.T) {
	g := NewGazetteer(testGame(), nil)
	tokens := []string{"The", "Boston", "Celtics", "beat", "the", "Heat", "in", "Boston"}

	ents, err := g.Recognize(context.Background(), tokens)
	require.NoError(t, err)
	require.Len(t, ents, 3)

	assert.Equal(t, []model.EntityType{model.EntityOrg, model.EntityOrg, model.EntityPlace}, types(ents))
	assert.Equal(t, "Boston Celtics", ents[0].Text)
	assert.Equal(t, "Heat", ents[1].Text)
	assert.Equal(t, 7, ents[2].Start)
}

func TestGazetteer_NumberForms(t *testing.T) {
	g := NewGazetteer(testGame(), nil)
	tokens := []string{"third", "straight", "win", "on", "Monday", "shooting", "88%", "and", "seven", "of", "9", "7-of-8", "3rd"}

	ents, err := g.Recognize(context.Background(), tokens)
	require.NoError(t, err)

	want := []model.EntityType{
		model.EntityOrdinal,
		model.EntityDate,
		model.EntityPercent,
		model.EntityCardinal,
		model.EntityCardinal,
		model.EntityOrdinal,
	}
	assert.Equal(t, want, types(ents))
}

func TestGazetteer_TrailingPunctuation(t *testing.T) {
	g := NewGazetteer(testGame(), []string{"New York"})
	tokens := []string{"They", "visit", "New", "York,", "then", "Miami."}

	ents, err := g.Recognize(context.Background(), tokens)
	require.NoError(t, err)
	require.Len(t, ents, 2)

	assert.Equal(t, model.EntityPlace, ents[0].Type)
	assert.Equal(t, []string{"New", "York,"}, ents[0].Tokens)
	assert.Equal(t, model.EntityPlace, ents[1].Type)
	assert.Equal(t, 5, ents[1].Start)
}

func TestGazetteer_NilGame(t *testing.T) {
	g := NewGazetteer(nil, nil)
	ents, err := g.Recognize(context.Background(), []string{"Tuesday", "night"})
	require.NoError(t, err)
	require.Len(t, ents, 1)
	assert.Equal(t, model.EntityDate, ents[0].Type)
}

func TestGazetteer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGazetteer(testGame(), nil).Recognize(ctx, []string{"20"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGazetteerFactory(t *testing.T) {
	f := GazetteerFactory([]string{"Denver"})
	ents, err := f(testGame()).Recognize(context.Background(), []string{"Denver"})
	require.NoError(t, err)
	require.Len(t, ents, 1)
	assert.Equal(t, model.EntityPlace, ents[0].Type)
}

func TestHTTPRecognizer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ents" {
			t.Errorf("Expected path /ents, got %s", r.URL.Path)
		}

		var req entsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Text != "José Calderón had 12 assists" {
			t.Errorf("unexpected text %q", req.Text)
		}

		// Offsets are in characters: "José Calderón" spans 0-13, "12" spans 18-20.
		_, _ = w.Write([]byte(`{"ents":[
			{"start":18,"end":20,"label":"CARDINAL"},
			{"start":0,"end":13,"label":"PERSON"},
			{"start":5,"end":13,"label":"PERSON"}
		]}`))
	}))
	defer server.Close()

	r, err := NewHTTPRecognizer(model.ServiceConfig{Endpoint: server.URL + "/"}, nil)
	require.NoError(t, err)

	ents, err := r.Recognize(context.Background(), []string{"José", "Calderón", "had", "12", "assists"})
	require.NoError(t, err)
	require.Len(t, ents, 2)

	assert.Equal(t, model.EntityPerson, ents[0].Type)
	assert.Equal(t, 0, ents[0].Start)
	assert.Equal(t, 2, ents[0].End)
	assert.Equal(t, model.EntityCardinal, ents[1].Type)
	assert.Equal(t, 3, ents[1].Start)
	assert.Equal(t, 4, ents[1].End)
}

func TestHTTPRecognizer_Errors(t *testing.T) {
	_, err := NewHTTPRecognizer(model.ServiceConfig{}, nil)
	assert.Error(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	r, err := NewHTTPRecognizer(model.ServiceConfig{Endpoint: server.URL}, nil)
	require.NoError(t, err)

	_, err = r.Recognize(context.Background(), []string{"x"})
	assert.ErrorContains(t, err, "502")

	ents, err := r.Recognize(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, ents)
}

func TestTokenSpan(t *testing.T) {
	tokens := []string{"a", "bb", "ccc"}
	// "a bb ccc"
	tests := []struct {
		start, end int
		wantS      int
		wantE      int
		ok         bool
	}{
		{0, 1, 0, 1, true},
		{2, 4, 1, 2, true},
		{3, 8, 1, 3, true},
		{1, 2, -1, -1, false},
		{20, 25, -1, -1, false},
	}
	for _, tt := range tests {
		s, e, ok := tokenSpan(tokens, tt.start, tt.end)
		assert.Equal(t, tt.ok, ok, "range %d-%d", tt.start, tt.end)
		if ok {
			assert.Equal(t, tt.wantS, s)
			assert.Equal(t, tt.wantE, e)
		}
	}
}

func TestNormalize(t *testing.T) {
	ents := []model.Entity{
		{Start: 4, End: 5},
		{Start: 0, End: 2},
		{Start: 1, End: 3},
		{Start: 4, End: 4},
		{Start: 2, End: 4},
	}
	got := normalize(ents)
	require.Len(t, got, 3)
	assert.Equal(t, 0, got[0].Start)
	assert.Equal(t, 2, got[1].Start)
	assert.Equal(t, 4, got[2].Start)
}
