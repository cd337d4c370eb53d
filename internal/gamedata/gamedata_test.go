package gamedata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/boxcheck/internal/model"
)

func TestParseTemplateLog(t *testing.T) {
	games, err := LoadTemplateLog(TemplateLogPath("testdata", "test"))
	require.NoError(t, err)
	require.Len(t, games, 2)

	g := games[0]
	require.Len(t, g.Facts, 6)
	assert.Equal(t, model.FactStatement{
		Text:     "The Boston Celtics defeated the Miami Heat 105 - 98 on Monday.",
		Entity:   "The Boston Celtics",
		Category: model.FactCategoryGame,
	}, g.Facts[0])
	assert.Equal(t, model.FactCategoryTeam, g.Facts[1].Category)
	assert.Equal(t, "Miami Heat", g.Facts[2].Entity)
	assert.Equal(t, []string{"John Smith", "Mike Jones"}, g.Entities(model.FactCategoryPlayer))

	assert.Len(t, games[1].Facts, 2)
}

func TestParseTemplateLog_IgnoresPreamble(t *testing.T) {
	in := "generated 2 games\n=== Game #0\nstray line\n--- Game Data\nA fact.\n"
	games, err := ParseTemplateLog(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.Len(t, games[0].Facts, 1)
	assert.Equal(t, "A fact.", games[0].Facts[0].Text)

	games, err = ParseTemplateLog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestLeadingEntity(t *testing.T) {
	tests := map[string]string{
		"John Smith scored 20 points.": "John Smith",
		"the game was close":           "",
		"LeBron James had 30.":         "LeBron James",
		"":                             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, LeadingEntity(in), in)
	}
}

func TestRotowireGame(t *testing.T) {
	games, err := LoadRotowire(RotowirePath("testdata", "test"))
	require.NoError(t, err)
	require.Len(t, games, 3)

	assert.Equal(t, []string{"John Smith", "Mike Jones", "Al Brown"}, games[0].Players())
	assert.Equal(t, "Monday", games[0].Weekday())
	assert.Equal(t, "", games[2].Weekday())
	assert.False(t, games[0].SameCity())
	assert.True(t, games[1].SameCity())
	assert.Equal(t, []string{"Boston", "Denver", "Los Angeles", "Miami", "Utah"}, Cities(games))
}

func TestLoad_JoinsAndSkips(t *testing.T) {
	cfg := model.DataConfig{TemplatesDir: "testdata", RotowireDir: "testdata"}

	store, err := Load(cfg, "test", nil)
	require.NoError(t, err)

	require.Equal(t, 2, store.Len())
	assert.Equal(t, []int{1}, store.Skipped)

	g, err := store.Game(0)
	require.NoError(t, err)
	assert.Equal(t, "Boston Celtics", g.HomeTeam())
	assert.Equal(t, "Miami Heat", g.AwayTeam())
	assert.Equal(t, "Monday", g.Day())
	assert.True(t, g.HasPlayer("Al Brown"))
	assert.Len(t, g.Facts(), 6)

	g, err = store.Game(1)
	require.NoError(t, err)
	assert.Equal(t, "Utah Jazz", g.HomeTeam())
	assert.Equal(t, 1, g.Index())

	_, err = store.Game(2)
	assert.Error(t, err)
}

func TestLoad_WithoutRotowire(t *testing.T) {
	cfg := model.DataConfig{TemplatesDir: "testdata", RotowireDir: t.TempDir()}

	store, err := Load(cfg, "test", nil)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	g, _ := store.Game(0)
	assert.Equal(t, []string{"John Smith", "Mike Jones"}, g.Players())
	assert.Empty(t, g.TeamNames())
}

func TestJoin_CountMismatch(t *testing.T) {
	_, err := Join([]TemplateGame{{}, {}}, []RotowireGame{{HomeCity: "A", VisCity: "B", HomeName: "X", VisName: "Y"}})
	assert.Error(t, err)

	_, err = Join(nil, []RotowireGame{{HomeCity: "A", VisCity: "B", HomeName: "X", VisName: "Y"}})
	assert.Error(t, err)
}

func TestStore_Resolve(t *testing.T) {
	store := NewStore(make([]*model.GameRecord, 8), []int{515, 3})

	tests := []struct {
		raw  int
		want int
		ok   bool
	}{
		{0, 0, true},
		{2, 2, true},
		{3, 0, false},
		{4, 3, true},
		{514, 513, true},
		{515, 0, false},
		{516, 514, true},
	}
	for _, tt := range tests {
		got, ok := store.Resolve(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw %d", tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, "raw %d", tt.raw)
		}
	}
}

func TestReadGames(t *testing.T) {
	in := "TEXT_ID,HOME_NAME,VIS_NAME,GAME_IDX,TEXT\n" +
		"t1,Celtics,Heat,0,\"The Celtics won, again.\"\n" +
		"t2,Jazz,Nuggets,516,Short.\n"

	rows, err := ReadGames(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "t1", rows[0].TextID)
	assert.Equal(t, 0, rows[0].GameIndex)
	assert.Equal(t, "The Celtics won, again.", rows[0].Text)
	assert.Equal(t, map[string]string{"HOME_NAME": "Celtics", "VIS_NAME": "Heat"}, rows[0].Extra)
	assert.Equal(t, 516, rows[1].GameIndex)
}

func TestReadGames_Errors(t *testing.T) {
	_, err := ReadGames(strings.NewReader("a,b,c,d,e\nt1,x,y,notanumber,text\n"))
	assert.Error(t, err)

	_, err = ReadGames(strings.NewReader("a,b,c\nt1,x,y\n"))
	assert.Error(t, err)

	rows, err := ReadGames(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
