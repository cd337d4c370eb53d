package gamedata

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/ppiankov/boxcheck/internal/model"
)

// Store holds the games of one split. Game indices are dense; raw indices
// (positions in the Rotowire file, as used by the games CSV) go through Resolve.
type Store struct {
	games []*model.GameRecord
	// Skipped lists raw indices dropped at load time, ascending
	Skipped []int
}

// NewStore creates a store. skipped must hold the raw indices that were dropped.
func NewStore(games []*model.GameRecord, skipped []int) *Store {
	s := &Store{
		games:   append([]*model.GameRecord(nil), games...),
		Skipped: append([]int(nil), skipped...),
	}
	sort.Ints(s.Skipped)
	return s
}

// Len returns the number of games
func (s *Store) Len() int {
	return len(s.games)
}

// Game returns the game at a dense index
func (s *Store) Game(i int) (*model.GameRecord, error) {
	if i < 0 || i >= len(s.games) {
		return nil, fmt.Errorf("game %d out of range [0, %d)", i, len(s.games))
	}
	return s.games[i], nil
}

// Resolve maps a raw index to its dense index. It returns false for a
// skipped game.
func (s *Store) Resolve(raw int) (int, bool) {
	i := sort.SearchInts(s.Skipped, raw)
	if i < len(s.Skipped) && s.Skipped[i] == raw {
		return 0, false
	}
	return raw - i, true
}

// Load builds the store of a split from the template log and, when present,
// the Rotowire file of the same split. Without Rotowire data the rosters come
// from the player facts and team names stay empty.
func Load(cfg model.DataConfig, split string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	templates, err := LoadTemplateLog(TemplateLogPath(cfg.TemplatesDir, split))
	if err != nil {
		return nil, err
	}

	rotowire, err := LoadRotowire(RotowirePath(cfg.RotowireDir, split))
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("no rotowire data, team corruption disabled", zap.String("split", split))
		return fromTemplates(templates), nil
	case err != nil:
		return nil, err
	}

	store, err := Join(templates, rotowire)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", split, err)
	}
	logger.Info("games loaded",
		zap.String("split", split),
		zap.Int("games", store.Len()),
		zap.Ints("skipped", store.Skipped))
	return store, nil
}

// Join pairs template games with the Rotowire games they were generated from.
// Template logs contain no block for same-city games, so those are skipped
// before pairing.
func Join(templates []TemplateGame, rotowire []RotowireGame) (*Store, error) {
	var (
		games   []*model.GameRecord
		skipped []int
	)
	t := 0
	for raw, rg := range rotowire {
		if rg.SameCity() {
			skipped = append(skipped, raw)
			continue
		}
		if t >= len(templates) {
			return nil, fmt.Errorf("template log has %d games, rotowire needs more", len(templates))
		}
		games = append(games, model.NewGameRecord(model.GameInfo{
			Index:    len(games),
			HomeName: rg.HomeName,
			HomeCity: rg.HomeCity,
			AwayName: rg.VisName,
			AwayCity: rg.VisCity,
			Day:      rg.Weekday(),
		}, rg.Players(), templates[t].Facts))
		t++
	}
	if t != len(templates) {
		return nil, fmt.Errorf("template log has %d games, rotowire has %d usable", len(templates), t)
	}
	return NewStore(games, skipped), nil
}

func fromTemplates(templates []TemplateGame) *Store {
	games := make([]*model.GameRecord, len(templates))
	for i, tg := range templates {
		games[i] = model.NewGameRecord(model.GameInfo{Index: i}, tg.Entities(model.FactCategoryPlayer), tg.Facts)
	}
	return NewStore(games, nil)
}
