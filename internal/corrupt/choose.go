package corrupt

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
)

// ErrNoAlternative is returned when no option differs from the value being replaced
var ErrNoAlternative = errors.New("no alternative available")

// ErrUnsatisfiable is returned when bounded resampling never produced a different value
var ErrUnsatisfiable = errors.New("resampling did not produce a different value")

//go:embed cities.txt
var defaultCities string

// Weekdays is the reference set for day-of-week corruption
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ChooseDifferent picks a uniformly random option that is not equal to current.
// The check happens before sampling, so a list without alternatives fails fast.
func ChooseDifferent[T comparable](r *rand.Rand, options []T, current T) (T, error) {
	candidates := make([]T, 0, len(options))
	for _, o := range options {
		if o != current {
			candidates = append(candidates, o)
		}
	}

	var zero T
	if len(candidates) == 0 {
		return zero, fmt.Errorf("cannot select element not equal to %v in %v: %w", current, options, ErrNoAlternative)
	}

	return candidates[r.IntN(len(candidates))], nil
}

// DefaultCities returns the built-in list of NBA cities
func DefaultCities() []string {
	return parseLines(defaultCities)
}

// LoadCities reads a city list, one city per line
func LoadCities(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cities: %w", err)
	}

	cities := parseLines(string(data))
	if len(cities) == 0 {
		return nil, fmt.Errorf("no cities in %s", path)
	}
	return cities, nil
}

func parseLines(s string) []string {
	var lines []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(strings.NewReader(s))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		lines = append(lines, line)
	}
	return lines
}
