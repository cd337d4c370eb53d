package corrupt

import (
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// NumberMode selects how a spelled-out number is written back
type NumberMode int

const (
	Cardinal NumberMode = iota
	Ordinal
)

func (m NumberMode) String() string {
	if m == Ordinal {
		return "ordinal"
	}
	return "cardinal"
}

var (
	digitRun    = regexp.MustCompile(`\d+`)
	allDigits   = regexp.MustCompile(`^\d+$`)
	digitSuffix = regexp.MustCompile(`^(?i)(st|nd|rd|th)`)
)

var unitWords = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var tensWords = []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}

var irregularOrdinals = map[string]string{
	"one":    "first",
	"two":    "second",
	"three":  "third",
	"five":   "fifth",
	"eight":  "eighth",
	"nine":   "ninth",
	"twelve": "twelfth",
}

// wordValues maps every recognised number word to its value and ordinality
var wordValues = buildWordValues()

type wordValue struct {
	value   int
	ordinal bool
}

func buildWordValues() map[string]wordValue {
	m := make(map[string]wordValue)
	for i, w := range unitWords {
		m[w] = wordValue{value: i}
		m[ordinalWord(w)] = wordValue{value: i, ordinal: true}
	}
	for i, w := range tensWords {
		if w == "" {
			continue
		}
		m[w] = wordValue{value: i * 10}
		m[ordinalWord(w)] = wordValue{value: i * 10, ordinal: true}
	}
	m["hundred"] = wordValue{value: 100}
	m["hundredth"] = wordValue{value: 100, ordinal: true}
	return m
}

func ordinalWord(w string) string {
	if o, ok := irregularOrdinals[w]; ok {
		return o
	}
	if strings.HasSuffix(w, "y") {
		return strings.TrimSuffix(w, "y") + "ieth"
	}
	return w + "th"
}

// parseNumberWords reads a spelled-out number such as "twenty-one",
// "one hundred five" or "third".
func parseNumberWords(text string) (int, bool, bool) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return 0, false, false
	}

	total := 0
	ordinal := false
	for i, w := range words {
		if w == "and" && i > 0 {
			continue
		}
		wv, ok := wordValues[w]
		if !ok {
			return 0, false, false
		}
		if wv.ordinal && i != len(words)-1 {
			return 0, false, false
		}
		ordinal = wv.ordinal

		if wv.value == 100 {
			if total == 0 {
				total = 1
			}
			total *= 100
			continue
		}
		total += wv.value
	}
	return total, ordinal, true
}

// NumberWords spells out n (0 <= n < 1000) as a cardinal or ordinal.
// Larger values fall back to digits.
func NumberWords(n int, mode NumberMode) string {
	if n < 0 || n >= 1000 {
		s := strconv.Itoa(n)
		if mode == Ordinal {
			s += ordinalSuffix(n)
		}
		return s
	}

	cardinal := cardinalWords(n)
	if mode == Cardinal {
		return cardinal
	}

	cut := strings.LastIndexAny(cardinal, " -")
	return cardinal[:cut+1] + ordinalWord(cardinal[cut+1:])
}

func cardinalWords(n int) string {
	switch {
	case n < 20:
		return unitWords[n]
	case n < 100:
		if n%10 == 0 {
			return tensWords[n/10]
		}
		return tensWords[n/10] + "-" + unitWords[n%10]
	default:
		s := unitWords[n/100] + " hundred"
		if n%100 != 0 {
			s += " " + cardinalWords(n%100)
		}
		return s
	}
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// NormalizeNumber rewrites a spelled-out number into digit form
// ("twenty-one" -> "21", "third" -> "3rd"). The boolean reports whether
// the text changed.
func NormalizeNumber(text string) (string, bool) {
	n, ordinal, ok := parseNumberWords(text)
	if !ok {
		return text, false
	}
	s := strconv.Itoa(n)
	if ordinal {
		s += ordinalSuffix(n)
	}
	return s, true
}

// Resampler draws a different integer from a Gaussian around the original
type Resampler struct {
	Rand        *rand.Rand
	StdDev      float64
	MaxAttempts int
}

// Resample returns max(0, trunc(N(orig, StdDev))) resampled until it differs from orig
func (s Resampler) Resample(orig int) (int, error) {
	return s.resample(orig, 0)
}

// resample clamps draws to floor; ordinals use 1 so there is no "zeroth"
func (s Resampler) resample(orig, floor int) (int, error) {
	for attempt := 0; attempt < s.MaxAttempts; attempt++ {
		v := int(s.Rand.NormFloat64()*s.StdDev + float64(orig))
		if v < floor {
			v = floor
		}
		if v != orig {
			return v, nil
		}
	}
	return orig, fmt.Errorf("number %d after %d attempts: %w", orig, s.MaxAttempts, ErrUnsatisfiable)
}

// ModifyNumber replaces the integer embedded in text with a different one.
// ok is false when text holds no digits, in which case text is returned unchanged.
func (s Resampler) ModifyNumber(text string, mode NumberMode) (string, bool, error) {
	normalized := text
	spelled := false
	if !allDigits.MatchString(text) {
		normalized, spelled = NormalizeNumber(text)
	}

	loc := digitRun.FindStringIndex(normalized)
	if loc == nil {
		return text, false, nil
	}

	orig, err := strconv.Atoi(normalized[loc[0]:loc[1]])
	if err != nil || orig > math.MaxInt32 {
		return text, false, nil
	}

	floor := 0
	if mode == Ordinal {
		floor = 1
	}
	modified, err := s.resample(orig, floor)
	if err != nil {
		return text, false, err
	}

	if spelled {
		return matchCase(text, NumberWords(modified, mode)), true, nil
	}

	rest := normalized[loc[1]:]
	if digitSuffix.MatchString(rest) {
		rest = ordinalSuffix(modified) + rest[2:]
	}
	return normalized[:loc[0]] + strconv.Itoa(modified) + rest, true, nil
}

// matchCase capitalises repl when orig starts with an upper-case letter
func matchCase(orig, repl string) string {
	r := []rune(orig)
	if len(r) == 0 || !unicode.IsUpper(r[0]) || repl == "" {
		return repl
	}
	out := []rune(repl)
	out[0] = unicode.ToUpper(out[0])
	return string(out)
}
