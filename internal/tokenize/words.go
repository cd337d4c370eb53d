// Package tokenize splits summaries into sentences and words, and talks to
// the remote subword tokenizer.
package tokenize

import (
	"regexp"
	"strings"
	"unicode"
)

// Hyphenated and apostrophe compounds ("7-of-8", "88-77", "Heat's") stay
// one token, as do numbers with their percent sign or separators.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:[-'’][\p{L}\p{N}]+)+|\d+(?:[.,:]\d+)*%?|[\p{L}\p{N}]+|[^\s\p{L}\p{N}]`)

// Words splits text into word tokens, separating punctuation
func Words(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

// Fields splits text on whitespace only. Hypotheses are tokenized this way
// so token positions match the submission format.
func Fields(text string) []string {
	return strings.Fields(text)
}

var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "jr": true, "sr": true,
	"st": true, "vs": true, "jan": true, "feb": true, "aug": true,
	"sept": true, "oct": true, "nov": true, "dec": true,
}

// Sentences splits a summary into sentences. A terminator ends a sentence
// when whitespace and an uppercase letter, digit or quote follow, and the
// word before it is not a known abbreviation or initials.
func Sentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)

	var (
		sentences []string
		current   strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for i, r := range runes {
		current.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+2 >= len(runes) || runes[i+1] != ' ' {
			continue
		}
		next := runes[i+2]
		if !unicode.IsUpper(next) && !unicode.IsDigit(next) && next != '"' && next != '\'' {
			continue
		}
		if r == '.' && abbreviated(runes[:i]) {
			continue
		}
		flush()
	}
	flush()

	return sentences
}

// abbreviated reports whether the text before a period ends in an
// abbreviation or a single-letter initial
func abbreviated(before []rune) bool {
	start := len(before)
	for start > 0 && !unicode.IsSpace(before[start-1]) {
		start--
	}
	word := strings.ToLower(strings.TrimLeft(string(before[start:]), "(\"'"))
	if strings.Contains(word, ".") {
		return true
	}
	if len([]rune(word)) == 1 && unicode.IsLetter([]rune(word)[0]) {
		return true
	}
	return abbreviations[word]
}
