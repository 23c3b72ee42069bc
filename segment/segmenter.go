package segment

import (
	"strings"
	"unicode"

	"github.com/poiesic/passage/core"
)

// Terminator runes that can end a sentence.
const terminators = ".!?"

// defaultMinWords is the word-count floor below which a unit is treated as
// extraction noise (headers, page numbers, stray punctuation) and dropped.
const defaultMinWords = 3

// defaultAbbreviations lists dot-terminated tokens that do not end a
// sentence. Keys are lowercase, without the trailing dot.
var defaultAbbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "st": true, "vs": true, "etc": true,
	"e.g": true, "i.e": true, "cf": true, "al": true, "fig": true,
	"vol": true, "no": true, "pp": true, "approx": true,
}

// Segmenter splits raw document text into sentence units suitable for
// embedding and retrieval. Whitespace is normalized before splitting, and
// units below the configured word count are dropped silently.
type Segmenter struct {
	minWords      int
	abbreviations map[string]bool
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithMinWords sets the minimum word count a unit must have to be kept.
// Default is 3. Values below 1 are clamped to 1.
func WithMinWords(n int) Option {
	return func(s *Segmenter) {
		if n < 1 {
			n = 1
		}
		s.minWords = n
	}
}

// WithAbbreviations adds abbreviations (without the trailing dot, case
// insensitive) that suppress a sentence boundary.
func WithAbbreviations(abbrevs ...string) Option {
	return func(s *Segmenter) {
		for _, a := range abbrevs {
			s.abbreviations[strings.ToLower(strings.TrimSuffix(a, "."))] = true
		}
	}
}

// New creates a Segmenter with the default word floor and abbreviation set.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		minWords:      defaultMinWords,
		abbreviations: make(map[string]bool, len(defaultAbbreviations)),
	}
	for abbrev := range defaultAbbreviations {
		s.abbreviations[abbrev] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MinWords returns the configured word-count floor.
func (s *Segmenter) MinWords() int {
	return s.minWords
}

// Segment splits raw text into filtered sentence units, in document order.
// Empty or all-whitespace input yields an empty result; deciding whether
// that is fatal belongs to the build orchestration, not here.
func (s *Segmenter) Segment(raw string) []core.TextUnit {
	text := normalizeWhitespace(raw)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var units []core.TextUnit
	start := 0
	i := 0
	for i < len(runes) {
		if !isTerminator(runes[i]) {
			i++
			continue
		}
		// Absorb the full terminator run ("?!", "...") plus any closing
		// quotes or brackets that belong to the sentence.
		end := i + 1
		for end < len(runes) && (isTerminator(runes[end]) || isCloser(runes[end])) {
			end++
		}
		if s.isBoundary(runes, start, i, end) {
			s.appendUnit(&units, string(runes[start:end]))
			for end < len(runes) && runes[end] == ' ' {
				end++
			}
			start = end
		}
		i = end
	}
	if start < len(runes) {
		s.appendUnit(&units, string(runes[start:]))
	}
	return units
}

// isBoundary reports whether the terminator at term (with its run ending at
// end) closes a sentence that started at start.
func (s *Segmenter) isBoundary(runes []rune, start, term, end int) bool {
	if end >= len(runes) {
		return true
	}
	if runes[term] == '.' {
		// Decimal point: "3.14" never splits.
		if term > start && unicode.IsDigit(runes[term-1]) &&
			term+1 < len(runes) && unicode.IsDigit(runes[term+1]) {
			return false
		}
		word := lastWord(runes, start, term)
		// Single-letter initials ("J. Smith") stay with their sentence.
		if len([]rune(word)) == 1 && unicode.IsUpper([]rune(word)[0]) {
			return false
		}
		if s.abbreviations[strings.ToLower(word)] {
			return false
		}
	}
	// The next sentence must open with an uppercase letter, a digit, or an
	// opening quote/bracket; anything else continues the current unit.
	next := end
	if runes[next] == ' ' {
		next++
	}
	if next >= len(runes) {
		return true
	}
	r := runes[next]
	return unicode.IsUpper(r) || unicode.IsDigit(r) || isOpener(r)
}

// appendUnit trims and filters a candidate unit, keeping it only when it
// meets the word floor.
func (s *Segmenter) appendUnit(units *[]core.TextUnit, text string) {
	unit := core.NewTextUnit(strings.TrimSpace(text))
	if unit.Words >= s.minWords {
		*units = append(*units, unit)
	}
}

// lastWord walks back from the terminator and returns the token preceding
// it. Internal dots are kept so multi-part abbreviations like "e.g." match.
func lastWord(runes []rune, start, term int) string {
	j := term
	for j > start {
		r := runes[j-1]
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '\'' {
			j--
			continue
		}
		break
	}
	return string(runes[j:term])
}

// normalizeWhitespace collapses all whitespace runs (spaces, tabs,
// newlines) to single spaces and trims the ends.
func normalizeWhitespace(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

func isTerminator(r rune) bool {
	return strings.ContainsRune(terminators, r)
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}

func isOpener(r rune) bool {
	switch r {
	case '"', '\'', '(', '[', '“', '‘':
		return true
	}
	return false
}
