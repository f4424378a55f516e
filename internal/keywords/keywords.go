// Package keywords turns raw artist/title strings into clean, deduplicated,
// stopword-filtered search terms.
package keywords

import (
	"strings"
	"unicode"
)

// DefaultMaxKeywords caps the keyword count when the configured limit is
// missing or invalid.
const DefaultMaxKeywords = 5

// variousArtists is the normalized artist value of compilation releases.
// The artist field carries no discriminating information for these, so
// artist-derived tokens are dropped entirely.
const variousArtists = "various artists"

// Stopwords is a case-insensitive word set.
type Stopwords map[string]struct{}

// NewStopwords builds a stopword set, lowercasing every entry.
func NewStopwords(words []string) Stopwords {
	set := make(Stopwords, len(words))
	for _, word := range words {
		set[strings.ToLower(word)] = struct{}{}
	}
	return set
}

// Contains reports whether the word is stopworded, ignoring case.
func (s Stopwords) Contains(word string) bool {
	_, ok := s[strings.ToLower(word)]
	return ok
}

// Build generates a search keyword string from an artist and title pair.
// Both fields are bracket-stripped, lowercased and tokenized; stopwords
// are dropped, duplicates removed in first-occurrence order, and the
// result truncated to maxKeywords tokens with artist tokens first.
// Blank input yields the empty string, which is a valid result.
func Build(artist, title string, stopwords Stopwords, maxKeywords int) string {
	if maxKeywords <= 0 {
		maxKeywords = DefaultMaxKeywords
	}

	artistTokens := Tokenize(StripBrackets(artist))
	titleTokens := Tokenize(StripBrackets(title))

	if strings.Join(artistTokens, " ") == variousArtists {
		artistTokens = nil
	}

	combined := filterStopwords(artistTokens, stopwords)
	combined = append(combined, filterStopwords(titleTokens, stopwords)...)
	combined = dedupe(combined)

	if len(combined) > maxKeywords {
		combined = combined[:maxKeywords]
	}

	return strings.Join(combined, " ")
}

// StripBrackets removes balanced parenthetical, bracketed and braced
// substrings including their delimiters, e.g. "The Beatles (Remastered)"
// becomes "The Beatles ".
func StripBrackets(s string) string {
	var out strings.Builder
	depth := 0

	for _, r := range s {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				out.WriteRune(r)
			}
		}
	}

	return out.String()
}

// Tokenize lowercases the text and splits it on runs of non-alphanumeric
// characters. Purely numeric tokens are ordinary tokens.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func filterStopwords(tokens []string, stopwords Stopwords) []string {
	var kept []string
	for _, token := range tokens {
		if !stopwords.Contains(token) {
			kept = append(kept, token)
		}
	}
	return kept
}

// dedupe removes duplicate tokens, preserving first-occurrence order.
func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	var unique []string
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		unique = append(unique, token)
	}
	return unique
}
