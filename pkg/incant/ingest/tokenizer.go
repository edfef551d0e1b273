package ingest

import (
	"strings"
	"unicode"
)

// Token is a word-like span extracted from source text.
// Offsets are half-open byte offsets into the original string,
// so text[Start:End] == Raw always holds.
type Token struct {
	Start      int
	End        int
	Raw        string
	Normalized string
}

// apostrophe variants that fold to the canonical ASCII apostrophe.
const (
	apostrophe      = '\''
	curlyApostrophe = '’'
	modApostrophe   = 'ʼ'
)

func isApostrophe(r rune) bool {
	return r == apostrophe || r == curlyApostrophe || r == modApostrophe
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || isApostrophe(r)
}

// Tokenize splits text into an ordered sequence of word tokens.
// A token is a maximal run of letters and apostrophes; whitespace,
// punctuation, digits and symbols separate tokens and are preserved
// only through the offset gaps between them. The result is fully
// materialized so callers can index into it freely.
//
// Empty input yields an empty (non-nil) slice, never an error.
func Tokenize(text string) []Token {
	tokens := []Token{}
	start := -1

	flush := func(end int) {
		if start < 0 {
			return
		}
		raw := text[start:end]
		tokens = append(tokens, Token{
			Start:      start,
			End:        end,
			Raw:        raw,
			Normalized: Normalize(raw),
		})
		start = -1
	}

	for idx, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = idx
			}
			continue
		}
		flush(idx)
	}
	flush(len(text))

	return tokens
}

// Normalize folds a raw token to its cache-key form: lower-cased,
// curly apostrophes collapsed to ', and everything outside
// letters/apostrophe stripped. Safe on arbitrary input.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case isApostrophe(r):
			b.WriteRune(apostrophe)
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
