package phonics

import "strings"

// Feels maps words to emotional tones. It mirrors the keyword →
// category shape of a taxonomy: each feel owns a word list and a
// reverse index answers per-token lookups.
type Feels struct {
	words map[string][]string // feel → words (lowercase)
	index map[string]string   // word → feel
}

// NewFeels creates an empty feel lexicon.
func NewFeels() *Feels {
	return &Feels{
		words: make(map[string][]string),
		index: make(map[string]string),
	}
}

// Add registers a feel with its trigger words. Words are matched
// case-insensitively; a word added to two feels keeps the later one.
func (f *Feels) Add(feel string, words []string) {
	normalized := make([]string, len(words))
	for i, w := range words {
		lw := strings.ToLower(w)
		normalized[i] = lw
		f.index[lw] = feel
	}
	f.words[feel] = normalized
}

// Lookup returns the feel for a token, if any. Nil-safe.
func (f *Feels) Lookup(token string) (string, bool) {
	if f == nil {
		return "", false
	}
	feel, ok := f.index[strings.ToLower(token)]
	return feel, ok
}

// Feels returns the registered feel names.
func (f *Feels) Feels() []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.words))
	for feel := range f.words {
		out = append(out, feel)
	}
	return out
}

// DefaultFeels returns a small starter lexicon. Hosts with real
// tone data should load their own via config.LoadFeels.
func DefaultFeels() *Feels {
	f := NewFeels()
	f.Add("dread", []string{"grave", "tomb", "dread", "doom", "shadow", "fear"})
	f.Add("joy", []string{"bright", "laugh", "dance", "gold", "sun", "delight"})
	f.Add("calm", []string{"still", "quiet", "moss", "dusk", "slow", "breath"})
	f.Add("fury", []string{"blaze", "storm", "rage", "shatter", "roar", "burn"})
	return f
}
