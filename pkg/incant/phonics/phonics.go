// Package phonics classifies normalized tokens into schools, vowel
// families and feels. The fast pass is pure and total: any input maps
// to a deterministic Result, with a phonetic dictionary improving
// confidence when one is available.
package phonics

import "strings"

// Provenance marks where a chip or evidence entry came from.
type Provenance string

const (
	SourceFast     Provenance = "fast"
	SourceEnriched Provenance = "enriched"
)

// Channel source kinds.
const (
	ChannelSchool = "school"
	ChannelRune   = "rune"
	ChannelFeel   = "feel"
)

// Channel assigns one visual channel a class name and the classifier
// that produced it.
type Channel struct {
	Source    string
	ClassName string
}

// Channels covers the four decoration channels of a token.
type Channels struct {
	Text   Channel
	Accent Channel
	Border Channel
	Glow   Channel
}

// Chip is a surfaced evidence chip. Order is insertion order:
// fast-origin chips precede enriched-origin chips.
type Chip struct {
	Type       string // school | rune | feel
	Label      string
	ClassName  string
	Confidence float64
	Source     Provenance
}

// Evidence is a provenance-tagged fact backing a classification.
// The engine does not de-duplicate entries; providers may.
type Evidence struct {
	Type   string // phoneme | rhyme | usage | definition
	Value  string
	Source Provenance
}

// Result is the classification of one normalized token. Results are
// immutable once constructed; enrichment produces a new Result via
// Merge rather than mutating in place.
type Result struct {
	EngineVersion string
	Token         string
	Classes       []string
	Channels      Channels
	Chips         []Chip
	Evidence      []Evidence
	Confidence    float64
	Enriched      bool
}

// PhoneticDictionary is the minimal lookup surface the classifier
// needs. Phonemes use ARPABET-style symbols, optionally carrying
// stress digits ("AY1").
type PhoneticDictionary interface {
	Lookup(word string) (phonemes []string, ok bool)
}

// The five schools. Every vowel family maps onto exactly one of them;
// families the table does not know fall back to SchoolAether.
const (
	SchoolEmber  = "ember"
	SchoolTide   = "tide"
	SchoolGale   = "gale"
	SchoolStone  = "stone"
	SchoolAether = "aether"
)

// FallbackFamily is assigned to tokens with no detectable vowel sound.
const FallbackFamily = "mute"

// schoolByFamily maps vowel families many-to-one onto schools.
var schoolByFamily = map[string]string{
	"ay":  SchoolEmber,
	"eye": SchoolEmber,
	"oy":  SchoolEmber,
	"oo":  SchoolTide,
	"oh":  SchoolTide,
	"ow":  SchoolTide,
	"ee":  SchoolGale,
	"ih":  SchoolGale,
	"ah":  SchoolStone,
	"aw":  SchoolStone,
	"uh":  SchoolStone,
	"eh":  SchoolAether,
}

// SchoolFor resolves a vowel family to its school, defaulting to
// SchoolAether for unmapped families.
func SchoolFor(family string) string {
	if school, ok := schoolByFamily[family]; ok {
		return school
	}
	return SchoolAether
}

// vowelRunFamily maps trailing vowel-letter runs to families for the
// heuristic path. Runs absent from the table fall back to the mapping
// of their first letter.
var vowelRunFamily = map[string]string{
	"a":  "ah",
	"e":  "eh",
	"i":  "ih",
	"o":  "oh",
	"u":  "uh",
	"y":  "eye",
	"aa": "ah",
	"ae": "ay",
	"ai": "ay",
	"ay": "ay",
	"au": "aw",
	"ea": "ee",
	"ee": "ee",
	"ei": "ay",
	"ey": "ay",
	"eu": "oo",
	"ie": "eye",
	"io": "oh",
	"oa": "oh",
	"oe": "oh",
	"oi": "oy",
	"oy": "oy",
	"oo": "oo",
	"ou": "ow",
	"ow": "ow",
	"ue": "oo",
	"ui": "oo",
	"uy": "eye",
}

// phonemeFamily maps ARPABET vowel phonemes (stress stripped) to
// families for the dictionary path.
var phonemeFamily = map[string]string{
	"AA": "ah",
	"AE": "ah",
	"AH": "uh",
	"AO": "aw",
	"AW": "ow",
	"AY": "eye",
	"EH": "eh",
	"ER": "uh",
	"EY": "ay",
	"IH": "ih",
	"IY": "ee",
	"OW": "oh",
	"OY": "oy",
	"UH": "oo",
	"UW": "oo",
}

func isVowelLetter(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// scanLetters derives (family, coda) from raw letters: the longest
// trailing vowel run picks the family, the trailing consonant run
// after it is the coda. No vowels at all yields the fallback family
// and an empty coda.
func scanLetters(token string) (family, coda string) {
	letters := []rune(token)

	// Trailing consonant run.
	end := len(letters)
	for end > 0 && !isVowelLetter(letters[end-1]) {
		end--
	}
	coda = strings.Trim(string(letters[end:]), "'")

	if end == 0 {
		return FallbackFamily, ""
	}

	// Maximal vowel run ending at end.
	start := end
	for start > 0 && isVowelLetter(letters[start-1]) {
		start--
	}
	run := string(letters[start:end])

	if fam, ok := vowelRunFamily[run]; ok {
		return fam, coda
	}
	// Unknown multi-letter run: fall back to its first vowel.
	if fam, ok := vowelRunFamily[run[:1]]; ok {
		return fam, coda
	}
	return FallbackFamily, coda
}

// stripStress removes the trailing stress digit of an ARPABET symbol.
func stripStress(ph string) string {
	return strings.TrimRight(ph, "0123456789")
}

// scanPhonemes derives (family, coda) from a phoneme sequence: the
// last vowel phoneme picks the family, the consonant phonemes after
// it form the coda.
func scanPhonemes(phonemes []string) (family, coda string) {
	lastVowel := -1
	for i, ph := range phonemes {
		if _, ok := phonemeFamily[stripStress(ph)]; ok {
			lastVowel = i
		}
	}
	if lastVowel < 0 {
		return FallbackFamily, ""
	}

	family = phonemeFamily[stripStress(phonemes[lastVowel])]
	var tail []string
	for _, ph := range phonemes[lastVowel+1:] {
		tail = append(tail, strings.ToLower(stripStress(ph)))
	}
	return family, strings.Join(tail, "")
}

// RhymeKey builds the rhyme evidence value for a family/coda pair.
// Open syllables (no coda) use the literal "open".
func RhymeKey(family, coda string) string {
	if coda == "" {
		coda = "open"
	}
	return family + "-" + coda
}
