package phonics

import "fmt"

// Fixed confidence baselines for the two fast-pass paths.
const (
	HeuristicConfidence  = 0.4
	DictionaryConfidence = 0.75
)

// Classify runs the fast pass over one normalized token. It never
// panics and never returns a zero Result for non-empty input: unknown
// or malformed tokens degrade to the fallback family and school at
// heuristic confidence.
//
// Both dict and feels may be nil. With a dictionary hit the vowel
// family and coda come from the phoneme sequence; otherwise a
// heuristic letter scan is used.
func Classify(token string, dict PhoneticDictionary, feels *Feels) Result {
	var (
		family, coda string
		phonemes     []string
		confidence   = HeuristicConfidence
	)

	if dict != nil {
		if phs, ok := dict.Lookup(token); ok && len(phs) > 0 {
			phonemes = phs
			family, coda = scanPhonemes(phs)
			confidence = DictionaryConfidence
		}
	}
	if phonemes == nil {
		family, coda = scanLetters(token)
	}

	school := SchoolFor(family)
	schoolClass := "school-" + school

	res := Result{
		Token:      token,
		Classes:    []string{schoolClass, "family-" + family},
		Confidence: confidence,
		Enriched:   false,
	}

	schoolChannel := Channel{Source: ChannelSchool, ClassName: schoolClass}
	res.Channels = Channels{
		Text:   schoolChannel,
		Accent: schoolChannel,
		Border: schoolChannel,
		Glow:   schoolChannel,
	}

	res.Chips = append(res.Chips, Chip{
		Type:       ChannelSchool,
		Label:      school,
		ClassName:  schoolClass,
		Confidence: confidence,
		Source:     SourceFast,
	})

	// The accent channel reflects emotional tone when the feel
	// lexicon knows the token; the other channels stay school-driven.
	if feel, ok := feels.Lookup(token); ok {
		feelClass := "feel-" + feel
		res.Channels.Accent = Channel{Source: ChannelFeel, ClassName: feelClass}
		res.Classes = append(res.Classes, feelClass)
		res.Chips = append(res.Chips, Chip{
			Type:       ChannelFeel,
			Label:      feel,
			ClassName:  feelClass,
			Confidence: confidence,
			Source:     SourceFast,
		})
	}

	if len(phonemes) > 0 {
		res.Chips = append(res.Chips, Chip{
			Type:       ChannelRune,
			Label:      fmt.Sprintf("%d phonemes", len(phonemes)),
			ClassName:  "rune-count",
			Confidence: confidence,
			Source:     SourceFast,
		})
		res.Evidence = append(res.Evidence, Evidence{
			Type:   "rhyme",
			Value:  RhymeKey(family, coda),
			Source: SourceFast,
		})
	}

	return res
}
