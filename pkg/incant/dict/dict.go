// Package dict provides phonetic dictionaries: word → phoneme
// sequence lookups backing the fast-pass classifier's
// dictionary path. Implementations satisfy phonics.PhoneticDictionary.
package dict

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/incant/pkg/incant/internalerr"
)

// Dictionary is an in-memory phonetic dictionary.
//
// Phonemes use ARPABET-style symbols, optionally with stress digits
// ("AY1"). Lookups are case-insensitive; entries are stored under
// their lower-cased word.
type Dictionary struct {
	entries map[string][]string
}

// New creates an empty dictionary.
func New() *Dictionary {
	return &Dictionary{entries: make(map[string][]string)}
}

// FromMap builds a dictionary from a literal word → phonemes map.
// Handy for tests and demos.
func FromMap(entries map[string][]string) *Dictionary {
	d := New()
	for word, phs := range entries {
		d.Add(word, phs)
	}
	return d
}

// LoadFromYAML loads pronunciations from a YAML file.
//
// Expected format:
//
//	words:
//	  night: [N, AY1, T]
//	  moon: [M, UW1, N]
func LoadFromYAML(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config struct {
		Words map[string][]string `yaml:"words"`
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if config.Words == nil {
		return nil, fmt.Errorf("%s: missing words section: %w", path, internalerr.ErrInvalidConfig)
	}

	return FromMap(config.Words), nil
}

// Add registers a pronunciation, replacing any existing entry.
func (d *Dictionary) Add(word string, phonemes []string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || len(phonemes) == 0 {
		return
	}
	d.entries[word] = append([]string(nil), phonemes...)
}

// Lookup returns the phoneme sequence for a word.
func (d *Dictionary) Lookup(word string) ([]string, bool) {
	if d == nil {
		return nil, false
	}
	phs, ok := d.entries[strings.ToLower(word)]
	if !ok {
		return nil, false
	}
	return append([]string(nil), phs...), true
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}
