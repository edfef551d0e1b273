// Package stoplist tracks words exempt from enrichment. Function
// words ("the", "and", ...) still get a fast-pass classification but
// are not worth a provider round-trip; the engine consults the
// skip-list before enqueueing.
package stoplist

import "strings"

// Manager holds the enrichment skip-list.
type Manager struct {
	skips map[string]struct{}
}

// NewManager creates a manager seeded with the given words.
func NewManager(initial []string) *Manager {
	skips := make(map[string]struct{}, len(initial))
	for _, w := range initial {
		skips[strings.ToLower(w)] = struct{}{}
	}
	return &Manager{skips: skips}
}

// IsStop reports whether a normalized token is exempt from
// enrichment. Nil-safe.
func (m *Manager) IsStop(token string) bool {
	if m == nil {
		return false
	}
	_, ok := m.skips[strings.ToLower(token)]
	return ok
}

// Add puts a word on the skip-list.
func (m *Manager) Add(word string) {
	m.skips[strings.ToLower(word)] = struct{}{}
}

// Remove takes a word off the skip-list.
func (m *Manager) Remove(word string) {
	delete(m.skips, strings.ToLower(word))
}

// All returns the current skip-list contents.
func (m *Manager) All() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.skips))
	for w := range m.skips {
		out = append(out, w)
	}
	return out
}
