// Package cache holds the engine's two keyed result stores: the
// fast-result cache and the enrichment-record cache. Entries are
// keyed by (engine version, normalized token); the version is held
// uniformly for the whole store, so a version bump is expressed as an
// atomic Reset that clears both maps under one lock. There is no TTL
// or size-based eviction; invalidation happens only through Reset.
package cache

import (
	"sync"
	"time"

	"github.com/cognicore/incant/pkg/incant/phonics"
)

// Record is a cached enrichment outcome. Signature suppresses
// redundant change notifications; IsValid is provider-supplied
// metadata surfaced to consumers, not an admission gate.
type Record struct {
	Result    phonics.Result
	UpdatedAt time.Time
	Signature string
	IsValid   bool
}

// Store is the two-map cache. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	version string
	fast    map[string]phonics.Result
	records map[string]Record
}

// New creates an empty store tagged with the given engine version.
func New(version string) *Store {
	return &Store{
		version: version,
		fast:    make(map[string]phonics.Result),
		records: make(map[string]Record),
	}
}

// Version returns the engine version every key is scoped to.
func (s *Store) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// FastGet returns the cached fast-pass result for a token.
func (s *Store) FastGet(token string) (phonics.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.fast[token]
	if !ok {
		return phonics.Result{}, false
	}
	return copyResult(res), true
}

// FastSet caches a fast-pass result computed against the given engine
// version. Like RecordSet, writes tagged with a stale version are
// dropped and reported as false, so a classification that raced a
// Reset cannot land in the fresh cache.
func (s *Store) FastSet(version, token string, res phonics.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version != s.version {
		return false
	}
	s.fast[token] = copyResult(res)
	return true
}

// RecordGet returns the cached enrichment record for a token.
func (s *Store) RecordGet(token string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[token]
	if !ok {
		return Record{}, false
	}
	rec.Result = copyResult(rec.Result)
	return rec, true
}

// RecordSet caches an enrichment record, but only if the store still
// carries the version the record was computed against. Stale writes
// from an abandoned generation are dropped and reported as false.
func (s *Store) RecordSet(version, token string, rec Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version != s.version {
		return false
	}
	rec.Result = copyResult(rec.Result)
	s.records[token] = rec
	return true
}

// RecordSignature returns the signature of the cached record, if any.
func (s *Store) RecordSignature(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[token]
	if !ok {
		return "", false
	}
	return rec.Signature, true
}

// Reset atomically clears both maps and installs a new version. This
// is the only invalidation path.
func (s *Store) Reset(version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = version
	s.fast = make(map[string]phonics.Result)
	s.records = make(map[string]Record)
}

// Sizes reports the entry counts of the two maps.
func (s *Store) Sizes() (fast, records int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fast), len(s.records)
}

func copyResult(r phonics.Result) phonics.Result {
	out := r
	if r.Classes != nil {
		out.Classes = append([]string(nil), r.Classes...)
	}
	if r.Chips != nil {
		out.Chips = append([]phonics.Chip(nil), r.Chips...)
	}
	if r.Evidence != nil {
		out.Evidence = append([]phonics.Evidence(nil), r.Evidence...)
	}
	return out
}
