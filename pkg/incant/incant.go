// Package incant annotates free-form text token by token with a
// layered classification: school and vowel-family affinity from
// phonetics, emotional tone from a feel lexicon, and asynchronous
// enrichment from a pluggable provider. The fast pass is always
// available and synchronous; enrichment upgrades cached results over
// time and signals consumers through a debounced callback.
package incant

import (
	"context"
	"crypto/rand"
	"log"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/incant/pkg/incant/cache"
	"github.com/cognicore/incant/pkg/incant/enrich"
	"github.com/cognicore/incant/pkg/incant/ingest"
	"github.com/cognicore/incant/pkg/incant/phonics"
	"github.com/cognicore/incant/pkg/incant/stoplist"
)

// DefaultMaxEnrichTokens bounds worst-case scheduling cost: inputs
// tokenizing beyond this ceiling get no enrichment at all.
const DefaultMaxEnrichTokens = 400

// Options configures an Engine. Everything is optional: a zero
// Options yields a heuristic-only engine with enrichment disabled in
// practice (the nil provider returns nothing).
type Options struct {
	Dictionary phonics.PhoneticDictionary
	Feels      *phonics.Feels
	SkipList   *stoplist.Manager

	Provider enrich.Provider
	Enabled  func() bool // enrichment feature flag, nil = enabled
	Notify   func()      // debounced change callback

	Concurrency     int
	PumpDelay       time.Duration
	NotifyDelay     time.Duration
	MaxEnrichTokens int

	Logf func(format string, args ...any)
}

// Engine is an explicit instance owning its caches and queue state.
// Multiple independent engines can coexist; Close tears one down.
type Engine struct {
	mu      sync.Mutex
	dict    phonics.PhoneticDictionary
	closed  bool
	entropy *ulid.MonotonicEntropy

	feels     *phonics.Feels
	skips     *stoplist.Manager
	store     *cache.Store
	sched     *enrich.Scheduler
	enabled   func() bool
	maxEnrich int
	logf      func(string, ...any)
}

// Decoration is the outcome of one Decorate call. Results are 1:1,
// order-preserving and offset-aligned with Tokens.
type Decoration struct {
	Tokens  []ingest.Token
	Results []phonics.Result
}

// New creates an Engine with the given dependencies.
func New(opts Options) *Engine {
	e := &Engine{
		dict:      opts.Dictionary,
		feels:     opts.Feels,
		skips:     opts.SkipList,
		entropy:   ulid.Monotonic(rand.Reader, 0),
		enabled:   opts.Enabled,
		maxEnrich: opts.MaxEnrichTokens,
		logf:      opts.Logf,
	}
	if e.maxEnrich <= 0 {
		e.maxEnrich = DefaultMaxEnrichTokens
	}
	if e.logf == nil {
		e.logf = log.Printf
	}

	e.store = cache.New(e.newVersion())

	provider := opts.Provider
	if provider == nil {
		provider = enrich.ProviderFunc(func(ctx context.Context, token string) (*phonics.Patch, error) {
			return nil, nil
		})
	}

	e.sched = enrich.NewScheduler(enrich.Options{
		Provider:    provider,
		Store:       e.store,
		Baseline:    e.fastResult,
		Enabled:     opts.Enabled,
		Notify:      opts.Notify,
		Concurrency: opts.Concurrency,
		PumpDelay:   opts.PumpDelay,
		NotifyDelay: opts.NotifyDelay,
		Logf:        e.logf,
	})

	return e
}

// newVersion mints a fresh engine version tag. The tag scopes every
// cache key, so regenerating it is the whole invalidation story.
func (e *Engine) newVersion() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), e.entropy).String()
}

// Version returns the tag scoping all current cache entries.
func (e *Engine) Version() string {
	return e.store.Version()
}

// Decorate tokenizes text and classifies every token through the
// fast pass, firing enrichment requests for eligible unique tokens.
// Enrichment is skipped wholesale when the token count exceeds the
// ceiling or the feature flag is off. Internal failures degrade to an
// empty Decoration; Decorate never panics.
func (e *Engine) Decorate(text string) (dec Decoration) {
	defer func() {
		if r := recover(); r != nil {
			e.logf("incant: decorate failed: %v", r)
			dec = Decoration{Tokens: []ingest.Token{}, Results: []phonics.Result{}}
		}
	}()

	tokens := ingest.Tokenize(text)
	results := make([]phonics.Result, len(tokens))
	for i, tok := range tokens {
		results[i] = e.TokenResult(tok.Raw)
	}
	dec = Decoration{Tokens: tokens, Results: results}

	if len(tokens) > e.maxEnrich {
		return dec
	}
	if e.enabled != nil && !e.enabled() {
		return dec
	}

	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		n := tok.Normalized
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if e.skips.IsStop(n) {
			continue
		}
		// Fire and forget; completion is observable via Notify.
		e.sched.Request(n)
	}

	return dec
}

// TokenResult returns the richest known result for a raw token: the
// enrichment record when one exists, else the fast-pass result,
// computing and caching it on first touch. Never panics and never
// returns a zero result for non-empty input.
func (e *Engine) TokenResult(raw string) phonics.Result {
	n := ingest.Normalize(raw)
	if rec, ok := e.store.RecordGet(n); ok {
		return rec.Result
	}
	return e.fastResult(n)
}

// fastResult is the lazily-cached fast pass for one normalized token.
// The version is captured before classification so a result computed
// against a dictionary that gets swapped mid-call is rejected by the
// cache instead of surviving the invalidation.
func (e *Engine) fastResult(token string) phonics.Result {
	if res, ok := e.store.FastGet(token); ok {
		return res
	}

	version := e.store.Version()

	e.mu.Lock()
	dict := e.dict
	e.mu.Unlock()

	res := phonics.Classify(token, dict, e.feels)
	res.EngineVersion = version
	e.store.FastSet(version, token, res)
	return res
}

// RequestEnrichment schedules an enrichment attempt for a raw token
// and returns a channel closed once the attempt completes, whether by
// success, contained failure, or already-cached short-circuit. It never
// surfaces provider errors.
func (e *Engine) RequestEnrichment(raw string) <-chan struct{} {
	return e.sched.Request(ingest.Normalize(raw))
}

// SetPhonemeEngine swaps the phonetic dictionary. A reference-equal
// dictionary is a no-op; otherwise both caches are cleared under a
// fresh version tag and all scheduler bookkeeping is abandoned.
func (e *Engine) SetPhonemeEngine(dict phonics.PhoneticDictionary) {
	e.mu.Lock()
	if e.closed || dict == e.dict {
		e.mu.Unlock()
		return
	}
	e.dict = dict
	version := e.newVersion()
	e.mu.Unlock()

	e.store.Reset(version)
	e.sched.Reset()
}

// Close disposes the engine: caches and queues are cleared and timers
// cancelled. All methods stay safe to call afterwards; they degrade
// to fast-pass-only behavior.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.sched.Close()
	e.store.Reset(e.store.Version())
	return nil
}
