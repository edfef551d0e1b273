// Package enrich schedules asynchronous enrichment of fast-pass
// results. The scheduler keeps at most one outstanding attempt per
// token, caps overlapping provider calls at a fixed ceiling, pumps a
// FIFO queue with a minimum delay between cycles, and coalesces
// change notifications through a debounced callback.
package enrich

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cognicore/incant/pkg/incant/cache"
	"github.com/cognicore/incant/pkg/incant/phonics"
)

// Provider fetches an enrichment patch for one token. A nil patch
// with a nil error means the provider has nothing to add. Errors are
// contained by the scheduler and never reach callers.
type Provider interface {
	Fetch(ctx context.Context, token string) (*phonics.Patch, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, token string) (*phonics.Patch, error)

// Fetch implements Provider.
func (f ProviderFunc) Fetch(ctx context.Context, token string) (*phonics.Patch, error) {
	return f(ctx, token)
}

// Defaults for scheduler tunables.
const (
	DefaultConcurrency = 3
	DefaultPumpDelay   = 120 * time.Millisecond
	DefaultNotifyDelay = 10 * time.Millisecond
)

// Options configures a Scheduler.
type Options struct {
	Provider Provider
	Store    *cache.Store

	// Baseline returns the fast-pass result enrichment merges over.
	Baseline func(token string) phonics.Result

	// Enabled gates new work at enqueue time and before each pump
	// cycle. Nil means always enabled.
	Enabled func() bool

	// Notify is invoked at most once per debounce tick after any
	// enrichment record changes. Consumers re-pull state themselves.
	Notify func()

	Concurrency int           // max overlapping provider calls, default 3
	PumpDelay   time.Duration // minimum delay between pump cycles, default 120ms
	NotifyDelay time.Duration // debounce tick, default 10ms

	// Logf receives provider-fault log lines, default log.Printf.
	Logf func(format string, args ...any)
}

// attempt tracks one token from enqueue to completion.
type attempt struct {
	token      string
	version    string
	generation uint64
	inFlight   bool
	done       chan struct{}
}

// Scheduler runs the bounded, deduplicating enrichment queue. All
// shared state is serialized behind one mutex; goroutines overlap
// only inside the provider call.
type Scheduler struct {
	provider    Provider
	store       *cache.Store
	baseline    func(string) phonics.Result
	enabled     func() bool
	notify      func()
	concurrency int
	pumpDelay   time.Duration
	notifyDelay time.Duration
	logf        func(string, ...any)

	mu            sync.Mutex
	queue         []string
	attempts      map[string]*attempt
	inflight      int
	generation    uint64
	closed        bool
	pumpScheduled bool
	pumpTimer     *time.Timer
	dirty         bool
	notifyTimer   *time.Timer
}

// closedDone is handed out whenever a request completes immediately.
var closedDone = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// NewScheduler creates a scheduler. Provider, Store and Baseline are
// required; everything else has defaults.
func NewScheduler(opts Options) *Scheduler {
	s := &Scheduler{
		provider:    opts.Provider,
		store:       opts.Store,
		baseline:    opts.Baseline,
		enabled:     opts.Enabled,
		notify:      opts.Notify,
		concurrency: opts.Concurrency,
		pumpDelay:   opts.PumpDelay,
		notifyDelay: opts.NotifyDelay,
		logf:        opts.Logf,
		attempts:    make(map[string]*attempt),
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultConcurrency
	}
	if s.pumpDelay <= 0 {
		s.pumpDelay = DefaultPumpDelay
	}
	if s.notifyDelay <= 0 {
		s.notifyDelay = DefaultNotifyDelay
	}
	if s.logf == nil {
		s.logf = log.Printf
	}
	return s
}

// Request enqueues one enrichment attempt for a normalized token and
// returns a channel that closes once the attempt has completed,
// whether by success, contained failure, or short-circuit. It
// never fails: provider errors are logged and swallowed, and the
// channel always closes.
//
// A second Request for a token with an attempt still outstanding
// returns the same channel instead of enqueueing a duplicate.
func (s *Scheduler) Request(token string) <-chan struct{} {
	if token == "" {
		return closedDone
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return closedDone
	}
	if a, ok := s.attempts[token]; ok {
		return a.done
	}
	if s.enabled != nil && !s.enabled() {
		return closedDone
	}
	if _, ok := s.store.RecordSignature(token); ok {
		// Already enriched under the current version.
		return closedDone
	}

	a := &attempt{
		token:      token,
		version:    s.store.Version(),
		generation: s.generation,
		done:       make(chan struct{}),
	}
	s.attempts[token] = a
	s.queue = append(s.queue, token)
	s.schedulePumpLocked()
	return a.done
}

// schedulePumpLocked arms the pump timer if it is not armed already.
// The delay spaces out pump cycles so bursts of requests do not turn
// into bursts of provider calls.
func (s *Scheduler) schedulePumpLocked() {
	if s.pumpScheduled || s.closed {
		return
	}
	s.pumpScheduled = true
	s.pumpTimer = time.AfterFunc(s.pumpDelay, s.pump)
}

// pump launches queued attempts until the concurrency ceiling is hit.
func (s *Scheduler) pump() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pumpScheduled = false
	if s.closed {
		return
	}
	if s.enabled != nil && !s.enabled() {
		// Flag went dark: leave the queue untouched and keep the pump
		// armed so queued waiters resume as soon as it comes back.
		if len(s.queue) > 0 {
			s.schedulePumpLocked()
		}
		return
	}

	for s.inflight < s.concurrency && len(s.queue) > 0 {
		token := s.queue[0]
		s.queue = s.queue[1:]

		a, ok := s.attempts[token]
		if !ok || a.inFlight {
			continue
		}
		a.inFlight = true
		s.inflight++
		go s.run(a)
	}

	if len(s.queue) > 0 {
		s.schedulePumpLocked()
	}
}

// run executes one provider call and applies its outcome. Results
// from an abandoned generation (dictionary swap, Close) are computed
// and then discarded; there is no mid-flight cancellation.
func (s *Scheduler) run(a *attempt) {
	base := s.baseline(a.token)

	patch, err := s.provider.Fetch(context.Background(), a.token)
	if err != nil {
		s.logf("incant: enrichment of %q failed: %v", a.token, err)
		patch = nil
	}

	s.mu.Lock()
	s.inflight--
	if cur, ok := s.attempts[a.token]; ok && cur == a {
		delete(s.attempts, a.token)
	}

	stale := s.closed || a.generation != s.generation
	if !stale && patch != nil {
		s.applyLocked(a, base, patch)
	}
	if !s.closed {
		s.schedulePumpLocked()
	}
	s.mu.Unlock()

	close(a.done)
}

// applyLocked merges the patch over the baseline and stores the
// record, notifying only when the signature actually changed.
func (s *Scheduler) applyLocked(a *attempt, base phonics.Result, patch *phonics.Patch) {
	merged := phonics.Merge(base, patch)
	sig := phonics.Signature(merged)

	if prev, ok := s.store.RecordSignature(a.token); ok && prev == sig {
		return
	}

	isValid := true
	if patch.IsValid != nil {
		isValid = *patch.IsValid
	}

	stored := s.store.RecordSet(a.version, a.token, cache.Record{
		Result:    merged,
		UpdatedAt: time.Now(),
		Signature: sig,
		IsValid:   isValid,
	})
	if stored {
		s.markDirtyLocked()
	}
}

// markDirtyLocked arms the debounced notification. Any number of
// completions inside one tick collapse into a single callback.
func (s *Scheduler) markDirtyLocked() {
	if s.notify == nil || s.dirty {
		return
	}
	s.dirty = true
	s.notifyTimer = time.AfterFunc(s.notifyDelay, func() {
		s.mu.Lock()
		if s.closed || !s.dirty {
			s.mu.Unlock()
			return
		}
		s.dirty = false
		notify := s.notify
		s.mu.Unlock()
		notify()
	})
}

// Reset abandons all queued and pending bookkeeping. Attempts already
// in flight complete but their results are discarded (generation
// mismatch). Waiters on abandoned pending attempts are released.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.generation++
	s.queue = nil
	old := s.attempts
	s.attempts = make(map[string]*attempt)
	if s.pumpTimer != nil {
		s.pumpTimer.Stop()
	}
	s.pumpScheduled = false
	s.mu.Unlock()

	for _, a := range old {
		if !a.inFlight {
			close(a.done)
		}
	}
}

// Close shuts the scheduler down. In-flight provider calls finish on
// their own and are discarded; timers are cancelled; subsequent
// Request calls complete immediately.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	s.queue = nil
	old := s.attempts
	s.attempts = make(map[string]*attempt)
	if s.pumpTimer != nil {
		s.pumpTimer.Stop()
	}
	s.pumpScheduled = false
	if s.notifyTimer != nil {
		s.notifyTimer.Stop()
	}
	s.dirty = false
	s.mu.Unlock()

	for _, a := range old {
		if !a.inFlight {
			close(a.done)
		}
	}
}

// Outstanding reports how many attempts are pending or in flight.
func (s *Scheduler) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}
