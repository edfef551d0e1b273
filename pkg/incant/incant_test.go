package incant

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cognicore/incant/pkg/incant/dict"
	"github.com/cognicore/incant/pkg/incant/enrich"
	"github.com/cognicore/incant/pkg/incant/phonics"
	"github.com/cognicore/incant/pkg/incant/stoplist"
)

func quietOptions() Options {
	return Options{
		PumpDelay:   time.Millisecond,
		NotifyDelay: time.Millisecond,
		Logf:        func(string, ...any) {},
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Enrichment attempt did not complete")
	}
}

// uniqueWords generates n distinct letter-only tokens.
func uniqueWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%c%c%c", 'a'+(i/676)%26, 'a'+(i/26)%26, 'a'+i%26)
	}
	return words
}

func TestFastPassIdempotent(t *testing.T) {
	e := New(quietOptions())
	defer e.Close()

	first := e.TokenResult("night")
	second := e.TokenResult("night")

	if !reflect.DeepEqual(first.Classes, second.Classes) {
		t.Errorf("Classes differ: %v vs %v", first.Classes, second.Classes)
	}
	if first.Channels != second.Channels {
		t.Errorf("Channels differ: %+v vs %+v", first.Channels, second.Channels)
	}
	if first.Confidence != second.Confidence {
		t.Errorf("Confidence differs: %v vs %v", first.Confidence, second.Confidence)
	}
}

func TestNormalizationEquivalence(t *testing.T) {
	e := New(quietOptions())
	defer e.Close()

	base := e.TokenResult("night")
	for _, raw := range []string{"Night", "NIGHT!!"} {
		res := e.TokenResult(raw)
		if !reflect.DeepEqual(res, base) {
			t.Errorf("TokenResult(%q) = %+v, want same as night", raw, res)
		}
	}
}

func TestTokenResultNeverEmpty(t *testing.T) {
	e := New(quietOptions())
	defer e.Close()

	res := e.TokenResult("xyzzy")
	if res.Token == "" || len(res.Classes) == 0 {
		t.Errorf("Non-empty input produced an empty result: %+v", res)
	}
}

func TestRequestEnrichmentDedup(t *testing.T) {
	var calls int32
	release := make(chan struct{})

	opts := quietOptions()
	opts.Provider = enrich.ProviderFunc(func(ctx context.Context, token string) (*phonics.Patch, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &phonics.Patch{ConfidenceBoost: 0.1}, nil
	})
	e := New(opts)
	defer e.Close()

	first := e.RequestEnrichment("spell")
	second := e.RequestEnrichment("SPELL!")

	if first != second {
		t.Error("Same normalized token must share one outstanding attempt")
	}

	close(release)
	waitDone(t, first)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Provider calls = %d, want 1", got)
	}
}

func TestEnrichmentUpgradesTokenResult(t *testing.T) {
	opts := quietOptions()
	opts.Provider = enrich.ProviderFunc(func(ctx context.Context, token string) (*phonics.Patch, error) {
		return &phonics.Patch{
			Evidence:        []phonics.Evidence{{Type: "definition", Value: "a charm", Source: phonics.SourceEnriched}},
			ConfidenceBoost: 0.2,
		}, nil
	})
	e := New(opts)
	defer e.Close()

	before := e.TokenResult("spell")
	if before.Enriched {
		t.Fatal("Result should start unenriched")
	}

	waitDone(t, e.RequestEnrichment("spell"))

	after := e.TokenResult("spell")
	if !after.Enriched {
		t.Fatal("Result should be enriched after completion")
	}
	if after.Confidence <= before.Confidence {
		t.Errorf("Confidence %v should exceed baseline %v", after.Confidence, before.Confidence)
	}
	found := false
	for _, ev := range after.Evidence {
		if ev.Type == "definition" && ev.Source == phonics.SourceEnriched {
			found = true
		}
	}
	if !found {
		t.Errorf("Evidence = %v, want enriched definition entry", after.Evidence)
	}
}

func TestDecorateSkipsEnrichmentOverCeiling(t *testing.T) {
	var calls int32

	opts := quietOptions()
	opts.Provider = enrich.ProviderFunc(func(ctx context.Context, token string) (*phonics.Patch, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	})
	e := New(opts)
	defer e.Close()

	text := strings.Join(uniqueWords(DefaultMaxEnrichTokens+1), " ")
	dec := e.Decorate(text)

	if len(dec.Tokens) != DefaultMaxEnrichTokens+1 {
		t.Fatalf("Token count = %d, want %d", len(dec.Tokens), DefaultMaxEnrichTokens+1)
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("Provider calls = %d, want 0 over the ceiling", got)
	}
}

func TestDecorateDeduplicatesEnrichment(t *testing.T) {
	var calls int32

	opts := quietOptions()
	opts.Provider = enrich.ProviderFunc(func(ctx context.Context, token string) (*phonics.Patch, error) {
		atomic.AddInt32(&calls, 1)
		return &phonics.Patch{ConfidenceBoost: 0.1}, nil
	})
	e := New(opts)
	defer e.Close()

	words := uniqueWords(10)
	// 40 repetitions of 10 unique words: 400 tokens, at the ceiling.
	var parts []string
	for i := 0; i < 40; i++ {
		parts = append(parts, words...)
	}
	e.Decorate(strings.Join(parts, " "))

	deadline := time.Now().Add(5 * time.Second)
	for atomic.LoadInt32(&calls) < 10 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 10 {
		t.Errorf("Provider calls = %d, want 10 deduplicated", got)
	}
}

func TestDecorateRespectsFeatureFlag(t *testing.T) {
	var calls int32

	opts := quietOptions()
	opts.Enabled = func() bool { return false }
	opts.Provider = enrich.ProviderFunc(func(ctx context.Context, token string) (*phonics.Patch, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	})
	e := New(opts)
	defer e.Close()

	e.Decorate("moon stone river")
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("Provider calls = %d, want 0 while disabled", got)
	}
}

func TestDecorateSkipList(t *testing.T) {
	var enriched []string
	gate := make(chan struct{}, 16)

	opts := quietOptions()
	opts.SkipList = stoplist.NewManager([]string{"the", "and"})
	opts.Provider = enrich.ProviderFunc(func(ctx context.Context, token string) (*phonics.Patch, error) {
		enriched = append(enriched, token)
		gate <- struct{}{}
		return nil, nil
	})
	opts.Concurrency = 1
	e := New(opts)
	defer e.Close()

	e.Decorate("the moon and")

	select {
	case <-gate:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected one enrichment request")
	}
	time.Sleep(50 * time.Millisecond)

	if len(enriched) != 1 || enriched[0] != "moon" {
		t.Errorf("Enriched tokens = %v, want [moon]", enriched)
	}
}

func TestProviderFaultContained(t *testing.T) {
	opts := quietOptions()
	opts.Provider = enrich.ProviderFunc(func(ctx context.Context, token string) (*phonics.Patch, error) {
		return nil, fmt.Errorf("network down")
	})
	e := New(opts)
	defer e.Close()

	for i := 0; i < 3; i++ {
		waitDone(t, e.RequestEnrichment("spell"))
		res := e.TokenResult("spell")
		if res.Enriched {
			t.Fatal("Failing provider must leave the fast result in place")
		}
	}
}

func TestSetPhonemeEngineInvalidates(t *testing.T) {
	dictA := dict.FromMap(map[string][]string{"night": {"N", "AY1", "T"}})
	dictB := dict.FromMap(map[string][]string{"night": {"N", "IY1", "T"}})

	opts := quietOptions()
	opts.Dictionary = dictA
	e := New(opts)
	defer e.Close()

	v1 := e.Version()
	before := e.TokenResult("night")
	if before.Channels.Text.ClassName != "school-"+phonics.SchoolEmber {
		t.Fatalf("Under dictA, night should be ember, got %s", before.Channels.Text.ClassName)
	}

	e.SetPhonemeEngine(dictB)

	if e.Version() == v1 {
		t.Error("Dictionary swap must bump the engine version")
	}
	after := e.TokenResult("night")
	if after.Channels.Text.ClassName != "school-"+phonics.SchoolGale {
		t.Errorf("Under dictB, night should be gale, got %s", after.Channels.Text.ClassName)
	}
	if after.EngineVersion == before.EngineVersion {
		t.Error("Recomputed result should carry the new version tag")
	}
}

// blockingDict parks Lookup callers until released, signalling entry
// through a buffered channel so tests can interleave a swap.
type blockingDict struct {
	inner   phonics.PhoneticDictionary
	entered chan struct{}
	release chan struct{}
}

func (d *blockingDict) Lookup(word string) ([]string, bool) {
	select {
	case d.entered <- struct{}{}:
	default:
	}
	<-d.release
	return d.inner.Lookup(word)
}

func TestSetPhonemeEngineDropsInFlightFastResult(t *testing.T) {
	dictA := &blockingDict{
		inner:   dict.FromMap(map[string][]string{"night": {"N", "AY1", "T"}}),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	dictB := dict.FromMap(map[string][]string{"night": {"N", "IY1", "T"}})

	opts := quietOptions()
	opts.Dictionary = dictA
	e := New(opts)
	defer e.Close()

	stale := make(chan phonics.Result, 1)
	go func() { stale <- e.TokenResult("night") }()

	// The swap lands while the first classification is still inside
	// the old dictionary's lookup.
	select {
	case <-dictA.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("Classification never reached the dictionary")
	}
	e.SetPhonemeEngine(dictB)
	close(dictA.release)

	select {
	case <-stale:
	case <-time.After(5 * time.Second):
		t.Fatal("In-flight classification never returned")
	}

	res := e.TokenResult("night")
	if want := "school-" + phonics.SchoolGale; res.Channels.Text.ClassName != want {
		t.Errorf("After swap, night = %s, want %s (stale result survived)", res.Channels.Text.ClassName, want)
	}
	if res.EngineVersion != e.Version() {
		t.Errorf("Result version = %s, want %s", res.EngineVersion, e.Version())
	}
}

func TestSetPhonemeEngineSameReferenceNoop(t *testing.T) {
	d := dict.FromMap(map[string][]string{"night": {"N", "AY1", "T"}})

	opts := quietOptions()
	opts.Dictionary = d
	e := New(opts)
	defer e.Close()

	v1 := e.Version()
	e.SetPhonemeEngine(d)
	if e.Version() != v1 {
		t.Error("Reference-equal dictionary must not invalidate")
	}
}

func TestCloseLeavesFastPassUsable(t *testing.T) {
	e := New(quietOptions())

	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Second close: %v", err)
	}

	// All public methods stay safe after disposal.
	waitDone(t, e.RequestEnrichment("spell"))
	res := e.TokenResult("spell")
	if res.Token != "spell" {
		t.Errorf("TokenResult after close = %+v", res)
	}
	dec := e.Decorate("the moon")
	if len(dec.Tokens) != 2 {
		t.Errorf("Decorate after close returned %d tokens", len(dec.Tokens))
	}
	e.SetPhonemeEngine(dict.New())
}
