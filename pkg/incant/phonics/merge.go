package phonics

import (
	"fmt"
	"hash/fnv"
)

// Patch is the enrichment delta a provider returns for one token.
// Optional booleans are pointers so "unset" is distinguishable from
// an explicit false.
type Patch struct {
	Chips           []Chip
	Evidence        []Evidence
	ConfidenceBoost float64
	Enriched        *bool
	IsValid         *bool
}

// Merge combines a fast baseline with an enrichment patch into a new
// Result. Pure and deterministic: a nil patch returns the baseline
// unchanged, otherwise patch chips and evidence are appended after
// the baseline's, the confidence boost is applied clamped to [0,1],
// and Enriched is taken from the patch (default true).
//
// The baseline is never mutated; chip and evidence slices are copied.
func Merge(base Result, patch *Patch) Result {
	if patch == nil {
		return base
	}

	out := base
	out.Chips = make([]Chip, 0, len(base.Chips)+len(patch.Chips))
	out.Chips = append(out.Chips, base.Chips...)
	out.Chips = append(out.Chips, patch.Chips...)

	out.Evidence = make([]Evidence, 0, len(base.Evidence)+len(patch.Evidence))
	out.Evidence = append(out.Evidence, base.Evidence...)
	out.Evidence = append(out.Evidence, patch.Evidence...)

	out.Confidence = clamp01(base.Confidence + patch.ConfidenceBoost)

	out.Enriched = true
	if patch.Enriched != nil {
		out.Enriched = *patch.Enriched
	}

	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Signature hashes the semantically meaningful fields of a Result
// into a stable hex string. Two results with identical signatures are
// treated as "no observable change" by the enrichment scheduler, so
// timestamps and other bookkeeping must stay out of the hash.
func Signature(r Result) string {
	h := fnv.New64a()

	write := func(parts ...string) {
		for _, p := range parts {
			h.Write([]byte(p))
			h.Write([]byte{0})
		}
	}

	write(r.Token, fmt.Sprintf("%.4f", r.Confidence), fmt.Sprintf("%t", r.Enriched))
	write(r.Classes...)
	for _, ch := range []Channel{r.Channels.Text, r.Channels.Accent, r.Channels.Border, r.Channels.Glow} {
		write(ch.Source, ch.ClassName)
	}
	for _, c := range r.Chips {
		write(c.Type, c.Label, c.ClassName, fmt.Sprintf("%.4f", c.Confidence), string(c.Source))
	}
	for _, e := range r.Evidence {
		write(e.Type, e.Value, string(e.Source))
	}

	return fmt.Sprintf("%016x", h.Sum64())
}
