// Package enrichhttp implements an enrichment provider over a JSON
// HTTP endpoint. A bounded LRU caches responses so repeated requests
// for the same token (across engine versions) skip the network.
package enrichhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/incant/pkg/incant/internalerr"
	"github.com/cognicore/incant/pkg/incant/phonics"
)

// DefaultCacheSize bounds the LRU response cache.
const DefaultCacheSize = 512

// Client calls an enrichment endpoint: POST {token} → patch JSON.
type Client struct {
	BaseURL string
	APIKey  string

	HTTPClient *http.Client

	cache *lru.Cache[string, *phonics.Patch]
}

type enrichRequest struct {
	Token string `json:"token"`
}

type wireChip struct {
	Type       string  `json:"type"`
	Label      string  `json:"label"`
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
}

type wireEvidence struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type wirePatch struct {
	Chips           []wireChip     `json:"chips"`
	Evidence        []wireEvidence `json:"evidence"`
	ConfidenceBoost float64        `json:"confidence_boost"`
	Enriched        *bool          `json:"enriched"`
	IsValid         *bool          `json:"is_valid"`
}

// New creates a client with a response cache of the given size
// (DefaultCacheSize when <= 0).
func New(baseURL string, cacheSize int) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("enrichhttp: base URL required: %w", internalerr.ErrInvalidInput)
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *phonics.Patch](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Client{BaseURL: baseURL, cache: cache}, nil
}

// Fetch implements enrich.Provider. Cached patches are returned
// without a network round-trip; errors are never cached.
func (c *Client) Fetch(ctx context.Context, token string) (*phonics.Patch, error) {
	if patch, ok := c.cache.Get(token); ok {
		return patch, nil
	}

	reqBody, err := json.Marshal(enrichRequest{Token: token})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enrichhttp: status %d for %q", resp.StatusCode, token)
	}

	var wire wirePatch
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, err
	}

	patch := convert(wire)
	c.cache.Add(token, patch)
	return patch, nil
}

func convert(wire wirePatch) *phonics.Patch {
	patch := &phonics.Patch{
		ConfidenceBoost: wire.ConfidenceBoost,
		Enriched:        wire.Enriched,
		IsValid:         wire.IsValid,
	}
	for _, c := range wire.Chips {
		patch.Chips = append(patch.Chips, phonics.Chip{
			Type:       c.Type,
			Label:      c.Label,
			ClassName:  c.ClassName,
			Confidence: c.Confidence,
			Source:     phonics.SourceEnriched,
		})
	}
	for _, e := range wire.Evidence {
		patch.Evidence = append(patch.Evidence, phonics.Evidence{
			Type:   e.Type,
			Value:  e.Value,
			Source: phonics.SourceEnriched,
		})
	}
	return patch
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
