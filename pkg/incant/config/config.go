package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/incant/pkg/incant/internalerr"
	"github.com/cognicore/incant/pkg/incant/phonics"
	"github.com/cognicore/incant/pkg/incant/stoplist"
)

// Feels is the feel lexicon configuration: tone → trigger words.
type Feels struct {
	Feels map[string][]string `yaml:"feels"`
}

// LoadFeels loads a feel lexicon from a YAML file.
func LoadFeels(path string) (*phonics.Feels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Feels
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	feels := phonics.NewFeels()
	for feel, words := range cfg.Feels {
		feels.Add(feel, words)
	}
	return feels, nil
}

// Stoplist is the enrichment skip-list configuration.
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads skip-list terms from a YAML file.
func LoadStoplist(path string) (*stoplist.Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Stoplist
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return stoplist.NewManager(cfg.Terms), nil
}

// Settings holds engine tunables.
type Settings struct {
	Concurrency     int    `yaml:"concurrency"`
	PumpDelayMS     int    `yaml:"pump_delay_ms"`
	NotifyDelayMS   int    `yaml:"notify_delay_ms"`
	MaxEnrichTokens int    `yaml:"max_enrich_tokens"`
	ProviderURL     string `yaml:"provider_url"`
}

// LoadSettings loads engine tunables from a YAML file. Zero values
// mean "use the built-in default".
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}
	if s.Concurrency < 0 || s.PumpDelayMS < 0 || s.NotifyDelayMS < 0 || s.MaxEnrichTokens < 0 {
		return Settings{}, fmt.Errorf("%s: negative tunable: %w", path, internalerr.ErrInvalidConfig)
	}
	return s, nil
}
