package config

import (
	"fmt"

	"github.com/cognicore/incant/pkg/incant/dict"
	"github.com/cognicore/incant/pkg/incant/phonics"
	"github.com/cognicore/incant/pkg/incant/stoplist"
)

// Loader loads all configuration files and constructs components.
// Empty paths yield working defaults.
type Loader struct {
	DictPath     string
	FeelsPath    string
	StoplistPath string
	SettingsPath string
}

// Components holds everything an engine needs from configuration.
type Components struct {
	Dictionary *dict.Dictionary
	Feels      *phonics.Feels
	SkipList   *stoplist.Manager
	Settings   Settings
}

// Load reads all configuration files and returns initialized
// components.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	if l.DictPath != "" {
		d, err := dict.LoadFromYAML(l.DictPath)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		comp.Dictionary = d
	}

	if l.FeelsPath != "" {
		feels, err := LoadFeels(l.FeelsPath)
		if err != nil {
			return nil, fmt.Errorf("load feels: %w", err)
		}
		comp.Feels = feels
	} else {
		comp.Feels = phonics.DefaultFeels()
	}

	if l.StoplistPath != "" {
		skips, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.SkipList = skips
	} else {
		comp.SkipList = stoplist.NewManager(nil)
	}

	if l.SettingsPath != "" {
		settings, err := LoadSettings(l.SettingsPath)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		comp.Settings = settings
	}

	return comp, nil
}
