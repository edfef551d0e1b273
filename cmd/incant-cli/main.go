package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cognicore/incant/internal/enrichhttp"
	"github.com/cognicore/incant/pkg/incant"
	"github.com/cognicore/incant/pkg/incant/config"
)

func main() {
	var (
		dictPath     = flag.String("dict", "", "Phoneme dictionary YAML (optional)")
		feelsPath    = flag.String("feels", "", "Feel lexicon YAML (optional)")
		stoplistPath = flag.String("stoplist", "", "Enrichment skip-list YAML (optional)")
		settingsPath = flag.String("settings", "", "Engine settings YAML (optional)")
		text         = flag.String("text", "", "One-shot text (non-interactive mode)")
		asJSON       = flag.Bool("json", false, "Emit decorations as JSON")
	)
	flag.Parse()

	loader := &config.Loader{
		DictPath:     *dictPath,
		FeelsPath:    *feelsPath,
		StoplistPath: *stoplistPath,
		SettingsPath: *settingsPath,
	}
	comp, err := loader.Load()
	if err != nil {
		log.Fatal(err)
	}

	opts := incant.Options{
		Feels:           comp.Feels,
		SkipList:        comp.SkipList,
		Concurrency:     comp.Settings.Concurrency,
		PumpDelay:       time.Duration(comp.Settings.PumpDelayMS) * time.Millisecond,
		NotifyDelay:     time.Duration(comp.Settings.NotifyDelayMS) * time.Millisecond,
		MaxEnrichTokens: comp.Settings.MaxEnrichTokens,
	}
	if comp.Dictionary != nil {
		opts.Dictionary = comp.Dictionary
	}
	if comp.Settings.ProviderURL != "" {
		provider, err := enrichhttp.New(comp.Settings.ProviderURL, 0)
		if err != nil {
			log.Fatal(err)
		}
		opts.Provider = provider
	}

	engine := incant.New(opts)
	defer engine.Close()

	if *text != "" {
		decorate(engine, *text, *asJSON)
		return
	}

	fmt.Println("===========================================")
	fmt.Println("  Incant CLI")
	fmt.Println("  Token decoration playground")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Type a line to decorate (Ctrl+D to exit):")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		decorate(engine, line, *asJSON)
	}

	fmt.Println("\nGoodbye!")
}

func decorate(engine *incant.Engine, text string, asJSON bool) {
	dec := engine.Decorate(text)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dec); err != nil {
			log.Fatal(err)
		}
		return
	}

	for i, tok := range dec.Tokens {
		res := dec.Results[i]
		fmt.Printf("%-16s [%3d,%3d) %-14s accent=%-14s conf=%.2f",
			tok.Raw, tok.Start, tok.End,
			res.Channels.Text.ClassName,
			res.Channels.Accent.ClassName,
			res.Confidence)
		for _, chip := range res.Chips {
			fmt.Printf("  [%s %s]", chip.Type, chip.Label)
		}
		fmt.Println()
	}
}
