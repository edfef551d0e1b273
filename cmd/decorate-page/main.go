// decorate-page fetches an HTML page, extracts its visible text and
// runs it through the decoration engine, reporting how the page's
// vocabulary spreads across the five schools.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/cognicore/incant/pkg/incant"
	"github.com/cognicore/incant/pkg/incant/config"
)

func main() {
	var (
		url       = flag.String("url", "", "Page URL to fetch")
		file      = flag.String("file", "", "Local HTML file (alternative to -url)")
		dictPath  = flag.String("dict", "", "Phoneme dictionary YAML (optional)")
		feelsPath = flag.String("feels", "", "Feel lexicon YAML (optional)")
		top       = flag.Int("top", 10, "Tokens to show per school")
	)
	flag.Parse()

	if *url == "" && *file == "" {
		log.Fatal("-url or -file required")
	}

	raw, err := loadHTML(*url, *file)
	if err != nil {
		log.Fatal(err)
	}

	text, err := extractText(raw)
	if err != nil {
		log.Fatal(err)
	}

	loader := &config.Loader{DictPath: *dictPath, FeelsPath: *feelsPath}
	comp, err := loader.Load()
	if err != nil {
		log.Fatal(err)
	}

	opts := incant.Options{Feels: comp.Feels, SkipList: comp.SkipList}
	if comp.Dictionary != nil {
		opts.Dictionary = comp.Dictionary
	}
	engine := incant.New(opts)
	defer engine.Close()

	dec := engine.Decorate(text)
	report(dec, *top)
}

func loadHTML(url, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		return string(data), err
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	return string(data), err
}

// extractText walks the DOM collecting text nodes, skipping script
// and style subtrees.
func extractText(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return buf.String(), nil
}

func report(dec incant.Decoration, top int) {
	bySchool := make(map[string][]string)
	seen := make(map[string]struct{})

	for i, tok := range dec.Tokens {
		n := tok.Normalized
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}

		school := strings.TrimPrefix(dec.Results[i].Channels.Text.ClassName, "school-")
		bySchool[school] = append(bySchool[school], n)
	}

	schools := make([]string, 0, len(bySchool))
	for school := range bySchool {
		schools = append(schools, school)
	}
	sort.Slice(schools, func(i, j int) bool {
		return len(bySchool[schools[i]]) > len(bySchool[schools[j]])
	})

	fmt.Printf("%d tokens, %d unique\n\n", len(dec.Tokens), len(seen))
	for _, school := range schools {
		words := bySchool[school]
		sort.Strings(words)
		if len(words) > top {
			words = words[:top]
		}
		fmt.Printf("%-8s %4d  %s\n", school, len(bySchool[school]), strings.Join(words, " "))
	}
}
