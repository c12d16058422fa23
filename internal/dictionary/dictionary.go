// Package dictionary provides the word list used to check Word Chain answers.
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	maxDistance    = 2
	maxSuggestions = 5
)

// Dictionary is an in-memory word list indexed by first letter.
type Dictionary struct {
	words   map[string]struct{}
	byFirst map[rune][]string
}

// Load reads a newline separated word list from path.
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read builds a Dictionary from r. Blank lines and lines starting with # are skipped.
func Read(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{
		words:   make(map[string]struct{}),
		byFirst: make(map[rune][]string),
	}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if _, dup := d.words[w]; dup {
			continue
		}
		d.words[w] = struct{}{}
		first, _ := utf8.DecodeRuneInString(w)
		d.byFirst[first] = append(d.byFirst[first], w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return d, nil
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int { return len(d.words) }

// Valid reports whether word is in the list.
func (d *Dictionary) Valid(word string) bool {
	_, ok := d.words[strings.ToLower(word)]
	return ok
}

// Suggest returns up to five listed words within edit distance two of word,
// closest first. Candidates share word's first letter.
func (d *Dictionary) Suggest(word string) []string {
	w := strings.ToLower(word)
	first, _ := utf8.DecodeRuneInString(w)
	n := utf8.RuneCountInString(w)

	type scored struct {
		word string
		dist int
	}
	var hits []scored
	for _, c := range d.byFirst[first] {
		if diff := utf8.RuneCountInString(c) - n; diff > maxDistance || diff < -maxDistance {
			continue
		}
		if dist := levenshtein.ComputeDistance(w, c); dist <= maxDistance {
			hits = append(hits, scored{c, dist})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].word < hits[j].word
	})

	out := make([]string, 0, maxSuggestions)
	for _, h := range hits {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, h.word)
	}
	return out
}

// Closest returns the candidate nearest to word within maxDist, if any.
func Closest(word string, candidates []string, maxDist int) (string, bool) {
	best, bestDist := "", maxDist+1
	for _, c := range candidates {
		if dist := levenshtein.ComputeDistance(word, c); dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best, best != ""
}
