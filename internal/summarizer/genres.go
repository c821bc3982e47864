package summarizer

import (
	"fmt"
	"sort"
	"strings"
)

// GenreSummarizer ranks comma-separated genre labels by how many items carry them.
type GenreSummarizer struct{}

// NewGenreSummarizer creates a frequency-based genre summarizer.
func NewGenreSummarizer() *GenreSummarizer { return &GenreSummarizer{} }

// GenreCount is one genre label and the number of items tagged with it.
type GenreCount struct {
	Genre string
	Count int
}

// Count returns every genre label with its item count, most frequent
// first and ties alphabetical. Labels are compared case-insensitively and
// reported in the spelling first seen.
func (s *GenreSummarizer) Count(categories []string) []GenreCount {
	freq := map[string]int{}
	label := map[string]string{}
	for _, cat := range categories {
		seen := map[string]struct{}{}
		for _, g := range strings.Split(cat, ",") {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			key := strings.ToLower(g)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			if _, ok := label[key]; !ok {
				label[key] = g
			}
			freq[key]++
		}
	}
	out := make([]GenreCount, 0, len(freq))
	for k, n := range freq {
		out = append(out, GenreCount{Genre: label[k], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].Genre) < strings.ToLower(out[j].Genre)
	})
	return out
}

// Summarize returns a one-line overview: item count and the top genres.
func (s *GenreSummarizer) Summarize(categories []string, top int) string {
	if top <= 0 {
		top = 5
	}
	counts := s.Count(categories)
	if top > len(counts) {
		top = len(counts)
	}
	parts := make([]string, top)
	for i := 0; i < top; i++ {
		parts[i] = fmt.Sprintf("%s (%d)", counts[i].Genre, counts[i].Count)
	}
	summary := fmt.Sprintf("%d titles", len(categories))
	if top > 0 {
		summary += " · top genres: " + strings.Join(parts, ", ")
	}
	return summary
}
