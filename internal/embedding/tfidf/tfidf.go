package tfidf

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"animerec/internal/embedding"
)

// Vectorizer implements a TF-IDF vectorizer with a fixed English stop-word list.
// It builds a vocabulary from the corpus and computes smoothed IDF values.
type Vectorizer struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewVectorizer creates a TF-IDF vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{
		// two or more word characters; one-letter tokens are dropped
		tokenPattern: regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this vectorizer implementation.
func (v *Vectorizer) Name() string { return "tfidf" }

// Fit implements embedding.Vectorizer.
func (v *Vectorizer) Fit(corpus []string) (embedding.Model, error) {
	return v.FitModel(corpus)
}

// FitModel builds the vocabulary and IDF values from corpus and vectorizes
// every document. Documents without surviving tokens get the zero vector.
func (v *Vectorizer) FitModel(corpus []string) (*Model, error) {
	if len(corpus) == 0 {
		return nil, errors.New("empty corpus for TF-IDF fit")
	}
	docs := make([][]string, len(corpus))
	df := make(map[string]int)
	for i, text := range corpus {
		tokens := v.tokenize(text)
		docs[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Create stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	m := &Model{
		vectorizer: v,
		vocabulary: make(map[string]int, len(terms)),
		terms:      terms,
		idf:        make([]float64, len(terms)),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		m.vocabulary[term] = i
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	m.vectors = make([]embedding.Vector, len(docs))
	for i, tokens := range docs {
		m.vectors[i] = m.weigh(tokens)
	}
	return m, nil
}

// Model is a fitted TF-IDF state. It is read-only and safe for concurrent use.
type Model struct {
	vectorizer *Vectorizer
	vocabulary map[string]int
	terms      []string
	idf        []float64
	vectors    []embedding.Vector
}

// Dimension returns the vocabulary size.
func (m *Model) Dimension() int { return len(m.terms) }

// Vectors returns the L2-normalized vector of every fitted document, in corpus order.
func (m *Model) Vectors() []embedding.Vector {
	return append([]embedding.Vector(nil), m.vectors...)
}

// Transform vectorizes text in the fitted space. Tokens outside the
// vocabulary are ignored.
func (m *Model) Transform(text string) embedding.Vector {
	return m.weigh(m.vectorizer.tokenize(text))
}

func (m *Model) weigh(tokens []string) embedding.Vector {
	tf := make(map[int]float64, len(tokens))
	for _, tok := range tokens {
		if idx, ok := m.vocabulary[tok]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return nil
	}
	for idx, count := range tf {
		tf[idx] = count * m.idf[idx]
	}
	return embedding.NewVector(tf).Normalize()
}

func (v *Vectorizer) tokenize(text string) []string {
	raw := v.tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := v.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}
