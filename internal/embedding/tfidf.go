package embedding

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const tfidfModelFile = "tfidf_model.json"

// TFIDFEmbedder is the in-process embedder: a TF-IDF vectorizer built over
// the indexed corpus. It needs no external service, but its vocabulary is
// part of the index identity, so the fitted model is persisted next to the
// vectors and reloaded before any query can be embedded.
type TFIDFEmbedder struct {
	vocabulary   map[string]int
	idf          []float64
	dimension    int
	prepared     bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

func NewTFIDFEmbedder() *TFIDFEmbedder {
	return &TFIDFEmbedder{
		vocabulary:   make(map[string]int),
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

func (e *TFIDFEmbedder) Name() string  { return "tfidf" }
func (e *TFIDFEmbedder) Model() string { return "tfidf-corpus" }

// Prepare builds the vocabulary and IDF values from the chunk corpus.
func (e *TFIDFEmbedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range e.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return errors.New("no tokens found in corpus; ensure tokenizer supports your language")
	}
	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		e.vocabulary[term] = i
		// Smoothed IDF
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	e.dimension = len(terms)
	e.prepared = true
	return nil
}

func (e *TFIDFEmbedder) Dimension() int { return e.dimension }

func (e *TFIDFEmbedder) Embed(text string) ([]float64, error) {
	if !e.prepared {
		return nil, errors.New("tfidf embedder not prepared")
	}
	vec := make([]float64, e.dimension)
	tf := make(map[int]int)
	total := 0
	for _, tok := range e.tokenize(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec, nil
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * e.idf[idx]
	}
	l2normalize(vec)
	return vec, nil
}

func (e *TFIDFEmbedder) EmbedBatch(texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

type tfidfModel struct {
	Terms []string  `json:"terms"`
	IDF   []float64 `json:"idf"`
}

// SaveModel writes the fitted vocabulary and IDF weights into dir so a
// reloaded index can embed queries with the exact same configuration.
func (e *TFIDFEmbedder) SaveModel(dir string) error {
	if !e.prepared {
		return errors.New("tfidf embedder not prepared")
	}
	terms := make([]string, e.dimension)
	for term, idx := range e.vocabulary {
		terms[idx] = term
	}
	data, err := json.Marshal(tfidfModel{Terms: terms, IDF: e.idf})
	if err != nil {
		return fmt.Errorf("encoding tfidf model: %w", err)
	}
	path := filepath.Join(dir, tfidfModelFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing tfidf model: %w", err)
	}
	return os.Rename(tmp, path)
}

// LoadModel restores a fitted model previously written by SaveModel.
func (e *TFIDFEmbedder) LoadModel(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, tfidfModelFile))
	if err != nil {
		return fmt.Errorf("reading tfidf model: %w", err)
	}
	var m tfidfModel
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decoding tfidf model: %w", err)
	}
	if len(m.Terms) == 0 || len(m.Terms) != len(m.IDF) {
		return errors.New("tfidf model is structurally invalid")
	}
	e.vocabulary = make(map[string]int, len(m.Terms))
	for i, term := range m.Terms {
		e.vocabulary[term] = i
	}
	e.idf = m.IDF
	e.dimension = len(m.Terms)
	e.prepared = true
	return nil
}

func (e *TFIDFEmbedder) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func l2normalize(vec []float64) {
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
