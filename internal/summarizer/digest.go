package summarizer

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/siddarthal/AiHackathon/internal/domain"
)

var (
	wordRe     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// perDocumentSample bounds how much of each document feeds the corpus
// digest; ranking sentences across whole files gets slow and the opening
// of a document is usually its most descriptive part.
const perDocumentSample = 2000

// Digest produces extractive summaries by ranking sentences on normalized
// token frequency. It carries no model and is safe for concurrent use.
type Digest struct {
	stopwords map[string]struct{}
}

func NewDigest() *Digest {
	return &Digest{stopwords: digestStopwords()}
}

// Summarize returns up to maxSentences of text, picked by frequency score
// and emitted in their original order.
func (d *Digest) Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text)
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range d.tokens(sent) {
			if _, skip := d.stopwords[tok]; skip {
				continue
			}
			freq[tok]++
		}
	}
	peak := 0.0
	for _, v := range freq {
		if v > peak {
			peak = v
		}
	}
	if peak > 0 {
		for k, v := range freq {
			freq[k] = v / peak
		}
	}

	type ranked struct {
		idx   int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i, sent := range sentences {
		toks := d.tokens(sent)
		score := 0.0
		for _, tok := range toks {
			score += freq[tok]
		}
		// sqrt-length normalization keeps long sentences from winning on bulk
		if n := float64(len(toks)); n > 0 {
			score /= math.Sqrt(n)
		}
		scores[i] = ranked{i, score}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}

	picked := make([]int, maxSentences)
	for i := range picked {
		picked[i] = scores[i].idx
	}
	sort.Ints(picked)

	out := make([]string, 0, len(picked))
	for _, idx := range picked {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " ")
}

// DescribeCorpus builds a one-paragraph digest of an indexed document set,
// sampling the head of each document. An empty corpus yields an empty
// string.
func (d *Digest) DescribeCorpus(docs []domain.Document, maxSentences int) string {
	if len(docs) == 0 {
		return ""
	}
	var sample strings.Builder
	for _, doc := range docs {
		runes := []rune(doc.Text)
		if len(runes) > perDocumentSample {
			runes = runes[:perDocumentSample]
		}
		sample.WriteString(string(runes))
		sample.WriteString("\n")
	}
	summary := d.Summarize(sample.String(), maxSentences)
	if summary == "" {
		return fmt.Sprintf("%d documents indexed.", len(docs))
	}
	return fmt.Sprintf("%d documents indexed. %s", len(docs), summary)
}

func (d *Digest) tokens(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

func digestStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "than",
		"so", "such", "into", "about", "between", "through", "during",
		"before", "after", "out", "off", "own", "same", "too", "very",
		"can", "will", "just", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
