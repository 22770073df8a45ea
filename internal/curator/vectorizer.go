package curator

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

// englishStopWords mirrors the usual english stop word list for the terms
// that actually show up in vibe descriptions.
var englishStopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "he": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {},
	"to": {}, "was": {}, "were": {}, "will": {}, "with": {}, "my": {},
	"me": {}, "i": {}, "you": {}, "your": {}, "this": {}, "some": {},
	"so": {}, "very": {}, "while": {}, "during": {}, "after": {}, "before": {},
}

// Vectorizer converts text documents into TF-IDF feature vectors.
//
// Fields are exported for gob serialization; treat them as read-only after Fit.
type Vectorizer struct {
	MaxFeatures int
	MinDocFreq  int
	Vocabulary  map[string]int
	IDF         []float64
}

// NewVectorizer creates an unfitted vectorizer. maxFeatures caps the
// vocabulary at the most frequent terms; minDocFreq drops terms appearing in
// fewer documents.
func NewVectorizer(maxFeatures, minDocFreq int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = 100
	}
	if minDocFreq <= 0 {
		minDocFreq = 1
	}
	return &Vectorizer{MaxFeatures: maxFeatures, MinDocFreq: minDocFreq}
}

// Tokenize lowercases text and splits it into stop-word-filtered unigrams.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := englishStopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Fit learns the vocabulary and IDF weights from the document corpus.
func (v *Vectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return fmt.Errorf("no documents to fit")
	}

	termCounts := make(map[string]int)
	docFreq := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(doc) {
			termCounts[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				docFreq[tok]++
			}
		}
	}

	type termCount struct {
		term  string
		count int
	}
	candidates := make([]termCount, 0, len(termCounts))
	for term, count := range termCounts {
		if docFreq[term] < v.MinDocFreq {
			continue
		}
		candidates = append(candidates, termCount{term, count})
	}

	// Most frequent terms first; alphabetical tiebreak keeps fits deterministic.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].term < candidates[j].term
	})

	if len(candidates) > v.MaxFeatures {
		candidates = candidates[:v.MaxFeatures]
	}
	if len(candidates) == 0 {
		return fmt.Errorf("vocabulary is empty after filtering")
	}

	v.Vocabulary = make(map[string]int, len(candidates))
	v.IDF = make([]float64, len(candidates))

	n := float64(len(docs))
	for i, c := range candidates {
		v.Vocabulary[c.term] = i
		// Smoothed IDF: ln((1+n)/(1+df)) + 1
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[c.term]))) + 1
	}

	return nil
}

// Transform converts a single document into an L2-normalized TF-IDF vector.
func (v *Vectorizer) Transform(doc string) []float64 {
	vec := make([]float64, len(v.IDF))
	if v.Vocabulary == nil {
		return vec
	}

	for _, tok := range Tokenize(doc) {
		if idx, ok := v.Vocabulary[tok]; ok {
			vec[idx]++
		}
	}

	var norm float64
	for i := range vec {
		vec[i] *= v.IDF[i]
		norm += vec[i] * vec[i]
	}

	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}

	return vec
}

// TransformAll converts a corpus into a dense feature matrix.
func (v *Vectorizer) TransformAll(docs []string) [][]float64 {
	rows := make([][]float64, len(docs))
	for i, doc := range docs {
		rows[i] = v.Transform(doc)
	}
	return rows
}

// NumFeatures returns the fitted vocabulary size.
func (v *Vectorizer) NumFeatures() int {
	return len(v.IDF)
}
