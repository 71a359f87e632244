package tfidf

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

// tokenPattern matches words of two or more letters, digits or underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Options controls vocabulary selection.
type Options struct {
	// MinDF drops terms found in fewer documents.
	MinDF int

	// MaxDF drops terms found in more than this fraction of documents.
	MaxDF float64

	// MaxFeatures keeps the most frequent terms (0 = all).
	MaxFeatures int

	// NGramMax is the longest n-gram (1 = unigrams).
	NGramMax int
}

// OptionsFromSettings converts configuration into vectorizer options.
func OptionsFromSettings(s domain.TFIDFSettings) Options {
	return Options{
		MinDF:       s.MinDF,
		MaxDF:       s.MaxDF,
		MaxFeatures: s.MaxFeatures,
		NGramMax:    s.NGramMax,
	}
}

func (o Options) normalized() Options {
	if o.MinDF < 1 {
		o.MinDF = 1
	}
	if o.MaxDF <= 0 || o.MaxDF > 1 {
		o.MaxDF = 1
	}
	if o.NGramMax < 1 {
		o.NGramMax = 1
	}
	if o.MaxFeatures < 0 {
		o.MaxFeatures = 0
	}
	return o
}

// Vectorizer is a fitted TF-IDF model. It is immutable after Fit and safe
// for concurrent Transform calls.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	NGramMax   int            `json:"ngram_max"`
}

// SparseVector holds the non-zero entries of a vector, indices ascending.
type SparseVector struct {
	Indices []int     `json:"i"`
	Values  []float64 `json:"v"`
}

// Dot returns the inner product of two sparse vectors.
func (a SparseVector) Dot(b SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Fit learns the vocabulary and smoothed inverse document frequencies
// idf(t) = ln((1+N)/(1+df(t))) + 1 over docs.
func Fit(docs []string, opts Options) (*Vectorizer, error) {
	if len(docs) == 0 {
		return nil, domain.ErrNoChunks
	}
	opts = opts.normalized()

	df := make(map[string]int)
	total := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range analyze(doc, opts.NGramMax) {
			total[term]++
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	n := len(docs)
	maxDocs := int(math.Floor(opts.MaxDF * float64(n)))

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count < opts.MinDF || count > maxDocs {
			continue
		}
		terms = append(terms, term)
	}

	if opts.MaxFeatures > 0 && len(terms) > opts.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if total[terms[i]] != total[terms[j]] {
				return total[terms[i]] > total[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:opts.MaxFeatures]
	}

	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: %d documents, min_df=%d, max_df=%.2f",
			domain.ErrEmptyVocabulary, n, opts.MinDF, opts.MaxDF)
	}

	sort.Strings(terms)
	v := &Vectorizer{
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
		NGramMax:   opts.NGramMax,
	}
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
	return v, nil
}

// Transform maps text onto the fitted vocabulary as an L2-normalised
// TF-IDF vector. Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(text string) SparseVector {
	counts := make(map[int]int)
	for _, term := range analyze(text, v.NGramMax) {
		if idx, ok := v.Vocabulary[term]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	var norm float64
	for _, idx := range vec.Indices {
		w := float64(counts[idx]) * v.IDF[idx]
		vec.Values = append(vec.Values, w)
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i := range vec.Values {
		vec.Values[i] /= norm
	}
	return vec
}

// Size returns the vocabulary size.
func (v *Vectorizer) Size() int {
	return len(v.IDF)
}

// analyze lower-cases text, extracts tokens, drops stopwords and emits
// n-grams of length 1..ngramMax over the remaining tokens.
func analyze(text string, ngramMax int) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := englishStopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}

	terms := make([]string, 0, len(tokens)*ngramMax)
	terms = append(terms, tokens...)
	for n := 2; n <= ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}
