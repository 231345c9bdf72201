// Package constellation groups stars that voice the same feeling. A new
// star joins the constellation of its most similar same-emotion peer, or
// founds its own when nothing comes close.
package constellation

import (
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// similarityThreshold is the minimum cosine similarity for a new star to
// join an existing constellation.
const similarityThreshold = 0.4

// Candidate is an existing star considered for grouping.
type Candidate struct {
	Text            string
	ConstellationID string
}

// Matcher assigns constellation ids by text similarity.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a matcher with the default threshold.
func NewMatcher() *Matcher {
	return &Matcher{threshold: similarityThreshold}
}

// Assign returns the constellation id for text given its same-emotion
// peers. Peers without a constellation id are skipped. A fresh id is
// returned when no peer scores at or above the threshold.
func (m *Matcher) Assign(text string, peers []Candidate) string {
	docs := [][]string{tokenize(text)}
	ids := make([]string, 0, len(peers))
	for _, p := range peers {
		if p.ConstellationID == "" {
			continue
		}
		docs = append(docs, tokenize(p.Text))
		ids = append(ids, p.ConstellationID)
	}
	if len(ids) == 0 {
		return uuid.NewString()
	}

	vectors := tfidf(docs)
	best := -1
	var bestScore float64
	for i := 1; i < len(vectors); i++ {
		if score := cosine(vectors[0], vectors[i]); score > bestScore {
			best, bestScore = i-1, score
		}
	}
	if best >= 0 && bestScore >= m.threshold {
		return ids[best]
	}
	return uuid.NewString()
}

// stopwords are excluded from similarity so grouping keys on content
// words, not grammar.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "i": {}, "in": {}, "is": {}, "it": {},
	"me": {}, "my": {}, "of": {}, "on": {}, "or": {}, "so": {}, "that": {},
	"the": {}, "to": {}, "was": {}, "we": {}, "were": {}, "you": {},
	"your": {},
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, skip := stopwords[f]; !skip {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// tfidf builds l2-normalized term vectors with smoothed idf, so cosine
// similarity reduces to a dot product.
func tfidf(docs [][]string) []map[string]float64 {
	df := make(map[string]int)
	counts := make([]map[string]float64, len(docs))
	for i, doc := range docs {
		tf := make(map[string]float64, len(doc))
		for _, w := range doc {
			tf[w]++
		}
		counts[i] = tf
		for w := range tf {
			df[w]++
		}
	}

	n := float64(len(docs))
	vectors := make([]map[string]float64, len(docs))
	for i, tf := range counts {
		vec := make(map[string]float64, len(tf))
		var norm float64
		for w, c := range tf {
			v := c * (math.Log((1+n)/(1+float64(df[w]))) + 1)
			vec[w] = v
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for w := range vec {
				vec[w] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors
}

func cosine(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for w, va := range a {
		dot += va * b[w]
	}
	return dot
}
