package embedding

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"
)

const lexicalModel = "lexical-tfidf"

// Lexical is a TF-IDF model fitted once on a fixed corpus. Words outside the
// fitted vocabulary do not contribute to a vector.
type Lexical struct {
	vocab map[string]int
	idf   []float64
}

// NewLexical fits the vocabulary and smoothed idf weights on corpus.
func NewLexical(corpus []string) *Lexical {
	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(doc) {
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

	n := float64(len(corpus))
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	return &Lexical{vocab: vocab, idf: idf}
}

func (l *Lexical) Embed(_ context.Context, text string) ([]float32, error) {
	return l.vector(text), nil
}

func (l *Lexical) EmbedMany(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = l.vector(text)
	}
	return out, nil
}

func (l *Lexical) Dimension() int { return len(l.idf) }

func (l *Lexical) Model() string { return lexicalModel }

func (l *Lexical) vector(text string) []float32 {
	weights := make([]float64, len(l.idf))
	for _, tok := range Tokenize(text) {
		if idx, ok := l.vocab[tok]; ok {
			weights[idx] += l.idf[idx]
		}
	}

	var norm float64
	for _, w := range weights {
		norm += w * w
	}
	norm = math.Sqrt(norm)

	vec := make([]float32, len(weights))
	if norm == 0 {
		return vec
	}
	for i, w := range weights {
		vec[i] = float32(w / norm)
	}
	return vec
}

// Tokenize lower-cases text and splits it into word tokens. '+', '#' and '.'
// inside a word are kept so that "c++", "c#" and "node.js" survive.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#' && r != '.'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
