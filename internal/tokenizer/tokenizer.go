package tokenizer

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

// nonAlphanumericRegex matches sequences of non-alphanumeric characters.
var nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// acronymRegex handles cases like "HTTPRequest" -> "HTTP Request"
var acronymRegex = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)

// camelCaseRegex handles cases like "theOffice" -> "the Office" or "myAPI" -> "my API"
var camelCaseRegex = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// Tokenize converts a string into a slice of tokens.
// It splits camel/PascalCase, lowercases the string, and splits by non-alphanumeric characters.
func Tokenize(text string) []string {
	// 1. Split camelCase/PascalCase
	processedText := acronymRegex.ReplaceAllString(text, "$1 $2")
	processedText = camelCaseRegex.ReplaceAllString(processedText, "$1 $2")

	// 2. Lowercase
	lowerText := strings.ToLower(processedText)

	// 3. Split by non-alphanumeric characters
	split := nonAlphanumericRegex.Split(lowerText, -1)

	tokens := make([]string, 0) // Initialize as empty slice, not nil
	for _, s := range split {
		if s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}

// Options controls the analysis pipeline applied after tokenization.
type Options struct {
	Stopwords map[string]struct{} // nil disables stop-word filtering
	Stem      bool                // apply the English Snowball stemmer
	MaxNGram  int                 // 1 = unigrams only, 2 = unigrams and bigrams
}

// Analyzer turns raw text into index terms. Pipeline: tokenize -> stop filter -> stem -> n-grams.
// An Analyzer is immutable and safe for concurrent use.
type Analyzer struct {
	stopwords map[string]struct{}
	stem      bool
	maxNGram  int
}

// NewAnalyzer creates an analyzer. MaxNGram values below 1 are treated as 1.
func NewAnalyzer(opts Options) *Analyzer {
	maxNGram := opts.MaxNGram
	if maxNGram < 1 {
		maxNGram = 1
	}
	return &Analyzer{
		stopwords: opts.Stopwords,
		stem:      opts.Stem,
		maxNGram:  maxNGram,
	}
}

// Terms returns the unigram terms of text, in order, after stop-word removal and stemming.
func (a *Analyzer) Terms(text string) []string {
	tokens := Tokenize(text)

	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, stop := a.stopwords[token]; stop {
			continue
		}
		if a.stem {
			token = english.Stem(token, true)
			if token == "" {
				continue
			}
		}
		terms = append(terms, token)
	}
	return terms
}

// Features returns unigram terms followed by the word n-grams up to MaxNGram.
// N-grams are built from adjacent terms after stop-word removal.
func (a *Analyzer) Features(text string) []string {
	return NGrams(a.Terms(text), a.maxNGram)
}

// NGrams returns the input terms plus every contiguous n-gram of length 2..maxN, joined by a space.
func NGrams(terms []string, maxN int) []string {
	if maxN <= 1 {
		out := make([]string, len(terms))
		copy(out, terms)
		return out
	}

	out := make([]string, 0, len(terms)*maxN)
	out = append(out, terms...)
	for n := 2; n <= maxN; n++ {
		for i := 0; i+n <= len(terms); i++ {
			out = append(out, strings.Join(terms[i:i+n], " "))
		}
	}
	return out
}
