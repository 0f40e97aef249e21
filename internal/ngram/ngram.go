// Package ngram provides sentence-scoped n-gram extraction and containment
// scoring. Containment is a cheap lexical heuristic for "is this text drawn
// from that text" — it catches LLM output that was invented rather than
// extracted from the source document.
package ngram

import "strings"

// punctuation tokens dropped before windowing. The doubled quote forms show
// up when straight quotes are tokenized as a run.
var punctuations = map[string]bool{
	`"`:  true,
	".":  true,
	"(":  true,
	")":  true,
	",":  true,
	"?":  true,
	";":  true,
	":":  true,
	"''": true,
	"``": true,
}

// NGrams converts text into n-grams of filtered tokens. The text is split
// into sentences first and each sentence is windowed independently, so no
// n-gram ever spans a sentence boundary. Tokens are case-folded; stop words
// and punctuation are removed before windowing, not after.
func NGrams(text string, n int) [][]string {
	if n <= 0 {
		return nil
	}
	var grams [][]string
	for _, sentence := range Sentences(text) {
		words := filteredTokens(sentence)
		for i := 0; i+n <= len(words); i++ {
			gram := make([]string, n)
			copy(gram, words[i:i+n])
			grams = append(grams, gram)
		}
	}
	return grams
}

// Containment returns the fraction of test's n-grams (duplicates counted)
// found in the set of original's n-grams. A test text with no n-grams is
// treated as fully contained and scores 1.0 — callers interpret that as a
// pass, never as a divide-by-zero.
func Containment(original, test string, n int) float64 {
	testGrams := NGrams(test, n)
	if len(testGrams) == 0 {
		return 1.0
	}

	originalSet := make(map[string]bool)
	for _, gram := range NGrams(original, n) {
		originalSet[gramKey(gram)] = true
	}

	found := 0
	for _, gram := range testGrams {
		if originalSet[gramKey(gram)] {
			found++
		}
	}
	return float64(found) / float64(len(testGrams))
}

func gramKey(gram []string) string {
	return strings.Join(gram, " ")
}

// Sentences splits text on terminal punctuation followed by whitespace.
func Sentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if isTerminator(r) && (i+1 >= len(runes) || isSpace(runes[i+1])) {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// filteredTokens lower-cases a sentence and drops stop words and punctuation.
func filteredTokens(sentence string) []string {
	var out []string
	for _, tok := range tokenize(sentence) {
		tok = strings.ToLower(tok)
		if stopWords[tok] || punctuations[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// tokenize splits a sentence into word and punctuation tokens. Word runs
// keep internal apostrophes and hyphens ("don't", "set-back"); punctuation
// characters become their own tokens so the filter can drop them.
func tokenize(sentence string) []string {
	var tokens []string
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}

	for _, r := range sentence {
		switch {
		case isWordRune(r):
			word.WriteRune(r)
		case isSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return tokens
}

func isWordRune(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
		return true
	}
	if r == '\'' || r == '-' {
		return true
	}
	// Non-ASCII letters pass through unmodified.
	return r > 127
}
