// Package vocab builds the biasing hint sent with transcription requests.
package vocab

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultTokenBudget matches the provider's prompt budget.
const DefaultTokenBudget = 224

// Term is one vocabulary entry: a word the transcription provider should
// bias toward, with an optional pronunciation hint.
type Term struct {
	Word          string
	Pronunciation string
}

// Vocabulary is an ordered, deduplicated term list capped at a token
// budget. Earlier terms survive truncation, so source order matters.
type Vocabulary struct {
	Terms  []Term
	Budget int
}

func (t Term) render() string {
	if t.Pronunciation != "" {
		return fmt.Sprintf("%s (%s)", t.Word, t.Pronunciation)
	}
	return t.Word
}

// Hint joins the terms into the provider prompt, stopping before the term
// that would push the running token estimate past the budget. A term is
// either fully included or fully excluded.
func (v *Vocabulary) Hint() string {
	budget := v.Budget
	if budget <= 0 {
		budget = DefaultTokenBudget
	}

	var b strings.Builder
	tokens := 0
	for _, t := range v.Terms {
		entry := t.render()
		if b.Len() > 0 {
			entry = ", " + entry
		}
		cost := EstimateTokens(entry)
		if tokens+cost > budget {
			break
		}
		b.WriteString(entry)
		tokens += cost
	}
	return b.String()
}

// TokenEstimate reports the token estimate of the produced hint.
func (v *Vocabulary) TokenEstimate() int {
	return EstimateTokens(v.Hint())
}

// EstimateTokens approximates the provider's tokenizer at roughly four
// characters per token, rounding up.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	return (len(s) + 3) / 4
}

var headerWords = map[string]bool{"term": true, "word": true, "name": true}

// Load reads the vocabulary file. A missing file yields an empty
// vocabulary; that is the normal unbiased mode, not an error. Malformed
// content degrades to whatever rows parsed.
func Load(path string, budget int, logger *log.Logger) *Vocabulary {
	v := &Vocabulary{Budget: budget}
	if path == "" {
		return v
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no vocabulary file, transcribing unbiased", "path", path)
		} else {
			logger.Warn("vocabulary file unreadable, transcribing unbiased", "path", path, "error", err)
		}
		return v
	}
	defer f.Close()

	terms, err := Parse(f)
	if err != nil {
		logger.Warn("vocabulary file malformed, using parsed prefix",
			"path", path, "terms", len(terms), "error", err)
	}
	v.Terms = terms
	if len(terms) > 0 {
		logger.Info("vocabulary loaded", "path", path, "terms", len(terms))
	}
	return v
}

// Parse reads rows of "term[,pronunciation]". An optional header row whose
// first cell is one of term/word/name (case-insensitive) is skipped.
// Duplicate terms keep their first occurrence.
func Parse(r io.Reader) ([]Term, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var terms []Term
	seen := make(map[string]bool)
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return terms, nil
		}
		if err != nil {
			return terms, fmt.Errorf("parse vocabulary: %w", err)
		}

		word := strings.TrimSpace(record[0])
		if first {
			first = false
			if headerWords[strings.ToLower(word)] {
				continue
			}
		}
		if word == "" {
			continue
		}

		key := strings.ToLower(word)
		if seen[key] {
			continue
		}
		seen[key] = true

		term := Term{Word: word}
		if len(record) > 1 {
			term.Pronunciation = strings.TrimSpace(record[1])
		}
		terms = append(terms, term)
	}
}
