package toc

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// loading training data is expensive, tokenizer is shared
var englishTokenizer = sync.OnceValues(func() (*sentences.DefaultSentenceTokenizer, error) {
	return english.NewSentenceTokenizer(nil)
})

// Summarizer shortens section text to its first sentence.
type Summarizer struct {
	tokenizer *sentences.DefaultSentenceTokenizer
	limit     int
}

// NewSummarizer returns summarizer producing at most limit characters.
func NewSummarizer(limit int) (*Summarizer, error) {
	t, err := englishTokenizer()
	if err != nil {
		return nil, err
	}
	return &Summarizer{tokenizer: t, limit: limit}, nil
}

// Summary returns first sentence of text. Sentence longer than limit is cut
// on a word boundary and marked with ellipsis.
func (s *Summarizer) Summary(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) == 0 {
		return ""
	}
	first := text
	if ss := s.tokenizer.Tokenize(text); len(ss) > 0 {
		first = strings.TrimSpace(ss[0].Text)
	}
	if s.limit <= 0 || utf8.RuneCountInString(first) <= s.limit {
		return first
	}

	runes := []rune(first)[:s.limit]
	cut := string(runes)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "…"
}
