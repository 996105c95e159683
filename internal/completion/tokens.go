package completion

import (
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

var (
	encMu     sync.Mutex
	encByName = map[string]*tiktoken.Tiktoken{}
)

// CountTokens returns the number of prompt tokens for model. It uses the
// model's tiktoken encoding when one is known and available, and falls back
// to a word-count estimate otherwise (non-OpenAI models, offline runs).
func CountTokens(model, text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	if enc := encodingFor(model); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return estimateTokens(text)
}

func encodingFor(model string) *tiktoken.Tiktoken {
	encMu.Lock()
	defer encMu.Unlock()
	if enc, ok := encByName[model]; ok {
		return enc
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc = nil
	}
	// Failed lookups are cached as nil.
	encByName[model] = enc
	return enc
}

func estimateTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	if words := strings.Fields(text); len(words) > 0 {
		return len(words)
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}
