// Package tokenizer provides BPE token counting and token-aligned text
// splitting on top of tiktoken encodings.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const DefaultEncoding = "cl100k_base"

// Encoder wraps one tiktoken encoding. Instances are safe for concurrent
// use; construction may fetch the BPE ranks on first call, so callers keep
// one encoder per process and fall back to estimates when construction
// fails.
type Encoder struct {
	name string
	enc  *tiktoken.Tiktoken
}

// New loads an encoding by name, e.g. "cl100k_base".
func New(encoding string) (*Encoder, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	return &Encoder{name: encoding, enc: enc}, nil
}

// ForModel loads the encoding registered for a model name, e.g. "gpt-4".
func ForModel(model string) (*Encoder, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("encoding for model %q: %w", model, err)
	}
	return &Encoder{name: model, enc: enc}, nil
}

func (e *Encoder) Name() string { return e.name }

func (e *Encoder) CountTokens(text string) (int, error) {
	return len(e.enc.Encode(text, nil, nil)), nil
}

// DecodeFirstN returns the text of the first n tokens. The result is a
// prefix of the encoded byte stream, used for token-unit export overlap.
func (e *Encoder) DecodeFirstN(text string, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	tokens := e.enc.Encode(text, nil, nil)
	if n > len(tokens) {
		n = len(tokens)
	}
	return e.enc.Decode(tokens[:n]), nil
}

// SplitByTokenBudget cuts text into consecutive windows of at most budget
// tokens. Windows decode from adjacent token ranges, so their concatenation
// reproduces the input and downstream offset resolution stays exact.
func (e *Encoder) SplitByTokenBudget(text string, budget int) ([]string, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("token budget must be positive, got %d", budget)
	}
	tokens := e.enc.Encode(text, nil, nil)
	var out []string
	for i := 0; i < len(tokens); i += budget {
		j := i + budget
		if j > len(tokens) {
			j = len(tokens)
		}
		out = append(out, e.enc.Decode(tokens[i:j]))
	}
	return out, nil
}
