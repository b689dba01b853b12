package chunking

import (
	"errors"
	"unicode/utf8"
)

// runeTokenizer treats every rune as one token. Deterministic stand-in for
// the real tokenizer in tests.
type runeTokenizer struct{}

func (runeTokenizer) CountTokens(s string) (int, error) {
	return utf8.RuneCountInString(s), nil
}

func (runeTokenizer) DecodeFirstN(s string, n int) (string, error) {
	return runePrefix(s, n), nil
}

func (runeTokenizer) SplitByTokenBudget(s string, budget int) ([]string, error) {
	return windowSplit(s, budget), nil
}

// failingTokenizer always errors, for exercising estimate fallbacks.
type failingTokenizer struct{}

func (failingTokenizer) CountTokens(string) (int, error) {
	return 0, errors.New("tokenizer down")
}

func (failingTokenizer) DecodeFirstN(string, int) (string, error) {
	return "", errors.New("tokenizer down")
}

func (failingTokenizer) SplitByTokenBudget(string, int) ([]string, error) {
	return nil, errors.New("tokenizer down")
}
