package util

import "testing"

func TestSanitizeTextRemovesNulAndControls(t *testing.T) {
	in := "ab\x00cd\x01\x02\n\txy"
	out := SanitizeText(in)
	if out != "abcd\n\txy" {
		t.Fatalf("unexpected sanitized output: %q", out)
	}
}

func TestNormalizeNewlines(t *testing.T) {
	in := "a\r\nb\rc\nd"
	out := NormalizeNewlines(in)
	if out != "a\nb\nc\nd" {
		t.Fatalf("unexpected normalized output: %q", out)
	}
}
