package providers

import (
	"errors"
	"testing"
)

func TestClassifyError(t *testing.T) {
	cases := map[string]ErrorType{
		"insufficient_quota":          ErrorQuota,
		"billing hard limit reached":  ErrorQuota,
		"429 rate":                    ErrorRate,
		"too many requests":           ErrorRate,
		"context too long":            ErrorContext,
		"maximum length exceeded":     ErrorContext,
		"timeout":                     ErrorTransient,
		"model overloaded, try again": ErrorTransient,
		"bad request":                 ErrorPermanent,
		"invalid api key":             ErrorPermanent,
	}
	for msg, want := range cases {
		if got := ClassifyError(errors.New(msg)); got != want {
			t.Fatalf("classify %q: got %s want %s", msg, got, want)
		}
	}
}

func TestClassifyErrorNil(t *testing.T) {
	if got := ClassifyError(nil); got != "" {
		t.Fatalf("nil error must classify empty, got %s", got)
	}
}
