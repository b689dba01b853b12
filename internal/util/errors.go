package util

import "errors"

// Parse failure sentinels. Workflow code matches these by message text, so
// the strings are part of the contract.
var (
	ErrNoExtractableText = errors.New("no extractable text found in document")
	ErrParserUnavailable = errors.New("parser service unavailable")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)
