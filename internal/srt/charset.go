package srt

import (
	"bytes"
	"io"

	"golang.org/x/net/html/charset"
)

// NewUTF8Reader wraps an io.Reader with automatic character encoding
// detection and conversion to UTF-8. Subtitle files in the wild are
// frequently encoded as Windows-1250/1252 or ISO-8859-x; the detector uses
// byte order marks and heuristics, and is a cheap no-op for content that is
// already UTF-8.
func NewUTF8Reader(body io.Reader) (io.Reader, error) {
	return charset.NewReader(body, "")
}

// DecodeUTF8 normalizes a raw subtitle payload to UTF-8.
func DecodeUTF8(raw []byte) ([]byte, error) {
	reader, err := NewUTF8Reader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(reader)
}
