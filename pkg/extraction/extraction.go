// Package extraction converts uploaded document bytes into plain text
// suitable for generation prompts.
package extraction

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"
)

// ErrNoText indicates the document holds no extractable text.
var ErrNoText = errors.New("no extractable text")

// Content types accepted as text regardless of their payload.
var textualTypes = map[string]bool{
	"application/json":      true,
	"application/xml":       true,
	"application/x-ndjson":  true,
	"application/yaml":      true,
	"application/rtf":       true,
	"text/markdown":         true,
	"text/csv":              true,
	"application/csv":       true,
	"application/x-subrip":  true,
	"application/xhtml+xml": true,
}

// Text extracts plain text from document bytes. Text-based content types
// are decoded as UTF-8 with invalid sequences replaced; binary content
// yields ErrNoText.
func Text(data []byte, contentType string) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", fmt.Errorf("%w: document is empty", ErrNoText)
	}

	media := mediaType(contentType)
	if !textual(media) {
		return "", fmt.Errorf("%w: unsupported content type %q", ErrNoText, media)
	}

	if bytes.IndexByte(data, 0) >= 0 {
		return "", fmt.Errorf("%w: binary payload under %q", ErrNoText, media)
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}

	return text, nil
}

func mediaType(contentType string) string {
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		media, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(media))
}

func textual(media string) bool {
	if strings.HasPrefix(media, "text/") {
		return true
	}
	return textualTypes[media]
}
