// Package svg turns SVG icon markup into compact data URIs suitable for
// embedding into stylesheets.
package svg

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Prefix starts every encoded value.
const Prefix = "data:image/svg+xml,"

// ErrNotMarkup is returned for content recognized as binary data.
var ErrNotMarkup = errors.New("not SVG markup")

// Encode sanitizes SVG markup and returns it as a percent-encoded data URI
// without surrounding quotes. Output is safe inside a double-quoted CSS
// string.
func Encode(data []byte) (string, error) {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return "", fmt.Errorf("%w: detected %s", ErrNotMarkup, describeBinary(data, kind.MIME.Value))
	}

	text, err := Sanitize(data)
	if err != nil {
		return "", err
	}
	return Prefix + escape(normalizeSpace(text)), nil
}

// Sanitize removes prolog, doctype, comments, descriptive elements, editor
// specific markup, id and data-* attributes. Result is UTF-8 text.
func Sanitize(data []byte) (string, error) {
	data, err := fromBOM(data)
	if err != nil {
		return "", err
	}

	if out, err := sanitizeTree(data); err == nil {
		return out, nil
	}

	text, err := fromDeclared(data)
	if err != nil {
		return "", err
	}
	return sanitizeText(text), nil
}

// fromBOM decodes data when it starts with byte order mark. Transcoded
// markup loses its prolog since declared encoding no longer holds.
func fromBOM(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return data[3:], nil
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}), bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
	default:
		return data, nil
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode markup: %w", err)
	}
	return prologRe.ReplaceAll(out, nil), nil
}

var encodingRe = regexp.MustCompile(`(?is)^\s*<\?xml\b[^>]*?\bencoding\s*=\s*["']([^"']+)["']`)

// fromDeclared converts data to UTF-8 according to encoding from XML prolog.
func fromDeclared(data []byte) (string, error) {
	m := encodingRe.FindSubmatch(data)
	if m == nil {
		return string(data), nil
	}
	enc, name := charset.Lookup(string(m[1]))
	if enc == nil {
		return "", fmt.Errorf("unsupported markup encoding %q", m[1])
	}
	if name == "utf-8" {
		return string(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("unable to decode markup from %s: %w", name, err)
	}
	return string(out), nil
}

var (
	spaceRe   = regexp.MustCompile(`\s+`)
	betweenRe = regexp.MustCompile(`>\s+<`)
)

func normalizeSpace(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = spaceRe.ReplaceAllString(s, " ")
	s = betweenRe.ReplaceAllString(s, "><")
	return strings.TrimSpace(s)
}

const upperhex = "0123456789ABCDEF"

// escape percent-encodes s the way ECMAScript encodeURIComponent does, but
// leaves space, '=', ':' and '/' as is.
func escape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + len(s)/2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keepByte(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&15])
	}
	return sb.String()
}

func keepByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	case ' ', '=', ':', '/':
		return true
	}
	return false
}
