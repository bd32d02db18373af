package css

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const charsetPrefix = `@charset "`

// DecodeSource converts stylesheet bytes to UTF-8. Byte order mark takes
// precedence over @charset declaration. When the source was re-encoded any
// leading @charset statement is rewritten to declare UTF-8. Returned label is
// the name of the encoding source was in.
func DecodeSource(data []byte) ([]byte, string, error) {
	if bom := detectBOM(data); bom != "" {
		out, _, err := transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), data)
		if err != nil {
			return nil, "", fmt.Errorf("unable to decode %s stylesheet: %w", bom, err)
		}
		return normalizeCharsetRule(out), bom, nil
	}

	label, ok := declaredCharset(data)
	if !ok {
		return data, "utf-8", nil
	}

	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, "", fmt.Errorf("unsupported stylesheet charset %q", label)
	}
	if name == "utf-8" {
		return data, name, nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("unable to decode stylesheet from %s: %w", name, err)
	}
	return normalizeCharsetRule(out), name, nil
}

func detectBOM(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return "utf-8"
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return "utf-16be"
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return "utf-16le"
	}
	return ""
}

// declaredCharset returns label from leading `@charset "label";`. Only the
// exact form is recognized, same as browsers do.
func declaredCharset(data []byte) (string, bool) {
	if !bytes.HasPrefix(data, []byte(charsetPrefix)) {
		return "", false
	}
	rest := data[len(charsetPrefix):]
	end := bytes.Index(rest, []byte(`";`))
	if end <= 0 || end > 64 {
		return "", false
	}
	return string(rest[:end]), true
}

func normalizeCharsetRule(data []byte) []byte {
	label, ok := declaredCharset(data)
	if !ok || strings.EqualFold(label, "utf-8") {
		return data
	}
	out := make([]byte, 0, len(data))
	out = append(out, charsetPrefix+"UTF-8"...)
	return append(out, data[len(charsetPrefix)+len(label):]...)
}
