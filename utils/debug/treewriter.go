// Package debug has helpers producing human readable dumps of processing
// state for logs and debug reports.
package debug

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/maruel/natural"
)

// TreeWriter accumulates indented lines.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes quoted value under label. Values longer than limit runes
// are cut and the number of omitted bytes is noted, limit <= 0 means no limit.
func (tw TreeWriter) TextBlock(depth int, label, value string, limit int) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value, limit))
	tw.w.WriteByte('\n')
}

func encodeText(raw string, limit int) string {
	if raw == "" {
		return raw
	}
	if limit <= 0 {
		return strconv.Quote(raw)
	}
	runes := []rune(raw)
	if len(runes) <= limit {
		return strconv.Quote(raw)
	}
	head := string(runes[:limit])
	return strconv.Quote(head) + fmt.Sprintf("...(+%d bytes)", len(raw)-len(head))
}

// SortedKeys returns map keys in natural order ("icon2" before "icon10").
func SortedKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})
	return keys
}
