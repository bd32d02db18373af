package css

import (
	"fmt"
	"io"
	"strings"
)

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
// Output is deterministic: the same stylesheet always produces the same bytes.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	for i, item := range s.Items {
		if i > 0 && blankLineBefore(s.Items[i-1], item) {
			cw.printf("\n")
		}
		writeItem(cw, item, 0)
		if cw.err != nil {
			break
		}
	}
	return cw.n, cw.err
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// String returns CSS text of the declaration without terminating semicolon.
func (d *Declaration) String() string {
	if d.Important {
		return d.Property + ": " + d.Value + " !important"
	}
	return d.Property + ": " + d.Value
}

// keep statement at-rules (@import, @charset) together
func blankLineBefore(prev, cur *Item) bool {
	return !(isStatement(prev) && isStatement(cur))
}

func isStatement(item *Item) bool {
	return item.AtRule != nil && !item.AtRule.Block
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) printf(format string, args ...any) {
	if cw.err != nil {
		return
	}
	n, err := fmt.Fprintf(cw.w, format, args...)
	cw.n += int64(n)
	cw.err = err
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func writeItem(cw *countingWriter, item *Item, depth int) {
	switch {
	case item.Comment != nil:
		cw.printf("%s%s\n", indent(depth), *item.Comment)
	case item.Rule != nil:
		writeRule(cw, item.Rule, depth)
	case item.AtRule != nil:
		writeAtRule(cw, item.AtRule, depth)
	}
}

// writeRule writes a single CSS rule.
func writeRule(cw *countingWriter, rule *Rule, depth int) {
	cw.printf("%s%s {\n", indent(depth), rule.Selector)
	writeDeclarations(cw, rule.Declarations, depth+1)
	cw.printf("%s}\n", indent(depth))
}

// writeDeclarations writes property declarations in their order.
func writeDeclarations(cw *countingWriter, decls []*Declaration, depth int) {
	for _, d := range decls {
		cw.printf("%s%s;\n", indent(depth), d.String())
	}
}

// writeAtRule writes @-rule with its block if any.
func writeAtRule(cw *countingWriter, ar *AtRule, depth int) {
	head := ar.Name
	if ar.Prelude != "" {
		head += " " + ar.Prelude
	}
	if !ar.Block {
		cw.printf("%s%s;\n", indent(depth), head)
		return
	}

	switch {
	case len(ar.Items) > 0:
		cw.printf("%s%s {\n", indent(depth), head)
		for i, item := range ar.Items {
			if i > 0 && blankLineBefore(ar.Items[i-1], item) {
				cw.printf("\n")
			}
			writeItem(cw, item, depth+1)
		}
		cw.printf("%s}\n", indent(depth))
	case len(ar.Declarations) > 0:
		cw.printf("%s%s {\n", indent(depth), head)
		writeDeclarations(cw, ar.Declarations, depth+1)
		cw.printf("%s}\n", indent(depth))
	case ar.Body != "":
		cw.printf("%s%s { %s }\n", indent(depth), head, ar.Body)
	default:
		cw.printf("%s%s {\n%s}\n", indent(depth), head, indent(depth))
	}
}
