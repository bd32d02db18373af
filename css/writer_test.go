package css_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"svgvar/css"
)

const canonicalCSS = `@charset "UTF-8";
@import url("base.css");

/* icons */

.icon {
  mask: svg("arrow") no-repeat;
  color: red !important;
  --size: 16px;
}

@media screen and (max-width:600px) {
  .icon > span, .icon + a {
    width: calc(100% - 10px);
  }
}

@font-face {
  font-family: "Icons";
  src: url("icons.woff2") format("woff2"), url("icons.woff");
}
`

func TestStylesheet_String_RoundTrip(t *testing.T) {
	sheet := parse(t, canonicalCSS)

	if diff := cmp.Diff(canonicalCSS, sheet.String()); diff != "" {
		t.Errorf("canonical stylesheet changed on round trip (-want +got):\n%s", diff)
	}

	again := parse(t, sheet.String())
	if diff := cmp.Diff(sheet.String(), again.String()); diff != "" {
		t.Errorf("printer output is not stable (-first +second):\n%s", diff)
	}
}

func TestStylesheet_String_Normalizes(t *testing.T) {
	sheet := parse(t, `p{margin:0;padding:0 1px}  .a,.b{color:red!important}`)

	want := "p {\n  margin: 0;\n  padding: 0 1px;\n}\n\n.a, .b {\n  color: red !important;\n}\n"
	if diff := cmp.Diff(want, sheet.String()); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestStylesheet_String_EmptyBlocks(t *testing.T) {
	sheet := parse(t, `.a {} @media print {} @foo bar { baz qux }`)

	want := ".a {\n}\n\n@media print {\n}\n\n@foo bar { baz qux }\n"
	if diff := cmp.Diff(want, sheet.String()); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestStylesheet_WriteTo(t *testing.T) {
	sheet := parse(t, `p { margin: 0; }`)

	var buf strings.Builder
	n, err := sheet.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo returned error: %v", err)
	}
	if n == 0 {
		t.Error("WriteTo returned 0 bytes")
	}
	if int64(buf.Len()) != n {
		t.Errorf("WriteTo returned %d but wrote %d bytes", n, buf.Len())
	}
	if !strings.Contains(buf.String(), "margin: 0;") {
		t.Errorf("expected 'margin: 0;' in output, got: %s", buf.String())
	}
}

func TestStylesheet_String_ModifiedTree(t *testing.T) {
	sheet := parse(t, `@import "a.css"; .a { color: red; }`)

	root := css.NewRule(":root")
	root.Append(&css.Declaration{Property: "--icon-a", Value: css.URL(`data:image/svg+xml,%3Csvg/%3E`)})
	sheet.Insert(sheet.Prologue(), &css.Item{Rule: root})

	rule := sheet.FindRule(".a")
	rule.InsertBefore(rule.Find("color"), &css.Declaration{Property: "background-color", Value: "currentColor"})

	want := `@import "a.css";

:root {
  --icon-a: url("data:image/svg+xml,%3Csvg/%3E");
}

.a {
  background-color: currentColor;
  color: red;
}
`
	if diff := cmp.Diff(want, sheet.String()); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}
