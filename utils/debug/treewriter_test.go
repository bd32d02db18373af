package debug_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"svgvar/icons"
	"svgvar/utils/debug"
)

func TestTreeWriter_Line(t *testing.T) {
	tw := debug.NewTreeWriter()
	if tw.String() != "" {
		t.Fatalf("new writer is not empty: %q", tw.String())
	}

	tw.Line(0, "Pass %s", "p1")
	tw.Line(1, "Requests: %d", 2)
	tw.Line(2, "arrows/right")

	want := "Pass p1\n  Requests: 2\n    arrows/right\n"
	if diff := cmp.Diff(want, tw.String()); diff != "" {
		t.Errorf("unexpected dump (-want +got):\n%s", diff)
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		value string
		limit int
		want  string
	}{
		{"empty", "", 10, "Encoded: \n"},
		{"no limit", "data:image/svg+xml,%3Csvg%20xmlns", 0, `Encoded: "data:image/svg+xml,%3Csvg%20xmlns"` + "\n"},
		{"fits", "url(a)", 6, `Encoded: "url(a)"` + "\n"},
		{"cut", "data:image/svg+xml,%3Csvg%20xmlns", 18, `Encoded: "data:image/svg+xml"...(+15 bytes)` + "\n"},
		{"cut multibyte", "стрелка", 3, `Encoded: "стр"...(+8 bytes)` + "\n"},
		{"quoted", `icon "a,b"`, 0, `Encoded: "icon \"a,b\""` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := debug.NewTreeWriter()
			tw.TextBlock(0, "Encoded", tt.value, tt.limit)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSortedKeys(t *testing.T) {
	refs := map[string]int{"icon10": 1, "icon2": 3, "arrow": 2, "arrows/right": 1}

	want := []string{"arrow", "arrows/right", "icon2", "icon10"}
	if diff := cmp.Diff(want, debug.SortedKeys(refs)); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
	if got := debug.SortedKeys(map[string]bool{}); len(got) != 0 {
		t.Errorf("expected no keys, got %v", got)
	}
}

func TestResultDump(t *testing.T) {
	badKey := &icons.KeyError{Name: "a,b", Variable: "--icon-a,b"}
	res := &icons.Result{
		Pass: "p1",
		Requests: []*icons.Request{
			{
				Name:     "arrow",
				Variable: "--icon-arrow",
				Path:     "/icons/arrow.svg",
				Refs:     2,
				Encoded:  `data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 10 10'%3E%3Cpath d='M0 0h10v10z'/%3E%3C/svg%3E`,
			},
			{Name: "a,b", Variable: "--icon-a,b", Refs: 1, Err: badKey},
		},
		Warnings:  []icons.Warning{{Name: "a,b", Err: badKey}},
		Rewritten: 2,
		Declared:  1,
		Changed:   true,
	}

	want := `Pass p1
  Rewritten: 2, Declared: 1, Changed: true
  Requests: 2
    arrow
      Variable: --icon-arrow
      Path: /icons/arrow.svg
      Refs: 2
      Encoded: "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' vie"...(+56 bytes)
    a,b
      Variable: --icon-a,b
      Refs: 1
      Error: "icon \"a,b\" maps to invalid custom property name \"--icon-a,b\""
  Warnings: 1
    a,b: "icon \"a,b\" maps to invalid custom property name \"--icon-a,b\""
`
	if diff := cmp.Diff(want, res.String()); diff != "" {
		t.Errorf("unexpected dump (-want +got):\n%s", diff)
	}
}
