package icons

import (
	"svgvar/utils/debug"
)

// Result describes what a single pass did to a stylesheet.
type Result struct {
	Pass      string     // pass id, same as in log records
	Requests  []*Request // in order of first reference
	Warnings  []Warning
	Rewritten int  // number of rewritten call sites
	Declared  int  // number of added or replaced variables
	Changed   bool // stylesheet was modified
}

// encodedLimit keeps dumps readable, data URIs could be long.
const encodedLimit = 64

// String returns human readable dump of the result.
func (r *Result) String() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Pass %s", r.Pass)
	tw.Line(1, "Rewritten: %d, Declared: %d, Changed: %t", r.Rewritten, r.Declared, r.Changed)
	tw.Line(1, "Requests: %d", len(r.Requests))
	for _, req := range r.Requests {
		tw.Line(2, "%s", req.Name)
		tw.Line(3, "Variable: %s", req.Variable)
		if req.Path != "" {
			tw.Line(3, "Path: %s", req.Path)
		}
		tw.Line(3, "Refs: %d", req.Refs)
		if req.Encoded != "" {
			tw.TextBlock(3, "Encoded", req.Encoded, encodedLimit)
		}
		if req.Err != nil {
			tw.TextBlock(3, "Error", req.Err.Error(), 0)
		}
	}
	if len(r.Warnings) > 0 {
		tw.Line(1, "Warnings: %d", len(r.Warnings))
		for _, w := range r.Warnings {
			tw.TextBlock(2, w.Name, w.String(), 0)
		}
	}
	return tw.String()
}
