package css

import (
	"slices"
	"strings"
)

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
// Backslashes and double quotes are escaped per CSS syntax: \" and \\.
func cssEscapeDoubleQuoted(s string) string {
	// Fast path: nothing to escape.
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// URL returns CSS url() expression with properly quoted argument.
func URL(s string) string {
	return `url("` + cssEscapeDoubleQuoted(s) + `")`
}

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property  string // lower-cased, custom properties keep original case
	Value     string // value text without "!important"
	Important bool
}

// IsCustom returns true for custom property (--name) declarations.
func (d *Declaration) IsCustom() bool {
	return strings.HasPrefix(d.Property, "--")
}

// Rule represents a single CSS rule (selector + ordered declarations).
type Rule struct {
	Selector     string         // Selector text as written (whitespace normalized)
	Declarations []*Declaration // Declarations in source order
}

// NewRule creates empty rule for selector.
func NewRule(selector string) *Rule {
	return &Rule{Selector: selector}
}

// Index returns position of declaration in the rule or -1.
func (r *Rule) Index(d *Declaration) int {
	return slices.Index(r.Declarations, d)
}

// Find returns the last declaration for property (the one which wins in
// cascade) or nil.
func (r *Rule) Find(property string) *Declaration {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].Property == property {
			return r.Declarations[i]
		}
	}
	return nil
}

// Has reports whether rule declares property.
func (r *Rule) Has(property string) bool {
	return r.Find(property) != nil
}

// Append adds declarations at the end of the rule.
func (r *Rule) Append(decls ...*Declaration) {
	r.Declarations = append(r.Declarations, decls...)
}

// InsertBefore inserts declarations immediately before anchor. When anchor
// does not belong to the rule declarations are appended.
func (r *Rule) InsertBefore(anchor *Declaration, decls ...*Declaration) {
	i := r.Index(anchor)
	if i < 0 {
		r.Append(decls...)
		return
	}
	r.Declarations = slices.Insert(r.Declarations, i, decls...)
}

// InsertAfter inserts declarations immediately after anchor. When anchor
// does not belong to the rule declarations are appended.
func (r *Rule) InsertAfter(anchor *Declaration, decls ...*Declaration) {
	i := r.Index(anchor)
	if i < 0 {
		r.Append(decls...)
		return
	}
	r.Declarations = slices.Insert(r.Declarations, i+1, decls...)
}

// AtRule represents @-rule. Statement at-rules (@import, @charset) have no
// block. Block at-rules keep either nested items (@media, @supports, ...),
// declarations (@font-face, @page) or raw body text for everything else.
type AtRule struct {
	Name         string // including "@", lower-cased
	Prelude      string
	Block        bool
	Items        []*Item
	Declarations []*Declaration
	Body         string
}

// Item is a single top-level (or nested) stylesheet entry.
// Exactly one of Rule, AtRule or Comment is set.
type Item struct {
	Rule    *Rule
	AtRule  *AtRule
	Comment *string
}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Items    []*Item  // All top-level items in source order
	Warnings []string // Parse problems, parsing continues after them
}

// WalkFunc is called for every declaration visited by Walk.
type WalkFunc func(rule *Rule, decl *Declaration)

// Walk visits every declaration of every style rule in document order,
// descending into nested rule lists. Declarations of @font-face like blocks
// are not visited as they do not belong to a rule. Walk iterates over a
// snapshot, so fn may insert declarations into the rule it is given.
func (s *Stylesheet) Walk(fn WalkFunc) {
	walkItems(slices.Clone(s.Items), fn)
}

func walkItems(items []*Item, fn WalkFunc) {
	for _, item := range items {
		switch {
		case item.Rule != nil:
			for _, d := range slices.Clone(item.Rule.Declarations) {
				fn(item.Rule, d)
			}
		case item.AtRule != nil && item.AtRule.Block:
			walkItems(slices.Clone(item.AtRule.Items), fn)
		}
	}
}

// FindRule returns first top-level rule with exactly matching selector.
func (s *Stylesheet) FindRule(selector string) *Rule {
	for _, item := range s.Items {
		if item.Rule != nil && item.Rule.Selector == selector {
			return item.Rule
		}
	}
	return nil
}

// Prologue returns number of leading items which must stay in front of any
// rule: @charset, @import, @layer statements and comments between them.
func (s *Stylesheet) Prologue() int {
	n := 0
loop:
	for i, item := range s.Items {
		switch {
		case item.Comment != nil:
		case item.AtRule != nil && !item.AtRule.Block && isPrologueAtRule(item.AtRule.Name):
			n = i + 1
		default:
			break loop
		}
	}
	return n
}

func isPrologueAtRule(name string) bool {
	switch name {
	case "@charset", "@import", "@layer", "@namespace":
		return true
	}
	return false
}

// Insert puts item at position i of top-level items.
func (s *Stylesheet) Insert(i int, item *Item) {
	i = max(0, min(i, len(s.Items)))
	s.Items = slices.Insert(s.Items, i, item)
}

// Append adds item at the end of the stylesheet.
func (s *Stylesheet) Append(item *Item) {
	s.Items = append(s.Items, item)
}

// Rules returns all style rules of the stylesheet including nested ones in
// document order.
func (s *Stylesheet) Rules() []*Rule {
	var rules []*Rule
	var collect func(items []*Item)
	collect = func(items []*Item) {
		for _, item := range items {
			switch {
			case item.Rule != nil:
				rules = append(rules, item.Rule)
			case item.AtRule != nil:
				collect(item.AtRule.Items)
			}
		}
	}
	collect(s.Items)
	return rules
}

// RulesBySelector returns all rules (nested included) matching the given
// selector string.
func (s *Stylesheet) RulesBySelector(selector string) []*Rule {
	var matches []*Rule
	for _, r := range s.Rules() {
		if r.Selector == selector {
			matches = append(matches, r)
		}
	}
	return matches
}
