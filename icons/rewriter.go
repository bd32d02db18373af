// Package icons rewrites icon function calls in stylesheets into mask
// properties referencing shared custom properties with embedded SVG data.
//
// A pass over one stylesheet goes through the following stages:
//
//   - scanning: every declaration is checked for a call, distinct icon names
//     are registered and resolved against icons root;
//   - rewriting: call sites are replaced with var() references and mask
//     properties are injected around them;
//   - resolving: icons are loaded and encoded concurrently;
//   - injecting: encoded icons are declared once in the variables rule.
//
// Problems with individual icons never fail the pass, they are reported as
// warnings.
package icons

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"svgvar/common"
	"svgvar/css"
	"svgvar/svg"
)

// Rewriter holds configuration only and may be used concurrently for
// different stylesheets.
type Rewriter struct {
	opts  Options
	root  string
	props map[string]bool
	log   *zap.Logger
}

// New validates options and prepares Rewriter.
func New(opts Options, log *zap.Logger) (*Rewriter, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	root := opts.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("unable to get working directory: %w", err)
		}
		root = filepath.Join(wd, "icons")
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve icons root: %w", err)
	}
	opts.Root = root

	if opts.NameToKey == nil {
		opts.NameToKey = DashesKey
	}
	if opts.Loader == nil {
		opts.Loader = DirLoader(root)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultOptions().Concurrency
	}

	props := make(map[string]bool, len(opts.Properties))
	for _, p := range opts.Properties {
		props[strings.ToLower(strings.TrimSpace(p))] = true
	}

	return &Rewriter{
		opts:  opts,
		root:  root,
		props: props,
		log:   log.Named("icons"),
	}, nil
}

// Root returns absolute icons root.
func (r *Rewriter) Root() string {
	return r.root
}

// site is a declaration holding recognized call.
type site struct {
	rule    *css.Rule
	decl    *css.Declaration
	call    Call
	varOnly bool
}

// pass is state of processing of a single stylesheet.
type pass struct {
	*Rewriter
	log      *zap.Logger
	requests *requestSet
	result   *Result
}

// Process rewrites icon calls in sheet in place. Returned error is only
// non-nil when ctx is canceled, problems with icons are reported in
// Result.Warnings.
func (r *Rewriter) Process(ctx context.Context, sheet *css.Stylesheet) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	p := &pass{
		Rewriter: r,
		log:      r.log.With(zap.Stringer("pass", id)),
		requests: newRequestSet(),
		result:   &Result{Pass: id.String()},
	}

	sites := p.scan(sheet)
	for _, s := range sites {
		p.rewrite(s)
	}
	p.log.Debug("Scanned stylesheet", zap.Int("sites", len(sites)), zap.Int("requests", p.requests.len()))

	if err := p.resolve(ctx); err != nil {
		return nil, err
	}
	p.inject(sheet)

	p.result.Requests = p.requests.order
	p.result.Changed = p.result.Rewritten > 0 || p.result.Declared > 0
	for _, w := range p.result.Warnings {
		p.log.Warn("Icon skipped", zap.String("icon", w.Name), zap.Error(w.Err))
	}
	p.log.Debug("Pass complete",
		zap.Int("rewritten", p.result.Rewritten),
		zap.Int("declared", p.result.Declared),
		zap.Int("warnings", len(p.result.Warnings)))
	return p.result, nil
}

// scan collects call sites in document order and registers icons they
// reference.
func (p *pass) scan(sheet *css.Stylesheet) []site {
	var sites []site
	sheet.Walk(func(rule *css.Rule, decl *css.Declaration) {
		call, varOnly, ok := p.match(decl)
		if !ok {
			return
		}
		sites = append(sites, site{rule: rule, decl: decl, call: call, varOnly: varOnly})
	})
	return sites
}

// match checks declaration for a call. Variable-only calls are recognized in
// any property, full calls only in configured properties.
func (p *pass) match(decl *css.Declaration) (Call, bool, bool) {
	if fn := p.opts.VarFunction; fn != "" && strings.Contains(decl.Value, fn+"(") {
		if call, ok := ParseCall(decl.Value, fn); ok {
			return call, true, true
		}
	}
	if !strings.Contains(decl.Value, p.opts.Function+"(") {
		return Call{}, false, false
	}
	if p.opts.ForceVarOnly {
		call, ok := ParseCall(decl.Value, p.opts.Function)
		return call, true, ok
	}
	if !p.props[decl.Property] {
		return Call{}, false, false
	}
	call, ok := ParseCall(decl.Value, p.opts.Function)
	return call, false, ok
}

// register returns request for icon name creating it on first reference.
// Path is resolved once, escape or unusable key is reported once per name.
func (p *pass) register(name string) *Request {
	if req, ok := p.requests.get(name); ok {
		req.Refs++
		return req
	}

	key := p.opts.NameToKey(name)
	req := &Request{Name: name, Key: key, Variable: p.opts.Prefix + key, Refs: 1}
	path, err := ResolvePath(p.root, name, p.opts.Extension)
	if err == nil {
		var rel string
		if rel, err = filepath.Rel(p.root, path); err == nil {
			req.Path, req.rel = path, filepath.ToSlash(rel)
		}
	}
	if err == nil && !validVariable(req.Variable) {
		err = &KeyError{Name: name, Variable: req.Variable}
	}
	if err != nil {
		req.Err = err
		p.warn(name, err)
	}
	p.requests.add(req)
	return req
}

func (p *pass) warn(name string, err error) {
	p.result.Warnings = append(p.result.Warnings, Warning{Name: name, Err: err})
}

// rewrite replaces call with variable reference. In full mode it also puts
// background-color before the declaration and mask properties after it.
func (p *pass) rewrite(s site) {
	req := p.register(s.call.Name)
	var (
		escape *PathEscapeError
		badKey *KeyError
	)
	if errors.As(req.Err, &escape) || errors.As(req.Err, &badKey) {
		return
	}
	p.result.Rewritten++

	if s.varOnly {
		s.decl.Value = "var(" + req.Variable + ")"
		return
	}

	rule, decl := s.rule, s.decl
	if !p.opts.PreserveBackgroundColor || !rule.Has("background-color") {
		color := p.opts.DefaultColor
		if s.call.HasColor {
			color = s.call.Color
		}
		rule.InsertBefore(decl, &css.Declaration{Property: "background-color", Value: color})
	}

	// Shorthand keeps image only, repeat, size and position are set below.
	vendor, base := splitVendor(decl.Property)
	if base == "mask" {
		decl.Property = vendor + "mask-image"
	}
	decl.Value = "var(" + req.Variable + ")"

	anchor := decl
	for _, prop := range []struct{ name, value string }{
		{"mask-repeat", p.opts.MaskRepeat},
		{"mask-size", p.opts.MaskSize},
		{"mask-position", p.opts.MaskPosition},
	} {
		name := vendor + prop.name
		if prop.value == "" || rule.Has(name) {
			continue
		}
		d := &css.Declaration{Property: name, Value: prop.value}
		rule.InsertAfter(anchor, d)
		anchor = d
	}
}

// splitVendor splits "-webkit-mask" into "-webkit-" and "mask".
func splitVendor(property string) (string, string) {
	if !strings.HasPrefix(property, "-") || strings.HasPrefix(property, "--") {
		return "", property
	}
	if i := strings.IndexByte(property[1:], '-'); i >= 0 {
		return property[:i+2], property[i+2:]
	}
	return "", property
}

// resolve loads and encodes every pending icon. Icons are independent,
// each task writes only its own request.
func (p *pass) resolve(ctx context.Context) error {
	pending := p.requests.pending()
	if len(pending) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for _, req := range pending {
		g.Go(func() error {
			data, err := p.opts.Loader.Load(gctx, req.rel)
			if err == nil {
				req.Encoded, err = svg.Encode(data)
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				req.Err = &LoadError{Name: req.Name, Path: req.Path, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, req := range pending {
		if req.Err != nil {
			p.warn(req.Name, req.Err)
		} else {
			p.log.Debug("Icon encoded", zap.String("icon", req.Name), zap.Int("bytes", len(req.Encoded)))
		}
	}
	return ctx.Err()
}

// inject declares encoded icons in variables rule creating it when needed.
func (p *pass) inject(sheet *css.Stylesheet) {
	if p.requests.len() == 0 {
		return
	}

	block := sheet.FindRule(p.opts.Selector)
	owners := make(map[string]string)
	for _, req := range p.requests.order {
		if req.Encoded == "" {
			continue
		}
		if owner, ok := owners[req.Variable]; ok {
			p.warn(req.Name, fmt.Errorf("variable %s is already used by icon %q, keeping it", req.Variable, owner))
			continue
		}
		owners[req.Variable] = req.Name

		value := css.URL(req.Encoded)
		if block == nil {
			block = p.createBlock(sheet)
		}
		if d := block.Find(req.Variable); d != nil {
			if p.opts.Overwrite && d.Value != value {
				d.Value = value
				p.result.Declared++
			}
			continue
		}
		block.Append(&css.Declaration{Property: req.Variable, Value: value})
		p.result.Declared++
	}
}

func (p *pass) createBlock(sheet *css.Stylesheet) *css.Rule {
	block := css.NewRule(p.opts.Selector)
	item := &css.Item{Rule: block}
	switch p.opts.Position {
	case common.InsertPositionEnd:
		sheet.Append(item)
	default:
		sheet.Insert(sheet.Prologue(), item)
	}
	p.log.Debug("Variables rule created", zap.String("selector", p.opts.Selector), zap.Stringer("position", p.opts.Position))
	return block
}
