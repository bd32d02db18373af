package svg

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// Prefixes conventionally used by vector editors for their private markup.
var editorPrefixes = []string{"inkscape", "sodipodi", "sketch", "serif", "figma"}

// Namespace URIs of the same editors, used to catch non-standard prefixes.
var editorNamespaces = []string{
	"http://www.inkscape.org/namespaces/inkscape",
	"http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd",
	"http://www.bohemiancoding.com/sketch/ns",
	"http://www.serif.com/",
	"https://www.figma.com/",
}

// Elements which never affect rendering, removed with all their content.
var descriptiveElements = []string{"metadata", "title", "desc"}

var errNoRoot = errors.New("no root element")

// sanitizeTree strips non-rendering markup using XML DOM. Returns error when
// data is not well formed enough to be parsed.
func sanitizeTree(data []byte) (string, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	doc.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return "", err
	}
	if doc.Root() == nil {
		return "", errNoRoot
	}

	prefixes := slices.Clone(editorPrefixes)
	collectEditorPrefixes(doc.Root(), &prefixes)

	cleanElement(&doc.Element, prefixes)
	return doc.WriteToString()
}

// collectEditorPrefixes adds prefixes bound to editor namespace URIs anywhere
// in the tree.
func collectEditorPrefixes(e *etree.Element, prefixes *[]string) {
	for _, a := range e.Attr {
		if a.Space == "xmlns" && slices.Contains(editorNamespaces, a.Value) && !slices.Contains(*prefixes, a.Key) {
			*prefixes = append(*prefixes, a.Key)
		}
	}
	for _, child := range e.ChildElements() {
		collectEditorPrefixes(child, prefixes)
	}
}

func cleanElement(e *etree.Element, prefixes []string) {
	e.Attr = slices.DeleteFunc(e.Attr, func(a etree.Attr) bool {
		return dropAttr(a, prefixes)
	})
	// writer turns line breaks and tabs in values into character references,
	// collapse them before that
	for i := range e.Attr {
		e.Attr[i].Value = strings.Join(strings.Fields(e.Attr[i].Value), " ")
	}
	for i := len(e.Child) - 1; i >= 0; i-- {
		switch t := e.Child[i].(type) {
		case *etree.Comment, *etree.Directive:
			e.RemoveChildAt(i)
		case *etree.ProcInst:
			if strings.EqualFold(t.Target, "xml") {
				e.RemoveChildAt(i)
			}
		case *etree.Element:
			if dropElement(t, prefixes) {
				e.RemoveChildAt(i)
				continue
			}
			cleanElement(t, prefixes)
		}
	}
}

func dropElement(e *etree.Element, prefixes []string) bool {
	if slices.Contains(prefixes, e.Space) {
		return true
	}
	return slices.Contains(descriptiveElements, strings.ToLower(e.Tag))
}

func dropAttr(a etree.Attr, prefixes []string) bool {
	switch {
	case a.Space == "xmlns":
		return slices.Contains(prefixes, a.Key)
	case a.Space != "":
		return slices.Contains(prefixes, a.Space)
	case a.Key == "id":
		return true
	case strings.HasPrefix(a.Key, "data-"):
		return true
	}
	return false
}

// Regular expression rendition of the same rules for markup DOM parser
// refuses. Go regexp has no back references, so paired elements are matched
// per tag name.
var (
	prologRe   = regexp.MustCompile(`(?is)^\s*<\?xml\b.*?\?>`)
	doctypeRe  = regexp.MustCompile(`(?is)<!DOCTYPE[^>\[]*(?:\[.*?\])?\s*>`)
	commentRe  = regexp.MustCompile(`(?s)<!--.*?-->`)
	elementRes = func() []*regexp.Regexp {
		var res []*regexp.Regexp
		for _, tag := range descriptiveElements {
			res = append(res, regexp.MustCompile(`(?is)<(?:[\w.-]+:)?`+tag+`\b[^>]*?/>|<(?:[\w.-]+:)?`+tag+`\b[^>]*>.*?</(?:[\w.-]+:)?`+tag+`\s*>`))
		}
		editors := strings.Join(editorPrefixes, "|")
		res = append(res,
			regexp.MustCompile(`(?is)<(?:`+editors+`):[\w.-]+\b[^>]*?/>`),
			regexp.MustCompile(`(?is)<(?:`+editors+`):[\w.-]+\b[^>]*>.*?</(?:`+editors+`):[\w.-]+\s*>`),
		)
		return res
	}()
	tagRe  = regexp.MustCompile(`<[A-Za-z_][^>]*>`)
	attrRe = regexp.MustCompile(`\s+(?:(?:xmlns:)?(?:` + strings.Join(editorPrefixes, "|") + `)(?::[\w.-]+)?|id|data-[\w.:-]*)\s*=\s*(?:"[^"]*"|'[^']*')`)
)

// sanitizeText strips non-rendering markup from text which could not be
// parsed as XML.
func sanitizeText(s string) string {
	s = prologRe.ReplaceAllString(s, "")
	s = doctypeRe.ReplaceAllString(s, "")
	s = commentRe.ReplaceAllString(s, "")
	for _, re := range elementRes {
		s = re.ReplaceAllString(s, "")
	}
	return tagRe.ReplaceAllStringFunc(s, func(tag string) string {
		return attrRe.ReplaceAllString(tag, "")
	})
}
