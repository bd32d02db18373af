package icons

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"text/template"
	"unicode/utf8"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"

	"svgvar/common"
)

// KeyFunc maps icon name to suffix of its variable name. It must be total and
// deterministic: same name always produces the same non-empty key.
type KeyFunc func(name string) string

var separators = strings.NewReplacer("/", "-", `\`, "-")

// DashesKey replaces path separators with dashes: "arrows/right" becomes
// "arrows-right".
func DashesKey(name string) string {
	return separators.Replace(name)
}

// SlugKey transliterates name into lower-case ASCII slug. Names which
// produce empty slug fall back to DashesKey.
func SlugKey(name string) string {
	if key := slug.Make(name); key != "" {
		return key
	}
	return DashesKey(name)
}

// KeyValues is available to key templates.
type KeyValues struct {
	Name string // icon name as written
	Dir  string // directory part of the name, "" when there is none
	Base string // last segment of the name
}

// TemplateKey builds KeyFunc from text/template with sprig functions.
// Execution errors and empty results fall back to DashesKey, so returned
// function stays total.
func TemplateKey(text string) (KeyFunc, error) {
	tmpl, err := template.New("key").Funcs(sprig.FuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("unable to parse key template: %w", err)
	}
	return func(name string) string {
		slashed := strings.ReplaceAll(name, `\`, "/")
		values := KeyValues{Name: name, Base: path.Base(slashed)}
		if dir := path.Dir(slashed); dir != "." {
			values.Dir = dir
		}
		buf := new(bytes.Buffer)
		if err := tmpl.Execute(buf, values); err != nil {
			return DashesKey(name)
		}
		if key := strings.TrimSpace(buf.String()); key != "" {
			return key
		}
		return DashesKey(name)
	}, nil
}

// NewKeyFunc returns KeyFunc for one of the built-in strategies.
func NewKeyFunc(strategy common.KeyStrategy, text string) (KeyFunc, error) {
	switch strategy {
	case common.KeyStrategyDashes:
		return DashesKey, nil
	case common.KeyStrategySlug:
		return SlugKey, nil
	case common.KeyStrategyTemplate:
		return TemplateKey(text)
	}
	return nil, fmt.Errorf("unknown key strategy %d", strategy)
}

// KeyError is reported when icon name does not produce a usable custom
// property name, "a,b" or "a b" for instance.
type KeyError struct {
	Name     string
	Variable string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("icon %q maps to invalid custom property name %q", e.Name, e.Variable)
}

// validVariable reports whether s is a custom property name which can be
// written without escapes.
func validVariable(s string) bool {
	rest, ok := strings.CutPrefix(s, "--")
	if !ok {
		return false
	}
	for _, r := range rest {
		switch {
		case r >= 0x80 && r != utf8.RuneError:
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		case r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
