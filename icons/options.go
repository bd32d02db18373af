package icons

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/multierr"

	"svgvar/common"
)

// Options controls Rewriter. Use DefaultOptions as a starting point, zero
// value is not usable.
type Options struct {
	// Root is directory icons are resolved against, empty means "icons"
	// under current working directory.
	Root string
	// Extension is appended to icon names.
	Extension string
	// Function is recognized for full rewrite in Properties.
	Function string
	// VarFunction is recognized in any property and replaced with variable
	// reference only. Empty disables it.
	VarFunction string
	// ForceVarOnly makes Function behave as VarFunction.
	ForceVarOnly bool

	// Selector of the rule holding icon variables.
	Selector string
	// Position of variables rule when it has to be created.
	Position common.InsertPosition
	// Overwrite replaces values of already declared variables.
	Overwrite bool
	// Prefix of generated variable names.
	Prefix string
	// NameToKey maps icon name to variable name suffix.
	NameToKey KeyFunc

	DefaultColor string
	MaskRepeat   string
	MaskSize     string
	MaskPosition string // empty - not injected

	// Properties eligible for full rewrite.
	Properties []string
	// PreserveBackgroundColor skips background-color injection when rule
	// already has one.
	PreserveBackgroundColor bool

	// Loader reads icons, nil means DirLoader(Root).
	Loader Loader
	// Concurrency limits number of icons loaded at once, <= 0 means number
	// of CPUs.
	Concurrency int
}

// DefaultOptions returns options with all defaults set.
func DefaultOptions() Options {
	return Options{
		Extension:               ".svg",
		Function:                "svg",
		VarFunction:             "svg-var",
		Selector:                ":root",
		Position:                common.InsertPositionStart,
		Prefix:                  "--icon-",
		NameToKey:               DashesKey,
		DefaultColor:            "currentColor",
		MaskRepeat:              "no-repeat",
		MaskSize:                "100% 100%",
		Properties:              []string{"mask-image", "mask"},
		PreserveBackgroundColor: true,
		Concurrency:             runtime.NumCPU(),
	}
}

func (o *Options) validate() (err error) {
	if o.Function == "" {
		err = multierr.Append(err, errors.New("function name must not be empty"))
	}
	if o.VarFunction != "" && o.VarFunction == o.Function {
		err = multierr.Append(err, fmt.Errorf("variable-only function must differ from function %q", o.Function))
	}
	if strings.ContainsAny(o.Function+o.VarFunction, "() \t\n") {
		err = multierr.Append(err, errors.New("function names must not contain parentheses or spaces"))
	}
	if strings.TrimSpace(o.Selector) == "" {
		err = multierr.Append(err, errors.New("variables selector must not be empty"))
	}
	if !strings.HasPrefix(o.Prefix, "--") {
		err = multierr.Append(err, fmt.Errorf("variable prefix %q must start with \"--\"", o.Prefix))
	}
	if !o.Position.IsValid() {
		err = multierr.Append(err, fmt.Errorf("invalid variables position %d", o.Position))
	}
	return err
}
