package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"svgvar/common"
	"svgvar/icons"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	VariablesConfig struct {
		Selector    string                `yaml:"selector" validate:"required"`
		Position    common.InsertPosition `yaml:"position" validate:"gte=0"`
		Overwrite   bool                  `yaml:"overwrite"`
		Prefix      string                `yaml:"prefix" validate:"required,startswith=--"`
		KeyStrategy common.KeyStrategy    `yaml:"key_strategy" validate:"gte=0"`
		KeyTemplate string                `yaml:"key_template"`
	}

	MaskConfig struct {
		DefaultColor            string `yaml:"default_color" validate:"required"`
		Repeat                  string `yaml:"repeat"`
		Size                    string `yaml:"size"`
		Position                string `yaml:"position"`
		PreserveBackgroundColor bool   `yaml:"preserve_background_color"`
	}

	RewriteConfig struct {
		IconsRoot    string          `yaml:"icons_root" sanitize:"path_clean"`
		Extension    string          `yaml:"extension" validate:"required,startswith=."`
		Function     string          `yaml:"function" validate:"required,excludesall=()"`
		VarFunction  string          `yaml:"var_function" validate:"omitempty,excludesall=()"`
		ForceVarOnly bool            `yaml:"force_var_only"`
		Properties   []string        `yaml:"properties" validate:"min=1,dive,required"`
		Concurrency  int             `yaml:"concurrency" validate:"gte=0"`
		Variables    VariablesConfig `yaml:"variables"`
		Mask         MaskConfig      `yaml:"mask"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Rewrite   RewriteConfig  `yaml:"rewrite"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	KeyTemplateFieldName TemplateFieldName = "key_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(KeyTemplateFieldName)),
)

// validateRewrite checks relations between fields tags cannot express.
func validateRewrite(sl validator.StructLevel) {
	rc := sl.Current().Interface().(RewriteConfig)
	if rc.VarFunction != "" && rc.VarFunction == rc.Function {
		sl.ReportError(rc.VarFunction, "VarFunction", "var_function", "nefield", "Function")
	}
	if rc.Variables.KeyStrategy == common.KeyStrategyTemplate && rc.Variables.KeyTemplate == "" {
		sl.ReportError(rc.Variables.KeyTemplate, "KeyTemplate", "key_template", "required_if", "KeyStrategy template")
	}
}

var checker = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateRewrite, RewriteConfig{})
	return v
}()

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
		if err := checker.Struct(cfg.Rewrite); err != nil {
			return nil, fmt.Errorf("failed to validate rewrite configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration tamplate to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

// Options converts rewrite configuration into library options. Icons root is
// left empty when not configured so library default applies.
func (conf *RewriteConfig) Options() (icons.Options, error) {
	opts := icons.DefaultOptions()

	keyFn, err := icons.NewKeyFunc(conf.Variables.KeyStrategy, conf.Variables.KeyTemplate)
	if err != nil {
		return opts, err
	}

	opts.Root = conf.IconsRoot
	opts.Extension = conf.Extension
	opts.Function = conf.Function
	opts.VarFunction = conf.VarFunction
	opts.ForceVarOnly = conf.ForceVarOnly
	opts.Selector = conf.Variables.Selector
	opts.Position = conf.Variables.Position
	opts.Overwrite = conf.Variables.Overwrite
	opts.Prefix = conf.Variables.Prefix
	opts.NameToKey = keyFn
	opts.DefaultColor = conf.Mask.DefaultColor
	opts.MaskRepeat = conf.Mask.Repeat
	opts.MaskSize = conf.Mask.Size
	opts.MaskPosition = conf.Mask.Position
	opts.PreserveBackgroundColor = conf.Mask.PreserveBackgroundColor
	opts.Properties = append([]string(nil), conf.Properties...)
	if conf.Concurrency > 0 {
		opts.Concurrency = conf.Concurrency
	}
	return opts, nil
}
