// Package state defines shared program state.
package state

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"svgvar/config"
	"svgvar/icons"
)

type envKey struct{}

var errConfigMissing = errors.New("configuration is not loaded")

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by process subcommand, override configuration
	IconsRoot    string
	ForceVarOnly bool
	NoDirs       bool
	Overwrite    bool
	DryRun       bool
	CodePage     encoding.Encoding

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// RewriteOptions returns library options from configuration with command
// line overrides applied.
func (e *LocalEnv) RewriteOptions() (icons.Options, error) {
	if e.Cfg == nil {
		return icons.Options{}, errConfigMissing
	}
	opts, err := e.Cfg.Rewrite.Options()
	if err != nil {
		return opts, err
	}
	if e.IconsRoot != "" {
		opts.Root = e.IconsRoot
	}
	if e.ForceVarOnly {
		opts.ForceVarOnly = true
	}
	return opts, nil
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
