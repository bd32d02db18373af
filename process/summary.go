package process

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"svgvar/icons"
	"svgvar/utils/debug"
)

type fileResult struct {
	rewritten int
	declared  int
	warnings  int
	changed   bool
	err       error
}

// summary accumulates per stylesheet results of a single invocation.
type summary struct {
	files map[string]fileResult
}

func newSummary() *summary {
	return &summary{files: make(map[string]fileResult)}
}

func (s *summary) add(src string, res *icons.Result, err error) {
	fr := fileResult{err: err}
	if res != nil {
		fr.rewritten, fr.declared, fr.warnings, fr.changed = res.Rewritten, res.Declared, len(res.Warnings), res.Changed
	}
	if _, exists := s.files[src]; exists {
		// same relative path from different archives or directories
		src = fmt.Sprintf("%s (%d)", src, len(s.files))
	}
	s.files[src] = fr
}

// failed returns combined errors of all stylesheets which were not processed.
func (s *summary) failed() (err error) {
	for _, name := range debug.SortedKeys(s.files) {
		if fr := s.files[name]; fr.err != nil {
			err = multierr.Append(err, fr.err)
		}
	}
	return err
}

func (s *summary) report(log *zap.Logger) {
	if len(s.files) == 0 {
		log.Info("Nothing was processed")
		return
	}

	var changed, rewritten, warnings int
	for _, name := range debug.SortedKeys(s.files) {
		fr := s.files[name]
		if fr.err != nil {
			continue
		}
		if fr.changed {
			changed++
		}
		rewritten += fr.rewritten
		warnings += fr.warnings
		log.Debug("Stylesheet", zap.String("name", name),
			zap.Int("rewritten", fr.rewritten), zap.Int("declared", fr.declared), zap.Int("warnings", fr.warnings))
	}

	errs := multierr.Errors(s.failed())
	log.Info("Processing summary",
		zap.Int("stylesheets", len(s.files)), zap.Int("changed", changed), zap.Int("rewritten", rewritten),
		zap.Int("warnings", warnings), zap.Int("failed", len(errs)))
	if len(errs) > 0 {
		log.Error("Some stylesheets were not processed", zap.Errors("errors", errs))
	}
}
