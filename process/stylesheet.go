package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"

	"svgvar/css"
	"svgvar/icons"
	"svgvar/state"
	"svgvar/svg"
	"svgvar/utils/images"
)

// previewSize is side of the square PNG previews put into debug report.
const previewSize = 64

// processor carries everything needed to rewrite stylesheets of a single
// invocation.
type processor struct {
	env    *state.LocalEnv
	rw     *icons.Rewriter
	parser *css.Parser
	stats  *summary
	log    *zap.Logger

	previewed map[string]bool // icon paths already rendered into report
}

func newProcessor(env *state.LocalEnv, rw *icons.Rewriter, log *zap.Logger) *processor {
	return &processor{
		env:    env,
		rw:     rw,
		parser: css.NewParser(log),
		stats:  newSummary(),
		log:    log,

		previewed: make(map[string]bool),
	}
}

// rewrite runs a single pass over stylesheet data. When nothing was changed
// original data is returned as is so unrelated formatting survives.
func (p *processor) rewrite(ctx context.Context, data []byte, src string) ([]byte, *icons.Result, error) {
	decoded, enc, err := css.DecodeSource(data)
	if err != nil {
		return nil, nil, err
	}
	if enc != "utf-8" {
		p.log.Debug("Stylesheet decoded", zap.String("from", src), zap.String("charset", enc))
	}

	sheet := p.parser.Parse(decoded, src)
	for _, w := range sheet.Warnings {
		p.log.Warn("Stylesheet syntax problem", zap.String("from", src), zap.String("details", w))
	}

	res, err := p.rw.Process(ctx, sheet)
	if err != nil {
		return nil, nil, err
	}
	p.inspect(src, res)

	if !res.Changed {
		return data, res, nil
	}
	return []byte(sheet.String()), res, nil
}

// processStylesheet processes single stylesheet. "src" is the path relative
// to the source root (base name for a single file, relative path for files
// found in directories or archives), "dst" is the destination directory.
func (p *processor) processStylesheet(ctx context.Context, r io.Reader, src, dst string) (rerr error) {
	var (
		outputName string
		res        *icons.Result
	)

	p.log.Info("Processing starting", zap.String("from", src))
	defer func(start time.Time) {
		// rasterizer used for previews is not the most mature code
		if r := recover(); r != nil {
			p.log.Error("Processing ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("processing panic: %v", r)
		} else if rerr == nil {
			p.log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.Stringer("result", resultSummary{res}))
		}
		p.stats.add(src, res, rerr)
	}(time.Now())

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("unable to read stylesheet (%s): %w", src, err)
	}

	out, res, err := p.rewrite(ctx, data, src)
	if err != nil {
		return fmt.Errorf("unable to rewrite stylesheet (%s): %w", src, err)
	}

	if p.env.DryRun {
		outputName = "(dry run)"
		return nil
	}

	outputName = buildOutputPath(src, dst, p.env)
	if err := writeOutput(outputName, out, p.env, p.log); err != nil {
		return err
	}

	if p.env.Rpt != nil {
		p.env.Rpt.StoreData(path.Join("results", filepath.ToSlash(src)), out)
	}
	return nil
}

// inspect puts pass details into debug report and checks that icons could
// be used as masks.
func (p *processor) inspect(src string, res *icons.Result) {
	if p.env.Rpt == nil && !p.log.Core().Enabled(zap.DebugLevel) {
		return
	}

	if p.env.Rpt != nil {
		p.env.Rpt.StoreData(path.Join("passes", filepath.ToSlash(src)+".txt"), []byte(res.String()))
	}

	for _, req := range res.Requests {
		if req.Encoded == "" {
			continue
		}
		markup, err := decodeDataURI(req.Encoded)
		if err != nil {
			p.log.Debug("Unable to decode icon", zap.String("icon", req.Name), zap.Error(err))
			continue
		}

		img, err := images.RasterizeSVGToImage(markup, previewSize, previewSize)
		if err != nil {
			p.log.Debug("Unable to render icon", zap.String("icon", req.Name), zap.Error(err))
			continue
		}
		if !images.Monochrome(img) {
			p.log.Debug("Icon is not monochrome, masking keeps its shape only", zap.String("icon", req.Name), zap.String("path", req.Path))
		}

		if p.env.Rpt == nil || p.previewed[req.Path] {
			continue
		}
		p.previewed[req.Path] = true
		png, err := images.Preview(markup, previewSize)
		if err != nil {
			p.log.Debug("Unable to prepare icon preview", zap.String("icon", req.Name), zap.Error(err))
			continue
		}
		p.env.Rpt.StoreData(path.Join("previews", req.Key+".png"), png)
	}
}

// decodeDataURI returns markup from data URI produced by svg.Encode.
func decodeDataURI(uri string) ([]byte, error) {
	text, ok := strings.CutPrefix(uri, svg.Prefix)
	if !ok {
		return nil, fmt.Errorf("unexpected data URI prefix")
	}
	markup, err := url.PathUnescape(text)
	if err != nil {
		return nil, err
	}
	return []byte(markup), nil
}

// resultSummary is compact representation of a pass for log records.
type resultSummary struct {
	res *icons.Result
}

func (s resultSummary) String() string {
	if s.res == nil {
		return "none"
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d rewritten, %d declared, %d icons", s.res.Rewritten, s.res.Declared, len(s.res.Requests))
	if n := len(s.res.Warnings); n > 0 {
		fmt.Fprintf(&buf, ", %d warnings", n)
	}
	return buf.String()
}
