// Package process implements "process" command: rewriting stylesheets found
// in files, directories, zip archives or read from standard input.
package process

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"svgvar/archive"
	"svgvar/icons"
	"svgvar/state"
)

// StdinSource as SOURCE reads stylesheet from standard input and writes
// result to standard output.
const StdinSource = "-"

// stdinName is used for stylesheet read from standard input in logs and report.
const stdinName = "stdin.css"

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("process")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}

	env.IconsRoot = cmd.String("root")
	env.ForceVarOnly = cmd.Bool("force-var-only")
	env.NoDirs, env.Overwrite, env.DryRun = cmd.Bool("nodirs"), cmd.Bool("overwrite"), cmd.Bool("dry-run")

	opts, err := env.RewriteOptions()
	if err != nil {
		return fmt.Errorf("unable to prepare rewrite options: %w", err)
	}
	rw, err := icons.New(opts, env.Log)
	if err != nil {
		return fmt.Errorf("unable to prepare rewriter: %w", err)
	}
	p := newProcessor(env, rw, log)

	if src == StdinSource {
		if cmd.Args().Len() > 1 {
			log.Warn("Mailformed command line, destination is ignored when reading standard input", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
		}
		root := cmd.Root()
		return p.processStream(ctx, root.Reader, root.Writer)
	}

	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst),
		zap.String("icons", rw.Root()), zap.Bool("dry-run", env.DryRun))
	defer func(start time.Time) {
		p.stats.report(log)
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return p.process(ctx, src, dst)
}

// processStream rewrites single stylesheet from r to w.
func (p *processor) processStream(ctx context.Context, r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("unable to read standard input: %w", err)
	}
	out, res, err := p.rewrite(ctx, data, stdinName)
	p.stats.add(stdinName, res, err)
	if err != nil {
		return fmt.Errorf("unable to rewrite stylesheet: %w", err)
	}
	p.log.Debug("Processing completed", zap.Stringer("result", resultSummary{res}))
	if p.env.DryRun {
		return nil
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("unable to write standard output: %w", err)
	}
	return nil
}

// process determines the input type (directory, archive with optional path
// inside, or single file) and processes accordingly.
func (p *processor) process(ctx context.Context, src, dst string) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := p.processDir(ctx, head, dst); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := p.processArchive(ctx, head, filepath.ToSlash(tail), filepath.Base(head), dst); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		isStylesheet, err := isStylesheetFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if isStylesheet && len(tail) == 0 {
			if file, err := os.Open(head); err != nil {
				p.log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			} else {
				defer file.Close()
				if err := p.processStylesheet(ctx, file, filepath.Base(head), dst); err != nil {
					p.log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
				}
			}
			break
		}
		return fmt.Errorf("input was not recognized as stylesheet (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding stylesheets and archives and
// processes them. Destination directory is skipped when it is located inside
// the source tree.
func (p *processor) processDir(ctx context.Context, dir, dst string) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			p.log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			p.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if path == dst && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		isArchive, err := isArchiveFile(path)
		if err != nil {
			p.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			count++
			if err := p.processArchive(ctx, path, "", rel, dst); err != nil {
				p.log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		isStylesheet, err := isStylesheetFile(path)
		if err != nil {
			p.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !isStylesheet {
			p.log.Debug("Skipping file, not recognized as stylesheet or archive", zap.String("file", path))
			return nil
		}

		count++

		file, err := os.Open(path)
		if err != nil {
			p.log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		if err := p.processStylesheet(ctx, file, rel, dst); err != nil {
			p.log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
	return err
}

// processArchive rewrites stylesheets inside archive under "pathIn" producing
// new archive. "src" is archive path relative to the source root.
func (p *processor) processArchive(ctx context.Context, path, pathIn, src, dst string) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			p.log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	if p.env.DryRun {
		return archive.Walk(path, pathIn, isStylesheetName, func(archive string, f *zip.File) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++

			r, err := f.Open()
			if err != nil {
				p.log.Error("Unable to process file in archive",
					zap.String("archive", archive), zap.String("file", f.Name), zap.Error(err))
				return nil
			}
			defer r.Close()

			name := entryName(f.Name, f.NonUTF8, p.env, p.log)
			if err := p.processStylesheet(ctx, r, filepath.Join(src, name), dst); err != nil {
				p.log.Error("Unable to process file in archive",
					zap.String("archive", archive), zap.String("file", f.Name), zap.Error(err))
			}
			return nil
		})
	}

	outputName := buildOutputPath(src, dst, p.env)
	if outputName == path {
		return fmt.Errorf("archive cannot be rewritten in place (%s)", path)
	}
	if err := prepareOutput(outputName, p.env, p.log); err != nil {
		return err
	}

	p.log.Info("Processing starting", zap.String("from", src))
	replaced, err := archive.Rewrite(path, outputName, pathIn, isStylesheetName, func(name string, r io.Reader) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		count++

		entry := filepath.Join(src, entryName(name, false, p.env, p.log))
		out, err := p.rewriteEntry(ctx, r, entry)
		if err != nil {
			// entry is copied unchanged
			p.log.Error("Unable to process file in archive",
				zap.String("archive", path), zap.String("file", name), zap.Error(err))
			return nil, nil
		}
		return out, nil
	})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		os.Remove(outputName)
		return err
	}
	p.log.Info("Processing completed", zap.String("to", outputName), zap.Int("rewritten", replaced))

	if p.env.Rpt != nil {
		if err := p.env.Rpt.StoreCopy(filepath.ToSlash(filepath.Join("results", src)), outputName); err != nil {
			p.log.Debug("Unable to store result in report", zap.Error(err))
		}
	}
	return nil
}

// rewriteEntry returns nil when archive entry does not have to be replaced.
func (p *processor) rewriteEntry(ctx context.Context, r io.Reader, src string) (out []byte, err error) {
	var res *icons.Result
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processing panic: %v", r)
		}
		p.stats.add(src, res, err)
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	out, res, err = p.rewrite(ctx, data, src)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(out, data) {
		return nil, nil
	}
	return out, nil
}
