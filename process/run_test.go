package process

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"svgvar/config"
	"svgvar/icons"
	"svgvar/state"
)

const arrowSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16"><path d="M2 8h12"/></svg>`

const iconCSS = ".a {\n  mask-image: svg(\"arrow\");\n}\n"

// newTestProcessor prepares environment with default configuration and icons
// root containing arrow.svg.
func newTestProcessor(t *testing.T, mods ...func(env *state.LocalEnv)) (context.Context, *processor) {
	t.Helper()

	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	env.Cfg = cfg
	env.Log = zaptest.NewLogger(t)

	env.IconsRoot = filepath.Join(t.TempDir(), "icons")
	writeFile(t, filepath.Join(env.IconsRoot, "arrow.svg"), arrowSVG)

	for _, mod := range mods {
		mod(env)
	}

	opts, err := env.RewriteOptions()
	if err != nil {
		t.Fatalf("RewriteOptions() error = %v", err)
	}
	rw, err := icons.New(opts, env.Log)
	if err != nil {
		t.Fatalf("icons.New() error = %v", err)
	}
	return ctx, newProcessor(env, rw, env.Log.Named("process"))
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(name, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func readFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	return string(data)
}

func assertRewritten(t *testing.T, name, content string) {
	t.Helper()
	for _, want := range []string{"mask-image: var(--icon-arrow)", "--icon-arrow: url(\"data:image/svg+xml,", ":root {"} {
		if !strings.Contains(content, want) {
			t.Errorf("%s: output does not contain %q:\n%s", name, want, content)
		}
	}
	if strings.Contains(content, "svg(") {
		t.Errorf("%s: call was not rewritten:\n%s", name, content)
	}
}

func TestProcess_File(t *testing.T) {
	ctx, p := newTestProcessor(t)

	src := filepath.Join(t.TempDir(), "style.css")
	writeFile(t, src, iconCSS)
	dst := t.TempDir()

	if err := p.process(ctx, src, dst); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	assertRewritten(t, "style.css", readFile(t, filepath.Join(dst, "style.css")))

	if err := p.stats.failed(); err != nil {
		t.Errorf("unexpected failures: %v", err)
	}
}

func TestProcess_FileExists(t *testing.T) {
	src := filepath.Join(t.TempDir(), "style.css")
	writeFile(t, src, iconCSS)
	dst := t.TempDir()
	writeFile(t, filepath.Join(dst, "style.css"), "old")

	t.Run("refused", func(t *testing.T) {
		ctx, p := newTestProcessor(t)
		if err := p.process(ctx, src, dst); err != nil {
			t.Fatalf("process() error = %v", err)
		}
		if err := p.stats.failed(); err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Errorf("expected already exists failure, got %v", err)
		}
		if got := readFile(t, filepath.Join(dst, "style.css")); got != "old" {
			t.Errorf("existing file was modified: %q", got)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		ctx, p := newTestProcessor(t, func(env *state.LocalEnv) { env.Overwrite = true })
		if err := p.process(ctx, src, dst); err != nil {
			t.Fatalf("process() error = %v", err)
		}
		assertRewritten(t, "style.css", readFile(t, filepath.Join(dst, "style.css")))
	})
}

func TestProcess_InPlace(t *testing.T) {
	ctx, p := newTestProcessor(t, func(env *state.LocalEnv) { env.Overwrite = true })

	dir := t.TempDir()
	src := filepath.Join(dir, "style.css")
	writeFile(t, src, iconCSS)

	if err := p.process(ctx, src, dir); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	assertRewritten(t, "style.css", readFile(t, src))
}

func TestProcess_Unchanged(t *testing.T) {
	ctx, p := newTestProcessor(t)

	// odd formatting must survive when there is nothing to rewrite
	const plain = "/* keep */\n.a{color:red}\n\n\n.b {  margin : 0 }\n"
	src := filepath.Join(t.TempDir(), "plain.css")
	writeFile(t, src, plain)
	dst := t.TempDir()

	if err := p.process(ctx, src, dst); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if diff := cmp.Diff(plain, readFile(t, filepath.Join(dst, "plain.css"))); diff != "" {
		t.Errorf("unchanged stylesheet was modified (-want +got):\n%s", diff)
	}
}

func TestProcess_Directory(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.css"), iconCSS)
	writeFile(t, filepath.Join(src, "sub", "b.css"), iconCSS)
	writeFile(t, filepath.Join(src, "readme.txt"), "svg(\"arrow\")")
	// PNG signature with stylesheet extension
	writeFile(t, filepath.Join(src, "fake.css"), "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name   string
		nodirs bool
		want   []string
	}{
		{"keep structure", false, []string{"a.css", filepath.Join("sub", "b.css")}},
		{"nodirs", true, []string{"a.css", "b.css"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, p := newTestProcessor(t, func(env *state.LocalEnv) { env.NoDirs = tt.nodirs })
			dst := t.TempDir()

			if err := p.process(ctx, src, dst); err != nil {
				t.Fatalf("process() error = %v", err)
			}
			for _, name := range tt.want {
				assertRewritten(t, name, readFile(t, filepath.Join(dst, name)))
			}
			for _, name := range []string{"readme.txt", "fake.css"} {
				if _, err := os.Stat(filepath.Join(dst, name)); !errors.Is(err, os.ErrNotExist) {
					t.Errorf("%s should not be processed", name)
				}
			}
			if got := len(p.stats.files); got != 2 {
				t.Errorf("processed %d stylesheets, want 2", got)
			}
		})
	}
}

func TestProcess_DestinationInsideSource(t *testing.T) {
	ctx, p := newTestProcessor(t)

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.css"), iconCSS)
	dst := filepath.Join(src, "out")
	writeFile(t, filepath.Join(dst, "old.css"), iconCSS)

	if err := p.process(ctx, src, dst); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	assertRewritten(t, "a.css", readFile(t, filepath.Join(dst, "a.css")))
	if _, err := os.Stat(filepath.Join(dst, "out")); !errors.Is(err, os.ErrNotExist) {
		t.Error("destination directory was processed as source")
	}
}

// makeArchive writes zip with given entries into dir.
func makeArchive(t *testing.T, name string, entries map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, n := range []string{"site/a.css", "site/b.css", "site/logo.png", "other/c.css"} {
		content, ok := entries[n]
		if !ok {
			continue
		}
		fw, err := w.Create(n)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	writeFile(t, name, buf.String())
	return name
}

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()

	r, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer r.Close()

	out := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Open(%s) error = %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("ReadAll(%s) error = %v", f.Name, err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestProcess_Archive(t *testing.T) {
	entries := map[string]string{
		"site/a.css":    iconCSS,
		"site/b.css":    ".b { color: red; }\n",
		"site/logo.png": "\x89PNG\r\n\x1a\n",
		"other/c.css":   iconCSS,
	}
	src := makeArchive(t, filepath.Join(t.TempDir(), "site.zip"), entries)

	t.Run("whole archive", func(t *testing.T) {
		ctx, p := newTestProcessor(t)
		dst := t.TempDir()

		if err := p.process(ctx, src, dst); err != nil {
			t.Fatalf("process() error = %v", err)
		}
		got := readArchive(t, filepath.Join(dst, "site.zip"))
		if len(got) != len(entries) {
			t.Fatalf("archive has %d entries, want %d", len(got), len(entries))
		}
		assertRewritten(t, "site/a.css", got["site/a.css"])
		assertRewritten(t, "other/c.css", got["other/c.css"])
		for _, name := range []string{"site/b.css", "site/logo.png"} {
			if got[name] != entries[name] {
				t.Errorf("%s was modified: %q", name, got[name])
			}
		}
	})

	t.Run("path inside archive", func(t *testing.T) {
		ctx, p := newTestProcessor(t)
		dst := t.TempDir()

		if err := p.process(ctx, filepath.Join(src, "site"), dst); err != nil {
			t.Fatalf("process() error = %v", err)
		}
		got := readArchive(t, filepath.Join(dst, "site.zip"))
		assertRewritten(t, "site/a.css", got["site/a.css"])
		if got["other/c.css"] != iconCSS {
			t.Errorf("entry outside of requested path was modified: %q", got["other/c.css"])
		}
	})

	t.Run("dry run", func(t *testing.T) {
		ctx, p := newTestProcessor(t, func(env *state.LocalEnv) { env.DryRun = true })
		dst := t.TempDir()

		if err := p.process(ctx, src, dst); err != nil {
			t.Fatalf("process() error = %v", err)
		}
		if files, _ := os.ReadDir(dst); len(files) != 0 {
			t.Errorf("dry run produced output: %v", files)
		}
		if got := len(p.stats.files); got != 3 {
			t.Errorf("processed %d stylesheets, want 3", got)
		}
	})

	t.Run("in place", func(t *testing.T) {
		ctx, p := newTestProcessor(t, func(env *state.LocalEnv) { env.Overwrite = true })
		if err := p.process(ctx, src, filepath.Dir(src)); err == nil {
			t.Error("expected error when destination is the source archive")
		}
		if got := readArchive(t, src); len(got) != len(entries) {
			t.Errorf("source archive was damaged")
		}
	})
}

func TestProcess_DryRunFile(t *testing.T) {
	ctx, p := newTestProcessor(t, func(env *state.LocalEnv) { env.DryRun = true })

	src := filepath.Join(t.TempDir(), "style.css")
	writeFile(t, src, iconCSS)
	dst := t.TempDir()

	if err := p.process(ctx, src, dst); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if files, _ := os.ReadDir(dst); len(files) != 0 {
		t.Errorf("dry run produced output: %v", files)
	}
	if fr := p.stats.files["style.css"]; fr.rewritten != 1 || !fr.changed {
		t.Errorf("unexpected result %+v", fr)
	}
}

func TestProcess_Errors(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "notes.txt")
	writeFile(t, text, "hello")

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing", filepath.Join(dir, "missing.css"), "input source was not found"},
		{"not stylesheet", text, "not recognized as stylesheet"},
		{"file with tail", filepath.Join(text, "inner.css"), "not recognized as stylesheet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, p := newTestProcessor(t)
			err := p.process(ctx, tt.src, t.TempDir())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("process() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestProcess_Canceled(t *testing.T) {
	ctx, p := newTestProcessor(t)
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	src := filepath.Join(t.TempDir(), "style.css")
	writeFile(t, src, iconCSS)

	if err := p.process(ctx, src, t.TempDir()); !errors.Is(err, context.Canceled) {
		t.Errorf("process() error = %v, want context.Canceled", err)
	}
}

func TestProcessStream(t *testing.T) {
	t.Run("rewrite", func(t *testing.T) {
		ctx, p := newTestProcessor(t)
		var out bytes.Buffer
		if err := p.processStream(ctx, strings.NewReader(iconCSS), &out); err != nil {
			t.Fatalf("processStream() error = %v", err)
		}
		assertRewritten(t, stdinName, out.String())
	})

	t.Run("dry run", func(t *testing.T) {
		ctx, p := newTestProcessor(t, func(env *state.LocalEnv) { env.DryRun = true })
		var out bytes.Buffer
		if err := p.processStream(ctx, strings.NewReader(iconCSS), &out); err != nil {
			t.Fatalf("processStream() error = %v", err)
		}
		if out.Len() != 0 {
			t.Errorf("dry run produced output: %q", out.String())
		}
	})
}
