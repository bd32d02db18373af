package process

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"svgvar/config"
	"svgvar/icons"
	"svgvar/state"
	"svgvar/svg"
)

func TestDecodeDataURI(t *testing.T) {
	tests := []string{
		arrowSVG,
		`<svg xmlns="http://www.w3.org/2000/svg"><text>100% "quoted" #hash</text></svg>`,
	}

	for _, markup := range tests {
		uri, err := svg.Encode([]byte(markup))
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		got, err := decodeDataURI(uri)
		if err != nil {
			t.Fatalf("decodeDataURI() error = %v", err)
		}
		// encoder drops prolog and normalizes spaces only
		if !strings.HasPrefix(string(got), "<svg") || !strings.Contains(string(got), "xmlns") {
			t.Errorf("decodeDataURI() = %q", got)
		}
	}

	if _, err := decodeDataURI("data:image/png;base64,AAAA"); err == nil {
		t.Error("expected error for foreign data URI")
	}
}

func TestProcessor_Rewrite(t *testing.T) {
	ctx, p := newTestProcessor(t)

	out, res, err := p.rewrite(ctx, []byte(iconCSS+".b { mask-image: svg(\"arrow\"); }\n"), "style.css")
	if err != nil {
		t.Fatalf("rewrite() error = %v", err)
	}
	assertRewritten(t, "style.css", string(out))
	if res.Rewritten != 2 || len(res.Requests) != 1 || res.Requests[0].Refs != 2 {
		t.Errorf("unexpected result:\n%s", res)
	}
	if n := strings.Count(string(out), "--icon-arrow:"); n != 1 {
		t.Errorf("variable declared %d times, want 1", n)
	}
}

func TestProcessor_RewriteCharset(t *testing.T) {
	ctx, p := newTestProcessor(t)

	// windows-1251 encoded comment
	src := "@charset \"windows-1251\";\n/* \xf2\xe5\xf1\xf2 */\n" + iconCSS
	out, _, err := p.rewrite(ctx, []byte(src), "cp1251.css")
	if err != nil {
		t.Fatalf("rewrite() error = %v", err)
	}
	assertRewritten(t, "cp1251.css", string(out))
	if strings.Contains(string(out), "windows-1251") {
		t.Errorf("charset declaration was not normalized:\n%s", out)
	}
}

func TestProcessor_RewriteCanceled(t *testing.T) {
	ctx, p := newTestProcessor(t)
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	if _, _, err := p.rewrite(ctx, []byte(iconCSS), "style.css"); !errors.Is(err, context.Canceled) {
		t.Errorf("rewrite() error = %v, want context.Canceled", err)
	}
}

func TestProcessor_Report(t *testing.T) {
	reportName := filepath.Join(t.TempDir(), "report.zip")
	ctx, p := newTestProcessor(t, func(env *state.LocalEnv) {
		rpt, err := (&config.ReporterConfig{Destination: reportName}).Prepare()
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		env.Rpt = rpt
	})

	src := filepath.Join(t.TempDir(), "style.css")
	writeFile(t, src, iconCSS)
	if err := p.process(ctx, src, t.TempDir()); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if err := p.env.Rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got := readArchive(t, reportName)
	for _, name := range []string{"results/style.css", "passes/style.css.txt", "previews/arrow.png"} {
		if _, ok := got[name]; !ok {
			t.Errorf("report does not contain %s", name)
		}
	}
	assertRewritten(t, "results/style.css", got["results/style.css"])
	if png := got["previews/arrow.png"]; !strings.HasPrefix(png, "\x89PNG") {
		t.Errorf("preview is not PNG")
	}
}

func TestSummary(t *testing.T) {
	s := newSummary()
	broken := errors.New("broken")

	s.add("b10.css", &icons.Result{Rewritten: 2, Declared: 1, Changed: true}, nil)
	s.add("b2.css", nil, broken)
	s.add("a.css", &icons.Result{Warnings: []icons.Warning{{Name: "x", Err: broken}}}, nil)
	s.add("a.css", &icons.Result{}, nil)

	if got := len(s.files); got != 4 {
		t.Errorf("summary has %d entries, want 4", got)
	}
	if err := s.failed(); !errors.Is(err, broken) {
		t.Errorf("failed() = %v, want broken", err)
	}

	want := fileResult{rewritten: 2, declared: 1, changed: true}
	if diff := cmp.Diff(want, s.files["b10.css"], cmp.AllowUnexported(fileResult{})); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if got := s.files["a.css"].warnings; got != 1 {
		t.Errorf("warnings = %d, want 1", got)
	}

	// must not panic with any logger
	s.report(zaptest.NewLogger(t))
	newSummary().report(zaptest.NewLogger(t))
}

func TestResultSummary(t *testing.T) {
	tests := []struct {
		res  *icons.Result
		want string
	}{
		{nil, "none"},
		{&icons.Result{Rewritten: 3, Declared: 1, Requests: make([]*icons.Request, 1)}, "3 rewritten, 1 declared, 1 icons"},
		{&icons.Result{Warnings: make([]icons.Warning, 2)}, "0 rewritten, 0 declared, 0 icons, 2 warnings"},
	}
	for _, tt := range tests {
		if got := (resultSummary{tt.res}).String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
