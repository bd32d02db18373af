package process

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestIsArchiveFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.zip")
	f, err := os.Create(good)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	w := zip.NewWriter(f)
	if _, err := w.Create("a.css"); err != nil {
		t.Fatalf("zip Create() error = %v", err)
	}
	w.Close()
	f.Close()

	fake := filepath.Join(dir, "fake.zip")
	writeFile(t, fake, "not an archive")

	renamed := filepath.Join(dir, "good.bin")
	data, _ := os.ReadFile(good)
	writeFile(t, renamed, string(data))

	tests := []struct {
		name    string
		path    string
		want    bool
		wantErr bool
	}{
		{"zip", good, true, false},
		{"wrong content", fake, false, false},
		{"wrong extension", renamed, false, false},
		{"missing", filepath.Join(dir, "missing.zip"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := isArchiveFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("isArchiveFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("isArchiveFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsStylesheetFile(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"style.css":  ".a { color: red; }",
		"UPPER.CSS":  ".a {}",
		"empty.css":  "",
		"binary.css": "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR",
		"style.txt":  ".a {}",
	}
	for name, content := range files {
		writeFile(t, filepath.Join(dir, name), content)
	}

	tests := []struct {
		name string
		want bool
	}{
		{"style.css", true},
		{"UPPER.CSS", true},
		{"empty.css", true},
		{"binary.css", false},
		{"style.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := isStylesheetFile(filepath.Join(dir, tt.name))
			if err != nil {
				t.Fatalf("isStylesheetFile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("isStylesheetFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsStylesheetName(t *testing.T) {
	for name, want := range map[string]bool{
		"a.css":        true,
		"dir/b.CSS":    true,
		"c.css.map":    false,
		"css":          false,
		"dir.css/file": false,
	} {
		if got := isStylesheetName(name); got != want {
			t.Errorf("isStylesheetName(%q) = %v, want %v", name, got, want)
		}
	}
}
