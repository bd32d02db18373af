package archive

import (
	"fmt"
	"io"
	"os"
	"strings"

	fixzip "github.com/hidez8891/zip"
	"go.uber.org/multierr"
)

// TransformFunc returns new content for archive entry. Returning nil data
// keeps entry unchanged.
type TransformFunc func(name string, r io.Reader) ([]byte, error)

// Rewrite copies archive from into new archive to, passing entries under
// prefix which satisfy match through transform. Entries which are not
// transformed are copied as is without recompression. Transform failures do
// not stop processing: failed entries are copied unchanged and errors are
// returned combined together with number of replaced entries.
func Rewrite(from, to, prefix string, match func(name string) bool, transform TransformFunc) (replaced int, err error) {

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return 0, fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	for _, file := range r.File {
		if !isSafePath(file.Name) {
			return 0, fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", file.Name)
		}
	}

	out, err := os.Create(to)
	if err != nil {
		return 0, fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("unable to write target file (%s): %w", to, cerr)
		}
	}()

	w := fixzip.NewWriter(out)

	var errs error
	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		data, terr := transformEntry(file, prefix, match, transform)
		if terr != nil {
			errs = multierr.Append(errs, fmt.Errorf("entry %q: %w", file.Name, terr))
		}
		if data == nil {
			if err := w.CopyFile(file); err != nil {
				return replaced, fmt.Errorf("unable to write target file (%s): %w", to, err)
			}
			continue
		}

		hdr := file.FileHeader
		hdr.Method = fixzip.Deflate
		fw, err := w.CreateHeader(&hdr)
		if err != nil {
			return replaced, fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
		if _, err := fw.Write(data); err != nil {
			return replaced, fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
		replaced++
	}
	if err := w.Close(); err != nil {
		return replaced, fmt.Errorf("unable to finalize target file (%s): %w", to, err)
	}
	return replaced, errs
}

func transformEntry(file *fixzip.File, prefix string, match func(string) bool, transform TransformFunc) ([]byte, error) {
	if strings.HasSuffix(file.Name, "/") || !strings.HasPrefix(file.Name, prefix) {
		return nil, nil
	}
	if match != nil && !match(file.Name) {
		return nil, nil
	}
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return transform(file.Name, rc)
}
