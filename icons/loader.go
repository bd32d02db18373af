package icons

import (
	"context"
	"fmt"
	"io/fs"
	"os"
)

// Loader reads icon content. Name is slash separated path relative to the
// icons root, with extension.
type Loader interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

// FSLoader loads icons from file system. fs.FS refuses names which are not
// fs.ValidPath, so traversal is rejected second time here.
type FSLoader struct {
	FS fs.FS
}

func (l FSLoader) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(l.FS, name)
}

// DirLoader returns loader reading icons from directory root.
func DirLoader(root string) FSLoader {
	return FSLoader{FS: os.DirFS(root)}
}

// LoadError is reported when icon could not be read or encoded.
type LoadError struct {
	Name string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("unable to load icon %q from %s: %v", e.Name, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
