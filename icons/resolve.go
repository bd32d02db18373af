package icons

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PathEscapeError is returned when icon name points outside of icons root.
type PathEscapeError struct {
	Root string
	Name string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("icon %q resolves outside of %s", e.Name, e.Root)
}

// ResolvePath returns absolute path of <root>/<name><ext> guaranteeing it
// stays inside root. Absolute names and names with ".." segments are refused
// even when they would end up inside root.
func ResolvePath(root, name, ext string) (string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("unable to resolve icons root: %w", err)
	}
	if name == "" || isAbsName(name) || hasParentSegment(name) {
		return "", &PathEscapeError{Root: root, Name: name}
	}

	candidate := filepath.Clean(filepath.Join(root, name+ext))
	rel, err := filepath.Rel(root, candidate)
	if err != nil || rel == "." || rel == ".." || filepath.IsAbs(rel) ||
		strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &PathEscapeError{Root: root, Name: name}
	}
	return candidate, nil
}

func isAbsName(name string) bool {
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return true
	}
	if filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return true
	}
	// drive letters are refused on every platform
	return len(name) >= 2 && name[1] == ':' &&
		('a' <= name[0] && name[0] <= 'z' || 'A' <= name[0] && name[0] <= 'Z')
}

func hasParentSegment(name string) bool {
	for seg := range strings.FieldsFuncSeq(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}
