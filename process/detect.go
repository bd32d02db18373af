package process

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// filetype needs that much of file head for all its matchers
const sniffLen = 262

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}

// isArchiveFile checks extension and content of the file.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	head, err := readHead(path)
	if err != nil {
		return false, err
	}
	return filetype.Is(head, "zip"), nil
}

// isStylesheetName checks name only, used for archive entries.
func isStylesheetName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".css")
}

// isStylesheetFile checks extension and makes sure content is not binary.
func isStylesheetFile(path string) (bool, error) {
	if !isStylesheetName(path) {
		return false, nil
	}
	head, err := readHead(path)
	if err != nil {
		return false, err
	}
	return isText(head), nil
}

// isText reports whether data is not any of the binary formats filetype knows.
func isText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	kind, err := filetype.Match(data)
	return err == nil && kind == filetype.Unknown
}
