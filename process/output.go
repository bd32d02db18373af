package process

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"svgvar/config"
	"svgvar/state"
)

// buildOutputPath returns output file path for src which is relative to the
// source root (file name, path inside directory or archive). Source directory
// structure is kept unless NoDirs is requested.
func buildOutputPath(src, dst string, env *state.LocalEnv) string {
	return filepath.Join(determineOutputDir(src, dst, env), config.CleanFileName(filepath.Base(src)))
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}

// prepareOutput makes sure output could be written: existing file is removed
// when overwrite is requested, otherwise missing directories are created.
func prepareOutput(outputName string, env *state.LocalEnv, log *zap.Logger) error {
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		return os.Remove(outputName)
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

func writeOutput(outputName string, data []byte, env *state.LocalEnv, log *zap.Logger) error {
	if err := prepareOutput(outputName, env, log); err != nil {
		return err
	}
	if err := os.WriteFile(outputName, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}

// entryName converts archive entry name to UTF-8 when code page was forced.
// Zip "standard" does not define file name encoding, old archives use
// whatever was local.
func entryName(name string, nonUTF8 bool, env *state.LocalEnv, log *zap.Logger) string {
	cp := env.CodePage
	if cp == nil || (!nonUTF8 && utf8.ValidString(name)) {
		return name
	}
	n, err := cp.NewDecoder().String(name)
	if err != nil {
		cs, _ := ianaindex.IANA.Name(cp)
		log.Warn("Unable to convert archive name from specified encoding",
			zap.String("charset", cs), zap.String("path", name), zap.Error(err))
		return name
	}
	return n
}
