// Package output writes rendered files to disk and compares a fresh
// generation with a committed output tree.
package output

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/logger"
	"github.com/openactive/models-lib/render"
)

const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// Writer writes the files of one target under Dir.
type Writer struct {
	Dir string
	// Clean removes the previous contents of Dir first, so files of models
	// that no longer exist do not linger
	Clean bool
	log   *zap.SugaredLogger
}

// NewWriter creates a Writer for dir.
func NewWriter(dir string, clean bool, log *zap.SugaredLogger) *Writer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Writer{Dir: dir, Clean: clean, log: log}
}

// Write writes every file, creating directories as needed.
func (w *Writer) Write(files []render.File) error {
	if err := checkDir(w.Dir); err != nil {
		return err
	}
	for _, f := range files {
		if err := checkPath(f.Path); err != nil {
			return err
		}
	}

	if w.Clean {
		if err := os.RemoveAll(w.Dir); err != nil {
			return errors.Wrapf(err, "failed to clean %s", w.Dir)
		}
	}

	for _, f := range files {
		dest := filepath.Join(w.Dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dest), DirPermissions); err != nil {
			return errors.Wrapf(err, "failed to create directory for %s", f.Path)
		}
		if err := os.WriteFile(dest, []byte(f.Content), FilePermissions); err != nil {
			return errors.Wrapf(err, "failed to write %s", dest)
		}
		w.log.Debugw("Wrote file", logger.FieldFile, dest)
	}

	w.log.Infow("Wrote output",
		logger.FieldFile, w.Dir,
		logger.FieldCount, len(files))
	return nil
}

// checkDir refuses to write into the working directory or the filesystem
// root, which Clean would wipe.
func checkDir(dir string) error {
	clean := filepath.Clean(dir)
	if dir == "" || clean == "." || clean == string(filepath.Separator) {
		return errors.Newf("refusing to write output to %q", dir)
	}
	return nil
}

// checkPath rejects file paths that would escape the output directory.
func checkPath(p string) error {
	if !filepath.IsLocal(filepath.FromSlash(p)) {
		return errors.Newf("generated path %q escapes the output directory", p)
	}
	return nil
}
