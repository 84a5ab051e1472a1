package output

import (
	"bufio"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/render"
)

// CheckResult holds the result of comparing a generation with a directory.
type CheckResult struct {
	UpToDate bool
	// Changed lists files whose content differs, ignoring metadata lines
	Changed []string
	// Missing lists generated files absent from the directory
	Missing []string
	// Extra lists files in the directory that were not generated
	Extra []string
}

// Compare checks files against the tree under dir. Paths use forward slashes.
func Compare(files []render.File, dir string) (*CheckResult, error) {
	result := &CheckResult{}
	generated := make(map[string]bool, len(files))

	for _, f := range files {
		generated[f.Path] = true
		existing, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(f.Path)))
		if os.IsNotExist(err) {
			result.Missing = append(result.Missing, f.Path)
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", f.Path)
		}
		if filterMetadataLines([]byte(f.Content)) != filterMetadataLines(existing) {
			result.Changed = append(result.Changed, f.Path)
		}
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !generated[rel] {
			result.Extra = append(result.Extra, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", dir)
	}

	slices.Sort(result.Changed)
	slices.Sort(result.Missing)
	slices.Sort(result.Extra)
	result.UpToDate = len(result.Changed) == 0 && len(result.Missing) == 0 && len(result.Extra) == 0
	return result, nil
}

// filterMetadataLines removes "// Source version:" lines, which change on
// every commit without representing a model change. It returns "" if the
// content cannot be scanned, so the comparison fails.
func filterMetadataLines(content []byte) string {
	var result strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "// Source version:") {
			continue
		}
		result.WriteString(line)
		result.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return ""
	}
	return result.String()
}
