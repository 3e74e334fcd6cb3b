package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Sources locates the catalog files for each locale. The editor document for
// a locale takes precedence over the shared base catalog.
type Sources struct {
	BaseFile  string
	EditorDir string
}

// EditorPath returns the editor document path for locale.
func (s Sources) EditorPath(locale string) string {
	return filepath.Join(s.EditorDir, fmt.Sprintf("data_%s.json", locale))
}

// LoadForLocale returns the document the build should use for locale and the
// path it came from. It returns a nil document and no error when neither the
// editor document nor the base catalog exists.
func (s Sources) LoadForLocale(locale string) (*Document, string, error) {
	for _, path := range []string{s.EditorPath(locale), s.BaseFile} {
		if path == "" {
			continue
		}
		doc, err := Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, path, fmt.Errorf("loading %s: %w", path, err)
		}
		return doc, path, nil
	}
	return nil, "", nil
}

// Exists reports whether a regular file exists at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
