// Package paths locates .pxo sprite files by short name.
package paths

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Ext is the extension of sprite files.
const Ext = ".pxo"

// EnvPath names the environment variable holding extra directories to
// search, separated like $PATH.
const EnvPath = "PXO_PATH"

// SearchPath returns the directories Find looks in, in order: those listed
// in $PXO_PATH, then ./testdata, then the current directory.
func SearchPath() []string {
	var dirs []string
	for _, d := range filepath.SplitList(os.Getenv(EnvPath)) {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return append(dirs, "testdata", ".")
}

func possiblePaths(fileName string) []string {
	names := []string{fileName}
	if filepath.Ext(fileName) == "" {
		names = append(names, fileName+Ext)
	}
	if filepath.IsAbs(fileName) {
		return names
	}

	var paths []string
	for _, dir := range SearchPath() {
		for _, n := range names {
			paths = append(paths, filepath.Join(dir, n))
		}
	}
	return paths
}

// Find locates the passed sprite shortname and returns a path to find the
// file at. The .pxo extension may be left out.
//
// For example, for "hero" it may return "testdata/hero.pxo".
func Find(fileName string) string {
	for _, path := range possiblePaths(fileName) {
		if st, err := os.Stat(path); err == nil && st.Mode().IsRegular() {
			glog.V(2).Infof("paths.Find(%q)=%s", fileName, path)
			return path
		}
	}
	return ""
}

// Open locates the passed file in the same locations that Find would look, and
// opens it. If Find returns an empty string, an error is returned.
//
// http:// and https:// URLs are fetched instead.
func Open(fileName string) (io.ReadCloser, error) {
	if strings.HasPrefix(fileName, "http://") || strings.HasPrefix(fileName, "https://") {
		return openHTTP(fileName)
	}

	path := Find(fileName)
	if path == "" {
		return nil, errors.Wrapf(os.ErrNotExist, "paths: %q not found in %v", fileName, SearchPath())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "paths: failed to open %q", path)
	}
	return f, nil
}

// List returns the sprite files directly inside dir, sorted.
func List(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+Ext))
	if err != nil {
		return nil, errors.Wrapf(err, "paths: failed to list %q", dir)
	}
	var files []string
	for _, m := range matches {
		if st, err := os.Stat(m); err == nil && st.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Name returns the short name of a sprite file: its base name without the
// .pxo extension.
func Name(path string) string {
	return strings.TrimSuffix(filepath.Base(path), Ext)
}
