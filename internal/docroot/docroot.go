// Package docroot confines file lookups to a single directory tree.
package docroot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Info describes what lives under a request path.
type Info struct {
	Exists  bool
	Regular bool
	// Ext is the lower-cased extension including the leading dot, empty if none.
	Ext  string
	Name string
}

// Root is a document root. Every path it serves resolves strictly inside it.
type Root struct {
	dir string
}

// New canonicalizes the directory. The directory must already exist.
func New(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("docroot: %w", err)
	}

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("docroot: %w", err)
	}

	return &Root{dir: canonical}, nil
}

// Dir returns the canonical root directory.
func (r *Root) Dir() string {
	return r.dir
}

// Contains reports whether the decoded request path stays within the root once
// canonicalized. Symlinks are resolved when the target exists, so a link pointing
// outside the root doesn't count as contained.
func (r *Root) Contains(path string) bool {
	_, ok := r.locate(path)
	return ok
}

// Resolve looks the path up. A path escaping the root is reported as non-existent.
func (r *Root) Resolve(path string) (Info, error) {
	full, ok := r.locate(path)
	if !ok {
		return Info{}, nil
	}

	info := Info{
		Ext:  strings.ToLower(filepath.Ext(full)),
		Name: filepath.Base(full),
	}

	stat, err := os.Stat(full)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return info, nil
	default:
		return info, fmt.Errorf("docroot: stat: %w", err)
	}

	info.Exists = true
	info.Regular = stat.Mode().IsRegular()

	return info, nil
}

// ReadBytes returns the file contents as is.
func (r *Root) ReadBytes(path string) ([]byte, error) {
	full, ok := r.locate(path)
	if !ok {
		return nil, fs.ErrNotExist
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("docroot: read: %w", err)
	}

	return data, nil
}

// ReadText returns the file contents, refusing anything that isn't valid UTF-8.
func (r *Root) ReadText(path string) (string, error) {
	data, err := r.ReadBytes(path)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("docroot: %s: not utf-8 text", filepath.Base(path))
	}

	return string(data), nil
}

func (r *Root) locate(path string) (string, bool) {
	full := filepath.Join(r.dir, filepath.FromSlash(path))
	if !r.within(full) {
		return "", false
	}

	if resolved, err := filepath.EvalSymlinks(full); err == nil {
		if !r.within(resolved) {
			return "", false
		}

		return resolved, true
	}

	return full, true
}

func (r *Root) within(path string) bool {
	return path == r.dir || strings.HasPrefix(path, r.dir+string(filepath.Separator))
}
