// Package upload persists JSON documents posted to the server.
package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dchest/uniuri"
	json "github.com/json-iterator/go"
)

// URLPrefix is the public prefix the stored documents are referred by.
const URLPrefix = "/uploads/"

var hexChars = []byte("0123456789abcdef")

// Store writes every document into its own file within a single directory.
type Store struct {
	dir string
	now func() time.Time
}

func New(dir string) *Store {
	return &Store{
		dir: dir,
		now: time.Now,
	}
}

// Dir returns the directory documents are written into.
func (s *Store) Dir() string {
	return s.dir
}

// PersistJSON encodes the value with two-space indentation and writes it into a freshly
// named file. The returned path is the public one, e.g. /uploads/upload_20240102_150405_a1b2.json
func (s *Store) PersistJSON(value any) (string, error) {
	data, err := json.ConfigCompatibleWithStandardLibrary.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("upload: encode: %w", err)
	}

	name := s.filename()
	if err = os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("upload: write %s: %w", name, err)
	}

	return URLPrefix + name, nil
}

func (s *Store) filename() string {
	return fmt.Sprintf(
		"upload_%s_%s.json",
		s.now().Format("20060102_150405"),
		uniuri.NewLenChars(4, hexChars),
	)
}
