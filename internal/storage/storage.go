// Package storage persists uploaded documents to a local directory.
//
// Every stored file gets a random UUID prefix so repeated uploads of the same
// original name never overwrite each other. Files are only ever added; removing
// old uploads is left to whatever operates the directory.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// ErrUnsupportedExtension is returned by Save for files outside the allowed extension set.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// allowedExtensions are matched case-insensitively against the text after the last dot.
var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"pdf":  {},
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Upload describes a file written by Save. It is never mutated afterwards.
type Upload struct {
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
}

// Store writes uploads under a single directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created lazily on the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the upload directory.
func (s *Store) Dir() string { return s.dir }

// Path resolves a stored name inside the upload directory.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Lookup returns the stored upload called name. Names that are not a plain
// file name inside the directory, or that do not exist, are not found.
func (s *Store) Lookup(name string) (Upload, bool) {
	if name == "" || name != filepath.Base(name) {
		return Upload{}, false
	}
	path := s.Path(name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return Upload{}, false
	}
	return Upload{Name: name, Path: path, Size: info.Size()}, true
}

// Save copies r into a new file named "<uuid>_<sanitized filename>".
// Files whose extension is not allowed are rejected with ErrUnsupportedExtension
// and nothing is written.
func (s *Store) Save(r io.Reader, filename string) (Upload, error) {
	const op = "Save"

	if !AllowedFile(filename) {
		return Upload{}, fmt.Errorf("%s: %q: %w", op, filename, ErrUnsupportedExtension)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Upload{}, fmt.Errorf("%s: failed to create upload directory: %w", op, err)
	}

	name := uuid.NewString() + "_" + storedName(filename)
	path := filepath.Join(s.dir, name)

	// O_EXCL guarantees an existing upload is never overwritten
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Upload{}, fmt.Errorf("%s: failed to create %s: %w", op, name, err)
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Upload{}, fmt.Errorf("%s: failed to write %s: %w", op, name, err)
	}

	return Upload{
		Name:         name,
		OriginalName: filename,
		Path:         path,
		Size:         size,
	}, nil
}

// AllowedFile reports whether filename carries one of the png, jpg, jpeg or pdf extensions.
func AllowedFile(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(filename[idx+1:])]
	return ok
}

// SecureFilename reduces filename to a flat ASCII name that is safe to join
// to a directory: path separators and whitespace collapse to underscores,
// characters outside [A-Za-z0-9_.-] are dropped, and leading or trailing
// dots and underscores are trimmed. The result may be empty.
func SecureFilename(filename string) string {
	filename = norm.NFKD.String(filename)

	var b strings.Builder
	for _, r := range filename {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	filename = b.String()

	filename = strings.NewReplacer("/", " ", `\`, " ").Replace(filename)
	filename = strings.Join(strings.Fields(filename), "_")
	filename = unsafeChars.ReplaceAllString(filename, "")

	return strings.Trim(filename, "._")
}

// storedName sanitizes filename and keeps its extension intact, so a name made
// entirely of non-ASCII characters still dispatches correctly on extension.
func storedName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	safe := SecureFilename(filename)
	if !strings.HasSuffix(strings.ToLower(safe), ext) || len(safe) == len(ext) {
		return "upload" + ext
	}
	return safe
}
