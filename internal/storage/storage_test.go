package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"scan.png", true},
		{"scan.PNG", true},
		{"photo.jpg", true},
		{"photo.JpEg", true},
		{"order.pdf", true},
		{"archive.tar.pdf", true},
		{"notes.txt", false},
		{"image.gif", false},
		{"pdf", false},
		{"", false},
		{"trailing.", false},
		{"evil.pdf.exe", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowedFile(tt.filename))
		})
	}
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{`..\..\windows\system32.png`, "windows_system32.png"},
		{"i contain cool ümläuts.txt", "i_contain_cool_umlauts.txt"},
		{"__init__.py", "init__.py"},
		{"PO scan (1).pdf", "PO_scan_1.pdf"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureFilename(tt.input))
		})
	}
}

func TestStoreSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store := NewStore(dir)

	up, err := store.Save(strings.NewReader("hello"), "scan.png")
	require.NoError(t, err)

	assert.Equal(t, "scan.png", up.OriginalName)
	assert.True(t, strings.HasSuffix(up.Name, "_scan.png"))
	assert.Len(t, strings.TrimSuffix(up.Name, "_scan.png"), 36)
	assert.Equal(t, filepath.Join(dir, up.Name), up.Path)
	assert.Equal(t, int64(5), up.Size)

	data, err := os.ReadFile(up.Path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestStoreSaveRejectsExtension(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	_, err := store.Save(strings.NewReader("x"), "payload.sh")
	require.ErrorIs(t, err, ErrUnsupportedExtension)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreSaveUniqueNames(t *testing.T) {
	store := NewStore(t.TempDir())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		up, err := store.Save(strings.NewReader("same"), "invoice.pdf")
		require.NoError(t, err)
		assert.False(t, seen[up.Name], "duplicate stored name %s", up.Name)
		seen[up.Name] = true
	}

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 50)
}

func TestStoreSaveKeepsExtensionForNonASCIINames(t *testing.T) {
	store := NewStore(t.TempDir())

	up, err := store.Save(strings.NewReader("%PDF-1.4"), "注文書.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(up.Name, "_upload.pdf"), up.Name)
}

func TestStorePathStaysInsideDirectory(t *testing.T) {
	store := NewStore("/srv/uploads")
	assert.Equal(t, "/srv/uploads/passwd", store.Path("../../etc/passwd"))
}

func TestStoreLookup(t *testing.T) {
	store := NewStore(t.TempDir())

	up, err := store.Save(strings.NewReader("png bytes"), "scan.png")
	require.NoError(t, err)

	found, ok := store.Lookup(up.Name)
	require.True(t, ok)
	assert.Equal(t, up.Path, found.Path)
	assert.Equal(t, int64(9), found.Size)

	for _, name := range []string{"", "missing.png", "../" + up.Name, ".", "/etc/passwd"} {
		_, ok := store.Lookup(name)
		assert.False(t, ok, name)
	}
}
