package services

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/shopapi/pkg"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"photo.png":            "photo.png",
		"../../etc/passwd.png": "passwd.png",
		`C:\Users\me\cat.JPG`:  "cat.JPG",
		"dir/":                 "unnamed",
		"..":                   "unnamed",
		"a:b\x00c.gif":         "abc.gif",
		"":                     "unnamed",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}

func TestUploadService_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	svc := NewUploadService(dir, 0, false)

	data := []byte("\x89PNG fake image bytes")
	stored, err := svc.Save("../../etc/passwd.png", int64(len(data)), bytes.NewReader(data))
	require.NoError(t, err)

	assert.Regexp(t, `^/uploads/[0-9a-f]{32}\.png$`, stored)

	onDisk, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(stored, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	// Nothing escaped the upload directory.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUploadService_ExtensionIsLowerCased(t *testing.T) {
	svc := NewUploadService(t.TempDir(), 0, false)

	stored, err := svc.Save("Cat.JPEG", 3, strings.NewReader("abc"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored, ".jpeg"))
}

func TestUploadService_Rejections(t *testing.T) {
	dir := t.TempDir()
	svc := NewUploadService(dir, 0, false)

	_, err := svc.Save("doc.pdf", 10, strings.NewReader("0123456789"))
	assert.ErrorIs(t, err, pkg.ErrUnsupportedFileType)
	assert.ErrorIs(t, err, pkg.ErrValidation)

	_, err = svc.Save("noext", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, pkg.ErrUnsupportedFileType)

	_, err = svc.Save("pic.webp", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, pkg.ErrUnsupportedFileType)

	big := 6 << 20
	_, err = svc.Save("huge.png", int64(big), bytes.NewReader(make([]byte, big)))
	assert.ErrorIs(t, err, pkg.ErrFileTooLarge)
	assert.ErrorIs(t, err, pkg.ErrValidation)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadService_CheckName(t *testing.T) {
	svc := NewUploadService(t.TempDir(), 0, false)

	assert.NoError(t, svc.CheckName("../../etc/passwd.PNG"))
	assert.ErrorIs(t, svc.CheckName("resume.pdf"), pkg.ErrUnsupportedFileType)
	assert.ErrorIs(t, svc.CheckName(""), pkg.ErrUnsupportedFileType)
}

func TestUploadService_AllowWebP(t *testing.T) {
	svc := NewUploadService(t.TempDir(), 0, true)

	stored, err := svc.Save("pic.webp", 1, strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored, ".webp"))
}

type failingReader struct{ n int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n == 0 {
		return 0, errors.New("connection reset")
	}
	n := min(len(p), r.n)
	r.n -= n
	return n, nil
}

func TestUploadService_WriteFailureRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	svc := NewUploadService(dir, 0, false)

	_, err := svc.Save("a.png", 100, &failingReader{n: 10})
	assert.ErrorIs(t, err, pkg.ErrStorageWriteFailed)
	assert.ErrorIs(t, err, pkg.ErrStorage)

	// Declared size larger than the body is a short write.
	_, err = svc.Save("b.png", 100, strings.NewReader("short"))
	assert.ErrorIs(t, err, pkg.ErrStorageWriteFailed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadService_Remove(t *testing.T) {
	dir := t.TempDir()
	svc := NewUploadService(dir, 0, false)

	stored, err := svc.Save("a.png", 1, strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, svc.Remove(stored))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Already gone, foreign and traversal paths are all ignored.
	assert.NoError(t, svc.Remove(stored))
	assert.NoError(t, svc.Remove("https://cdn.example.com/a.png"))
	assert.NoError(t, svc.Remove("/uploads/../secret.png"))
}
