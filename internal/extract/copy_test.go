package extract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	srcPath := filepath.Join(srcDir, "test.mp3")
	content := []byte("test audio content")
	require.NoError(t, os.WriteFile(srcPath, content, 0640), "create source")

	mtime := time.Date(2019, 4, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(srcPath, mtime, mtime))

	dstPath := filepath.Join(dstDir, "copied.mp3")
	size, err := CopyFile(srcPath, dstPath, false)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)

	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	info, err := os.Stat(dstPath)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime), "mtime = %v, want %v", info.ModTime(), mtime)

	entries, err := os.ReadDir(dstDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestCopyFile_DestinationExists(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mp3")
	dst := filepath.Join(dir, "dst.mp3")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0644))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0644))

	_, err := CopyFile(src, dst, false)
	assert.ErrorIs(t, err, ErrDestinationExists)

	got, _ := os.ReadFile(dst)
	assert.Equal(t, "old", string(got))

	_, err = CopyFile(src, dst, true)
	require.NoError(t, err)
	got, _ = os.ReadFile(dst)
	assert.Equal(t, "new", string(got))
}

func TestCopyFile_SourceNotFound(t *testing.T) {
	dstDir := t.TempDir()
	_, err := CopyFile("/nonexistent/file.mp3", filepath.Join(dstDir, "out.mp3"), false)
	assert.ErrorIs(t, err, ErrSourceUnreadable)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, statErr := os.Stat(filepath.Join(dstDir, "out.mp3"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCopyFile_SourceIsDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := CopyFile(dir, filepath.Join(t.TempDir(), "out"), false)
	assert.ErrorIs(t, err, ErrSourceUnreadable)
}

func TestCopyFile_MissingDestinationDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mp3")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))

	_, err := CopyFile(src, filepath.Join(dir, "no", "such", "dir", "out.mp3"), false)
	assert.ErrorIs(t, err, ErrCopyFailed)
	assert.NotErrorIs(t, err, ErrSourceUnreadable)
}
