package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asger60/filehandler/spath"
)

func TestLocalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal()
	file := filepath.Join(dir, "profile.far")

	require.NoError(t, l.WriteAllBytes(file, []byte("data")))
	got, err := l.ReadAllBytes(file)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	ok, err := l.FileExists(file)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = l.DirectoryExists(file)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.FileExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = l.ReadAllBytes(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.ReadAllBytes("relative.far")
	assert.ErrorIs(t, err, ErrNotRooted)
}

func TestLocalCopyMoveDelete(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	require.NoError(t, l.WriteAllText(a, "a"))

	require.NoError(t, l.CopyFile(a, b, false))
	assert.ErrorIs(t, l.CopyFile(a, b, false), ErrAlreadyExists)
	require.NoError(t, l.CopyFile(a, b, true))

	assert.ErrorIs(t, l.MoveFile(a, b), ErrAlreadyExists)
	require.NoError(t, l.MoveFile(a, c))
	_, err := os.Stat(a)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, l.DeleteFile(c))
	assert.ErrorIs(t, l.DeleteFile(c), ErrNotFound)
}

func TestLocalDirectories(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal()
	nested := filepath.Join(dir, "d", "sub")
	require.NoError(t, l.CreateDirectory(nested))
	require.NoError(t, l.WriteAllBytes(filepath.Join(dir, "d", "x.far"), nil))
	require.NoError(t, l.WriteAllBytes(filepath.Join(nested, "y.far"), nil))
	require.NoError(t, l.WriteAllBytes(filepath.Join(nested, "z.tmp"), nil))

	files, err := l.Files(filepath.Join(dir, "d"), "*.far", true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "d", "sub", "y.far"),
		filepath.Join(dir, "d", "x.far"),
	}, files)

	files, err = l.Files(filepath.Join(dir, "d"), "*", false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "d", "x.far")}, files)

	dirs, err := l.Directories(filepath.Join(dir, "d"), "*", false)
	require.NoError(t, err)
	assert.Equal(t, []string{nested}, dirs)

	assert.ErrorIs(t, l.DeleteDirectory(filepath.Join(dir, "d"), false), ErrDirectoryNotEmpty)

	moved := filepath.Join(dir, "e")
	require.NoError(t, l.MoveDirectory(filepath.Join(dir, "d"), moved))
	require.NoError(t, l.DeleteDirectory(moved, true))
	ok, err := l.DirectoryExists(moved)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalSpecialFolders(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix folder layout")
	}
	l := NewLocal()
	l.userHome = func() (string, error) { return "/home/tester", nil }
	l.lookupEnv = func(key string) (string, bool) {
		if key == "XDG_DATA_HOME" {
			return "relative/ignored", true
		}
		return "", false
	}

	home, err := l.SpecialFolder(FolderHome)
	require.NoError(t, err)
	assert.Equal(t, "/home/tester", home)

	local, err := l.SpecialFolder(FolderLocalAppData)
	require.NoError(t, err)
	if l.Platform() == Mac {
		assert.Equal(t, "/home/tester/Library/Application Support", local)
	} else {
		assert.Equal(t, "/home/tester/.local/share", local)
	}

	// Cached per instance.
	l.userHome = func() (string, error) { return "/elsewhere", nil }
	again, err := l.SpecialFolder(FolderHome)
	require.NoError(t, err)
	assert.Equal(t, home, again)

	assert.Equal(t, os.TempDir(), l.TempDirectory())
}

func TestLocalDriveLetterIsNotRootedOffWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("drive letters are rooted on windows")
	}
	dir := t.TempDir()
	t.Chdir(dir)

	l := NewLocal()
	assert.False(t, l.IsRooted("C:/x"))
	assert.False(t, l.IsRooted(`C:\x`))
	assert.True(t, l.IsRooted("/x"))

	err := NewFS(l).WriteAllBytes(spath.Unix.MustParse("C:/sub/x.far"), []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRooted)

	_, statErr := os.Stat(filepath.Join(dir, "C:"))
	assert.True(t, os.IsNotExist(statErr), "nothing may be created under the working directory")
}
