package kvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asger60/filehandler/storage"
)

func openTestStore(t *testing.T, platform storage.Platform) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true, Platform: platform})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreConsoleVolume(t *testing.T) {
	s := openTestStore(t, storage.Console)

	require.NoError(t, s.WriteAllBytes("rytmos:/profile.far", []byte("v1")))
	got, err := s.ReadAllBytes("rytmos:/profile.far")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, s.AppendBytes("rytmos:/profile.far", []byte("+")))
	got, err = s.ReadAllBytes("rytmos:/profile.far")
	require.NoError(t, err)
	assert.Equal(t, "v1+", string(got))

	files, err := s.Files("rytmos:/", "*.far", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"rytmos:/profile.far"}, files)

	_, err = s.ReadAllBytes("other:/profile.far")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.ReadAllBytes("/profile.far")
	assert.ErrorIs(t, err, storage.ErrNotRooted)
}

func TestStoreDirectories(t *testing.T) {
	s := openTestStore(t, storage.Linux)

	assert.ErrorIs(t, s.WriteAllBytes("/d/a.far", nil), storage.ErrNotFound)

	require.NoError(t, s.CreateDirectory("/d/sub"))
	require.NoError(t, s.WriteAllBytes("/d/a.far", []byte("a")))
	require.NoError(t, s.WriteAllBytes("/d/sub/b.far", []byte("b")))
	require.NoError(t, s.WriteAllText("/d/notes.txt", "n"))

	t.Run("enumerate", func(t *testing.T) {
		files, err := s.Files("/d", "*.far", false)
		require.NoError(t, err)
		assert.Equal(t, []string{"/d/a.far"}, files)

		files, err = s.Files("/d", "*.far", true)
		require.NoError(t, err)
		assert.Equal(t, []string{"/d/a.far", "/d/sub/b.far"}, files)

		dirs, err := s.Directories("/", "*", true)
		require.NoError(t, err)
		assert.Equal(t, []string{"/d", "/d/sub"}, dirs)
	})

	t.Run("copy and move", func(t *testing.T) {
		require.NoError(t, s.CopyFile("/d/a.far", "/d/c.far", false))
		assert.ErrorIs(t, s.CopyFile("/d/a.far", "/d/c.far", false), storage.ErrAlreadyExists)
		assert.ErrorIs(t, s.MoveFile("/d/a.far", "/d/c.far"), storage.ErrAlreadyExists)
		require.NoError(t, s.MoveFile("/d/c.far", "/d/sub/c.far"))

		ok, err := s.FileExists("/d/c.far")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("move directory", func(t *testing.T) {
		require.NoError(t, s.MoveDirectory("/d", "/e"))
		got, err := s.ReadAllText("/e/sub/b.far")
		require.NoError(t, err)
		assert.Equal(t, "b", got)

		ok, err := s.DirectoryExists("/d")
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = s.DirectoryExists("/e/sub")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("delete directory", func(t *testing.T) {
		assert.ErrorIs(t, s.DeleteDirectory("/e", false), storage.ErrDirectoryNotEmpty)
		assert.ErrorIs(t, s.DeleteDirectory("/", true), storage.ErrRootOperation)
		require.NoError(t, s.DeleteDirectory("/e", true))

		files, err := s.Files("/", "*", true)
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}

func TestStoreWorksWithFS(t *testing.T) {
	s := openTestStore(t, storage.Console)
	fs := storage.NewFS(s)

	p, err := fs.Parse("rytmos:/slot/1.far")
	require.NoError(t, err)
	require.NoError(t, fs.WriteAllBytes(p, []byte("x")))
	require.NoError(t, fs.Delete(p, storage.DeleteNormal))

	ok, err := fs.Exists(p)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenRejectsWindows(t *testing.T) {
	_, err := Open(Options{InMemory: true, Platform: storage.Windows})
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)

	_, err = Open(Options{})
	assert.Error(t, err)
}
