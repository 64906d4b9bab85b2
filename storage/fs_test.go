package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asger60/filehandler/spath"
)

func newTestFS(t *testing.T) (*FS, *Memory) {
	t.Helper()
	m := NewMemory(Linux)
	return NewFS(m), m
}

func TestFSWriteCreatesParents(t *testing.T) {
	fs, m := newTestFS(t)
	p := spath.Unix.MustParse("/a/b/c.far")

	require.NoError(t, fs.WriteAllBytes(p, []byte("x")))
	ok, err := m.DirectoryExists("/a/b")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, fs.WriteAllText(spath.Unix.MustParse("/t/notes.txt"), "hi"))
	text, err := fs.ReadAllText(spath.Unix.MustParse("/t/notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", text)
}

func TestFSRelativeResolvesAgainstCurrentDirectory(t *testing.T) {
	fs, m := newTestFS(t)
	require.NoError(t, m.CreateDirectory("/work"))
	m.SetCurrentDirectory("/work")

	created, err := fs.CreateFile(spath.Unix.MustParse("out/file.bin"))
	require.NoError(t, err)
	assert.Equal(t, "/work/out/file.bin", created.String())

	ok, err := m.FileExists("/work/out/file.bin")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFSGuards(t *testing.T) {
	fs, _ := newTestFS(t)

	_, err := fs.ReadAllBytes(spath.Path{})
	assert.ErrorIs(t, err, spath.ErrUninitialized)

	root := spath.Unix.MustParse("/")
	assert.ErrorIs(t, fs.Delete(root, DeleteNormal), ErrRootOperation)
	_, err = fs.DeleteContents(root)
	assert.ErrorIs(t, err, ErrRootOperation)
	_, err = fs.CreateDirectory(root)
	assert.ErrorIs(t, err, ErrRootOperation)
	_, err = fs.Move(root, spath.Unix.MustParse("/x"))
	assert.ErrorIs(t, err, ErrRootOperation)
	assert.NoError(t, fs.EnsureDirectoryExists(root))
}

func TestFSDelete(t *testing.T) {
	fs, m := newTestFS(t)
	dir := spath.Unix.MustParse("/d")
	file := spath.Unix.MustParse("/d/sub/a.far")
	require.NoError(t, fs.WriteAllBytes(file, []byte("a")))

	assert.ErrorIs(t, fs.Delete(spath.Unix.MustParse("/missing"), DeleteNormal), ErrNotFound)
	require.NoError(t, fs.DeleteIfExists(spath.Unix.MustParse("/missing"), DeleteNormal))

	require.NoError(t, fs.Delete(dir, DeleteNormal))
	ok, err := m.DirectoryExists("/d")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFSDeleteSoftSwallowsIOErrors(t *testing.T) {
	faulty := NewFaulty(NewMemory(Linux))
	fs := NewFS(faulty)
	file := spath.Unix.MustParse("/locked.far")
	require.NoError(t, fs.WriteAllBytes(file, []byte("a")))
	faulty.AddRule("locked", Fault{FailDelete: true, FailAfterBytes: -1})

	assert.ErrorIs(t, fs.Delete(file, DeleteNormal), ErrInjected)
	assert.NoError(t, fs.Delete(file, DeleteSoft))
}

func TestFSDeleteContents(t *testing.T) {
	fs, m := newTestFS(t)
	dir := spath.Unix.MustParse("/d")
	require.NoError(t, fs.WriteAllBytes(spath.Unix.MustParse("/d/a"), nil))
	require.NoError(t, fs.WriteAllBytes(spath.Unix.MustParse("/d/sub/b"), nil))

	_, err := fs.DeleteContents(dir)
	require.NoError(t, err)
	files, err := m.Files("/d", "*", true)
	require.NoError(t, err)
	assert.Empty(t, files)
	ok, err := m.DirectoryExists("/d")
	require.NoError(t, err)
	assert.True(t, ok, "the directory itself survives")

	_, err = fs.DeleteContents(spath.Unix.MustParse("/fresh"))
	require.NoError(t, err)
	ok, err = m.DirectoryExists("/fresh")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, fs.WriteAllBytes(spath.Unix.MustParse("/file"), nil))
	_, err = fs.DeleteContents(spath.Unix.MustParse("/file"))
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestFSMove(t *testing.T) {
	fs, m := newTestFS(t)
	src := spath.Unix.MustParse("/in/a.far")
	require.NoError(t, fs.WriteAllBytes(src, []byte("a")))
	require.NoError(t, m.CreateDirectory("/out"))

	t.Run("into existing directory", func(t *testing.T) {
		got, err := fs.Move(src, spath.Unix.MustParse("/out"))
		require.NoError(t, err)
		assert.Equal(t, "/out/a.far", got.String())
	})

	t.Run("relative destination renames in place", func(t *testing.T) {
		got, err := fs.Move(spath.Unix.MustParse("/out/a.far"), spath.Unix.MustParse("b.far"))
		require.NoError(t, err)
		assert.Equal(t, "/out/b.far", got.String())
	})

	t.Run("replaces an existing file", func(t *testing.T) {
		require.NoError(t, fs.WriteAllBytes(spath.Unix.MustParse("/out/c.far"), []byte("old")))
		_, err := fs.Move(spath.Unix.MustParse("/out/b.far"), spath.Unix.MustParse("/out/c.far"))
		require.NoError(t, err)
		data, err := m.ReadAllBytes("/out/c.far")
		require.NoError(t, err)
		assert.Equal(t, "a", string(data))
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := fs.Move(spath.Unix.MustParse("/nope"), spath.Unix.MustParse("/x"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFSCopyTree(t *testing.T) {
	fs, m := newTestFS(t)
	for _, name := range []string{"/src/a.far", "/src/skip.tmp", "/src/nested/b.far"} {
		require.NoError(t, fs.WriteAllBytes(spath.Unix.MustParse(name), []byte(name)))
	}

	onlyFar := func(p spath.Path) bool { return p.HasExtension("far") }
	got, err := fs.Copy(spath.Unix.MustParse("/src"), spath.Unix.MustParse("/dst"), onlyFar)
	require.NoError(t, err)
	assert.Equal(t, "/dst", got.String())

	files, err := m.Files("/dst", "*", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"/dst/a.far", "/dst/nested/b.far"}, files)

	data, err := m.ReadAllBytes("/dst/nested/b.far")
	require.NoError(t, err)
	assert.Equal(t, "/src/nested/b.far", string(data))
}

func TestFSTempNames(t *testing.T) {
	fs, m := newTestFS(t)
	require.NoError(t, m.CreateDirectory("/tmp"))

	name, err := fs.TempFileName("save")
	require.NoError(t, err)
	base, err := name.FileName()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(base, "save_"))
	ok, err := fs.Exists(name)
	require.NoError(t, err)
	assert.False(t, ok, "temp names are not created")

	dir, err := fs.CreateTempDirectory("")
	require.NoError(t, err)
	ok, err = fs.DirectoryExists(dir)
	require.NoError(t, err)
	assert.True(t, ok)
	parent, err := dir.Parent()
	require.NoError(t, err)
	assert.Equal(t, "/tmp", parent.String())
}

func TestFSContents(t *testing.T) {
	fs, _ := newTestFS(t)
	require.NoError(t, fs.WriteAllBytes(spath.Unix.MustParse("/d/a"), nil))
	require.NoError(t, fs.EnsureDirectoryExists(spath.Unix.MustParse("/d/z")))

	contents, err := fs.Contents(spath.Unix.MustParse("/d"), "*", false)
	require.NoError(t, err)
	require.Len(t, contents, 2)
	assert.Equal(t, "/d/a", contents[0].String())
	assert.Equal(t, "/d/z", contents[1].String())
}
