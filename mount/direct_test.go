package mount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asger60/filehandler/storage"
)

func TestDirect(t *testing.T) {
	mem := storage.NewMemory(storage.Linux)
	root, err := AppDataRoot(mem, storage.FolderLocalAppData, "Rytmos")
	require.NoError(t, err)
	assert.Equal(t, "/home/player/.local/share/Rytmos", root)

	guard := &countingGuard{}
	d, err := NewDirect(mem, root, WithExitGuard(guard))
	require.NoError(t, err)

	t.Run("save creates the root", func(t *testing.T) {
		require.NoError(t, d.Save("slot/1.far", []byte("one")))
		ok, err := mem.DirectoryExists(root + "/slot")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, guard.enters)
		assert.Equal(t, 0, guard.depth)
	})

	t.Run("load and exists", func(t *testing.T) {
		ok, err := d.Exists("slot/1.far")
		require.NoError(t, err)
		assert.True(t, ok)

		data, err := d.Load("slot/1.far")
		require.NoError(t, err)
		assert.Equal(t, "one", string(data))

		_, err = d.Load("missing.far")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, d.Delete("slot/1.far"))
		require.NoError(t, d.Delete("slot/1.far"))
		ok, err := d.Exists("slot/1.far")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("flush is a no-op", func(t *testing.T) {
		res, err := d.Flush(FlushDrain)
		require.NoError(t, err)
		assert.Equal(t, FlushResult{Mode: FlushDrain}, res)
		assert.Zero(t, d.Pending())
	})

	t.Run("closed", func(t *testing.T) {
		require.NoError(t, d.Close())
		assert.ErrorIs(t, d.Save("x.far", nil), ErrClosed)
	})
}

func TestDirectRejectsRelativeRoot(t *testing.T) {
	_, err := NewDirect(storage.NewMemory(storage.Linux), "saves")
	assert.ErrorIs(t, err, storage.ErrNotRooted)
}

func TestCheckName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"save.far", true},
		{"slot/1.far", true},
		{`slot\1.far`, true},
		{"", false},
		{"  ", false},
		{"/save.far", false},
		{`\save.far`, false},
		{"c:/save.far", false},
		{"slot/../../save.far", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkName(tt.name)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidName)
			}
		})
	}
}

func TestFlushModeString(t *testing.T) {
	assert.Equal(t, "due", FlushDue.String())
	assert.Equal(t, "force", FlushForce.String())
	assert.Equal(t, "drain", FlushDrain.String())
	assert.Equal(t, "flush(9)", FlushMode(9).String())
}
