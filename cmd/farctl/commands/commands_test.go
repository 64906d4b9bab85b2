package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asger60/filehandler/codec"
)

func runCmd(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	verbose = false
	storeSpec = "local"
	inspectJobs = 4
	inspectLegacy = false
	packCompression = "gzip"
	packLevel = 0
	packCodec = "go-json"
	unpackPretty = false
	unpackLegacy = false
	listPattern = "*.far"
	listRecursive = false
	listLong = false
	configFile = ""

	var outBuf, errBuf bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestPackInspectUnpack(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "profile.json")
	out := filepath.Join(dir, "saves", "profile.far")
	require.NoError(t, os.WriteFile(in, []byte(`{"name":"ada","level":7}`), 0o644))

	_, _, err := runCmd(t, "", "pack", "-c", "zstd", in, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, codec.Sentinel, data[0])

	stdout, _, err := runCmd(t, "", "inspect", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "zstd")
	assert.Contains(t, stdout, "ok")

	stdout, _, err = runCmd(t, "", "unpack", out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fileVersion":3,"name":"ada","level":7}`, stdout)

	jsonOut := filepath.Join(dir, "profile.out.json")
	_, _, err = runCmd(t, "", "unpack", "--pretty", out, jsonOut)
	require.NoError(t, err)
	pretty, err := os.ReadFile(jsonOut)
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n  ")
}

func TestPackPlainText(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "plain.far")

	_, _, err := runCmd(t, `{"fileVersion":2,"name":"old"}`, "pack", "-c", "none", "-", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, byte('{'), data[0])

	stdout, _, err := runCmd(t, "", "inspect", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "text")
	assert.Contains(t, stdout, "deprecated")
}

func TestPackRejectsBadInput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bad.far")
	_, _, err := runCmd(t, "[1,2,3]", "pack", "-", out)
	assert.Error(t, err)

	_, _, err = runCmd(t, "{}", "pack", "-c", "brotli", "-", out)
	assert.Error(t, err)
}

func TestInspectReportsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.far")
	bad := filepath.Join(dir, "bad.far")
	require.NoError(t, os.WriteFile(good, []byte(`{"fileVersion":3}`), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte{codec.Sentinel}, 0o644))

	stdout, _, err := runCmd(t, "", "inspect", good, bad)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "good.far")
	assert.Contains(t, lines[1], "ok")
	assert.Contains(t, lines[2], "bad.far")
	assert.Contains(t, lines[2], "corrupt")

	_, _, err = runCmd(t, "", "inspect", filepath.Join(dir, "missing.far"))
	assert.Error(t, err)
}

func TestUnpackLegacy(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "legacy.far")
	legacy := codec.MustMarshal(codec.Msgpack{}, map[string]any{"fileVersion": 2, "name": "old"})
	require.NoError(t, os.WriteFile(file, legacy, 0o644))

	stdout, _, err := runCmd(t, "", "unpack", "--legacy", file)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fileVersion":2,"name":"old"}`, stdout)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "slot"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.far"), []byte(`{"fileVersion":3}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slot", "b.far"), []byte(`{"fileVersion":1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	stdout, _, err := runCmd(t, "", "list", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "a.far")
	assert.NotContains(t, stdout, "b.far")
	assert.NotContains(t, stdout, "notes.txt")

	stdout, _, err = runCmd(t, "", "list", "-r", "-l", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "a.far")
	assert.Contains(t, stdout, "b.far")
	assert.Contains(t, stdout, "v1")
}

func TestBadgerStore(t *testing.T) {
	store := "badger:" + t.TempDir()

	_, _, err := runCmd(t, `{"name":"kv"}`, "--store", store, "pack", "-", "/saves/kv.far")
	require.NoError(t, err)

	stdout, _, err := runCmd(t, "", "--store", store, "list", "/saves")
	require.NoError(t, err)
	assert.Equal(t, "/saves/kv.far\n", stdout)

	stdout, _, err = runCmd(t, "", "--store", store, "unpack", "/saves/kv.far")
	require.NoError(t, err)
	assert.JSONEq(t, `{"fileVersion":3,"name":"kv"}`, stdout)

	_, _, err = runCmd(t, "", "--store", "s3:bucket", "list", "/")
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	stdout, _, err := runCmd(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "mount_prefix: rytmos")
	assert.Contains(t, stdout, "max_writes: 28")

	file := filepath.Join(t.TempDir(), "filehandler.yaml")
	require.NoError(t, os.WriteFile(file, []byte("build_mode: nightly\n"), 0o644))
	_, _, err = runCmd(t, "", "config", "-f", file)
	assert.Error(t, err)
}
