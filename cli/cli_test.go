package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeChunkFile(t *testing.T, dir string, v int64) string {
	t.Helper()
	path := filepath.Join(dir, "test.luac")
	require.NoError(t, os.WriteFile(path, minimalChunkBytes(v), 0o644))
	return path
}

func runCLI(args ...string) (exitCode int, stdout, stderr string) {
	var outBuf, errBuf bytes.Buffer
	code := (&Config{Stdout: &outBuf, Stderr: &errBuf}).Run(args)
	return code, outBuf.String(), errBuf.String()
}

func TestCLIRunExecutesChunk(t *testing.T) {
	path := writeChunkFile(t, t.TempDir(), 42)
	code, stdout, stderr := runCLI("run", path)
	assert.Equal(t, exitCodeOK, code, "stderr: %s", stderr)
	assert.Equal(t, "42\n", stdout)
}

func TestCLIDisasmListsInstructions(t *testing.T) {
	path := writeChunkFile(t, t.TempDir(), 1)
	code, stdout, stderr := runCLI("disasm", path)
	assert.Equal(t, exitCodeOK, code, "stderr: %s", stderr)
	assert.Contains(t, stdout, "LOADK")
	assert.Contains(t, stdout, "RETURN")
	assert.Contains(t, stdout, "function <test.luac")
}

func TestCLIRunMissingFile(t *testing.T) {
	code, _, stderr := runCLI("run", filepath.Join(t.TempDir(), "absent.luac"))
	assert.Equal(t, exitCodeLoadErr, code)
	assert.Contains(t, stderr, "absent.luac")
}

func TestCLIRunRejectsCorruptChunk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.luac")
	require.NoError(t, os.WriteFile(path, []byte("not a chunk"), 0o644))
	code, _, stderr := runCLI("run", path)
	assert.Equal(t, exitCodeLoadErr, code)
	assert.Contains(t, stderr, "bad signature")
}

// TestCLIRunDiscoversAdjacentConfig drops a quokkalua.yaml next to the
// chunk and relies on the default discovery rule rather than --config.
func TestCLIRunDiscoversAdjacentConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeChunkFile(t, dir, 7)
	cfg := "maxCallDepth: 16\nnatives:\n  - print\n  - clock\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quokkalua.yaml"), []byte(cfg), 0o644))

	code, stdout, stderr := runCLI("run", path)
	assert.Equal(t, exitCodeOK, code, "stderr: %s", stderr)
	assert.Equal(t, "7\n", stdout)
}

func TestCLIRunUnknownNativeInConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeChunkFile(t, dir, 1)
	cfgPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("natives: [frobnicate]\n"), 0o644))

	code, _, stderr := runCLI("--config", cfgPath, "run", path)
	assert.Equal(t, exitCodeSettingsErr, code)
	assert.Contains(t, stderr, "frobnicate")
}

func TestCLIRunMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeChunkFile(t, dir, 1)
	cfgPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("natives: [unclosed"), 0o644))

	code, _, _ := runCLI("--config", cfgPath, "run", path)
	assert.Equal(t, exitCodeSettingsErr, code)
}
