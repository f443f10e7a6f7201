package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func corpusDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := range n {
		name := filepath.Join(dir, fmt.Sprintf("doc-%02d.xml", i))
		require.NoError(t, os.WriteFile(name, []byte(fmt.Sprintf("<doc n=\"%d\"/>", i)), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("junk"), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := RootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	code := run(context.Background(), cmd, args, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Memory(t *testing.T) {
	dir := corpusDir(t, 3)

	code, out, errOut := execute(t, "localhost", "8000", dir, "2", "--poll-interval", "1ms")
	require.Equal(t, exitOK, code, errOut)

	assert.Contains(t, out, "rounds:     2 of 2 completed")
	assert.Contains(t, out, "writes:     6 (0 failed)")
	assert.Contains(t, out, "batches:    2 (0 failed)")
	assert.Contains(t, out, "Done.")
	assert.Contains(t, errOut, "msg=\"entering loop\"")
}

func TestRun_EchoesArgsAtDebug(t *testing.T) {
	dir := corpusDir(t, 1)

	code, _, errOut := execute(t, "db.local", "8011", dir, "1", "--log-level", "debug", "--poll-interval", "1ms")
	require.Equal(t, exitOK, code, errOut)

	assert.Contains(t, errOut, "ARG 0:db.local")
	assert.Contains(t, errOut, "ARG 1:8011")
	assert.Contains(t, errOut, "ARG 3:1")
}

func TestRun_JSONOutput(t *testing.T) {
	dir := corpusDir(t, 5)

	code, out, errOut := execute(t, "localhost", "8000", dir, "3",
		"--mode", "item",
		"--output", "json",
		"--encoding", "zstd",
		"--poll-interval", "1ms",
	)
	require.Equal(t, exitOK, code, errOut)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "item", got["mode"])
	assert.Equal(t, float64(15), got["writes"])
	assert.Equal(t, "/performance/restfast/", got["uri_base"])
	assert.Equal(t, true, got["ok"])
}

func TestRun_LocalAndVerify(t *testing.T) {
	dir := corpusDir(t, 4)
	root := t.TempDir()

	code, out, errOut := execute(t, "localhost", "8000", dir, "3",
		"--backend", "local",
		"--bucket", root,
		"--split-size", "3",
		"--poll-interval", "1ms",
	)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "batches:    6 (0 failed)")

	data, err := os.ReadFile(filepath.Join(root, "performance", "restbatch", "2", "3.xml"))
	require.NoError(t, err)
	assert.Equal(t, `<doc n="3"/>`, string(data))

	code, out, errOut = execute(t, "verify", "localhost", "8000", dir, "3", "--backend", "local", "--bucket", root)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "expected: 12")
	assert.Contains(t, out, "found:    12")

	code, out, _ = execute(t, "verify", "localhost", "8000", dir, "4", "--backend", "local", "--bucket", root)
	assert.Equal(t, exitFailures, code)
	assert.Contains(t, out, "found:    12")
	assert.Contains(t, out, "missing:  /performance/restbatch/3/0.xml")
}

func TestRun_VerifyRelativeURIBase(t *testing.T) {
	dir := corpusDir(t, 2)
	root := t.TempDir()

	code, _, errOut := execute(t, "localhost", "8000", dir, "1",
		"--backend", "local",
		"--bucket", root,
		"--uri-base", "perf/",
		"--poll-interval", "1ms",
	)
	require.Equal(t, exitOK, code, errOut)

	code, out, errOut := execute(t, "verify", "localhost", "8000", dir, "1",
		"--backend", "local", "--bucket", root, "--uri-base", "perf/")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "expected: 2")
	assert.Contains(t, out, "found:    2")
	assert.NotContains(t, out, "missing:")

	code, out, _ = execute(t, "verify", "localhost", "8000", dir, "2",
		"--backend", "local", "--bucket", root, "--uri-base", "perf/")
	assert.Equal(t, exitFailures, code)
	assert.Contains(t, out, "found:    2")
	assert.Contains(t, out, "missing:  perf/1/0.xml")
}

func TestConfig_ByteRate(t *testing.T) {
	cmd := RootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--byte-rate", "4096"}))

	v := viper.New()
	require.NoError(t, v.BindPFlags(cmd.Flags()))

	c, err := parseConfig(v, []string{"localhost", "8000", t.TempDir(), "1"})
	require.NoError(t, err)
	assert.Equal(t, int64(4096), c.ByteRate)
}

func TestRootCmd_WholeCorpusRoundsHelp(t *testing.T) {
	long := RootCmd().Long
	assert.Contains(t, long, "--ceiling 1")
	assert.Contains(t, long, "/performance/xcc/")
}

func TestRun_StrictFailures(t *testing.T) {
	dir := corpusDir(t, 2)

	// A regular file as store root makes every write fail.
	root := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(root, nil, 0o644))

	args := []string{"localhost", "8000", dir, "2", "--backend", "local", "--bucket", root, "--poll-interval", "1ms"}

	code, out, errOut := execute(t, args...)
	assert.Equal(t, exitOK, code, "failures alone do not change the exit status")
	assert.Contains(t, out, "writes:     4 (4 failed)")
	assert.Contains(t, errOut, "split failed")

	code, _, errOut = execute(t, append(args, "--strict")...)
	assert.Equal(t, exitFailures, code)
	assert.Contains(t, errOut, "round 0")
}

func TestRun_ConfigFileAndEnv(t *testing.T) {
	dir := corpusDir(t, 2)
	cfg := filepath.Join(t.TempDir(), "docload.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("mode: item\nuri-base: /cfg/\noutput: json\n"), 0o644))

	t.Setenv("DOCLOAD_POLL_INTERVAL", "1ms")

	code, out, errOut := execute(t, "localhost", "8000", dir, "1", "--config", cfg)
	require.Equal(t, exitOK, code, errOut)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "item", got["mode"])
	assert.Equal(t, "/cfg/", got["uri_base"])
}

func TestRun_UsageErrors(t *testing.T) {
	dir := corpusDir(t, 1)

	tests := []struct {
		name string
		args []string
	}{
		{"missing args", []string{"localhost", "8000"}},
		{"bad port", []string{"localhost", "http", dir, "1"}},
		{"port out of range", []string{"localhost", "70000", dir, "1"}},
		{"negative repeat", []string{"localhost", "8000", dir, "-1"}},
		{"empty host", []string{" ", "8000", dir, "1"}},
		{"missing dir", []string{"localhost", "8000", filepath.Join(dir, "nope"), "1"}},
		{"unknown mode", []string{"localhost", "8000", dir, "1", "--mode", "bulk"}},
		{"unknown backend", []string{"localhost", "8000", dir, "1", "--backend", "tape"}},
		{"unknown encoding", []string{"localhost", "8000", dir, "1", "--encoding", "gzip"}},
		{"zero split size", []string{"localhost", "8000", dir, "1", "--split-size", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := execute(t, tt.args...)
			assert.Equal(t, exitError, code)
			assert.Contains(t, errOut, "Error:")
		})
	}
}

func TestRun_ZeroRepeat(t *testing.T) {
	dir := corpusDir(t, 3)

	code, out, errOut := execute(t, "localhost", "8000", dir, "0")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "writes:     0 (0 failed)")
	assert.Contains(t, out, "Done.")
}
