package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEnv is an isolated invitekit environment with its own config and
// data directories.
type testEnv struct {
	t         *testing.T
	TempDir   string
	ConfigDir string
	DataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	for _, key := range []string{
		"INVITEKIT_CONFIG_DIR", "INVITEKIT_DATA_DIR", "INVITEKIT_CATALOG_DIR",
		"INVITEKIT_BACKEND", "INVITEKIT_CATEGORY", "INVITEKIT_MODE",
		"INVITEKIT_LOG_LEVEL", "INVITEKIT_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	tempDir := t.TempDir()
	return &testEnv{
		t:         t,
		TempDir:   tempDir,
		ConfigDir: filepath.Join(tempDir, "config"),
		DataDir:   filepath.Join(tempDir, "data"),
	}
}

// cmdResult holds the result of one command execution.
type cmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// run executes invitekit in-process with the environment's directories.
func (e *testEnv) run(args ...string) cmdResult {
	e.t.Helper()

	allArgs := append([]string{"--config-dir", e.ConfigDir, "--data-dir", e.DataDir}, args...)
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(allArgs)

	err := root.Execute()
	return cmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: ExitCode(err),
	}
}

// mustRun executes invitekit and fails the test on a non-zero exit code.
func (e *testEnv) mustRun(args ...string) cmdResult {
	e.t.Helper()
	result := e.run(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("invitekit %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// writeFile writes content under the environment's temp dir and returns
// the path.
func (e *testEnv) writeFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.TempDir, name)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func parseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}
