package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func runArgs(t *testing.T, root string, extra ...string) []string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "import.db")
	args := []string{"run", "--env", filepath.Join(t.TempDir(), "none.env"),
		"--driver", "sqlite", "--dsn", dsn, "--source", "dir", "--root", root}
	return append(args, extra...)
}

func TestTemplateThenRun(t *testing.T) {
	root := t.TempDir()
	out, err := execute(t, "template", "--out", root)
	require.NoError(t, err)
	assert.Equal(t, 8, strings.Count(out, "\n"))

	out, err = execute(t, runArgs(t, root)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Импорт завершен: стран 0")

	out, err = execute(t, runArgs(t, root, "--json", "--policy", "tolerant")...)
	require.NoError(t, err)
	var result struct {
		Run struct {
			Status  string
			Trigger string
			Policy  string
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "succeeded", result.Run.Status)
	assert.Equal(t, "cli", result.Run.Trigger)
	assert.Equal(t, "tolerant", result.Run.Policy)
}

func TestRunExitCodes(t *testing.T) {
	_, err := execute(t, runArgs(t, t.TempDir())...)
	require.Error(t, err)
	assert.Equal(t, exitSource, exitCode(err))

	_, err = execute(t, runArgs(t, t.TempDir(), "--policy", "lenient")...)
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = execute(t, runArgs(t, t.TempDir(), "--mapping", filepath.Join(t.TempDir(), "missing.yaml"))...)
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestLayouts(t *testing.T) {
	out, err := execute(t, "layouts")
	require.NoError(t, err)
	assert.Contains(t, out, "MODERATOR")
	assert.Contains(t, out, "specialization=6 event=7 gender=1")
	assert.Contains(t, out, "winner=13")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("plain")))
	assert.Equal(t, exitDatabase, exitCode(withCode(exitDatabase, errors.New("db"))))
	assert.Nil(t, withCode(exitImport, nil))
}
