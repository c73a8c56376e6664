package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	return cmd.ExecuteContext(context.Background())
}

func TestRootArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"No arguments", nil},
		{"Only video path", []string{"in.mp4"}},
		{"Extra argument", []string{"in.mp4", "out", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, execute(t, tt.args...))
		})
	}
}

func TestRoot_TextFileRenamedToMP4(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "notes.mp4")
	require.NoError(t, os.WriteFile(input, []byte("plain text, not a video\n"), 0o644))
	out := filepath.Join(dir, "out")

	require.NoError(t, execute(t, input, out))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRoot_MissingVideo(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "out")

	require.NoError(t, execute(t, filepath.Join(dir, "missing.mp4"), out))
	assert.DirExists(t, out)
}

func TestRoot_OutputDirCannotBeCreated(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := execute(t, filepath.Join(dir, "missing.mp4"), filepath.Join(blocker, "out"))
	assert.Error(t, err)
}
