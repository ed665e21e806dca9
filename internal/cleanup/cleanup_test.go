package cleanup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func export(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write(t, filepath.Join(root, "users.json"), `[]`)
	write(t, filepath.Join(root, "channels.json"), `[]`)
	write(t, filepath.Join(root, "mpims.json"), `[]`)
	write(t, filepath.Join(root, "general", "2024-01-01.json"),
		`[{"user":"U1","ts":"1","files":[{"id":"F1","name":"a.png"}]}]`)
	write(t, filepath.Join(root, "__uploads", "F1", "a.png"), "keep")
	write(t, filepath.Join(root, "__uploads", "F9", "b.png"), "unused")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	return root
}

func TestDryRunChangesNothing(t *testing.T) {
	root := export(t)

	rep, err := Run(root, false, nil)
	require.NoError(t, err)
	assert.False(t, rep.Applied)

	var kinds []ActionKind
	for _, a := range rep.Actions {
		kinds = append(kinds, a.Kind)
	}
	assert.ElementsMatch(t, []ActionKind{RemoveUpload, RemoveMetadata, RemoveMetadata, RemoveEmptyDir}, kinds)
	assert.Equal(t, int64(len("unused")+len("[]")*2), rep.Bytes())

	_, err = os.Stat(filepath.Join(root, "__uploads", "F9"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "channels.json"))
	assert.NoError(t, err)
}

func TestApply(t *testing.T) {
	root := export(t)

	_, err := Run(root, true, nil)
	require.NoError(t, err)

	for _, gone := range []string{"__uploads/F9", "channels.json", "mpims.json", "empty"} {
		_, err := os.Stat(filepath.Join(root, gone))
		assert.True(t, os.IsNotExist(err), gone)
	}
	for _, kept := range []string{"__uploads/F1/a.png", "users.json", "general/2024-01-01.json"} {
		_, err := os.Stat(filepath.Join(root, kept))
		assert.NoError(t, err, kept)
	}
}

func TestUploadsBecomingEmpty(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "general", "2024-01-01.json"), `[{"user":"U1","ts":"1"}]`)
	write(t, filepath.Join(root, "__uploads", "F9", "b.png"), "unused")

	rep, err := Run(root, true, nil)
	require.NoError(t, err)
	require.Len(t, rep.Actions, 2)
	assert.Equal(t, RemoveEmptyDir, rep.Actions[1].Kind)

	_, err = os.Stat(filepath.Join(root, "__uploads"))
	assert.True(t, os.IsNotExist(err))
}
