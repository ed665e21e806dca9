package users

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/slackprep/internal/parse"
)

const usersJSON = `[
	{"id": "U1", "name": "ann", "real_name": "Ann Lee"},
	{"id": "U2", "name": "bob"},
	{"id": "U3", "profile": {"real_name": "Cy Young"}, "name": "cy"},
	{"id": "U4"},
	{"id": "B1", "name": "ci-bot", "is_bot": true},
	{"id": "B2", "name": "alerts", "is_bot": false}
]`

func writeUsers(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir, err := Load(writeUsers(t, usersJSON))
	require.NoError(t, err)

	assert.Equal(t, "Ann Lee", dir.Name("U1"))
	assert.Equal(t, "bob", dir.Name("U2"))
	assert.Equal(t, "Cy Young", dir.Name("U3"))
	assert.Equal(t, Unknown, dir.Name("U4"))
	assert.Equal(t, Unknown, dir.Name("U404"))
	assert.Equal(t, 6, dir.Len())

	_, ok := dir.Lookup("U404")
	assert.False(t, ok)

	assert.Equal(t, map[string]struct{}{"B1": {}}, dir.BotIDs())
}

func TestLoadBotIDs(t *testing.T) {
	bots, err := LoadBotIDs(writeUsers(t, usersJSON))
	require.NoError(t, err)
	assert.Len(t, bots, 1)
	assert.Contains(t, bots, "B1")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "users.json"))
	var inErr *parse.InputError
	assert.True(t, errors.As(err, &inErr))

	_, err = Load(writeUsers(t, `"not an array"`))
	assert.True(t, errors.As(err, &inErr))

	_, err = LoadBotIDs(writeUsers(t, `[{"name": "no id"}]`))
	assert.True(t, errors.As(err, &inErr))
}

func TestFromNames(t *testing.T) {
	dir := FromNames(map[string]string{"U1": "Ann", "U2": ""})
	assert.Equal(t, "Ann", dir.Name("U1"))
	assert.Equal(t, Unknown, dir.Name("U2"))
	assert.Nil(t, dir.BotIDs())
}
