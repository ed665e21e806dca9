package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/slackprep/internal/filter"
	"github.com/Zuo-Peng/slackprep/internal/pipeline"
	"github.com/Zuo-Peng/slackprep/internal/scan"
	"github.com/Zuo-Peng/slackprep/internal/users"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func exportFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write(t, filepath.Join(root, "users.json"), `[
		{"id":"U1","name":"ann","real_name":"Ann Lee"},
		{"id":"U2","name":"bob"},
		{"id":"B1","name":"deploybot","is_bot":true}
	]`)
	write(t, filepath.Join(root, "general", "2024-01-02.json"), `[
		{"user":"U1","ts":"1704189600.000100","text":"hello <@U2> about the migration plan"},
		{"user":"U2","ts":"1704189660","text":"sounds good"}
	]`)
	write(t, filepath.Join(root, "ci-builds", "2024-01-01.json"), `[
		{"user":"B1","ts":"1704103200","text":"build passed"}
	]`)
	return root
}

func setup(t *testing.T, root string, opts pipeline.Options) (*DB, *scan.Export, *pipeline.Pipeline) {
	t.Helper()
	exp, err := scan.ScanExport(root)
	require.NoError(t, err)
	dir, err := users.Load(exp.UsersPath())
	require.NoError(t, err)
	p, err := pipeline.New(dir, opts, nil)
	require.NoError(t, err)

	db, err := OpenDB(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, exp, p
}

func TestIndexAll(t *testing.T) {
	root := exportFixture(t)
	db, exp, p := setup(t, root, pipeline.Options{})

	stats, err := IndexAll(db, exp, p, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 2, stats.Updated)
	assert.NotEmpty(t, stats.RunID)

	n, err := db.ConversationCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = db.MessageCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = db.FTSCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	conv, err := db.GetConversationByKey("general")
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, "channel", conv.Kind)
	assert.Equal(t, 2, conv.MessageCount)
	assert.Equal(t, "hello @bob about the migration plan", conv.Summary)

	msgs, err := db.getMessages("general")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Ann Lee", msgs[0].UserName)
	assert.Equal(t, "1704189600.000100", msgs[0].SlackTS)
	assert.Equal(t, "U2", msgs[1].UserID)
	assert.Equal(t, filepath.Join(root, "general", "2024-01-02.json"), msgs[1].FilePath)

	runID, err := db.GetMeta("last_run_id")
	require.NoError(t, err)
	assert.Equal(t, stats.RunID, runID)
}

func TestIndexAllIncremental(t *testing.T) {
	root := exportFixture(t)
	db, exp, p := setup(t, root, pipeline.Options{})

	_, err := IndexAll(db, exp, p, nil)
	require.NoError(t, err)

	stats, err := IndexAll(db, exp, p, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Updated)
	assert.Equal(t, 2, stats.Skipped)

	require.NoError(t, os.RemoveAll(filepath.Join(root, "ci-builds")))
	exp, err = scan.ScanExport(root)
	require.NoError(t, err)

	stats, err = IndexAll(db, exp, p, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pruned)

	conv, err := db.GetConversationByKey("ci-builds")
	require.NoError(t, err)
	assert.Nil(t, conv)
}

func TestIndexAllFiltered(t *testing.T) {
	root := exportFixture(t)
	opts := pipeline.Options{Filters: filter.Options{HumanOnly: true}}
	db, exp, p := setup(t, root, opts)
	require.NoError(t, db.EnsureSettings(Fingerprint(opts)))

	stats, err := IndexAll(db, exp, p, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 1, stats.Filtered)

	keys, err := db.AllConversationKeys()
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"general": {}}, keys)
}

func TestEnsureSettingsForcesReindex(t *testing.T) {
	root := exportFixture(t)
	db, exp, p := setup(t, root, pipeline.Options{})
	require.NoError(t, db.EnsureSettings(Fingerprint(pipeline.Options{})))

	_, err := IndexAll(db, exp, p, nil)
	require.NoError(t, err)

	require.NoError(t, db.EnsureSettings(Fingerprint(pipeline.Options{AbsoluteTimestamps: true})))
	stats, err := IndexAll(db, exp, p, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Updated)
}

func TestIndexAllInputError(t *testing.T) {
	root := exportFixture(t)
	db, exp, p := setup(t, root, pipeline.Options{})
	write(t, filepath.Join(root, "general", "2024-01-02.json"), `{not json`)

	_, err := IndexAll(db, exp, p, nil)
	assert.Error(t, err)
}

func TestGetMessagesWindow(t *testing.T) {
	root := exportFixture(t)
	db, exp, p := setup(t, root, pipeline.Options{})
	_, err := IndexAll(db, exp, p, nil)
	require.NoError(t, err)

	msgs, hitIdx, startPos, total, err := db.GetMessagesWindow("general", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, startPos)
	assert.Equal(t, 0, hitIdx)
	require.Len(t, msgs, 1)
	assert.Equal(t, "sounds good", msgs[0].Text)

	m, err := db.GetMessage("general", 0)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Ann Lee", m.UserName)
}

func TestIndexAllUsersChanged(t *testing.T) {
	root := exportFixture(t)
	db, exp, p := setup(t, root, pipeline.Options{})
	_, err := IndexAll(db, exp, p, nil)
	require.NoError(t, err)

	write(t, filepath.Join(root, "users.json"), `[
		{"id":"U1","name":"ann","real_name":"Ann Renamed"},
		{"id":"U2","name":"bob"},
		{"id":"B1","name":"deploybot","is_bot":true}
	]`)
	dir, err := users.Load(exp.UsersPath())
	require.NoError(t, err)
	p, err = pipeline.New(dir, pipeline.Options{}, nil)
	require.NoError(t, err)

	stats, err := IndexAll(db, exp, p, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Updated)
	assert.Equal(t, 0, stats.Skipped)

	msgs, err := db.getMessages("general")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Ann Renamed", msgs[0].UserName)

	n, err := db.FTSCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestIndexConversationFailureKeepsRows(t *testing.T) {
	root := exportFixture(t)
	db, exp, p := setup(t, root, pipeline.Options{})
	_, err := IndexAll(db, exp, p, nil)
	require.NoError(t, err)

	_, err = db.Raw().Exec(`CREATE TRIGGER reject_insert BEFORE INSERT ON messages
		WHEN new.text = 'rejected' BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	write(t, filepath.Join(root, "general", "2024-01-02.json"), `[
		{"user":"U1","ts":"1704189600","text":"rejected"}
	]`)
	exp, err = scan.ScanExport(root)
	require.NoError(t, err)

	_, err = IndexAll(db, exp, p, nil)
	require.Error(t, err)

	conv, err := db.GetConversationByKey("general")
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, 2, conv.MessageCount)

	msgs, err := db.getMessages("general")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello @bob about the migration plan", msgs[0].Text)
}
