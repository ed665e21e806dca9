package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS conversations (
    conv_key      TEXT PRIMARY KEY,
    kind          TEXT NOT NULL,
    name          TEXT NOT NULL,
    dir_path      TEXT NOT NULL,
    first_ts      TEXT NOT NULL DEFAULT '',
    last_ts       TEXT NOT NULL DEFAULT '',
    message_count INTEGER NOT NULL DEFAULT 0,
    summary       TEXT NOT NULL DEFAULT '',
    mtime         INTEGER NOT NULL DEFAULT 0,
    size          INTEGER NOT NULL DEFAULT 0,
    run_id        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS messages (
    conv_key  TEXT NOT NULL,
    msg_id    INTEGER NOT NULL,
    ts        TEXT NOT NULL DEFAULT '',
    slack_ts  TEXT NOT NULL DEFAULT '',
    user_id   TEXT NOT NULL DEFAULT '',
    user_name TEXT NOT NULL,
    text      TEXT NOT NULL,
    raw_text  TEXT NOT NULL DEFAULT '',
    file_path TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (conv_key, msg_id)
);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    text,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
    INSERT INTO messages_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return d, nil
}

// schemaVersion should be bumped whenever message normalization changes
// to force a full re-index.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() error {
	return d.resetOnChange("schema_version", schemaVersion)
}

// EnsureSettings forces a full re-index when the reassembly settings
// (filters, timestamp mode) differ from the ones the index was built with.
func (d *DB) EnsureSettings(fingerprint string) error {
	return d.resetOnChange("settings", fingerprint)
}

func (d *DB) resetOnChange(key, value string) error {
	cur, err := d.GetMeta(key)
	if err != nil {
		return err
	}
	if cur == value {
		return nil
	}
	// force re-index by resetting all conversation mtime/size to 0
	if _, err := d.db.Exec("UPDATE conversations SET mtime = 0, size = 0"); err != nil {
		return err
	}
	return d.SetMeta(key, value)
}

func (d *DB) GetMeta(key string) (string, error) {
	var v string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

func (d *DB) SetMeta(key, value string) error {
	_, err := d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type ConversationInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetConversationInfo(convKey string) (*ConversationInfo, error) {
	var info ConversationInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM conversations WHERE conv_key = ?",
		convKey,
	).Scan(&info.Mtime, &info.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllConversationKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT conv_key FROM conversations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteConversation(convKey string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteConversation(tx, convKey); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteConversation(tx *sql.Tx, convKey string) error {
	if _, err := tx.Exec("DELETE FROM messages WHERE conv_key = ?", convKey); err != nil {
		return err
	}
	_, err := tx.Exec("DELETE FROM conversations WHERE conv_key = ?", convKey)
	return err
}

func (d *DB) ConversationCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM conversations").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

func (d *DB) FTSCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&n)
	return n, err
}

type ConversationRow struct {
	Key          string
	Kind         string
	Name         string
	DirPath      string
	FirstTS      string
	LastTS       string
	MessageCount int
	Summary      string
}

func (d *DB) GetConversationByKey(convKey string) (*ConversationRow, error) {
	var c ConversationRow
	err := d.db.QueryRow(
		"SELECT conv_key, kind, name, dir_path, first_ts, last_ts, message_count, summary FROM conversations WHERE conv_key = ?",
		convKey,
	).Scan(&c.Key, &c.Kind, &c.Name, &c.DirPath, &c.FirstTS, &c.LastTS, &c.MessageCount, &c.Summary)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type MessageRow struct {
	ConvKey  string
	MsgID    int
	Ts       string
	SlackTS  string // epoch form as written in the export
	UserID   string
	UserName string
	Text     string
	FilePath string
}

const messageColumns = "conv_key, msg_id, ts, slack_ts, user_id, user_name, text, file_path"

func scanMessages(rows *sql.Rows) ([]MessageRow, error) {
	var msgs []MessageRow
	for rows.Next() {
		var m MessageRow
		if err := rows.Scan(&m.ConvKey, &m.MsgID, &m.Ts, &m.SlackTS, &m.UserID, &m.UserName, &m.Text, &m.FilePath); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// getMessages returns every message of a conversation in order.
func (d *DB) getMessages(convKey string) ([]MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE conv_key = ? ORDER BY msg_id",
		convKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// GetMessage returns one message, or nil if absent.
func (d *DB) GetMessage(convKey string, msgID int) (*MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE conv_key = ? AND msg_id = ?",
		convKey, msgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	msgs, err := scanMessages(rows)
	if err != nil || len(msgs) == 0 {
		return nil, err
	}
	return &msgs[0], nil
}

// GetMessagesWindow returns a window of messages around a hit message.
// startPos is the number of messages before the returned window.
// totalCount is the total number of messages in the conversation.
func (d *DB) GetMessagesWindow(convKey string, hitMsgID, context int) (msgs []MessageRow, hitIdx int, startPos int, totalCount int, err error) {
	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE conv_key = ?", convKey,
	).Scan(&totalCount)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	// msg_id is dense and 0-based, so it is also the row position
	startPos = 0
	limit := totalCount
	if hitMsgID >= 0 && hitMsgID < totalCount {
		startPos = max(hitMsgID-context, 0)
		endPos := min(hitMsgID+context+1, totalCount)
		limit = endPos - startPos
	}

	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE conv_key = ? ORDER BY msg_id LIMIT ? OFFSET ?",
		convKey, limit, startPos,
	)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	defer rows.Close()

	result, err := scanMessages(rows)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	localHitIdx := -1
	for i, m := range result {
		if m.MsgID == hitMsgID {
			localHitIdx = i
		}
	}
	return result, localHitIdx, startPos, totalCount, nil
}
