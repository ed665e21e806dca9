package index

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Zuo-Peng/slackprep/internal/parse"
	"github.com/Zuo-Peng/slackprep/internal/pipeline"
	"github.com/Zuo-Peng/slackprep/internal/scan"
)

const tsLayout = "2006-01-02T15:04:05"

type Stats struct {
	Scanned  int
	Updated  int
	Skipped  int
	Filtered int
	Pruned   int
	RunID    string
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d filtered=%d pruned=%d",
		s.Scanned, s.Updated, s.Skipped, s.Filtered, s.Pruned)
}

// Fingerprint identifies the reassembly settings an index was built with.
func Fingerprint(opts pipeline.Options) string {
	f := opts.Filters.Effective()
	return fmt.Sprintf("abs=%t bots=%t channels=%t content=%t",
		opts.AbsoluteTimestamps, f.SkipBots, f.SkipAutomationChannels, f.SkipAutomatedContent)
}

// usersDigest hashes users.json. Display names and bot flags feed every
// indexed row, so any edit to the file invalidates the whole index.
func usersDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &parse.InputError{Path: path, Err: err}
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// IndexAll brings the index in line with exp. Unchanged conversations are
// skipped; conversations that vanished or are now filtered out are pruned.
// A changed users.json re-indexes everything. Input errors abort the run.
func IndexAll(db *DB, exp *scan.Export, p *pipeline.Pipeline, log *slog.Logger) (Stats, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	stats := Stats{RunID: uuid.NewString()}

	digest, err := usersDigest(exp.UsersPath())
	if err != nil {
		return stats, err
	}
	if err := db.resetOnChange("users", digest); err != nil {
		return stats, err
	}

	convs := exp.List()
	stats.Scanned = len(convs)

	// track which conversations we see, for pruning
	seenKeys := make(map[string]struct{})

	var pstats pipeline.Stats
	for _, conv := range convs {
		needs, err := needsUpdate(db, conv.Name, conv.Mtime, conv.Size)
		if err != nil {
			return stats, fmt.Errorf("check %s: %w", conv.Name, err)
		}
		if !needs {
			seenKeys[conv.Name] = struct{}{}
			stats.Skipped++
			continue
		}

		sec, ok, err := p.Process(exp, conv.Name, &pstats)
		if err != nil {
			return stats, err
		}
		if !ok {
			stats.Filtered++
			continue
		}
		seenKeys[conv.Name] = struct{}{}

		if err := indexConversation(db, conv, sec, stats.RunID); err != nil {
			return stats, fmt.Errorf("index %s: %w", conv.Name, err)
		}
		stats.Updated++
		log.Debug("indexed conversation", "conversation", conv.Name, "messages", len(sec.Messages))
	}

	// prune conversations whose directories no longer exist
	pruned, err := pruneConversations(db, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	if err := db.SetMeta("last_run_id", stats.RunID); err != nil {
		return stats, err
	}
	return stats, nil
}

func needsUpdate(db *DB, convKey string, mtime, size int64) (bool, error) {
	info, err := db.GetConversationInfo(convKey)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new conversation
	}
	return info.Mtime != mtime || info.Size != size, nil
}

func indexConversation(db *DB, conv scan.Conversation, sec pipeline.Section, runID string) error {
	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// old rows go in the same tx so a failed insert keeps them
	if err := deleteConversation(tx, conv.Name); err != nil {
		return err
	}

	var firstTS, lastTS, summary string
	if n := len(sec.Messages); n > 0 {
		firstTS = sec.Messages[0].Time.Format(tsLayout)
		lastTS = sec.Messages[n-1].Time.Format(tsLayout)
		summary = truncate(sec.Messages[0].Text, 200)
	}

	_, err = tx.Exec(
		`INSERT INTO conversations (conv_key, kind, name, dir_path, first_ts, last_ts, message_count, summary, mtime, size, run_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		conv.Name,
		sec.Kind.Key(),
		sec.Name,
		conv.Dir,
		firstTS,
		lastTS,
		len(sec.Messages),
		summary,
		conv.Mtime,
		conv.Size,
		runID,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (conv_key, msg_id, ts, slack_ts, user_id, user_name, text, raw_text, file_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range sec.Messages {
		_, err := stmt.Exec(
			conv.Name,
			i,
			m.Time.Format(tsLayout),
			slackTS(m.Time),
			m.UserID,
			m.Author,
			m.Text,
			m.RawText,
			m.SourceFile,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneConversations(db *DB, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.AllConversationKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteConversation(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}

// slackTS formats t the way the export writes message ids.
func slackTS(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
