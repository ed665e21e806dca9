package search

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/slackprep/internal/index"
)

type Result struct {
	ConvKey   string
	MsgID     int // -1 when the result is a whole conversation
	Timestamp string
	Kind      string
	Name      string
	UserName  string
	Summary   string
	Snippet   string
	Rank      float64
}

type Options struct {
	Query string
	Kind  string // "" = all, "channel", "dm", "group"
	User  string // "" = all, matches user id or display name
	Since string // "" = no filter, e.g. "2024-01-01"
	Limit int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	runes := []rune(text)
	// match on lowercased runes; only trust positions when lowering kept the rune count
	lower := []rune(strings.ToLower(text))
	lq := []rune(strings.ToLower(query))
	pos := -1
	if len(lq) > 0 && len(lower) == len(runes) {
		pos = runeIndex(lower, lq)
	}
	if pos < 0 {
		// no match, return head
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}

	qLen := len(lq)
	start := max(pos-contextChars, 0)
	end := min(pos+qLen+contextChars, len(runes))

	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}

	snippet := string(runes[start:pos]) + ">>>" + string(runes[pos:pos+qLen]) + "<<<" + string(runes[pos+qLen:end])
	return prefix + snippet + suffix
}

func runeIndex(s, sub []rune) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if slices.Equal(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

// Search returns the best-ranked message per conversation.
func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// Fetch more results before dedup so we still have enough after
	origLimit := opts.Limit
	opts.Limit = origLimit * 3

	var results []Result
	var err error
	if containsCJK(opts.Query) {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.ConvKey] {
			continue
		}
		seen[r.ConvKey] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

// filters builds the shared kind/user/since conditions.
func filters(opts Options) ([]string, []any) {
	var conditions []string
	var args []any
	if opts.Kind != "" {
		conditions = append(conditions, "c.kind = ?")
		args = append(args, opts.Kind)
	}
	if opts.User != "" {
		conditions = append(conditions, "(m.user_id = ? OR m.user_name = ?)")
		args = append(args, opts.User, opts.User)
	}
	if opts.Since != "" {
		conditions = append(conditions, "m.ts >= ?")
		args = append(args, opts.Since)
	}
	return conditions, args
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []any{ftsQuery(opts.Query)}
	fc, fa := filters(opts)
	conditions = append(conditions, fc...)
	args = append(args, fa...)

	query := fmt.Sprintf(`
		SELECT
			m.conv_key,
			m.msg_id,
			m.ts,
			c.kind,
			c.name,
			m.user_name,
			c.summary,
			snippet(messages_fts, 0, '>>>', '<<<', '...', 40) as snip,
			bm25(messages_fts, 1.0) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN conversations c ON m.conv_key = c.conv_key
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.ConvKey, &r.MsgID, &r.Timestamp,
			&r.Kind, &r.Name, &r.UserName, &r.Summary,
			&r.Snippet, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ftsQuery quotes each term so punctuation common in chat (":", "-",
// "@") is not parsed as FTS5 syntax.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	// LIKE match for CJK substring search
	conditions := []string{"m.text LIKE ?"}
	args := []any{"%" + opts.Query + "%"}
	fc, fa := filters(opts)
	conditions = append(conditions, fc...)
	args = append(args, fa...)

	query := fmt.Sprintf(`
		SELECT
			m.conv_key,
			m.msg_id,
			m.ts,
			c.kind,
			c.name,
			m.user_name,
			c.summary,
			m.text
		FROM messages m
		JOIN conversations c ON m.conv_key = c.conv_key
		WHERE %s
		ORDER BY m.ts DESC
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(
			&r.ConvKey, &r.MsgID, &r.Timestamp,
			&r.Kind, &r.Name, &r.UserName, &r.Summary,
			&fullText,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListAll returns every indexed conversation, most recently active first.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	var conditions []string
	var args []any
	if opts.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, opts.Kind)
	}
	if opts.Since != "" {
		conditions = append(conditions, "last_ts >= ?")
		args = append(args, opts.Since)
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
		SELECT conv_key, last_ts, kind, name, summary
		FROM conversations
		` + where + `
		ORDER BY last_ts DESC, conv_key`
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()
	return scanConversations(rows)
}

func scanConversations(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		r := Result{MsgID: -1}
		if err := rows.Scan(&r.ConvKey, &r.Timestamp, &r.Kind, &r.Name, &r.Summary); err != nil {
			return nil, err
		}
		r.Snippet = r.Summary
		results = append(results, r)
	}
	return results, rows.Err()
}
