package render

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Zuo-Peng/slackprep/internal/attach"
	"github.com/Zuo-Peng/slackprep/internal/pipeline"
)

// Record is one line of the structured-record output.
type Record struct {
	Timestamp    string              `json:"timestamp"`
	UserID       string              `json:"user_id"`
	UserName     string              `json:"user_name"`
	RawText      string              `json:"raw_text"`
	RenderedText string              `json:"rendered_text"`
	Files        []attach.Descriptor `json:"files"`
}

// Records flattens res into one record per message, in section order.
// Turn grouping does not apply here.
func Records(res pipeline.Result) []Record {
	var out []Record
	for _, sec := range res.Sections {
		for _, m := range sec.Messages {
			files := m.Files
			if files == nil {
				files = []attach.Descriptor{}
			}
			out = append(out, Record{
				Timestamp:    ISOTimestamp(m.Time),
				UserID:       m.UserID,
				UserName:     m.Author,
				RawText:      m.RawText,
				RenderedText: m.Text,
				Files:        files,
			})
		}
	}
	return out
}

// WriteJSONL writes one compact JSON object per line.
func WriteJSONL(w io.Writer, res pipeline.Result) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, r := range Records(res) {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}
	return bw.Flush()
}

// ISOTimestamp formats t as local ISO-8601 without an offset, adding
// microseconds only when non-zero.
func ISOTimestamp(t time.Time) string {
	s := t.Format("2006-01-02T15:04:05")
	if us := t.Nanosecond() / 1000; us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}
