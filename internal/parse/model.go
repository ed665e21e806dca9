package parse

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// RawMessage is one record of a per-day conversation file.
type RawMessage struct {
	User    string          `json:"user"`
	TS      Epoch           `json:"ts"`
	Text    string          `json:"text"`
	Files   []AttachmentRef `json:"files"`
	Subtype string          `json:"subtype"`
	BotID   string          `json:"bot_id"`
}

type AttachmentRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DownloadURL string `json:"url_private_download"`
}

// UserRecord is one entry of users.json.
type UserRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RealName string `json:"real_name"`
	IsBot    bool   `json:"is_bot"`
	Deleted  bool   `json:"deleted"`
	Profile  struct {
		RealName    string `json:"real_name"`
		DisplayName string `json:"display_name"`
	} `json:"profile"`
}

// MessageFile holds the decoded records of one per-day file.
type MessageFile struct {
	Path     string
	Messages []RawMessage
}

// Epoch is a Slack "ts" value: seconds since the epoch with a fractional
// part, exported either as a JSON string or a number.
type Epoch struct {
	Seconds float64
	Valid   bool
}

func (e *Epoch) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid ts %q: %w", s, err)
		}
		e.Seconds, e.Valid = f, true
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid ts %s", data)
	}
	e.Seconds, e.Valid = f, true
	return nil
}

// Time converts the epoch to local wall time, keeping microsecond precision.
func (e Epoch) Time() time.Time {
	sec, frac := math.Modf(e.Seconds)
	usec := int64(math.Round(frac * 1e6))
	return time.Unix(int64(sec), usec*int64(time.Microsecond)).Local()
}
