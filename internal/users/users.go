// Package users resolves Slack user ids to display names.
package users

import (
	"github.com/Zuo-Peng/slackprep/internal/parse"
)

// Unknown is the display name of an id missing from the directory.
const Unknown = "Unknown"

// Directory maps user ids to display names. It is immutable once built.
type Directory struct {
	names map[string]string
	bots  map[string]struct{}
}

// Load reads users.json into a Directory, including its bot-id set.
func Load(path string) (*Directory, error) {
	records, err := parse.ReadUsers(path)
	if err != nil {
		return nil, err
	}
	return FromRecords(records), nil
}

// LoadBotIDs returns the ids of users.json entries flagged is_bot.
func LoadBotIDs(path string) (map[string]struct{}, error) {
	records, err := parse.ReadUsers(path)
	if err != nil {
		return nil, err
	}
	return botIDs(records), nil
}

func FromRecords(records []parse.UserRecord) *Directory {
	names := make(map[string]string, len(records))
	for _, r := range records {
		names[r.ID] = displayName(r)
	}
	return &Directory{names: names, bots: botIDs(records)}
}

// FromNames builds a Directory without bot information.
func FromNames(names map[string]string) *Directory {
	d := &Directory{names: make(map[string]string, len(names))}
	for id, name := range names {
		if name == "" {
			name = Unknown
		}
		d.names[id] = name
	}
	return d
}

// real name, then handle
func displayName(r parse.UserRecord) string {
	switch {
	case r.RealName != "":
		return r.RealName
	case r.Profile.RealName != "":
		return r.Profile.RealName
	case r.Name != "":
		return r.Name
	default:
		return Unknown
	}
}

func botIDs(records []parse.UserRecord) map[string]struct{} {
	bots := make(map[string]struct{})
	for _, r := range records {
		if r.IsBot {
			bots[r.ID] = struct{}{}
		}
	}
	return bots
}

// Lookup returns the display name of id and whether it is known.
func (d *Directory) Lookup(id string) (string, bool) {
	name, ok := d.names[id]
	return name, ok
}

// Name returns the display name of id, or Unknown.
func (d *Directory) Name(id string) string {
	if name, ok := d.names[id]; ok {
		return name
	}
	return Unknown
}

// BotIDs returns the bot-id set, or nil when the directory was built
// without bot information.
func (d *Directory) BotIDs() map[string]struct{} {
	return d.bots
}

func (d *Directory) Len() int {
	return len(d.names)
}
