package parse

import (
	"encoding/json"
	"os"
)

// ReadMessageFile decodes a per-day file holding a JSON array of messages.
// Every record must carry a ts; a record without one fails the whole file.
func ReadMessageFile(path string) (MessageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MessageFile{}, &InputError{Path: path, Err: err}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return MessageFile{}, inputErr(path, "decode message array: %w", err)
	}

	msgs := make([]RawMessage, 0, len(raw))
	for i, r := range raw {
		var m RawMessage
		if err := json.Unmarshal(r, &m); err != nil {
			return MessageFile{}, inputErr(path, "record %d: %w", i, err)
		}
		if !m.TS.Valid {
			return MessageFile{}, inputErr(path, "record %d: missing ts", i)
		}
		msgs = append(msgs, m)
	}

	return MessageFile{Path: path, Messages: msgs}, nil
}

// ReadUsers decodes users.json. Each element must be an object with a
// non-empty id.
func ReadUsers(path string) ([]UserRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, inputErr(path, "decode user array: %w", err)
	}

	users := make([]UserRecord, 0, len(raw))
	for i, r := range raw {
		var u UserRecord
		if err := json.Unmarshal(r, &u); err != nil {
			return nil, inputErr(path, "user %d: %w", i, err)
		}
		if u.ID == "" {
			return nil, inputErr(path, "user %d: missing id", i)
		}
		users = append(users, u)
	}
	return users, nil
}
