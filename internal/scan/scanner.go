// Package scan discovers conversations in a Slack export directory.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Zuo-Peng/slackprep/internal/attach"
	"github.com/Zuo-Peng/slackprep/internal/parse"
)

const UsersFile = "users.json"

// Conversation is one conversation directory and its per-day files.
type Conversation struct {
	Name  string
	Dir   string
	Files []string // sorted lexicographically
	Mtime int64    // newest file modification time
	Size  int64    // total size of the files
}

// Export is a scanned export root. It implements pipeline.Source.
type Export struct {
	Root          string
	conversations []Conversation
	byName        map[string]int
}

// ScanExport lists the conversation directories under root in name order.
// Directories without any .json file are not conversations.
func ScanExport(root string) (*Export, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &parse.InputError{Path: root, Err: err}
	}

	exp := &Export{Root: root, byName: make(map[string]int)}
	for _, e := range entries {
		if !e.IsDir() || skipDir(e.Name()) {
			continue
		}
		conv, err := scanConversation(filepath.Join(root, e.Name()))
		if err != nil {
			return nil, err
		}
		if len(conv.Files) == 0 {
			continue
		}
		exp.byName[conv.Name] = len(exp.conversations)
		exp.conversations = append(exp.conversations, conv)
	}
	return exp, nil
}

func skipDir(name string) bool {
	return name == attach.UploadsDir || strings.HasPrefix(name, ".")
}

func scanConversation(dir string) (Conversation, error) {
	conv := Conversation{Name: filepath.Base(dir), Dir: dir}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		conv.Files = append(conv.Files, path)
		conv.Size += info.Size()
		if mt := info.ModTime().Unix(); mt > conv.Mtime {
			conv.Mtime = mt
		}
		return nil
	})
	if err != nil {
		return Conversation{}, &parse.InputError{Path: dir, Err: err}
	}
	sort.Strings(conv.Files)
	return conv, nil
}

// UsersPath is the location of users.json in the export.
func (e *Export) UsersPath() string {
	return filepath.Join(e.Root, UsersFile)
}

// UploadsPath is the location of the attachment folder in the export.
func (e *Export) UploadsPath() string {
	return filepath.Join(e.Root, attach.UploadsDir)
}

// List returns the scanned conversations in enumeration order.
func (e *Export) List() []Conversation {
	return e.conversations
}

// Lookup returns the conversation named name.
func (e *Export) Lookup(name string) (Conversation, bool) {
	i, ok := e.byName[name]
	if !ok {
		return Conversation{}, false
	}
	return e.conversations[i], true
}

func (e *Export) Conversations() []string {
	names := make([]string, len(e.conversations))
	for i, c := range e.conversations {
		names[i] = c.Name
	}
	return names
}

// Files reads every per-day file of the named conversation.
func (e *Export) Files(name string) ([]parse.MessageFile, error) {
	conv, ok := e.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown conversation %q", name)
	}
	files := make([]parse.MessageFile, 0, len(conv.Files))
	for _, path := range conv.Files {
		mf, err := parse.ReadMessageFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, mf)
	}
	return files, nil
}
