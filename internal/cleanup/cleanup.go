// Package cleanup trims a Slack export down to what reassembly needs.
package cleanup

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Zuo-Peng/slackprep/internal/scan"
)

// metadataFiles are export-level files the transcript never reads.
var metadataFiles = []string{"channels.json", "dms.json", "groups.json", "mpims.json"}

type ActionKind string

const (
	RemoveUpload   ActionKind = "upload"
	RemoveMetadata ActionKind = "metadata"
	RemoveEmptyDir ActionKind = "empty_dir"
)

type Action struct {
	Kind  ActionKind
	Path  string
	Bytes int64
}

type Report struct {
	Actions []Action
	Applied bool
}

// Bytes is the total size of everything removed (or to be removed).
func (r Report) Bytes() int64 {
	var n int64
	for _, a := range r.Actions {
		n += a.Bytes
	}
	return n
}

// Run plans the cleanup of root and, when apply is set, performs it.
// Without apply nothing on disk changes.
func Run(root string, apply bool, log *slog.Logger) (Report, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	rep := Report{Applied: apply}

	exp, err := scan.ScanExport(root)
	if err != nil {
		return rep, err
	}

	referenced, err := referencedUploads(exp)
	if err != nil {
		return rep, err
	}

	entries, err := os.ReadDir(exp.UploadsPath())
	if err != nil && !os.IsNotExist(err) {
		return rep, fmt.Errorf("read uploads: %w", err)
	}
	for _, e := range entries {
		if _, ok := referenced[e.Name()]; ok {
			continue
		}
		path := filepath.Join(exp.UploadsPath(), e.Name())
		if err := rep.remove(Action{Kind: RemoveUpload, Path: path, Bytes: treeSize(path)}, log); err != nil {
			return rep, err
		}
	}

	for _, name := range metadataFiles {
		path := filepath.Join(root, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if err := rep.remove(Action{Kind: RemoveMetadata, Path: path, Bytes: info.Size()}, log); err != nil {
			return rep, err
		}
	}

	dirs, err := emptyDirs(root, rep)
	if err != nil {
		return rep, err
	}
	for _, d := range dirs {
		if err := rep.remove(Action{Kind: RemoveEmptyDir, Path: d}, log); err != nil {
			return rep, err
		}
	}

	return rep, nil
}

func (r *Report) remove(a Action, log *slog.Logger) error {
	r.Actions = append(r.Actions, a)
	log.Info("remove", "kind", a.Kind, "path", a.Path, "dry_run", !r.Applied)
	if !r.Applied {
		return nil
	}
	if err := os.RemoveAll(a.Path); err != nil {
		return fmt.Errorf("remove %s: %w", a.Path, err)
	}
	return nil
}

// referencedUploads collects attachment ids referenced by any message.
func referencedUploads(exp *scan.Export) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	for _, name := range exp.Conversations() {
		files, err := exp.Files(name)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			for _, m := range f.Messages {
				for _, ref := range m.Files {
					if ref.ID != "" {
						ids[ref.ID] = struct{}{}
					}
				}
			}
		}
	}
	return ids, nil
}

// emptyDirs lists top-level directories of root that are empty, or would
// be once planned removals happen.
func emptyDirs(root string, rep Report) ([]string, error) {
	removed := make(map[string]struct{}, len(rep.Actions))
	for _, a := range rep.Actions {
		removed[a.Path] = struct{}{}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		children, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dir, err)
		}
		left := 0
		for _, c := range children {
			if _, ok := removed[filepath.Join(dir, c.Name())]; !ok {
				left++
			}
		}
		if left == 0 {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

func treeSize(path string) int64 {
	var n int64
	filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			n += info.Size()
		}
		return nil
	})
	return n
}
