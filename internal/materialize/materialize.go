// Package materialize places attachment files next to a rendered transcript
// so that each descriptor's relative path resolves.
package materialize

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Zuo-Peng/slackprep/internal/attach"
	"github.com/Zuo-Peng/slackprep/internal/pipeline"
)

type Mode string

const (
	None    Mode = "none"
	Copy    Mode = "copy"
	Symlink Mode = "symlink"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case None, Copy, Symlink:
		return m, nil
	case "":
		return None, nil
	default:
		return "", fmt.Errorf("unknown attachment mode %q (want none, copy or symlink)", s)
	}
}

type Stats struct {
	Placed  int
	Missing int
	Existed int
}

func (s Stats) String() string {
	return fmt.Sprintf("placed=%d missing=%d existing=%d", s.Placed, s.Missing, s.Existed)
}

// Materializer resolves descriptor paths from the export root into the
// output directory.
type Materializer struct {
	Mode      Mode
	ExportDir string
	OutputDir string
	Log       *slog.Logger
}

// Descriptors collects the unique attachment descriptors of res in order.
func Descriptors(res pipeline.Result) []attach.Descriptor {
	seen := make(map[string]struct{})
	var out []attach.Descriptor
	for _, sec := range res.Sections {
		for _, m := range sec.Messages {
			for _, d := range m.Files {
				if _, ok := seen[d.Path]; ok {
					continue
				}
				seen[d.Path] = struct{}{}
				out = append(out, d)
			}
		}
	}
	return out
}

// Place copies or links every descriptor. A missing source file is logged
// and counted, not an error.
func (m *Materializer) Place(descs []attach.Descriptor) (Stats, error) {
	var stats Stats
	if m.Mode == None || m.Mode == "" {
		return stats, nil
	}

	for _, d := range descs {
		rel, err := safeRel(d.Path)
		if err != nil {
			return stats, err
		}
		src := filepath.Join(m.ExportDir, rel)
		dst := filepath.Join(m.OutputDir, rel)

		if _, err := os.Stat(src); err != nil {
			stats.Missing++
			m.log().Warn("attachment not found in export", "path", d.Path)
			continue
		}
		if _, err := os.Lstat(dst); err == nil {
			stats.Existed++
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return stats, fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
		}

		switch m.Mode {
		case Symlink:
			abs, err := filepath.Abs(src)
			if err != nil {
				return stats, err
			}
			if err := os.Symlink(abs, dst); err != nil {
				return stats, fmt.Errorf("link %s: %w", d.Path, err)
			}
		case Copy:
			if err := copyFile(src, dst); err != nil {
				return stats, fmt.Errorf("copy %s: %w", d.Path, err)
			}
		default:
			return stats, fmt.Errorf("unknown attachment mode %q", m.Mode)
		}
		stats.Placed++
	}
	return stats, nil
}

func (m *Materializer) log() *slog.Logger {
	if m.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Log
}

// safeRel rejects paths escaping the uploads folder.
func safeRel(p string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(p))
	prefix := attach.UploadsDir + string(filepath.Separator)
	if filepath.IsAbs(rel) || !strings.HasPrefix(rel, prefix) {
		return "", fmt.Errorf("attachment path %q escapes %s", p, attach.UploadsDir)
	}
	return rel, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
