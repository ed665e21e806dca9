// Package attach classifies message attachments by filename.
package attach

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Zuo-Peng/slackprep/internal/parse"
)

// UploadsDir is the export folder attachments live under.
const UploadsDir = "__uploads"

// ErrMissingID marks an attachment reference that cannot be rendered.
// It is not fatal: the message keeps its text.
var ErrMissingID = errors.New("attachment reference has no id")

type Type string

const (
	Image   Type = "image"
	File    Type = "file"
	Archive Type = "archive"
)

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tiff"}

var archiveExts = []string{".tar.gz", ".zip", ".tgz", ".gz"}

// Descriptor describes an attachment without its bytes.
type Descriptor struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
	Path string `json:"relative_path"`
}

// Classify returns the inline Markdown reference and descriptor for ref.
func Classify(ref parse.AttachmentRef) (string, Descriptor, error) {
	if ref.ID == "" {
		return "", Descriptor{}, fmt.Errorf("%w (name %q)", ErrMissingID, ref.Name)
	}

	name := ref.Name
	if name == "" {
		name = "file"
	}
	d := Descriptor{
		Name: name,
		Type: TypeOf(name),
		Path: RelativePath(ref.ID, name),
	}

	switch d.Type {
	case Image:
		return fmt.Sprintf("![%s](%s)", d.Name, d.Path), d, nil
	case Archive:
		return fmt.Sprintf("📦 Attached file: [`%s`](%s)", d.Name, d.Path), d, nil
	default:
		return fmt.Sprintf("📎 Attached file: [`%s`](%s)", d.Name, d.Path), d, nil
	}
}

// TypeOf classifies a filename by extension, case-insensitively. Image
// extensions win over archive extensions.
func TypeOf(name string) Type {
	lower := strings.ToLower(name)
	if hasAnySuffix(lower, imageExts) {
		return Image
	}
	if hasAnySuffix(lower, archiveExts) {
		return Archive
	}
	return File
}

// RelativePath is where the materializer places an attachment's bytes.
func RelativePath(id, name string) string {
	return UploadsDir + "/" + id + "/" + name
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
