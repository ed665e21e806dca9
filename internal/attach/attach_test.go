package attach

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/slackprep/internal/parse"
)

func TestTypeOf(t *testing.T) {
	tests := map[string]Type{
		"diagram.PNG":    Image,
		"photo.jpeg":     Image,
		"scan.TIFF":      Image,
		"archive.tar.gz": Archive,
		"bundle.ZIP":     Archive,
		"logs.tgz":       Archive,
		"dump.gz":        Archive,
		"report.pdf":     File,
		"Makefile":       File,
		"png":            File,
	}
	for name, want := range tests {
		assert.Equal(t, want, TypeOf(name), name)
	}
}

func TestClassify(t *testing.T) {
	t.Run("image embed", func(t *testing.T) {
		inline, d, err := Classify(parse.AttachmentRef{ID: "F1", Name: "diagram.PNG"})
		require.NoError(t, err)
		assert.Equal(t, "![diagram.PNG](__uploads/F1/diagram.PNG)", inline)
		assert.Equal(t, Descriptor{Name: "diagram.PNG", Type: Image, Path: "__uploads/F1/diagram.PNG"}, d)
	})

	t.Run("archive link", func(t *testing.T) {
		inline, d, err := Classify(parse.AttachmentRef{ID: "F2", Name: "archive.tar.gz"})
		require.NoError(t, err)
		assert.Equal(t, "📦 Attached file: [`archive.tar.gz`](__uploads/F2/archive.tar.gz)", inline)
		assert.Equal(t, Archive, d.Type)
	})

	t.Run("generic file link", func(t *testing.T) {
		inline, d, err := Classify(parse.AttachmentRef{ID: "F3", Name: "report.pdf", DownloadURL: "https://files/x"})
		require.NoError(t, err)
		assert.Equal(t, "📎 Attached file: [`report.pdf`](__uploads/F3/report.pdf)", inline)
		assert.Equal(t, File, d.Type)
	})

	t.Run("missing name defaults to file", func(t *testing.T) {
		_, d, err := Classify(parse.AttachmentRef{ID: "F4"})
		require.NoError(t, err)
		assert.Equal(t, "file", d.Name)
		assert.Equal(t, "__uploads/F4/file", d.Path)
	})

	t.Run("missing id is skipped", func(t *testing.T) {
		inline, _, err := Classify(parse.AttachmentRef{Name: "x.png"})
		assert.True(t, errors.Is(err, ErrMissingID))
		assert.Empty(t, inline)
	})
}
