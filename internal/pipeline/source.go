package pipeline

import (
	"fmt"

	"github.com/Zuo-Peng/slackprep/internal/parse"
)

// Source supplies conversations to the pipeline.
type Source interface {
	// Conversations returns conversation directory names in enumeration order.
	Conversations() []string
	// Files returns the conversation's per-day files in file-sort order.
	Files(name string) ([]parse.MessageFile, error)
}

// MemorySource serves conversations already held in memory.
type MemorySource struct {
	names []string
	files map[string][]parse.MessageFile
}

func NewMemorySource() *MemorySource {
	return &MemorySource{files: make(map[string][]parse.MessageFile)}
}

// Add appends a conversation. Adding the same name twice appends files to it.
func (s *MemorySource) Add(name string, files ...parse.MessageFile) *MemorySource {
	if s.files == nil {
		s.files = make(map[string][]parse.MessageFile)
	}
	if _, ok := s.files[name]; !ok {
		s.names = append(s.names, name)
	}
	s.files[name] = append(s.files[name], files...)
	return s
}

func (s *MemorySource) Conversations() []string {
	return s.names
}

func (s *MemorySource) Files(name string) ([]parse.MessageFile, error) {
	files, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("unknown conversation %q", name)
	}
	return files, nil
}
