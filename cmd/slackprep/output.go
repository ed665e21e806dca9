package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Zuo-Peng/slackprep/internal/config"
)

// outputName is the auto-generated transcript file name, e.g.
// reassembled_grouped_abs_2024-05-01T09-30.md.
func outputName(format string, grouped, absTS bool, now time.Time) string {
	mode := "allturns"
	if grouped {
		mode = "grouped"
	}
	if absTS {
		mode += "_abs"
	}
	ext := ".md"
	if format == config.FormatJSONL {
		ext = ".jsonl"
	}
	return fmt.Sprintf("reassembled_%s_%s%s", mode, now.Format("2006-01-02T15-04"), ext)
}

// writeAtomic writes data to a temp file beside path and renames it into
// place, so readers never see a partial transcript.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// confirm asks a [Y/n] question. An empty answer is yes; end of input is no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [Y/n]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}
