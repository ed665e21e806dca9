// Package open shows an indexed message in its source export file.
package open

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/slackprep/internal/index"
)

// OpenMessage opens the per-day file holding msgID of convKey in $EDITOR,
// positioned at the message. A negative msgID opens the conversation's
// first file at the top.
func OpenMessage(db *index.DB, convKey string, msgID int) error {
	if msgID < 0 {
		msgID = 0
	}
	msg, err := db.GetMessage(convKey, msgID)
	if err != nil {
		return fmt.Errorf("get message: %w", err)
	}
	if msg == nil {
		return fmt.Errorf("message not found: %s#%d", convKey, msgID)
	}

	filePath := msg.FilePath
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	// exports written without a fractional part only carry the seconds
	sec, _, _ := strings.Cut(msg.SlackTS, ".")
	lineNum, err := findLine(filePath, `"`+msg.SlackTS+`"`, `"`+sec+`"`)
	if err != nil {
		return err
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}
	return openInEditor(editor, filePath, lineNum)
}

// findLine returns the 1-based number of the first line containing any of
// needles, or 1 when no line does.
func findLine(path string, needles ...string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for n := 1; sc.Scan(); n++ {
		for _, needle := range needles {
			if strings.Contains(sc.Text(), needle) {
				return n, nil
			}
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return 1, nil
}

func editorArgs(editor, filePath string, lineNum int) []string {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return []string{fmt.Sprintf("+%d", lineNum), filePath}
	case strings.Contains(editor, "code"):
		return []string{"--goto", filePath + ":" + strconv.Itoa(lineNum)}
	case strings.Contains(editor, "less"):
		return []string{"+" + strconv.Itoa(lineNum), filePath}
	default:
		return []string{filePath}
	}
}

func openInEditor(editor, filePath string, lineNum int) error {
	cmd := exec.Command(editor, editorArgs(editor, filePath, lineNum)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
