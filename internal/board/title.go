package board

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ReadTitle is a best-effort metadata read for recent-board listings: it
// opens only the configuration file and scans its frontmatter header for a
// title field without invoking the full codec. Any failure — missing file,
// malformed header, absent field — reports not found instead of an error;
// the caller always has a fallback display name.
func ReadTitle(boardDir string) (string, bool) {
	f, err := os.Open(filepath.Join(boardDir, BoardFile))
	if err != nil {
		return "", false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	inHeader := false
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case line == "---":
			if inHeader {
				return "", false // header ended without a title
			}
			inHeader = true
		case !inHeader:
			if strings.TrimSpace(line) != "" {
				return "", false // content before the header block
			}
		case strings.HasPrefix(line, "title:"):
			title := strings.TrimSpace(strings.TrimPrefix(line, "title:"))
			title = strings.Trim(title, `"'`)
			if title == "" {
				return "", false
			}
			return title, true
		}
	}
	return "", false
}
