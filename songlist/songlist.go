// Package songlist turns uploaded files and pasted text into song queries.
package songlist

import (
	"encoding/csv"
	"os"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Source is the tagged input variant: either raw content (e.g. a web
// upload held in memory) or a filesystem path. Exactly one should be set;
// Content wins when both are.
type Source struct {
	Path    string
	Content string
}

var annotationRegex = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)

// Load resolves the source to raw text and parses it. Unreadable files are
// logged and yield an empty list; the caller reports "no songs found".
func Load(src Source) []string {
	content := src.Content
	if content == "" && src.Path != "" {
		data, err := os.ReadFile(src.Path)
		if err != nil {
			log.Errorf("error reading song list %s: %v", src.Path, err)
			return nil
		}
		content = string(data)
	}
	return Parse(content)
}

// Parse extracts song queries from raw text. If the first line splits into
// multiple comma-separated fields the input is treated as CSV with the song
// name in the first column; otherwise it is one query per non-empty line.
func Parse(content string) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	if isCSV(content) {
		return parseCSV(content)
	}

	var songs []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			songs = append(songs, line)
		}
	}
	return songs
}

func isCSV(content string) bool {
	if !strings.Contains(content, ",") {
		return false
	}
	firstLine := strings.SplitN(content, "\n", 2)[0]
	return len(strings.Split(firstLine, ",")) > 1
}

func parseCSV(content string) []string {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	records, err := reader.ReadAll()
	if err != nil {
		log.Errorf("error parsing CSV content: %v", err)
		return nil
	}

	var songs []string
	for _, row := range records {
		if len(row) == 0 {
			continue
		}
		if name := strings.TrimSpace(row[0]); name != "" {
			songs = append(songs, name)
		}
	}
	return songs
}

// CleanTitle strips parenthetical and bracketed annotations from a video
// title, e.g. "Shape of You (Official Video) [4K]" -> "Shape of You".
func CleanTitle(title string) string {
	clean := annotationRegex.ReplaceAllString(title, "")
	clean = strings.Join(strings.Fields(clean), " ")
	return strings.TrimSpace(clean)
}
