package applemusic

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// extractTrackQueries parses an Apple Music page and pulls the track list.
// JSON-LD structured data is tried first; song link anchors are the
// fallback for pages without it.
func extractTrackQueries(body io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	songs, err := extractFromJSONLD(doc)
	if err == nil {
		return songs, nil
	}

	log.Debugf("JSON-LD extraction failed (%v), trying anchor fallback", err)

	songs = extractFromSongAnchors(doc)
	if len(songs) == 0 {
		return nil, errors.New("no track listing found in page")
	}
	return songs, nil
}

// extractFromJSONLD walks the JSON-LD blocks looking for a MusicPlaylist
// or MusicAlbum and returns one "Artist Title" query per track entry.
func extractFromJSONLD(doc *goquery.Document) ([]string, error) {
	var songs []string

	doc.Find("script[type='application/ld+json']").EachWithBreak(func(i int, s *goquery.Selection) bool {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			log.Tracef("failed to parse JSON-LD block %d: %v", i, err)
			return true // continue to next script tag
		}

		typeVal, _ := data["@type"].(string)
		if typeVal != "MusicPlaylist" && typeVal != "MusicAlbum" {
			return true
		}

		tracks, ok := data["track"].([]interface{})
		if !ok {
			if tracks, ok = data["tracks"].([]interface{}); !ok {
				return true
			}
		}

		for _, entry := range tracks {
			track, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			title := getString(track, "name")
			if title == "" {
				continue
			}
			if artist := artistName(track["byArtist"]); artist != "" {
				songs = append(songs, artist+" "+title)
			} else {
				songs = append(songs, title)
			}
		}

		return false // found the listing, stop iterating
	})

	if len(songs) == 0 {
		return nil, errors.New("no JSON-LD track listing found")
	}
	return songs, nil
}

// extractFromSongAnchors collects the titles of song links on the page.
func extractFromSongAnchors(doc *goquery.Document) []string {
	var songs []string
	seen := make(map[string]bool)

	doc.Find("a[href*='/song/']").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Text())
		if title == "" || seen[title] {
			return
		}
		seen[title] = true
		songs = append(songs, title)
	})

	return songs
}

// artistName handles byArtist as either a single object or an array.
func artistName(value interface{}) string {
	switch artist := value.(type) {
	case map[string]interface{}:
		return getString(artist, "name")
	case []interface{}:
		if len(artist) > 0 {
			if first, ok := artist[0].(map[string]interface{}); ok {
				return getString(first, "name")
			}
		}
	}
	return ""
}

// getString safely extracts a string value from a map
func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key].(string); ok {
		return val
	}
	return ""
}
