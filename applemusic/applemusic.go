// Package applemusic extracts song queries from public Apple Music
// playlist and album pages.
package applemusic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	albumRegex    = regexp.MustCompile(`/album/[^/]+/(\d+)`)
	playlistRegex = regexp.MustCompile(`/playlist/[^/]+/(pl\.[a-zA-Z0-9-]+)`)
)

// Request is a parsed Apple Music URL.
type Request struct {
	Country    string
	AlbumID    string
	PlaylistID string
}

// ParseURL parses an Apple Music playlist or album URL.
func ParseURL(rawURL string) (Request, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Request{}, err
	}

	// Support both music.apple.com and itunes.apple.com
	if !strings.Contains(parsedURL.Host, "apple.com") {
		return Request{}, errors.New("not an Apple Music URL")
	}

	request := Request{}

	pathParts := strings.Split(strings.TrimPrefix(parsedURL.Path, "/"), "/")
	if len(pathParts) > 0 {
		request.Country = pathParts[0]
	}

	if strings.Contains(parsedURL.Path, "/playlist/") {
		if matches := playlistRegex.FindStringSubmatch(parsedURL.Path); len(matches) > 1 {
			request.PlaylistID = matches[1]
			log.Tracef("parsed Apple Music playlist URL: %s", request.PlaylistID)
		}
	} else if strings.Contains(parsedURL.Path, "/album/") {
		if matches := albumRegex.FindStringSubmatch(parsedURL.Path); len(matches) > 1 {
			request.AlbumID = matches[1]
			log.Tracef("parsed Apple Music album URL: %s", request.AlbumID)
		}
	}

	if request.PlaylistID == "" && request.AlbumID == "" {
		log.Warnf("could not parse Apple Music URL: %s", rawURL)
		return Request{}, errors.New("could not parse Apple Music URL")
	}

	return request, nil
}

// Client scrapes Apple Music web pages for track listings.
type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SongQueries fetches the page behind an Apple Music playlist or album URL
// and returns "Artist Title" queries, one per listed track.
func (c *Client) SongQueries(ctx context.Context, rawURL string) ([]string, error) {
	if _, err := ParseURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, err
	}

	// Set realistic User-Agent to avoid blocks
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	log.Tracef("fetching Apple Music page: %s", rawURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	songs, err := extractTrackQueries(resp.Body)
	if err != nil {
		return nil, err
	}

	log.Debugf("extracted %d tracks from Apple Music page", len(songs))
	return songs, nil
}
