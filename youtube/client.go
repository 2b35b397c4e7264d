package youtube

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/semekork/spotify-playlist-Generator/config"
	"github.com/semekork/spotify-playlist-Generator/songlist"
)

// Request is a parsed YouTube URL: either a single video or a playlist.
type Request struct {
	VideoID    string
	PlaylistID string
}

// pageSize is the YouTube API max for playlistItems.list.
const pageSize = 50

// ParseURL extracts the video or playlist ID from a YouTube URL. Playlist
// IDs win when both are present (a video link opened from a playlist).
func ParseURL(rawURL string) (Request, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Request{}, err
	}

	host := strings.TrimPrefix(parsedURL.Host, "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		query := parsedURL.Query()
		if listID := query.Get("list"); listID != "" {
			return Request{PlaylistID: listID}, nil
		}
		if videoID := query.Get("v"); videoID != "" {
			return Request{VideoID: videoID}, nil
		}
		return Request{}, errors.New("no video or playlist ID in URL")
	case "youtu.be":
		videoID := strings.Trim(parsedURL.Path, "/")
		if videoID == "" {
			return Request{}, errors.New("no video ID in short URL")
		}
		return Request{VideoID: videoID}, nil
	}

	return Request{}, fmt.Errorf("not a YouTube URL: %s", rawURL)
}

// Client extracts song queries from YouTube videos and playlists via the
// Data API.
type Client struct {
	apiKey string
}

func NewClient(cfg config.YoutubeConfig) *Client {
	return &Client{apiKey: cfg.APIKey}
}

// SongQueries resolves a YouTube URL to a list of cleaned song queries:
// one per playlist entry, or a single one for a plain video link. Titles
// have parenthetical and bracketed annotations stripped; entries whose
// title is nothing but annotation (e.g. "[Deleted video]") are dropped.
func (c *Client) SongQueries(ctx context.Context, rawURL string) ([]string, error) {
	request, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	if c.apiKey == "" {
		return nil, errors.New("YOUTUBE_API_KEY not set")
	}

	service, err := ytapi.NewService(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		log.Errorf("error creating YouTube client: %v", err)
		return nil, fmt.Errorf("error creating YouTube client: %w", err)
	}

	if request.PlaylistID != "" {
		return c.playlistTitles(service, request.PlaylistID)
	}
	return c.videoTitle(service, request.VideoID)
}

func (c *Client) playlistTitles(service *ytapi.Service, playlistID string) ([]string, error) {
	var songs []string
	pageToken := ""

	for {
		call := service.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(playlistID).
			MaxResults(pageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		response, err := call.Do()
		if err != nil {
			log.Errorf("error fetching playlist %s: %v", playlistID, err)
			return nil, fmt.Errorf("error fetching YouTube playlist: %w", err)
		}

		for _, item := range response.Items {
			title := songlist.CleanTitle(html.UnescapeString(item.Snippet.Title))
			if title != "" {
				songs = append(songs, title)
			}
		}

		pageToken = response.NextPageToken
		if pageToken == "" {
			break
		}
	}

	log.Debugf("extracted %d titles from YouTube playlist %s", len(songs), playlistID)
	return songs, nil
}

func (c *Client) videoTitle(service *ytapi.Service, videoID string) ([]string, error) {
	response, err := service.Videos.List([]string{"snippet"}).Id(videoID).Do()
	if err != nil {
		log.Errorf("error querying YouTube video %s: %v", videoID, err)
		return nil, fmt.Errorf("error querying YouTube: %w", err)
	}
	if len(response.Items) == 0 {
		return nil, errors.New("no video found")
	}

	title := songlist.CleanTitle(html.UnescapeString(response.Items[0].Snippet.Title))
	if title == "" {
		return nil, errors.New("video title is empty after cleanup")
	}
	return []string{title}, nil
}
