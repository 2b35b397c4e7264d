package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	spotifyclient "github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"

	"github.com/semekork/spotify-playlist-Generator/config"
	"github.com/semekork/spotify-playlist-Generator/pipeline"
)

// Client implements pipeline.Catalog on top of the Spotify Web API.
type Client struct {
	sp      *spotifyclient.Client
	userID  string
	limiter *rate.Limiter
}

// New authenticates against Spotify and resolves the current user. A nil
// error guarantees the client is usable; otherwise the error wraps
// pipeline.ErrNotAuthenticated and no pipeline may run.
func New(ctx context.Context, cfg config.SpotifyConfig) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET not set", pipeline.ErrNotAuthenticated)
	}

	sp, err := authenticate(ctx, cfg)
	if err != nil {
		sentry.CaptureException(err)
		return nil, fmt.Errorf("%w: %v", pipeline.ErrNotAuthenticated, err)
	}

	user, err := sp.CurrentUser(ctx)
	if err != nil {
		sentry.CaptureException(err)
		return nil, fmt.Errorf("%w: %v", pipeline.ErrNotAuthenticated, err)
	}

	log.Infof("✅ Spotify authenticated as %s", user.ID)

	searchRate := cfg.SearchRate
	if searchRate <= 0 {
		searchRate = 5
	}

	return &Client{
		sp:      sp,
		userID:  user.ID,
		limiter: rate.NewLimiter(rate.Limit(searchRate), 1),
	}, nil
}

// UserID returns the authenticated user's Spotify ID.
func (c *Client) UserID() string {
	return c.userID
}

// SearchTopTrack returns the top-ranked track for query, or nil when the
// search comes back empty. Calls are rate limited ahead of the API's own
// throttling.
func (c *Client) SearchTopTrack(ctx context.Context, query string) (*pipeline.TrackCandidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	results, err := c.sp.Search(ctx, query, spotifyclient.SearchTypeTrack, spotifyclient.Limit(1))
	if err != nil {
		sentry.CaptureException(err)
		return nil, err
	}
	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return nil, nil
	}

	track := results.Tracks.Tracks[0]
	candidate := &pipeline.TrackCandidate{
		ID:    string(track.ID),
		URI:   string(track.URI),
		Title: track.Name,
	}
	if len(track.Artists) > 0 {
		candidate.Artist = track.Artists[0].Name
	}
	return candidate, nil
}

// CreatePlaylist creates a private, non-collaborative playlist for the
// authenticated user.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string) (*pipeline.CreatedPlaylist, error) {
	playlist, err := c.sp.CreatePlaylistForUser(ctx, c.userID, name, description, false, false)
	if err != nil {
		sentry.CaptureException(err)
		return nil, err
	}

	return &pipeline.CreatedPlaylist{
		ID:   string(playlist.ID),
		Name: playlist.Name,
		URL:  playlist.ExternalURLs["spotify"],
	}, nil
}

// AddTracks appends trackIDs to the playlist. Callers are responsible for
// the 100-track batch ceiling.
func (c *Client) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	ids := make([]spotifyclient.ID, 0, len(trackIDs))
	for _, id := range trackIDs {
		ids = append(ids, spotifyclient.ID(id))
	}

	if _, err := c.sp.AddTracksToPlaylist(ctx, spotifyclient.ID(playlistID), ids...); err != nil {
		sentry.CaptureException(err)
		return err
	}
	return nil
}

// Recommend fetches up to limit recommended tracks for the seed track IDs.
func (c *Client) Recommend(ctx context.Context, seedIDs []string, limit int) ([]pipeline.TrackCandidate, error) {
	seeds := spotifyclient.Seeds{}
	for _, id := range seedIDs {
		seeds.Tracks = append(seeds.Tracks, spotifyclient.ID(id))
	}

	recommendations, err := c.sp.GetRecommendations(ctx, seeds, nil, spotifyclient.Limit(limit))
	if err != nil {
		sentry.CaptureException(err)
		return nil, err
	}

	candidates := make([]pipeline.TrackCandidate, 0, len(recommendations.Tracks))
	for _, track := range recommendations.Tracks {
		candidate := pipeline.TrackCandidate{
			ID:    string(track.ID),
			URI:   string(track.URI),
			Title: track.Name,
		}
		if len(track.Artists) > 0 {
			candidate.Artist = track.Artists[0].Name
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// PlaylistItems fetches every item of the playlist via forward pagination.
// Unavailable entries are kept as zero-valued placeholders so positions
// stay aligned with the playlist's server-side ordering.
func (c *Client) PlaylistItems(ctx context.Context, playlistID string) ([]pipeline.PlaylistItem, error) {
	page, err := c.sp.GetPlaylistItems(ctx, spotifyclient.ID(playlistID))
	if err != nil {
		sentry.CaptureException(err)

		// The client doesn't surface typed errors, so error strings it is.
		errStr := err.Error()
		if strings.Contains(errStr, "404") || strings.Contains(errStr, "Not Found") {
			return nil, errors.New("playlist not found")
		}
		if strings.Contains(errStr, "403") || strings.Contains(errStr, "Forbidden") {
			return nil, errors.New("playlist is private or not accessible")
		}
		return nil, err
	}

	var items []pipeline.PlaylistItem
	for {
		for _, entry := range page.Items {
			track := entry.Track.Track
			if track == nil || track.ID == "" {
				// Deleted or unavailable; keep the slot.
				items = append(items, pipeline.PlaylistItem{})
				continue
			}

			item := pipeline.PlaylistItem{
				TrackID: string(track.ID),
				URI:     string(track.URI),
				Title:   track.Name,
			}
			if len(track.Artists) > 0 {
				item.Artist = track.Artists[0].Name
			}
			items = append(items, item)
		}

		err = c.sp.NextPage(ctx, page)
		if errors.Is(err, spotifyclient.ErrNoMorePages) {
			break
		}
		if err != nil {
			sentry.CaptureException(err)
			return nil, err
		}
	}

	log.Debugf("fetched %d playlist items from %s", len(items), playlistID)
	return items, nil
}

// RemoveOccurrences deletes the given positional occurrences. Callers are
// responsible for the 100-entry batch ceiling.
func (c *Client) RemoveOccurrences(ctx context.Context, playlistID string, removals []pipeline.OccurrenceRemoval) error {
	tracks := make([]spotifyclient.TrackToRemove, 0, len(removals))
	for _, removal := range removals {
		tracks = append(tracks, spotifyclient.TrackToRemove{
			URI:       removal.URI,
			Positions: removal.Positions,
		})
	}

	if _, err := c.sp.RemoveTracksFromPlaylistOpt(ctx, spotifyclient.ID(playlistID), tracks, ""); err != nil {
		sentry.CaptureException(err)
		return err
	}
	return nil
}
