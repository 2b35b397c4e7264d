// Package pipeline holds the playlist construction and deduplication flows.
// It talks to Spotify through the Catalog interface and reports progress
// through the Sink interface, so neither UI shell nor API client leaks in.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrNotAuthenticated means the Spotify session could not be established;
	// every pipeline entry point refuses to run without one.
	ErrNotAuthenticated = errors.New("spotify not authenticated")

	// ErrNoValidTracks means no query produced an acceptable match.
	ErrNoValidTracks = errors.New("no valid tracks found")

	// ErrNoSongs means the input source yielded an empty song list.
	ErrNoSongs = errors.New("no songs found")
)

// Sink receives user-facing progress lines. Both UI shells implement it;
// the pipeline never references a specific toolkit.
type Sink interface {
	Append(line string)
}

// TrackCandidate is the top result of a catalog search.
type TrackCandidate struct {
	ID     string
	URI    string
	Artist string
	Title  string
}

// CreatedPlaylist is the outcome of a playlist-create call.
type CreatedPlaylist struct {
	ID   string
	Name string
	URL  string
}

// PlaylistItem is one entry of an existing playlist, in playlist order.
// Unavailable entries (deleted or region-locked tracks) keep their slot
// with empty fields so positions stay aligned with the server's view.
type PlaylistItem struct {
	TrackID string
	URI     string
	Artist  string
	Title   string
}

// OccurrenceRemoval asks for specific zero-based occurrences of a track
// URI to be deleted from a playlist.
type OccurrenceRemoval struct {
	URI       string
	Positions []int
}

// Catalog is the streaming-service surface the pipeline needs.
type Catalog interface {
	SearchTopTrack(ctx context.Context, query string) (*TrackCandidate, error)
	CreatePlaylist(ctx context.Context, name, description string) (*CreatedPlaylist, error)
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
	Recommend(ctx context.Context, seedIDs []string, limit int) ([]TrackCandidate, error)
	PlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error)
	RemoveOccurrences(ctx context.Context, playlistID string, removals []OccurrenceRemoval) error
}

// Recorder persists run outcomes. Failures are logged, never fatal.
type Recorder interface {
	RecordCreateRun(playlistID, name string, accepted, missing int) error
	RecordDedupeRun(playlistID string, removed int) error
	RecordMissing(playlistID string, queries []string) error
}

// chunkSize is the Spotify Web API ceiling for batch playlist mutations.
const chunkSize = 100

type sinkLogger struct {
	sink Sink
}

func (s sinkLogger) emit(line string) {
	log.Info(line)
	if s.sink != nil {
		s.sink.Append(line)
	}
}

func (s sinkLogger) emitf(format string, args ...interface{}) {
	s.emit(fmt.Sprintf(format, args...))
}
