// Package controller wires the input resolvers, the Spotify catalog and
// the persistence layer behind the UI shells, and enforces the one-run-at-
// a-time execution model.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/semekork/spotify-playlist-Generator/applemusic"
	"github.com/semekork/spotify-playlist-Generator/config"
	"github.com/semekork/spotify-playlist-Generator/database"
	"github.com/semekork/spotify-playlist-Generator/gemini"
	"github.com/semekork/spotify-playlist-Generator/matcher"
	"github.com/semekork/spotify-playlist-Generator/pipeline"
	"github.com/semekork/spotify-playlist-Generator/songlist"
	"github.com/semekork/spotify-playlist-Generator/spotify"
	"github.com/semekork/spotify-playlist-Generator/youtube"
)

// ErrBusy is returned when a pipeline run is requested while another one
// is still executing.
var ErrBusy = errors.New("another run is already in progress")

// Source is the user's input for a playlist-construction run: a URL, a
// file path, or raw uploaded content. URL wins when several are set.
type Source struct {
	URL     string
	Path    string
	Content string
}

// urlResolver turns a supported URL into song queries.
type urlResolver interface {
	SongQueries(ctx context.Context, rawURL string) ([]string, error)
}

// Controller owns the long-lived collaborators. A nil authErr means the
// Spotify session is usable; otherwise every run is refused.
type Controller struct {
	cfg     *config.Config
	catalog pipeline.Catalog
	authErr error
	db      *database.Database
	youtube urlResolver
	apple   urlResolver
	gemini  *gemini.Client

	// busy is the single execution slot shared by all shells.
	busy sync.Mutex
}

// New authenticates against Spotify and opens the run-history database.
// Authentication failure is not fatal here: the controller is still
// constructed so the shells can surface the error, but it refuses to run.
func New(ctx context.Context, cfg *config.Config) *Controller {
	c := &Controller{
		cfg:     cfg,
		youtube: youtube.NewClient(cfg.Youtube),
		apple:   applemusic.NewClient(),
		gemini:  gemini.NewClient(cfg.Gemini),
	}

	catalog, err := spotify.New(ctx, cfg.Spotify)
	if err != nil {
		log.Errorf("Spotify authentication failed: %v", err)
		c.authErr = err
	} else {
		c.catalog = catalog
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		// Run history is best-effort; pipelines still work without it.
		log.Warnf("run-history database unavailable: %v", err)
	} else {
		c.db = db
	}

	return c
}

// Close releases the controller's resources.
func (c *Controller) Close() {
	if c.db != nil {
		c.db.Close()
	}
}

// AuthError reports why Spotify authentication failed, or nil.
func (c *Controller) AuthError() error {
	return c.authErr
}

// CreatePlaylist resolves the source to a song list and runs the builder.
// Only one run may execute at a time across all shells.
func (c *Controller) CreatePlaylist(ctx context.Context, source Source, name string, sink pipeline.Sink) (*pipeline.BuildReport, error) {
	if !c.busy.TryLock() {
		sink.Append("⏳ Another run is already in progress.")
		return nil, ErrBusy
	}
	defer c.busy.Unlock()

	if c.authErr != nil {
		sink.Append("❌ Cannot create playlist: Spotify not authenticated.")
		return nil, pipeline.ErrNotAuthenticated
	}

	queries, err := c.resolveSource(ctx, source, sink)
	if err != nil {
		sink.Append("❌ " + err.Error())
		return nil, err
	}

	builder := &pipeline.Builder{
		Catalog:         c.catalog,
		Matcher:         matcher.New(c.cfg.Spotify.MatchThreshold),
		Sink:            sink,
		MissingSongFile: c.cfg.Options.MissingSongFile,
		Describe:        c.gemini.PlaylistDescription,
	}
	if c.db != nil {
		builder.Recorder = c.db
	}

	return builder.Build(ctx, queries, name)
}

// Dedupe runs the deduplicator against a playlist URL or raw ID.
func (c *Controller) Dedupe(ctx context.Context, playlistRef string, sink pipeline.Sink) (*pipeline.DedupeReport, error) {
	if !c.busy.TryLock() {
		sink.Append("⏳ Another run is already in progress.")
		return nil, ErrBusy
	}
	defer c.busy.Unlock()

	if c.authErr != nil {
		sink.Append("❌ Cannot run deduplication: Spotify not authenticated.")
		return nil, pipeline.ErrNotAuthenticated
	}

	deduper := &pipeline.Deduper{Catalog: c.catalog, Sink: sink}
	if c.db != nil {
		deduper.Recorder = c.db
	}

	return deduper.Dedupe(ctx, playlistRef)
}

// RecentRuns returns the latest recorded runs, or nil without a database.
func (c *Controller) RecentRuns(limit int) []database.RunRecord {
	if c.db == nil {
		return nil
	}
	runs, err := c.db.RecentRuns(limit)
	if err != nil {
		log.Warnf("failed to load recent runs: %v", err)
		return nil
	}
	return runs
}

// resolveSource turns the user input into song queries. URLs are routed by
// host: Apple Music pages are scraped, everything else goes through the
// YouTube resolver. Files and raw content go through the song list parser.
func (c *Controller) resolveSource(ctx context.Context, source Source, sink pipeline.Sink) ([]string, error) {
	if source.URL != "" {
		sink.Append(fmt.Sprintf("Fetching titles from: %s...", source.URL))

		if strings.Contains(source.URL, "apple.com") {
			return c.apple.SongQueries(ctx, source.URL)
		}
		return c.youtube.SongQueries(ctx, source.URL)
	}

	songs := songlist.Load(songlist.Source{Path: source.Path, Content: source.Content})
	if len(songs) > 0 {
		sink.Append(fmt.Sprintf("Successfully loaded %d items.", len(songs)))
	}
	return songs, nil
}
