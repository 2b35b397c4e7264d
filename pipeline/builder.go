package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/semekork/spotify-playlist-Generator/matcher"
)

const (
	// extendBelow is the accepted-count floor under which the builder pads
	// the result set via recommendations.
	extendBelow = 10
	// extendTarget is the size the extension step aims for.
	extendTarget = 20
	// maxSeeds is the recommendation endpoint's seed ceiling.
	maxSeeds = 5
)

// BuildReport summarizes a playlist-construction run. Missing is always
// populated, even when the run aborts before creating a playlist.
type BuildReport struct {
	PlaylistID   string
	PlaylistName string
	PlaylistURL  string
	Accepted     int
	Missing      []string
}

// Builder walks a song list, resolves each query to a confirmed track via
// search plus fuzzy matching, and materializes the result as a private
// playlist.
type Builder struct {
	Catalog  Catalog
	Matcher  *matcher.Matcher
	Sink     Sink
	Recorder Recorder // optional
	// MissingSongFile, when set, receives the newline-joined missing list.
	MissingSongFile string
	// Describe overrides the playlist description, e.g. with a Gemini-written
	// blurb. Nil falls back to the static format.
	Describe func(ctx context.Context, name string, trackCount int) string
}

// Build runs the full construction pipeline for queries, in order, and
// creates a private playlist called name. Individual search failures are
// logged and treated as missing; the run only errors out on an empty
// result set or a failed create/append call.
func (b *Builder) Build(ctx context.Context, queries []string, name string) (*BuildReport, error) {
	out := sinkLogger{b.Sink}

	if len(queries) == 0 {
		out.emit("❌ No songs found in the input source.")
		return nil, ErrNoSongs
	}

	out.emitf("🔎 Processing %d songs...", len(queries))

	var accepted []TrackCandidate
	var missing []string

	for _, query := range queries {
		out.emitf("Searching: %s...", query)

		candidate, err := b.Catalog.SearchTopTrack(ctx, query)
		if err != nil {
			// No retry; the query simply joins the missing list.
			out.emitf("Error searching %s: %v", query, err)
			missing = append(missing, query)
			continue
		}
		if candidate == nil {
			missing = append(missing, query)
			continue
		}

		ok, found, _ := b.Matcher.Validate(query, candidate.Artist, candidate.Title)
		if !ok {
			out.emitf("   -> Skipped: %s", found)
			missing = append(missing, query)
			continue
		}

		accepted = append(accepted, *candidate)
		out.emitf("   -> Found: %s", found)
	}

	report := &BuildReport{PlaylistName: name, Missing: missing}

	if len(accepted) == 0 {
		out.emit("❌ No valid tracks found.")
		return report, ErrNoValidTracks
	}

	if len(accepted) < extendBelow {
		accepted = b.extend(ctx, out, accepted, extendTarget)
	}
	report.Accepted = len(accepted)

	playlist, err := b.Catalog.CreatePlaylist(ctx, name, b.description(ctx, name, len(accepted)))
	if err != nil {
		out.emitf("❌ Error creating playlist: %v", err)
		return report, err
	}
	report.PlaylistID = playlist.ID
	report.PlaylistURL = playlist.URL

	trackIDs := make([]string, 0, len(accepted))
	for _, candidate := range accepted {
		trackIDs = append(trackIDs, candidate.ID)
	}

	for i := 0; i < len(trackIDs); i += chunkSize {
		end := min(i+chunkSize, len(trackIDs))
		if err := b.Catalog.AddTracks(ctx, playlist.ID, trackIDs[i:end]); err != nil {
			// Chunks already appended stay; there is no rollback.
			out.emitf("❌ Error adding tracks: %v", err)
			return report, err
		}
	}

	out.emitf("🚀 Success! Created '%s' with %d songs. URL: %s", name, len(trackIDs), playlist.URL)

	b.reportMissing(out, playlist.ID, missing)

	if b.Recorder != nil {
		if err := b.Recorder.RecordCreateRun(playlist.ID, name, len(accepted), len(missing)); err != nil {
			log.Warnf("failed to record create run: %v", err)
		}
	}

	return report, nil
}

// extend pads a short accepted set toward target using recommendations
// seeded by a random sample of the accepted tracks. Failure keeps the
// original set.
func (b *Builder) extend(ctx context.Context, out sinkLogger, accepted []TrackCandidate, target int) []TrackCandidate {
	if len(accepted) >= target {
		return accepted
	}

	out.emitf("✨ Extending playlist from %d to %d songs...", len(accepted), target)

	seedCount := min(maxSeeds, len(accepted))
	seeds := make([]string, 0, seedCount)
	for _, idx := range rand.Perm(len(accepted))[:seedCount] {
		seeds = append(seeds, accepted[idx].ID)
	}

	recommended, err := b.Catalog.Recommend(ctx, seeds, target-len(accepted))
	if err != nil {
		out.emitf("⚠️ Recommendation lookup failed: %v", err)
		return accepted
	}

	out.emitf("   -> Added %d recommended tracks.", len(recommended))
	return append(accepted, recommended...)
}

func (b *Builder) description(ctx context.Context, name string, trackCount int) string {
	if b.Describe != nil {
		if desc := b.Describe(ctx, name, trackCount); desc != "" {
			return desc
		}
	}
	return fmt.Sprintf("Generated by Playlist Generator | %d Tracks", trackCount)
}

func (b *Builder) reportMissing(out sinkLogger, playlistID string, missing []string) {
	if len(missing) == 0 {
		return
	}

	if b.MissingSongFile != "" {
		content := strings.Join(missing, "\n")
		if err := os.WriteFile(b.MissingSongFile, []byte(content), 0644); err != nil {
			out.emitf("⚠️ Could not save missing songs file: %v", err)
		} else {
			out.emitf("⚠️ %d missing songs saved to %s", len(missing), b.MissingSongFile)
		}
	} else {
		out.emitf("⚠️ %d songs could not be matched.", len(missing))
	}

	if b.Recorder != nil {
		if err := b.Recorder.RecordMissing(playlistID, missing); err != nil {
			log.Warnf("failed to record missing songs: %v", err)
		}
	}
}
