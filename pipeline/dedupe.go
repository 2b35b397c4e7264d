package pipeline

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DedupeReport summarizes a deduplication run. Removed can be lower than
// Found when a removal batch fails partway; batches already issued stay.
type DedupeReport struct {
	PlaylistID string
	Found      int
	Removed    int
}

// Deduper removes repeated tracks from an existing playlist, keeping the
// first occurrence of each track identifier.
type Deduper struct {
	Catalog  Catalog
	Sink     Sink
	Recorder Recorder // optional
}

// ExtractPlaylistID resolves a playlist reference (a share URL or a raw
// identifier) to the bare playlist ID. URLs are recognized by the
// "playlist/" path segment; anything else is taken verbatim.
func ExtractPlaylistID(ref string) string {
	ref = strings.TrimSpace(ref)
	if idx := strings.Index(ref, "playlist/"); idx != -1 {
		id := ref[idx+len("playlist/"):]
		id = strings.SplitN(id, "?", 2)[0]
		return strings.SplitN(id, "/", 2)[0]
	}
	return ref
}

// FindDuplicates scans items in playlist order and flags every repeat
// occurrence of a track identifier for removal. Entries with no track or
// no identifier are skipped outright: they neither count as seen nor get
// flagged, but they still occupy their position.
func FindDuplicates(items []PlaylistItem) []OccurrenceRemoval {
	seen := make(map[string]bool, len(items))
	var removals []OccurrenceRemoval

	for position, item := range items {
		if item.TrackID == "" || item.URI == "" {
			continue
		}
		if seen[item.TrackID] {
			removals = append(removals, OccurrenceRemoval{
				URI:       item.URI,
				Positions: []int{position},
			})
			continue
		}
		seen[item.TrackID] = true
	}
	return removals
}

// Dedupe fetches the playlist behind ref, finds duplicate occurrences and
// deletes them in batches. A fetch or removal failure aborts the remainder;
// removals already issued are not rolled back.
func (d *Deduper) Dedupe(ctx context.Context, ref string) (*DedupeReport, error) {
	out := sinkLogger{d.Sink}

	playlistID := ExtractPlaylistID(ref)
	report := &DedupeReport{PlaylistID: playlistID}

	out.emitf("🔎 Scanning playlist: %s...", playlistID)

	items, err := d.Catalog.PlaylistItems(ctx, playlistID)
	if err != nil {
		out.emitf("❌ Error fetching playlist items: %v", err)
		return report, err
	}

	removals := FindDuplicates(items)
	report.Found = len(removals)

	if len(removals) == 0 {
		out.emit("✨ No duplicates found.")
		d.record(playlistID, 0)
		return report, nil
	}

	for _, removal := range removals {
		item := items[removal.Positions[0]]
		out.emitf("   -> Found duplicate: %s - %s", item.Artist, item.Title)
	}

	out.emitf("🧹 Found %d duplicates. Removing...", len(removals))

	for i := 0; i < len(removals); i += chunkSize {
		end := min(i+chunkSize, len(removals))
		if err := d.Catalog.RemoveOccurrences(ctx, playlistID, removals[i:end]); err != nil {
			out.emitf("❌ Error removing duplicates: %v", err)
			d.record(playlistID, report.Removed)
			return report, err
		}
		report.Removed = end
	}

	out.emit("✅ Playlist cleaned!")
	d.record(playlistID, report.Removed)
	return report, nil
}

func (d *Deduper) record(playlistID string, removed int) {
	if d.Recorder == nil {
		return
	}
	if err := d.Recorder.RecordDedupeRun(playlistID, removed); err != nil {
		log.Warnf("failed to record dedupe run: %v", err)
	}
}
