package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/semekork/spotify-playlist-Generator/matcher"
)

type recommendCall struct {
	seeds []string
	limit int
}

// fakeCatalog scripts Catalog responses and records every mutating call.
type fakeCatalog struct {
	tracks       map[string]*TrackCandidate
	searchErr    map[string]error
	createErr    error
	created      []string
	addErr       error
	addCalls     [][]string
	recommended  []TrackCandidate
	recommendErr error
	recommends   []recommendCall
	items        []PlaylistItem
	itemsErr     error
	removeErr    error
	removeCalls  [][]OccurrenceRemoval
}

func (f *fakeCatalog) SearchTopTrack(_ context.Context, query string) (*TrackCandidate, error) {
	if err, ok := f.searchErr[query]; ok {
		return nil, err
	}
	return f.tracks[query], nil
}

func (f *fakeCatalog) CreatePlaylist(_ context.Context, name, _ string) (*CreatedPlaylist, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, name)
	return &CreatedPlaylist{ID: "pl123", Name: name, URL: "https://open.spotify.com/playlist/pl123"}, nil
}

func (f *fakeCatalog) AddTracks(_ context.Context, _ string, trackIDs []string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.addCalls = append(f.addCalls, trackIDs)
	return nil
}

func (f *fakeCatalog) Recommend(_ context.Context, seedIDs []string, limit int) ([]TrackCandidate, error) {
	f.recommends = append(f.recommends, recommendCall{seeds: seedIDs, limit: limit})
	if f.recommendErr != nil {
		return nil, f.recommendErr
	}
	if f.recommended != nil {
		return f.recommended, nil
	}
	recs := make([]TrackCandidate, 0, limit)
	for i := 0; i < limit; i++ {
		recs = append(recs, TrackCandidate{ID: fmt.Sprintf("rec%d", i), URI: fmt.Sprintf("spotify:track:rec%d", i)})
	}
	return recs, nil
}

func (f *fakeCatalog) PlaylistItems(_ context.Context, _ string) ([]PlaylistItem, error) {
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	return f.items, nil
}

func (f *fakeCatalog) RemoveOccurrences(_ context.Context, _ string, removals []OccurrenceRemoval) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removeCalls = append(f.removeCalls, removals)
	return nil
}

type memorySink struct {
	lines []string
}

func (s *memorySink) Append(line string) {
	s.lines = append(s.lines, line)
}

// matchable builds a query whose top candidate trivially passes the matcher.
func matchable(catalog *fakeCatalog, n int) []string {
	if catalog.tracks == nil {
		catalog.tracks = make(map[string]*TrackCandidate)
	}
	queries := make([]string, 0, n)
	for i := 0; i < n; i++ {
		query := fmt.Sprintf("artist%d song%d", i, i)
		catalog.tracks[query] = &TrackCandidate{
			ID:     fmt.Sprintf("id%d", i),
			URI:    fmt.Sprintf("spotify:track:id%d", i),
			Artist: fmt.Sprintf("artist%d", i),
			Title:  fmt.Sprintf("song%d", i),
		}
		queries = append(queries, query)
	}
	return queries
}

func newBuilder(catalog *fakeCatalog) (*Builder, *memorySink) {
	sink := &memorySink{}
	return &Builder{
		Catalog: catalog,
		Matcher: matcher.New(matcher.DefaultThreshold),
		Sink:    sink,
	}, sink
}

func TestBuildNoSongs(t *testing.T) {
	b, _ := newBuilder(&fakeCatalog{})
	if _, err := b.Build(context.Background(), nil, "Empty"); !errors.Is(err, ErrNoSongs) {
		t.Errorf("Build() err = %v; want ErrNoSongs", err)
	}
}

func TestBuildNoValidTracks(t *testing.T) {
	catalog := &fakeCatalog{
		tracks: map[string]*TrackCandidate{
			"something obscure": {ID: "x", URI: "spotify:track:x", Artist: "zz", Title: "qq"},
		},
	}
	b, _ := newBuilder(catalog)

	report, err := b.Build(context.Background(), []string{"something obscure", "not on spotify"}, "Mix")
	if !errors.Is(err, ErrNoValidTracks) {
		t.Fatalf("Build() err = %v; want ErrNoValidTracks", err)
	}
	if len(catalog.created) != 0 {
		t.Error("playlist was created despite zero accepted tracks")
	}
	if len(report.Missing) != 2 {
		t.Errorf("Missing = %v; want both queries", report.Missing)
	}
}

func TestBuildSearchErrorTreatedAsMissing(t *testing.T) {
	catalog := &fakeCatalog{searchErr: map[string]error{"boom": errors.New("api down")}}
	queries := append(matchable(catalog, 10), "boom")
	b, _ := newBuilder(catalog)

	report, err := b.Build(context.Background(), queries, "Mix")
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}
	if report.Accepted != 10 {
		t.Errorf("Accepted = %d; want 10", report.Accepted)
	}
	if len(report.Missing) != 1 || report.Missing[0] != "boom" {
		t.Errorf("Missing = %v; want [boom]", report.Missing)
	}
}

func TestBuildExtensionThreshold(t *testing.T) {
	tests := []struct {
		accepted   int
		wantExtend bool
	}{
		{1, true},
		{5, true},
		{9, true},
		{10, false},
		{15, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("accepted_%d", tt.accepted), func(t *testing.T) {
			catalog := &fakeCatalog{}
			queries := matchable(catalog, tt.accepted)
			b, _ := newBuilder(catalog)

			report, err := b.Build(context.Background(), queries, "Mix")
			if err != nil {
				t.Fatalf("Build() err = %v", err)
			}

			if !tt.wantExtend {
				if len(catalog.recommends) != 0 {
					t.Fatalf("extension invoked for %d accepted tracks", tt.accepted)
				}
				if report.Accepted != tt.accepted {
					t.Errorf("Accepted = %d; want %d", report.Accepted, tt.accepted)
				}
				return
			}

			if len(catalog.recommends) != 1 {
				t.Fatalf("recommend calls = %d; want 1", len(catalog.recommends))
			}
			call := catalog.recommends[0]
			if call.limit != extendTarget-tt.accepted {
				t.Errorf("recommend limit = %d; want %d", call.limit, extendTarget-tt.accepted)
			}
			wantSeeds := min(maxSeeds, tt.accepted)
			if len(call.seeds) != wantSeeds {
				t.Errorf("seeds = %d; want %d", len(call.seeds), wantSeeds)
			}
			if report.Accepted != extendTarget {
				t.Errorf("Accepted = %d; want %d", report.Accepted, extendTarget)
			}
		})
	}
}

func TestBuildExtensionFailureKeepsOriginalSet(t *testing.T) {
	catalog := &fakeCatalog{recommendErr: errors.New("recommendations retired")}
	queries := matchable(catalog, 3)
	b, _ := newBuilder(catalog)

	report, err := b.Build(context.Background(), queries, "Mix")
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}
	if report.Accepted != 3 {
		t.Errorf("Accepted = %d; want original 3", report.Accepted)
	}
	if len(catalog.created) != 1 {
		t.Error("playlist should still be created after extension failure")
	}
}

func TestBuildAppendChunking(t *testing.T) {
	for _, n := range []int{99, 100, 101, 250} {
		t.Run(fmt.Sprintf("n_%d", n), func(t *testing.T) {
			catalog := &fakeCatalog{}
			queries := matchable(catalog, n)
			b, _ := newBuilder(catalog)

			if _, err := b.Build(context.Background(), queries, "Big Mix"); err != nil {
				t.Fatalf("Build() err = %v", err)
			}

			total := 0
			for _, call := range catalog.addCalls {
				if len(call) == 0 || len(call) > 100 {
					t.Errorf("chunk size %d out of range", len(call))
				}
				total += len(call)
			}
			if total != n {
				t.Errorf("appended %d tracks; want %d", total, n)
			}
			wantCalls := (n + 99) / 100
			if len(catalog.addCalls) != wantCalls {
				t.Errorf("append calls = %d; want %d", len(catalog.addCalls), wantCalls)
			}
		})
	}
}

func TestBuildCreateFailureAborts(t *testing.T) {
	catalog := &fakeCatalog{createErr: errors.New("403")}
	queries := matchable(catalog, 12)
	b, _ := newBuilder(catalog)

	if _, err := b.Build(context.Background(), queries, "Mix"); err == nil {
		t.Fatal("Build() err = nil; want create failure")
	}
	if len(catalog.addCalls) != 0 {
		t.Error("tracks were appended after create failed")
	}
}

func TestBuildWritesMissingFile(t *testing.T) {
	catalog := &fakeCatalog{}
	queries := append(matchable(catalog, 10), "ghost song one", "ghost song two")
	b, _ := newBuilder(catalog)
	b.MissingSongFile = filepath.Join(t.TempDir(), "missing.txt")

	if _, err := b.Build(context.Background(), queries, "Mix"); err != nil {
		t.Fatalf("Build() err = %v", err)
	}

	data, err := os.ReadFile(b.MissingSongFile)
	if err != nil {
		t.Fatalf("missing file not written: %v", err)
	}
	want := "ghost song one\nghost song two"
	if string(data) != want {
		t.Errorf("missing file = %q; want %q", string(data), want)
	}
}

func TestBuildReportsProgress(t *testing.T) {
	catalog := &fakeCatalog{}
	queries := matchable(catalog, 10)
	b, sink := newBuilder(catalog)

	if _, err := b.Build(context.Background(), queries, "Mix"); err != nil {
		t.Fatalf("Build() err = %v", err)
	}

	joined := strings.Join(sink.lines, "\n")
	if !strings.Contains(joined, "Processing 10 songs") {
		t.Error("missing processing line")
	}
	if !strings.Contains(joined, "Success! Created 'Mix'") {
		t.Error("missing success line")
	}
}
