package database

import (
	"path/filepath"
	"reflect"
	"testing"
)

func open(t *testing.T) *Database {
	t.Helper()
	d, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestRecordAndRecentRuns(t *testing.T) {
	d := open(t)

	if err := d.RecordCreateRun("pl1", "Road Trip", 20, 3); err != nil {
		t.Fatalf("RecordCreateRun() err = %v", err)
	}
	if err := d.RecordDedupeRun("pl2", 5); err != nil {
		t.Fatalf("RecordDedupeRun() err = %v", err)
	}

	runs, err := d.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns() err = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("RecentRuns() len = %d; want 2", len(runs))
	}

	// Newest first
	if runs[0].Kind != "dedupe" || runs[0].PlaylistID != "pl2" || runs[0].Removed != 5 {
		t.Errorf("runs[0] = %+v", runs[0])
	}
	if runs[1].Kind != "create" || runs[1].Accepted != 20 || runs[1].Missing != 3 {
		t.Errorf("runs[1] = %+v", runs[1])
	}
	if runs[1].PlaylistName != "Road Trip" {
		t.Errorf("PlaylistName = %q", runs[1].PlaylistName)
	}
}

func TestRecentRunsLimit(t *testing.T) {
	d := open(t)
	for i := 0; i < 15; i++ {
		if err := d.RecordDedupeRun("pl", i); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := d.RecentRuns(0) // defaults to 10
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 10 {
		t.Errorf("RecentRuns(0) len = %d; want 10", len(runs))
	}
}

func TestRecordMissing(t *testing.T) {
	d := open(t)

	queries := []string{"ghost song one", "ghost song two"}
	if err := d.RecordMissing("pl1", queries); err != nil {
		t.Fatalf("RecordMissing() err = %v", err)
	}

	got, err := d.MissingSongs("pl1")
	if err != nil {
		t.Fatalf("MissingSongs() err = %v", err)
	}
	if !reflect.DeepEqual(got, queries) {
		t.Errorf("MissingSongs() = %v; want %v", got, queries)
	}

	other, err := d.MissingSongs("pl2")
	if err != nil {
		t.Fatal(err)
	}
	if other != nil {
		t.Errorf("MissingSongs(pl2) = %v; want none", other)
	}
}
