package snapshotkv

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/compasskit/compassd/internal/log"
	"github.com/compasskit/compassd/internal/types"
)

func TestMain(m *testing.M) {
	if err := log.Init(false); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatalf("could not create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadBeforeFirstSave(t *testing.T) {
	s := newTestStore(t)

	snap, found, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Error("found = true on an empty store")
	}
	if snap.Settings != types.DefaultSettings() {
		t.Errorf("empty store should return defaults, got %+v", snap.Settings)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	want := types.Snapshot{
		Settings:     types.Settings{Units: types.UnitsMils, TickDensity: 16, LogSize: 25},
		Declination:  -7.25,
		UseTrueNorth: true,
		Log: []types.HeadingSample{
			{Timestamp: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC), Heading: 42.5, Cardinal: "NE", Mode: "true"},
		},
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, found, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("found = false after save")
	}
	if got.Settings != want.Settings || got.Declination != want.Declination || got.UseTrueNorth != want.UseTrueNorth {
		t.Errorf("loaded snapshot differs: %+v", got)
	}
	if len(got.Log) != 1 || got.Log[0].Heading != 42.5 || !got.Log[0].Timestamp.Equal(want.Log[0].Timestamp) {
		t.Errorf("loaded log differs: %+v", got.Log)
	}
}

func TestSaveOverwritesPrevious(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(types.Snapshot{Declination: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(types.Snapshot{Declination: 2}); err != nil {
		t.Fatal(err)
	}

	got, _, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Declination != 2 {
		t.Errorf("Declination = %v, want 2 (latest save wins)", got.Declination)
	}
}

func TestLoadToleratesUnreadableFields(t *testing.T) {
	s := newTestStore(t)

	// A document written by hand or by an older build: declination is the
	// wrong type and an unknown field is present.
	doc := `{"settings":{"units":"mil","tickDensity":4,"logSize":10},"declination":"east-ish","useTrueNorth":true,"future":123}`
	if _, err := s.db.Exec(`INSERT INTO snapshots (key, value) VALUES (?, ?)`, snapshotKey, doc); err != nil {
		t.Fatal(err)
	}

	got, found, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("found = false")
	}
	if got.Settings.Units != types.UnitsMils || got.Settings.LogSize != 10 {
		t.Errorf("readable fields not restored: %+v", got.Settings)
	}
	if got.Declination != 0 {
		t.Errorf("Declination = %v, want 0 (unreadable field keeps default)", got.Declination)
	}
	if !got.UseTrueNorth {
		t.Error("UseTrueNorth not restored")
	}
}

func TestLoadRejectsCorruptDocument(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.db.Exec(`INSERT INTO snapshots (key, value) VALUES (?, ?)`, snapshotKey, "{not json"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := s.Load(); err == nil {
		t.Error("Load should fail on a corrupt document")
	}
}
