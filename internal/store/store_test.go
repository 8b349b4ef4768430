package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/store"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// testDB opens a fresh isolated database in t.TempDir().
// It is closed and deleted automatically when the test ends.
func testDB(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func entry(names map[string]int64, labels map[string]string) model.NameEntry {
	e := model.NewNameEntry()
	for k, v := range names {
		e.Names[k] = v
	}
	for k, v := range labels {
		e.Labels[k] = v
	}
	return e
}

// ─── Open / Path ──────────────────────────────────────────────────────────────

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c", "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open with nested path: %v", err)
	}
	defer s.Close()
	if s.Path() != path {
		t.Errorf("Path: expected %q, got %q", path, s.Path())
	}
}

// ─── Names ────────────────────────────────────────────────────────────────────

func TestLoadNamesMissingIsEmpty(t *testing.T) {
	s := testDB(t)
	e, err := s.LoadNames("car")
	if err != nil {
		t.Fatalf("LoadNames: %v", err)
	}
	if len(e.Names) != 0 {
		t.Errorf("expected empty entry, got %v", e.Names)
	}
	if e.Names == nil || e.Labels == nil {
		t.Error("empty entry maps must be writable")
	}
}

func TestMergeNamesIsAdditive(t *testing.T) {
	s := testDB(t)
	if err := s.MergeNames("car", entry(map[string]int64{"ferrari 296": 7}, map[string]string{"7": "Ferrari 296"})); err != nil {
		t.Fatalf("MergeNames: %v", err)
	}
	if err := s.MergeNames("car", entry(map[string]int64{"bmw m4": 9}, nil)); err != nil {
		t.Fatalf("MergeNames: %v", err)
	}

	e, err := s.LoadNames("car")
	if err != nil {
		t.Fatalf("LoadNames: %v", err)
	}
	if e.Names["ferrari 296"] != 7 || e.Names["bmw m4"] != 9 {
		t.Errorf("expected both names kept, got %v", e.Names)
	}
	if l, ok := e.Label(7); !ok || l != "Ferrari 296" {
		t.Errorf("label for 7: got %q ok=%v", l, ok)
	}
}

func TestMergeNamesScopedByDimension(t *testing.T) {
	s := testDB(t)
	_ = s.MergeNames("car", entry(map[string]int64{"x": 1}, nil))
	_ = s.MergeNames("track", entry(map[string]int64{"x": 2}, nil))

	car, _ := s.LoadNames("car")
	track, _ := s.LoadNames("track")
	if car.Names["x"] != 1 || track.Names["x"] != 2 {
		t.Errorf("dimensions leaked into each other: car=%v track=%v", car.Names, track.Names)
	}

	dims, err := s.ListNameDimensions()
	if err != nil {
		t.Fatalf("ListNameDimensions: %v", err)
	}
	if len(dims) != 2 || dims[0] != "car" || dims[1] != "track" {
		t.Errorf("dims: got %v", dims)
	}
}

// ─── Saved Searches ───────────────────────────────────────────────────────────

func TestSavedRoundTrip(t *testing.T) {
	s := testDB(t)
	older := store.SavedSearch{ID: "b", Name: "spa", URL: "/setups/acc/bmw/spa", CreatedAt: time.Now().Add(-time.Hour)}
	newer := store.SavedSearch{ID: "a", Name: "monza", URL: "/setups/iracing/ferrari-296/monza", CreatedAt: time.Now()}
	for _, ss := range []store.SavedSearch{newer, older} {
		if err := s.PutSaved(ss); err != nil {
			t.Fatalf("PutSaved: %v", err)
		}
	}

	got, ok, err := s.GetSaved("a")
	if err != nil || !ok {
		t.Fatalf("GetSaved: ok=%v err=%v", ok, err)
	}
	if got.URL != newer.URL {
		t.Errorf("URL: got %q", got.URL)
	}

	list, err := s.ListSaved()
	if err != nil {
		t.Fatalf("ListSaved: %v", err)
	}
	if len(list) != 2 || list[0].ID != "b" {
		t.Errorf("ListSaved should be oldest first, got %+v", list)
	}

	if err := s.DeleteSaved("a"); err != nil {
		t.Fatalf("DeleteSaved: %v", err)
	}
	if _, ok, _ := s.GetSaved("a"); ok {
		t.Error("saved search should be gone after delete")
	}
}

// ─── Token ────────────────────────────────────────────────────────────────────

func TestTokenRoundTrip(t *testing.T) {
	s := testDB(t)
	if _, ok, _ := s.GetToken(); ok {
		t.Fatal("fresh store should have no token")
	}
	tok := model.Token{AccessToken: "acc", RefreshToken: "ref", Expiry: time.Now().Add(time.Hour).UTC().Truncate(time.Second)}
	if err := s.PutToken(tok); err != nil {
		t.Fatalf("PutToken: %v", err)
	}
	got, ok, err := s.GetToken()
	if err != nil || !ok {
		t.Fatalf("GetToken: ok=%v err=%v", ok, err)
	}
	if got.RefreshToken != "ref" || !got.Expiry.Equal(tok.Expiry) {
		t.Errorf("token mismatch: %+v", got)
	}
	if err := s.DeleteToken(); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if _, ok, _ := s.GetToken(); ok {
		t.Error("token should be gone after delete")
	}
}

// ─── Stats & Clear ────────────────────────────────────────────────────────────

func TestStatsAndClear(t *testing.T) {
	s := testDB(t)
	_ = s.MergeNames("car", entry(map[string]int64{"x": 1}, nil))
	_ = s.PutSaved(store.SavedSearch{ID: "1", Name: "n", URL: "/setups/acc"})

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	counts := map[string]int{}
	for _, st := range stats {
		counts[st.Name] = st.Count
	}
	if counts["names"] != 1 || counts["saved"] != 1 || counts["auth"] != 0 {
		t.Errorf("unexpected counts: %v", counts)
	}

	if err := s.ClearBucket("names"); err != nil {
		t.Fatalf("ClearBucket: %v", err)
	}
	e, _ := s.LoadNames("car")
	if len(e.Names) != 0 {
		t.Error("names should be empty after clear")
	}
	if _, ok, _ := s.GetSaved("1"); !ok {
		t.Error("clearing names must not touch saved")
	}

	if err := s.ClearBucket("bogus"); err == nil {
		t.Error("expected error for unknown bucket")
	}
	if err := s.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if _, ok, _ := s.GetSaved("1"); ok {
		t.Error("saved should be empty after ClearAll")
	}
}
