package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/derickschaefer/pitwall/internal/store"
)

func TestNewSavedIDIsUUIDv7(t *testing.T) {
	id := newSavedID()
	if len(id) != 36 {
		t.Fatalf("expected 36-char UUID, got %d (%q)", len(id), id)
	}
	if id[14] != '7' {
		t.Fatalf("expected version 7 UUID, got %q", id)
	}
}

func TestNewSavedIDSortability(t *testing.T) {
	a := newSavedID()
	time.Sleep(2 * time.Millisecond)
	b := newSavedID()
	if a >= b {
		t.Fatalf("expected increasing lexical order across time: a=%q b=%q", a, b)
	}
}

type staticSaved []store.SavedSearch

func (s staticSaved) ListSaved() ([]store.SavedSearch, error) { return s, nil }

func TestFindSaved(t *testing.T) {
	all := staticSaved{
		{ID: "0190a1b2-0000-7000-8000-000000000001", Name: "GT3 Monza"},
		{ID: "0190a1b2-0000-7000-8000-000000000002", Name: "GTP Spa"},
		{ID: "0190c3d4-0000-7000-8000-000000000003", Name: "LMP2"},
	}

	ss, err := findSaved(all, "0190a1b2-0000-7000-8000-000000000002")
	if err != nil || ss.Name != "GTP Spa" {
		t.Fatalf("exact id: got %+v, %v", ss, err)
	}
	ss, err = findSaved(all, "gt3 monza")
	if err != nil || ss.ID != all[0].ID {
		t.Fatalf("name: got %+v, %v", ss, err)
	}
	ss, err = findSaved(all, "0190c3")
	if err != nil || ss.Name != "LMP2" {
		t.Fatalf("prefix: got %+v, %v", ss, err)
	}
	if _, err := findSaved(all, "0190a1b2"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("expected ambiguous error, got %v", err)
	}
	if _, err := findSaved(all, "nope"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}
