package note_test

import (
	"testing"
	"time"

	"github.com/geocoder89/notehub/internal/domain/note"
)

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		raw  string
		want note.SortKey
	}{
		{"", note.SortCreatedAt},
		{"created_at", note.SortCreatedAt},
		{"updated_at", note.SortUpdatedAt},
		{" title ", note.SortTitle},
		{"title; DROP TABLE notes", note.SortCreatedAt},
		{"TITLE", note.SortCreatedAt},
		{"id", note.SortCreatedAt},
	}

	for _, tt := range tests {
		if got := note.ParseSortKey(tt.raw); got != tt.want {
			t.Fatalf("ParseSortKey(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestSortKeyLessBreaksTiesOnID(t *testing.T) {
	ts := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	a := note.Note{ID: 1, Title: "same", CreatedAt: ts, UpdatedAt: ts}
	b := note.Note{ID: 2, Title: "same", CreatedAt: ts, UpdatedAt: ts}

	if !note.SortCreatedAt.Less(b, a) || note.SortCreatedAt.Less(a, b) {
		t.Fatalf("created_at order should put the higher id first on equal timestamps")
	}
	if !note.SortUpdatedAt.Less(b, a) {
		t.Fatalf("updated_at order should put the higher id first on equal timestamps")
	}
	if !note.SortTitle.Less(a, b) {
		t.Fatalf("title order should put the lower id first on equal titles")
	}
}

func TestSortTitleIsBytewise(t *testing.T) {
	upper := note.Note{ID: 2, Title: "Banana"}
	lower := note.Note{ID: 1, Title: "apple"}

	if !note.SortTitle.Less(upper, lower) {
		t.Fatalf("uppercase titles sort before lowercase ones")
	}
}

func TestUpdateNoteRequestPatch(t *testing.T) {
	empty := ""
	title := "New title"

	if !(note.UpdateNoteRequest{}).Patch().Empty() {
		t.Fatalf("nil fields should produce an empty patch")
	}
	if !(note.UpdateNoteRequest{Title: &empty, Content: &empty}).Patch().Empty() {
		t.Fatalf("empty strings should count as absent")
	}

	p := note.UpdateNoteRequest{Title: &title}.Patch()
	now := time.Now().UTC()
	got := p.Apply(note.Note{Title: "old", Content: "body"}, now)
	if got.Title != title || got.Content != "body" || !got.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected patched note: %+v", got)
	}
}
