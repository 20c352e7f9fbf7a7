package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pastego/pastego/internal/classify"
	"github.com/pastego/pastego/internal/model"
	"github.com/pastego/pastego/internal/store"
	"github.com/pastego/pastego/tests/testutil"
)

func insertText(t *testing.T, s *store.SQLiteStore, text string) *model.ClipRecord {
	t.Helper()
	rec, _, err := s.InsertClip(context.Background(), classify.Payload{Text: text}, "")
	if err != nil {
		t.Fatalf("inserting %q: %v", text, err)
	}
	return rec
}

func TestInsertClipDedupesWithinWindow(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first, created, err := s.InsertClip(ctx, classify.Payload{Text: "Hello"}, "Terminal")
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if !created {
		t.Fatal("first insert should create a record")
	}

	time.Sleep(5 * time.Millisecond)

	second, created, err := s.InsertClip(ctx, classify.Payload{Text: "Hello"}, "Terminal")
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if created {
		t.Error("duplicate insert within window should not create a record")
	}
	if second.ID != first.ID {
		t.Errorf("duplicate insert returned id %s, want existing %s", second.ID, first.ID)
	}
	if !second.CreatedAt.After(first.CreatedAt) {
		t.Error("duplicate insert should refresh created_at")
	}

	clips, err := s.GetClips(ctx, store.ClipFilter{})
	if err != nil {
		t.Fatalf("querying clips: %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("got %d clips, want 1", len(clips))
	}
}

func TestInsertClipDedupeNormalizesTrailingNewline(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	insertText(t, s, "alpha")
	_, created, err := s.InsertClip(ctx, classify.Payload{Text: "alpha\n"}, "")
	if err != nil {
		t.Fatalf("insert with trailing newline: %v", err)
	}
	if created {
		t.Error("trailing-newline variant should dedupe against existing record")
	}
}

func TestInsertClipOutsideWindowCreatesNew(t *testing.T) {
	s := testutil.NewTestStore(t)
	s.SetDedupWindow(time.Nanosecond)
	ctx := context.Background()

	insertText(t, s, "Hello")
	time.Sleep(5 * time.Millisecond)
	insertText(t, s, "Hello")

	clips, err := s.GetClips(ctx, store.ClipFilter{})
	if err != nil {
		t.Fatalf("querying clips: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("got %d clips, want 2 (window expired)", len(clips))
	}
}

func TestInsertClipPinnedDuplicateUntouched(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	pinned := insertText(t, s, "keep me")
	if _, err := s.TogglePin(ctx, pinned.ID); err != nil {
		t.Fatalf("pinning: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	fresh, created, err := s.InsertClip(ctx, classify.Payload{Text: "keep me"}, "")
	if err != nil {
		t.Fatalf("inserting duplicate of pinned: %v", err)
	}
	if !created {
		t.Error("duplicate of a pinned record should create a separate unpinned record")
	}
	if fresh.ID == pinned.ID {
		t.Error("pinned record must not be merged with its duplicate")
	}

	kept, err := s.GetClipByID(ctx, pinned.ID)
	if err != nil {
		t.Fatalf("re-reading pinned record: %v", err)
	}
	if !kept.IsPinned {
		t.Error("pinned record lost its pin")
	}
	if !kept.CreatedAt.Equal(pinned.CreatedAt) {
		t.Error("pinned record's created_at must not change")
	}
}

func TestGetClipsOrdering(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	oldest := insertText(t, s, "oldest")
	time.Sleep(5 * time.Millisecond)
	middle := insertText(t, s, "middle")
	time.Sleep(5 * time.Millisecond)
	newest := insertText(t, s, "newest")

	// Pin the oldest; it must sort ahead of everything.
	if _, err := s.TogglePin(ctx, oldest.ID); err != nil {
		t.Fatalf("pinning: %v", err)
	}

	clips, err := s.GetClips(ctx, store.ClipFilter{})
	if err != nil {
		t.Fatalf("querying clips: %v", err)
	}
	if len(clips) != 3 {
		t.Fatalf("got %d clips, want 3", len(clips))
	}

	wantOrder := []string{oldest.ID, newest.ID, middle.ID}
	for i, want := range wantOrder {
		if clips[i].ID != want {
			t.Errorf("position %d: got %q, want %q", i, clips[i].Content, want)
		}
	}
}

func TestGetClipsSearchAndFilter(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	insertText(t, s, "Hello World")
	insertText(t, s, "goodbye world")
	insertText(t, s, "https://example.com")

	search := "WORLD"
	clips, err := s.GetClips(ctx, store.ClipFilter{Search: &search})
	if err != nil {
		t.Fatalf("search query: %v", err)
	}
	if len(clips) != 2 {
		t.Errorf("case-insensitive search got %d clips, want 2", len(clips))
	}

	urlType := model.ClipTypeURL
	clips, err = s.GetClips(ctx, store.ClipFilter{Type: &urlType})
	if err != nil {
		t.Fatalf("type filter query: %v", err)
	}
	if len(clips) != 1 || clips[0].ClipType != model.ClipTypeURL {
		t.Errorf("type filter got %d clips, want 1 url", len(clips))
	}
}

func TestGetClipsPagination(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c", "d"} {
		insertText(t, s, text)
		time.Sleep(2 * time.Millisecond)
	}

	page, err := s.GetClips(ctx, store.ClipFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("paginated query: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("got %d clips, want 2", len(page))
	}
	if page[0].Content != "c" || page[1].Content != "b" {
		t.Errorf("page = [%q, %q], want [c, b]", page[0].Content, page[1].Content)
	}
}

func TestTogglePin(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	rec := insertText(t, s, "pin me")

	pinned, err := s.TogglePin(ctx, rec.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !pinned {
		t.Error("first toggle should pin")
	}

	pinned, err = s.TogglePin(ctx, rec.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if pinned {
		t.Error("second toggle should unpin")
	}

	if _, err := s.TogglePin(ctx, "no-such-id"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("toggling unknown id: got %v, want ErrNotFound", err)
	}
}

func TestDeleteClipIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	rec := insertText(t, s, "delete me")

	if err := s.DeleteClip(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteClip(ctx, rec.ID); err != nil {
		t.Errorf("repeated delete should be a no-op, got %v", err)
	}
	if err := s.DeleteClip(ctx, "never-existed"); err != nil {
		t.Errorf("deleting absent id should be a no-op, got %v", err)
	}
}

func TestDeleteClipsBestEffort(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	a := insertText(t, s, "one")
	b := insertText(t, s, "two")

	err := s.DeleteClips(ctx, []string{a.ID, "missing", b.ID})
	if err != nil {
		t.Fatalf("batch delete: %v", err)
	}

	clips, err := s.GetClips(ctx, store.ClipFilter{})
	if err != nil {
		t.Fatalf("querying clips: %v", err)
	}
	if len(clips) != 0 {
		t.Errorf("got %d clips after batch delete, want 0", len(clips))
	}
}

func TestPruneClipsSparesPinned(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	old := insertText(t, s, "old unpinned")
	keeper := insertText(t, s, "old pinned")
	if _, err := s.TogglePin(ctx, keeper.ID); err != nil {
		t.Fatalf("pinning: %v", err)
	}

	// keepDays = -1 puts the cutoff in the future, so every unpinned
	// record qualifies.
	n, err := s.PruneClips(ctx, -1)
	if err != nil {
		t.Fatalf("pruning: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d clips, want 1", n)
	}

	if _, err := s.GetClipByID(ctx, old.ID); !errors.Is(err, store.ErrNotFound) {
		t.Error("unpinned record should have been pruned")
	}
	if _, err := s.GetClipByID(ctx, keeper.ID); err != nil {
		t.Errorf("pinned record should survive pruning: %v", err)
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ch := s.Subscribe()

	rec := insertText(t, s, "notify me")

	select {
	case ev := <-ch:
		if ev.Clip == nil || ev.Clip.ID != rec.ID {
			t.Error("insert notification should carry the new record")
		}
	case <-time.After(time.Second):
		t.Fatal("no change event after insert")
	}

	if err := s.DeleteClip(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no change event after delete")
	}
}

// TestHistoryScenario walks the end-to-end flow: dedupe, pin, insert,
// ordered query.
func TestHistoryScenario(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	hello := insertText(t, s, "Hello")
	time.Sleep(5 * time.Millisecond)

	bumped, created, err := s.InsertClip(ctx, classify.Payload{Text: "Hello"}, "")
	if err != nil {
		t.Fatalf("re-inserting Hello: %v", err)
	}
	if created || bumped.ID != hello.ID {
		t.Fatal("re-insert should merge into the existing record")
	}

	clips, _ := s.GetClips(ctx, store.ClipFilter{})
	if len(clips) != 1 {
		t.Fatalf("store should contain 1 record, has %d", len(clips))
	}
	if !clips[0].CreatedAt.After(hello.CreatedAt) {
		t.Error("merge should update created_at")
	}

	if _, err := s.TogglePin(ctx, hello.ID); err != nil {
		t.Fatalf("pinning Hello: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	insertText(t, s, "World")

	clips, err = s.GetClips(ctx, store.ClipFilter{})
	if err != nil {
		t.Fatalf("final query: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("got %d clips, want 2", len(clips))
	}
	if clips[0].Content != "Hello" || clips[1].Content != "World" {
		t.Errorf("order = [%q, %q], want [Hello, World]", clips[0].Content, clips[1].Content)
	}
}
