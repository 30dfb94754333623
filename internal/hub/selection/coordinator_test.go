package selection

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestToggleSelectDeselect(t *testing.T) {
	c := NewCoordinator(Callbacks{})

	c.Toggle("a")
	if !c.IsSelected("a") || c.SelectedCount() != 1 {
		t.Fatalf("toggle on: selected=%v count=%d", c.IsSelected("a"), c.SelectedCount())
	}
	c.Toggle("a")
	if c.IsSelected("a") || c.HasSelection() {
		t.Fatalf("toggle off must remove the id")
	}

	c.Select("a")
	c.Select("a")
	if c.SelectedCount() != 1 {
		t.Fatalf("re-select must be idempotent, count=%d", c.SelectedCount())
	}
	c.Deselect("a")
	c.Deselect("missing")
	if c.HasSelection() {
		t.Fatalf("deselect left a selection behind")
	}
}

func TestSelectManyAddsSelectAllReplaces(t *testing.T) {
	c := NewCoordinator(Callbacks{})

	c.SelectMany([]string{"x", "y"})
	c.SelectMany([]string{"y", "z"})
	got := c.SelectedIDs()
	if len(got) != 3 || got[0] != "x" || got[1] != "y" || got[2] != "z" {
		t.Fatalf("SelectMany must add in insertion order, got %v", got)
	}

	c.SelectAll([]string{"z"})
	got = c.SelectedIDs()
	if len(got) != 1 || got[0] != "z" {
		t.Fatalf("SelectAll must replace the selection, got %v", got)
	}
}

func TestArchiveClearsSelectionOnSuccess(t *testing.T) {
	var gotIDs []string
	c := NewCoordinator(Callbacks{
		OnArchive: func(ctx context.Context, ids []string) error {
			gotIDs = ids
			return nil
		},
	})
	c.Select("a")
	c.Select("b")

	if err := c.Archive(context.Background()); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if len(gotIDs) != 2 || gotIDs[0] != "a" || gotIDs[1] != "b" {
		t.Fatalf("collaborator ids: got %v", gotIDs)
	}
	if c.SelectedCount() != 0 {
		t.Fatalf("selection must be cleared on success, count=%d", c.SelectedCount())
	}
	if c.Err() != nil {
		t.Fatalf("err must stay nil on success, got %v", c.Err())
	}
	if c.LastAction() != ActionArchive {
		t.Fatalf("lastAction: want %s, got %s", ActionArchive, c.LastAction())
	}
}

func TestFailedActionPreservesSelection(t *testing.T) {
	boom := errors.New("db down")
	c := NewCoordinator(Callbacks{
		OnArchive: func(ctx context.Context, ids []string) error { return boom },
	})
	c.Select("a")
	c.Select("b")

	err := c.Archive(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("archive must surface the collaborator error, got %v", err)
	}
	if c.SelectedCount() != 2 {
		t.Fatalf("failed action must preserve selection, count=%d", c.SelectedCount())
	}
	if !errors.Is(c.Err(), boom) {
		t.Fatalf("Err() must wrap the failure, got %v", c.Err())
	}
	if c.IsLoading() {
		t.Fatalf("loading flag stuck after failure")
	}
}

func TestErrClearedWhenNextActionStarts(t *testing.T) {
	fail := true
	c := NewCoordinator(Callbacks{
		OnDelete: func(ctx context.Context, ids []string) error {
			if fail {
				return errors.New("nope")
			}
			return nil
		},
	})
	c.Select("a")

	if err := c.Delete(context.Background()); err == nil {
		t.Fatalf("first delete must fail")
	}
	fail = false
	if err := c.Delete(context.Background()); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if c.Err() != nil {
		t.Fatalf("err must be cleared by the next action, got %v", c.Err())
	}
}

func TestNilCollaboratorIsNoOp(t *testing.T) {
	c := NewCoordinator(Callbacks{})
	c.Select("a")

	if err := c.AddTags(context.Background(), []string{"t1"}); err != nil {
		t.Fatalf("addTags without collaborator: %v", err)
	}
	if c.SelectedCount() != 1 {
		t.Fatalf("no-op action must leave selection untouched, count=%d", c.SelectedCount())
	}
	if c.Err() != nil || c.IsLoading() {
		t.Fatalf("no-op action must not record state")
	}
}

func TestSecondActionWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := NewCoordinator(Callbacks{
		OnArchive: func(ctx context.Context, ids []string) error {
			close(started)
			<-release
			return nil
		},
		OnDelete: func(ctx context.Context, ids []string) error { return nil },
	})
	c.Select("a")

	done := make(chan error, 1)
	go func() { done <- c.Archive(context.Background()) }()
	<-started

	if !c.IsLoading() {
		t.Fatalf("IsLoading must report the running action")
	}
	if err := c.Delete(context.Background()); !errors.Is(err, ErrActionInFlight) {
		t.Fatalf("overlapping action: want ErrActionInFlight, got %v", err)
	}
	if c.LastAction() != ActionArchive {
		t.Fatalf("rejected action must not overwrite lastAction, got %s", c.LastAction())
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("archive: %v", err)
	}
	if c.SelectedCount() != 0 {
		t.Fatalf("completed action must clear selection")
	}
}

func TestSnapshotTakenBeforeCollaboratorRuns(t *testing.T) {
	var gotIDs []string
	c := NewCoordinator(Callbacks{})
	c.callbacks.OnMove = func(ctx context.Context, ids []string, collectionID *string) error {
		// Edits made mid-flight must not change the argument list.
		c.Select("c")
		gotIDs = ids
		return nil
	}
	c.Select("a")
	c.Select("b")

	dest := "col-1"
	if err := c.MoveToCollection(context.Background(), &dest); err != nil {
		t.Fatalf("move: %v", err)
	}
	if len(gotIDs) != 2 || gotIDs[0] != "a" || gotIDs[1] != "b" {
		t.Fatalf("snapshot ids: got %v", gotIDs)
	}
}

func TestMovePassesCollectionID(t *testing.T) {
	var gotDest *string
	c := NewCoordinator(Callbacks{
		OnMove: func(ctx context.Context, ids []string, collectionID *string) error {
			gotDest = collectionID
			return nil
		},
	})
	c.Select("a")

	if err := c.MoveToCollection(context.Background(), nil); err != nil {
		t.Fatalf("move to root: %v", err)
	}
	if gotDest != nil {
		t.Fatalf("nil destination must reach the collaborator as nil")
	}
}

func TestAddTagsPassesTagIDs(t *testing.T) {
	var gotTags []string
	c := NewCoordinator(Callbacks{
		OnAddTags: func(ctx context.Context, ids []string, tagIDs []string) error {
			gotTags = tagIDs
			return nil
		},
	})
	c.Select("a")

	if err := c.AddTags(context.Background(), []string{"t1", "t2"}); err != nil {
		t.Fatalf("addTags: %v", err)
	}
	if len(gotTags) != 2 || gotTags[0] != "t1" || gotTags[1] != "t2" {
		t.Fatalf("tag ids: got %v", gotTags)
	}
}

func TestSelectionChangeObserver(t *testing.T) {
	var mu sync.Mutex
	var history [][]string
	c := NewCoordinator(Callbacks{
		OnRestore: func(ctx context.Context, ids []string) error { return nil },
		OnSelectionChange: func(ids []string) {
			mu.Lock()
			history = append(history, ids)
			mu.Unlock()
		},
	})

	c.Select("a")
	c.SelectMany([]string{"b", "c"})
	c.Deselect("b")
	if err := c.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(history) != 4 {
		t.Fatalf("observer calls: want 4, got %d", len(history))
	}
	if got := history[1]; len(got) != 3 || got[0] != "a" {
		t.Fatalf("observer after SelectMany: got %v", got)
	}
	if got := history[3]; len(got) != 0 {
		t.Fatalf("observer after successful restore: want empty, got %v", got)
	}
}

func TestDuplicateAndRestoreRecordLastAction(t *testing.T) {
	c := NewCoordinator(Callbacks{
		OnDuplicate: func(ctx context.Context, ids []string) error { return nil },
	})
	c.Select("a")

	if err := c.Duplicate(context.Background()); err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if c.LastAction() != ActionDuplicate {
		t.Fatalf("lastAction: want %s, got %s", ActionDuplicate, c.LastAction())
	}
}
