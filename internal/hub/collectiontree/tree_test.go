package collectiontree

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return string(rune('a' + n - 1))
	}
}

func seed() []Collection {
	return []Collection{
		{ID: "root-b", Name: "Scienze"},
		{ID: "root-a", Name: "Matematica"},
		{ID: "child-1", Name: "Algebra", ParentID: "root-a"},
		{ID: "child-2", Name: "Geometria", ParentID: "root-a"},
		{ID: "grand-1", Name: "Equazioni", ParentID: "child-1"},
	}
}

func TestTreeNestsAndSortsByName(t *testing.T) {
	m := NewManager(seed(), Callbacks{})

	roots := m.Tree()
	if len(roots) != 2 {
		t.Fatalf("roots: want 2, got %d", len(roots))
	}
	if roots[0].Name != "Matematica" || roots[1].Name != "Scienze" {
		t.Fatalf("roots must sort by name, got %s, %s", roots[0].Name, roots[1].Name)
	}
	children := roots[0].Children
	if len(children) != 2 || children[0].Name != "Algebra" || children[1].Name != "Geometria" {
		t.Fatalf("children wrong: %+v", children)
	}
	if len(children[0].Children) != 1 || children[0].Children[0].ID != "grand-1" {
		t.Fatalf("grandchild missing")
	}
}

func TestTreePromotesOrphans(t *testing.T) {
	m := NewManager([]Collection{
		{ID: "lost", Name: "Orfano", ParentID: "gone"},
	}, Callbacks{})

	roots := m.Tree()
	if len(roots) != 1 || roots[0].ID != "lost" {
		t.Fatalf("orphan must surface at root, got %+v", roots)
	}
}

func TestBreadcrumbs(t *testing.T) {
	m := NewManager(seed(), Callbacks{})

	path := m.Breadcrumbs("grand-1")
	if len(path) != 3 {
		t.Fatalf("breadcrumbs: want 3 hops, got %d", len(path))
	}
	if path[0].ID != "root-a" || path[1].ID != "child-1" || path[2].ID != "grand-1" {
		t.Fatalf("breadcrumbs order wrong: %+v", path)
	}
	if got := m.Breadcrumbs("missing"); got != nil {
		t.Fatalf("unknown id must yield nil, got %+v", got)
	}
}

func TestBreadcrumbsCutsCycles(t *testing.T) {
	m := NewManager([]Collection{
		{ID: "x", Name: "X", ParentID: "y"},
		{ID: "y", Name: "Y", ParentID: "x"},
	}, Callbacks{})

	path := m.Breadcrumbs("x")
	if len(path) != 2 {
		t.Fatalf("cycle must terminate, got %d hops", len(path))
	}
}

func TestCreatePersistsThenAdds(t *testing.T) {
	var persisted Collection
	m := NewManager(nil, Callbacks{
		OnCreate: func(ctx context.Context, c Collection) error {
			persisted = c
			return nil
		},
	}, WithIDGenerator(seqIDs()), WithClock(fixedClock))

	c, err := m.Create(context.Background(), "Fisica", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID != "a" || c.Name != "Fisica" || !c.CreatedAt.Equal(fixedClock()) {
		t.Fatalf("created collection wrong: %+v", c)
	}
	if persisted.ID != c.ID {
		t.Fatalf("collaborator must receive the new collection")
	}
	if got := m.Collections(); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("collection not added, got %+v", got)
	}
}

func TestCreateFailureLeavesStateUntouched(t *testing.T) {
	boom := errors.New("persist failed")
	m := NewManager(nil, Callbacks{
		OnCreate: func(ctx context.Context, c Collection) error { return boom },
	})

	if _, err := m.Create(context.Background(), "Fisica", ""); !errors.Is(err, boom) {
		t.Fatalf("create must surface collaborator error, got %v", err)
	}
	if len(m.Collections()) != 0 {
		t.Fatalf("failed create must not add the collection")
	}
	if !errors.Is(m.Err(), boom) {
		t.Fatalf("Err() must record the failure")
	}
	if m.IsLoading() {
		t.Fatalf("loading flag stuck")
	}
}

func TestUpdatePatchesNonZeroFields(t *testing.T) {
	m := NewManager(seed(), Callbacks{}, WithClock(fixedClock))

	c, err := m.Update(context.Background(), "root-a", Collection{Icon: "sigma", Color: "#ff0000"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if c.Name != "Matematica" {
		t.Fatalf("empty patch field must not clear name, got %q", c.Name)
	}
	if c.Icon != "sigma" || c.Color != "#ff0000" {
		t.Fatalf("patch not applied: %+v", c)
	}
	if !c.UpdatedAt.Equal(fixedClock()) {
		t.Fatalf("UpdatedAt not bumped")
	}
	if _, err := m.Update(context.Background(), "missing", Collection{Name: "X"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id: want ErrNotFound, got %v", err)
	}
}

func TestDeleteReassignsChildren(t *testing.T) {
	m := NewManager(seed(), Callbacks{})
	m.Select("child-1")

	if err := m.Delete(context.Background(), "child-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, ok := m.Get("grand-1")
	if !ok {
		t.Fatalf("grandchild must survive the delete")
	}
	if got.ParentID != "root-a" {
		t.Fatalf("child must be reassigned to the victim's parent, got %q", got.ParentID)
	}
	if m.SelectedID() != "" {
		t.Fatalf("selection pointing at the victim must be cleared")
	}
	if err := m.Delete(context.Background(), "child-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: want ErrNotFound, got %v", err)
	}
}

func TestDeleteRootPromotesChildrenToRoot(t *testing.T) {
	m := NewManager(seed(), Callbacks{})

	if err := m.Delete(context.Background(), "root-a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := m.Get("child-1")
	if got.ParentID != "" {
		t.Fatalf("children of a deleted root must become roots, got %q", got.ParentID)
	}
	roots := m.Tree()
	if len(roots) != 3 {
		t.Fatalf("roots after delete: want 3, got %d", len(roots))
	}
}

func TestMoveMaterialsForwardsToCollaborator(t *testing.T) {
	var gotIDs []string
	var gotDest *string
	m := NewManager(seed(), Callbacks{
		OnMove: func(ctx context.Context, materialIDs []string, collectionID *string) error {
			gotIDs = materialIDs
			gotDest = collectionID
			return nil
		},
	})

	dest := "root-a"
	if err := m.MoveMaterials(context.Background(), []string{"m1", "m2"}, &dest); err != nil {
		t.Fatalf("move: %v", err)
	}
	if len(gotIDs) != 2 || gotDest == nil || *gotDest != "root-a" {
		t.Fatalf("collaborator args wrong: %v %v", gotIDs, gotDest)
	}

	// Without a collaborator the call is a no-op.
	bare := NewManager(nil, Callbacks{})
	if err := bare.MoveMaterials(context.Background(), []string{"m1"}, nil); err != nil {
		t.Fatalf("no-op move: %v", err)
	}
}
