package materials

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/data/repos/testutil"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/dbctx"
)

func TestTagRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewTagRepo(db, testutil.Logger(t))

	userID := uuid.New()
	tag, err := repo.Create(dbc, &domain.Tag{ID: uuid.New(), UserID: userID, Name: "ripasso", Color: "#ffaa00"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, err := repo.GetByID(dbc, userID, tag.ID); err != nil || got == nil || got.Name != "ripasso" {
		t.Fatalf("GetByID: err=%v got=%v", err, got)
	}
	if got, err := repo.GetByName(dbc, userID, "ripasso"); err != nil || got == nil || got.ID != tag.ID {
		t.Fatalf("GetByName: err=%v got=%v", err, got)
	}
	if got, err := repo.GetByName(dbc, userID, "missing"); err != nil || got != nil {
		t.Fatalf("GetByName miss: err=%v got=%v", err, got)
	}

	if rows, err := repo.ListByUser(dbc, userID); err != nil || len(rows) != 1 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(rows))
	}

	if n, err := repo.Delete(dbc, userID, tag.ID); err != nil || n != 1 {
		t.Fatalf("Delete: err=%v n=%d", err, n)
	}
}

func TestTagRepoAttachDetach(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewTagRepo(db, testutil.Logger(t))
	materialRepo := NewMaterialRepo(db, testutil.Logger(t))

	userID := uuid.New()
	m := seedMaterial(userID, "tool-tag-1", "Esercizi", domain.ToolQuiz)
	if _, err := materialRepo.Create(dbc, []*domain.Material{m}); err != nil {
		t.Fatalf("seed material: %v", err)
	}
	tag, err := repo.Create(dbc, &domain.Tag{ID: uuid.New(), UserID: userID, Name: "verifica"})
	if err != nil {
		t.Fatalf("seed tag: %v", err)
	}

	if err := repo.AttachToMaterials(dbc, []uuid.UUID{m.ID}, []uuid.UUID{tag.ID}); err != nil {
		t.Fatalf("AttachToMaterials: %v", err)
	}
	// Re-attaching the same pair must not error.
	if err := repo.AttachToMaterials(dbc, []uuid.UUID{m.ID}, []uuid.UUID{tag.ID}); err != nil {
		t.Fatalf("idempotent attach: %v", err)
	}

	got, err := materialRepo.GetByID(dbc, userID, m.ID)
	if err != nil || len(got.Tags) != 1 || got.Tags[0].TagID != tag.ID {
		t.Fatalf("tag not attached: err=%v tags=%v", err, got.Tags)
	}

	if err := repo.DetachFromMaterial(dbc, m.ID, tag.ID); err != nil {
		t.Fatalf("DetachFromMaterial: %v", err)
	}
	got, _ = materialRepo.GetByID(dbc, userID, m.ID)
	if len(got.Tags) != 0 {
		t.Fatalf("tag still attached after detach")
	}

	if err := repo.AttachToMaterials(dbc, nil, []uuid.UUID{tag.ID}); err != nil {
		t.Fatalf("empty attach must be a no-op: %v", err)
	}
}
