package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/data/repos/materials"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/hub/collections"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/hub/search"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/ctxutil"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/dbctx"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/logger"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/realtime"
)

type stubMaterialRepo struct {
	materials.MaterialRepo

	listFn      func(filter materials.ListFilter) ([]*domain.Material, error)
	countFn     func(filter materials.ListFilter) (int64, error)
	setStatusFn func(ids []uuid.UUID, status string) (int64, error)
	moveFn      func(ids []uuid.UUID, collectionID *uuid.UUID) (int64, error)
	getByIDsFn  func(ids []uuid.UUID) ([]*domain.Material, error)
}

func (s *stubMaterialRepo) List(dbc dbctx.Context, userID uuid.UUID, filter materials.ListFilter) ([]*domain.Material, error) {
	return s.listFn(filter)
}

func (s *stubMaterialRepo) Count(dbc dbctx.Context, userID uuid.UUID, filter materials.ListFilter) (int64, error) {
	return s.countFn(filter)
}

func (s *stubMaterialRepo) SetStatusByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID, status string) (int64, error) {
	return s.setStatusFn(ids, status)
}

func (s *stubMaterialRepo) MoveToCollection(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID, collectionID *uuid.UUID) (int64, error) {
	return s.moveFn(ids, collectionID)
}

func (s *stubMaterialRepo) GetByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) ([]*domain.Material, error) {
	return s.getByIDsFn(ids)
}

type stubTagRepo struct {
	materials.TagRepo

	attachFn func(materialIDs, tagIDs []uuid.UUID) error
}

func (s *stubTagRepo) AttachToMaterials(dbc dbctx.Context, materialIDs []uuid.UUID, tagIDs []uuid.UUID) error {
	return s.attachFn(materialIDs, tagIDs)
}

type recordingEmitter struct {
	messages []realtime.SSEMessage
}

func (r *recordingEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	r.messages = append(r.messages, msg)
}

func serviceLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func authedCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
}

func activeMaterial(userID uuid.UUID, title string, toolType domain.ToolType, createdAt time.Time) *domain.Material {
	return &domain.Material{
		ID:             uuid.New(),
		UserID:         userID,
		ToolID:         uuid.NewString(),
		ToolType:       toolType,
		Title:          title,
		SearchableText: title,
		Status:         domain.MaterialStatusActive,
		CreatedAt:      createdAt,
	}
}

func TestMaterialServiceRequiresRequestData(t *testing.T) {
	svc := NewMaterialService(nil, serviceLogger(t), &stubMaterialRepo{}, &stubTagRepo{}, nil)

	if _, _, err := svc.List(context.Background(), ListMaterialsParams{}); err != ErrUnauthorized {
		t.Fatalf("List without request data: want ErrUnauthorized, got %v", err)
	}
	if _, err := svc.BulkArchive(context.Background(), []uuid.UUID{uuid.New()}); err != ErrUnauthorized {
		t.Fatalf("BulkArchive without request data: want ErrUnauthorized, got %v", err)
	}
}

func TestMaterialServiceListClampsLimit(t *testing.T) {
	var gotFilter materials.ListFilter
	repo := &stubMaterialRepo{
		listFn: func(filter materials.ListFilter) ([]*domain.Material, error) {
			gotFilter = filter
			return nil, nil
		},
		countFn: func(filter materials.ListFilter) (int64, error) { return 0, nil },
	}
	svc := NewMaterialService(nil, serviceLogger(t), repo, &stubTagRepo{}, nil)

	if _, _, err := svc.List(authedCtx(uuid.New()), ListMaterialsParams{Limit: 500}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if gotFilter.Limit != 100 {
		t.Fatalf("limit must be capped at 100, got %d", gotFilter.Limit)
	}

	if _, _, err := svc.List(authedCtx(uuid.New()), ListMaterialsParams{}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if gotFilter.Limit != 50 {
		t.Fatalf("default limit must be 50, got %d", gotFilter.Limit)
	}
}

func TestMaterialServiceListIgnoresUnknownToolType(t *testing.T) {
	var gotFilter materials.ListFilter
	repo := &stubMaterialRepo{
		listFn: func(filter materials.ListFilter) ([]*domain.Material, error) {
			gotFilter = filter
			return nil, nil
		},
		countFn: func(filter materials.ListFilter) (int64, error) { return 0, nil },
	}
	svc := NewMaterialService(nil, serviceLogger(t), repo, &stubTagRepo{}, nil)

	if _, _, err := svc.List(authedCtx(uuid.New()), ListMaterialsParams{ToolType: "bogus"}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(gotFilter.Types) != 0 {
		t.Fatalf("unknown tool type must not filter, got %v", gotFilter.Types)
	}
}

func TestMaterialServiceBulkArchiveEmitsEvent(t *testing.T) {
	emitter := &recordingEmitter{}
	repo := &stubMaterialRepo{
		setStatusFn: func(ids []uuid.UUID, status string) (int64, error) {
			if status != domain.MaterialStatusArchived {
				t.Fatalf("archive status: got %q", status)
			}
			return int64(len(ids)), nil
		},
	}
	svc := NewMaterialService(nil, serviceLogger(t), repo, &stubTagRepo{}, emitter)

	userID := uuid.New()
	n, err := svc.BulkArchive(authedCtx(userID), []uuid.UUID{uuid.New(), uuid.New()})
	if err != nil || n != 2 {
		t.Fatalf("BulkArchive: err=%v n=%d", err, n)
	}
	if len(emitter.messages) != 1 {
		t.Fatalf("events: want 1, got %d", len(emitter.messages))
	}
	msg := emitter.messages[0]
	if msg.Event != realtime.SSEEventMaterialsArchived {
		t.Fatalf("event: got %s", msg.Event)
	}
	if msg.Channel != realtime.UserChannel(userID) {
		t.Fatalf("channel: got %s", msg.Channel)
	}
}

func TestMaterialServiceBulkArchiveNoEventWhenNothingMatched(t *testing.T) {
	emitter := &recordingEmitter{}
	repo := &stubMaterialRepo{
		setStatusFn: func(ids []uuid.UUID, status string) (int64, error) { return 0, nil },
	}
	svc := NewMaterialService(nil, serviceLogger(t), repo, &stubTagRepo{}, emitter)

	if _, err := svc.BulkArchive(authedCtx(uuid.New()), []uuid.UUID{uuid.New()}); err != nil {
		t.Fatalf("BulkArchive: %v", err)
	}
	if len(emitter.messages) != 0 {
		t.Fatalf("no rows touched must emit nothing, got %d events", len(emitter.messages))
	}
}

func TestMaterialServiceBulkAddTagsFiltersOwnership(t *testing.T) {
	userID := uuid.New()
	owned := activeMaterial(userID, "Mio", domain.ToolQuiz, time.Now())

	var attachedMaterials []uuid.UUID
	repo := &stubMaterialRepo{
		getByIDsFn: func(ids []uuid.UUID) ([]*domain.Material, error) {
			return []*domain.Material{owned}, nil
		},
	}
	tags := &stubTagRepo{
		attachFn: func(materialIDs, tagIDs []uuid.UUID) error {
			attachedMaterials = materialIDs
			return nil
		},
	}
	svc := NewMaterialService(nil, serviceLogger(t), repo, tags, nil)

	foreign := uuid.New()
	err := svc.BulkAddTags(authedCtx(userID), []uuid.UUID{owned.ID, foreign}, []uuid.UUID{uuid.New()})
	if err != nil {
		t.Fatalf("BulkAddTags: %v", err)
	}
	if len(attachedMaterials) != 1 || attachedMaterials[0] != owned.ID {
		t.Fatalf("attach must only cover owned rows, got %v", attachedMaterials)
	}
}

func TestMaterialServiceSearch(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	repo := &stubMaterialRepo{
		listFn: func(filter materials.ListFilter) ([]*domain.Material, error) {
			return []*domain.Material{
				activeMaterial(userID, "Teorema di Pitagora", domain.ToolMindmap, now),
				activeMaterial(userID, "Quiz sulle frazioni", domain.ToolQuiz, now),
			}, nil
		},
	}
	svc := NewMaterialService(nil, serviceLogger(t), repo, &stubTagRepo{}, nil)

	results, err := svc.Search(authedCtx(userID), "pitagora", search.Options{}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Material.Title != "Teorema di Pitagora" {
		t.Fatalf("search results: %+v", results)
	}

	results, err = svc.Search(authedCtx(userID), "", search.Options{}, 10)
	if err != nil || len(results) != 0 {
		t.Fatalf("empty query must yield no results, err=%v len=%d", err, len(results))
	}
}

func TestMaterialServiceSmartCollectionsExcludesDeleted(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	deleted := activeMaterial(userID, "Cancellato", domain.ToolQuiz, now)
	deleted.Status = domain.MaterialStatusDeleted
	archived := activeMaterial(userID, "Archiviato", domain.ToolQuiz, now)
	archived.Status = domain.MaterialStatusArchived

	repo := &stubMaterialRepo{
		listFn: func(filter materials.ListFilter) ([]*domain.Material, error) {
			if filter.Status != "all" {
				t.Fatalf("smart collections must load every status, got %q", filter.Status)
			}
			return []*domain.Material{
				activeMaterial(userID, "Attivo", domain.ToolQuiz, now),
				archived,
				deleted,
			}, nil
		},
	}
	svc := NewMaterialService(nil, serviceLogger(t), repo, &stubTagRepo{}, nil)

	bundle, err := svc.SmartCollections(authedCtx(userID), now)
	if err != nil {
		t.Fatalf("SmartCollections: %v", err)
	}
	if bundle.Recent.Count != 1 {
		t.Fatalf("Recent: want 1, got %d", bundle.Recent.Count)
	}
	if bundle.Archived.Count != 1 || bundle.Archived.Materials[0].Title != "Archiviato" {
		t.Fatalf("Archived wrong: %+v", bundle.Archived)
	}
	if _, ok := bundle.Get(collections.IDRecent); !ok {
		t.Fatalf("bundle lookup broken")
	}
}
