package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"construction-docs-be/internal/dto"
	"construction-docs-be/internal/entity"
	"construction-docs-be/internal/pkg/apperror"
	"construction-docs-be/internal/pkg/filestore"
	"construction-docs-be/internal/pkg/locker"
	"construction-docs-be/internal/repository/memory"

	"github.com/google/uuid"
)

func newProjectFixture(t *testing.T) (IProjectService, *fakeStore, *memory.JobRepository) {
	t.Helper()
	store := newFakeStore()
	jobs := memory.NewJobRepository()
	files, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("filestore init failed: %v", err)
	}
	svc := NewProjectService(&fakeFactory{store: store}, jobs, files, locker.NewProjectLocker(), nil, nopLogger{})
	return svc, store, jobs
}

func TestGetAllCreatesStarterProject(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	accountId := uuid.New()

	projects, err := svc.GetAll(context.Background(), accountId)
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 starter project, got %d", len(projects))
	}
	if projects[0].Name != defaultProjectName {
		t.Errorf("starter project name = %q, want %q", projects[0].Name, defaultProjectName)
	}
	if len(store.projects) != 1 {
		t.Errorf("starter project must be persisted, store has %d", len(store.projects))
	}

	// A second call must not create another one.
	again, err := svc.GetAll(context.Background(), accountId)
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if len(again) != 1 {
		t.Errorf("expected still 1 project, got %d", len(again))
	}
}

func TestCreateProjectValidation(t *testing.T) {
	svc, _, _ := newProjectFixture(t)

	_, err := svc.Create(context.Background(), uuid.New(), &dto.CreateProjectRequest{Name: "  "})
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Errorf("blank name should be a validation error, got %v", err)
	}
}

func TestDeleteLastProjectRefused(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	accountId := uuid.New()
	project := seedProject(store, accountId)

	_, err := svc.Delete(context.Background(), accountId, project.Id)
	if !apperror.IsKind(err, apperror.KindInvariant) {
		t.Fatalf("deleting the last project must violate the invariant, got %v", err)
	}
	if len(store.projects) != 1 {
		t.Errorf("refused delete must leave the project in place")
	}
}

func TestDeleteCascadesAndReturnsFallback(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	accountId := uuid.New()

	older := seedProject(store, accountId)
	older.CreatedAt = time.Now().Add(-time.Hour)
	doomed := seedProject(store, accountId)

	seedDocument(store, doomed.Id, "doc.txt", "text", time.Now())
	store.messages = append(store.messages, &entity.Message{
		Id: uuid.New(), ProjectId: doomed.Id, Seq: 1, Role: "user", Content: "q", CreatedAt: time.Now(),
	})
	kept := seedDocument(store, older.Id, "keep.txt", "text", time.Now())

	res, err := svc.Delete(context.Background(), accountId, doomed.Id)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if res.FallbackProjectId != older.Id {
		t.Errorf("fallback should be the oldest remaining project, got %s", res.FallbackProjectId)
	}

	if len(store.projects) != 1 || store.projects[0].Id != older.Id {
		t.Errorf("doomed project must be gone")
	}
	if len(store.messages) != 0 {
		t.Errorf("messages of the deleted project must be gone, got %d", len(store.messages))
	}
	if len(store.documents) != 1 || store.documents[0].Id != kept.Id {
		t.Errorf("only the other project's documents may remain")
	}
}

func TestDeleteCancelsActiveJobs(t *testing.T) {
	svc, store, jobs := newProjectFixture(t)
	accountId := uuid.New()

	seedProject(store, accountId)
	doomed := seedProject(store, accountId)

	job := &entity.AnalysisJob{
		Id:        uuid.New(),
		ProjectId: doomed.Id,
		AccountId: accountId,
		Kind:      entity.AnalysisKindConflict,
		Status:    entity.JobStatusPending,
		StartedAt: time.Now(),
	}
	if ok, _ := jobs.TryCreate(job); !ok {
		t.Fatal("TryCreate refused a fresh job")
	}

	if _, err := svc.Delete(context.Background(), accountId, doomed.Id); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	got := jobs.Get(job.Id)
	if got == nil || got.Status != entity.JobStatusCancelled {
		t.Errorf("active job should be cancelled on project deletion, got %+v", got)
	}
}

func TestDeleteLeavesLockerUsable(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	accountId := uuid.New()

	keeper := seedProject(store, accountId)
	keeper.CreatedAt = time.Now().Add(-time.Hour)
	second := seedProject(store, accountId)
	third := seedProject(store, accountId)

	// Consecutive deletes exercise the project lock across Forget cycles.
	if _, err := svc.Delete(context.Background(), accountId, second.Id); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if _, err := svc.Delete(context.Background(), accountId, third.Id); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}

	if _, err := svc.Delete(context.Background(), accountId, keeper.Id); !apperror.IsKind(err, apperror.KindInvariant) {
		t.Errorf("sole remaining project must refuse deletion, got %v", err)
	}
	if len(store.projects) != 1 || store.projects[0].Id != keeper.Id {
		t.Errorf("exactly the keeper project should remain")
	}
}

func TestConcurrentDeletesKeepOneProject(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	accountId := uuid.New()

	a := seedProject(store, accountId)
	b := seedProject(store, accountId)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []uuid.UUID{a.Id, b.Id} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = svc.Delete(context.Background(), accountId, id)
		}(i, id)
	}
	wg.Wait()

	store.mu.Lock()
	remaining := len(store.projects)
	store.mu.Unlock()
	if remaining != 1 {
		t.Fatalf("racing deletes must leave exactly 1 project, got %d", remaining)
	}

	// Depending on interleaving the loser sees the invariant refusal or,
	// if the winner finished first, not found. Never two successes.
	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperror.IsKind(err, apperror.KindInvariant), apperror.IsKind(err, apperror.KindNotFound):
		default:
			t.Errorf("unexpected error kind: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("exactly one delete should succeed, got %d (errs: %v)", succeeded, errs)
	}
}

func TestDeleteForeignProjectNotFound(t *testing.T) {
	svc, store, _ := newProjectFixture(t)
	owner := uuid.New()
	seedProject(store, owner)
	project := seedProject(store, owner)

	_, err := svc.Delete(context.Background(), uuid.New(), project.Id)
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("foreign account should see not found, got %v", err)
	}
}
