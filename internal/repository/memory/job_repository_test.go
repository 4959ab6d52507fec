package memory

import (
	"testing"

	"construction-docs-be/internal/entity"

	"github.com/google/uuid"
)

func newJob(projectId uuid.UUID, kind string) *entity.AnalysisJob {
	return &entity.AnalysisJob{
		Id:        uuid.New(),
		ProjectId: projectId,
		AccountId: uuid.New(),
		Kind:      kind,
		Status:    entity.JobStatusPending,
	}
}

func TestTryCreateRejectsDuplicateActiveJob(t *testing.T) {
	repo := NewJobRepository()
	projectId := uuid.New()

	first := newJob(projectId, entity.AnalysisKindConflict)
	ok, _ := repo.TryCreate(first)
	if !ok {
		t.Fatal("first job should be created")
	}

	second := newJob(projectId, entity.AnalysisKindConflict)
	ok, active := repo.TryCreate(second)
	if ok {
		t.Fatal("duplicate active job should be rejected")
	}
	if active == nil || active.Id != first.Id {
		t.Errorf("rejection should name the active job %v, got %+v", first.Id, active)
	}
}

func TestTryCreateAllowsDifferentKind(t *testing.T) {
	repo := NewJobRepository()
	projectId := uuid.New()

	if ok, _ := repo.TryCreate(newJob(projectId, entity.AnalysisKindConflict)); !ok {
		t.Fatal("conflict job should be created")
	}
	if ok, _ := repo.TryCreate(newJob(projectId, entity.AnalysisKindCompare)); !ok {
		t.Error("compare job should coexist with an active conflict job")
	}
}

func TestTryCreateAllowsAfterFinish(t *testing.T) {
	repo := NewJobRepository()
	projectId := uuid.New()

	first := newJob(projectId, entity.AnalysisKindConflict)
	repo.TryCreate(first)
	repo.MarkRunning(first.Id)
	repo.Finish(first.Id, entity.JobStatusSucceeded, &entity.AnalysisResult{}, "")

	if ok, _ := repo.TryCreate(newJob(projectId, entity.AnalysisKindConflict)); !ok {
		t.Error("new job should be allowed once the previous one is terminal")
	}

	// The finished job stays pollable.
	got := repo.Get(first.Id)
	if got == nil || got.Status != entity.JobStatusSucceeded {
		t.Errorf("finished job should remain readable, got %+v", got)
	}
}

func TestMarkRunning(t *testing.T) {
	repo := NewJobRepository()
	job := newJob(uuid.New(), entity.AnalysisKindConflict)
	repo.TryCreate(job)

	if !repo.MarkRunning(job.Id) {
		t.Fatal("pending job should transition to running")
	}
	if repo.MarkRunning(job.Id) {
		t.Error("running job should not transition again")
	}
	if repo.MarkRunning(uuid.New()) {
		t.Error("unknown job should not transition")
	}
}

func TestFinishIsFinal(t *testing.T) {
	repo := NewJobRepository()
	job := newJob(uuid.New(), entity.AnalysisKindConflict)
	repo.TryCreate(job)
	repo.MarkRunning(job.Id)

	repo.Finish(job.Id, entity.JobStatusFailed, nil, "parse failure")
	repo.Finish(job.Id, entity.JobStatusSucceeded, &entity.AnalysisResult{Summary: "late"}, "")

	got := repo.Get(job.Id)
	if got.Status != entity.JobStatusFailed {
		t.Errorf("terminal status must not change, got %q", got.Status)
	}
	if got.Error != "parse failure" {
		t.Errorf("error = %q, want preserved raw failure", got.Error)
	}
	if got.FinishedAt == nil {
		t.Error("finished job should carry FinishedAt")
	}
}

func TestCancelByProject(t *testing.T) {
	repo := NewJobRepository()
	projectId := uuid.New()

	conflict := newJob(projectId, entity.AnalysisKindConflict)
	compare := newJob(projectId, entity.AnalysisKindCompare)
	other := newJob(uuid.New(), entity.AnalysisKindConflict)
	repo.TryCreate(conflict)
	repo.TryCreate(compare)
	repo.TryCreate(other)

	cancelled := repo.CancelByProject(projectId)
	if len(cancelled) != 2 {
		t.Fatalf("cancelled = %d jobs, want 2", len(cancelled))
	}

	if got := repo.Get(conflict.Id); got.Status != entity.JobStatusCancelled {
		t.Errorf("conflict job status = %q, want cancelled", got.Status)
	}
	if got := repo.Get(other.Id); got.Status != entity.JobStatusPending {
		t.Errorf("unrelated project's job should be untouched, got %q", got.Status)
	}
}

func TestCancelledJobsGetPruned(t *testing.T) {
	repo := NewJobRepository()
	projectId := uuid.New()

	job := newJob(projectId, entity.AnalysisKindConflict)
	repo.TryCreate(job)

	if item, ok := repo.cache.Items()[job.Id.String()]; !ok || item.Expiration != 0 {
		t.Fatalf("active job should be cached without expiry, got %+v", item)
	}

	repo.CancelByProject(projectId)

	item, ok := repo.cache.Items()[job.Id.String()]
	if !ok {
		t.Fatal("cancelled job should still be pollable")
	}
	if item.Expiration == 0 {
		t.Error("cancelled job must carry the default TTL so the cache prunes it")
	}
}

func TestFinishedJobsGetPruned(t *testing.T) {
	repo := NewJobRepository()
	job := newJob(uuid.New(), entity.AnalysisKindConflict)
	repo.TryCreate(job)
	repo.MarkRunning(job.Id)
	repo.Finish(job.Id, entity.JobStatusSucceeded, nil, "")

	item, ok := repo.cache.Items()[job.Id.String()]
	if !ok {
		t.Fatal("finished job should still be pollable")
	}
	if item.Expiration == 0 {
		t.Error("finished job must carry the default TTL so the cache prunes it")
	}
}
