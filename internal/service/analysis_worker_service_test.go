package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"construction-docs-be/internal/dto"
	"construction-docs-be/internal/entity"
	"construction-docs-be/internal/repository/memory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const workerTestTopic = "analysis-jobs-test"

type workerFixture struct {
	store     *fakeStore
	jobs      *memory.JobRepository
	llm       *fakeLLM
	publisher IPublisherService
}

func newWorkerFixture(t *testing.T, llmFake *fakeLLM) *workerFixture {
	t.Helper()
	store := newFakeStore()
	jobs := memory.NewJobRepository()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))

	worker := NewAnalysisWorkerService(
		pubSub, workerTestTopic, &fakeFactory{store: store}, jobs, llmFake, nil, time.Second, nopLogger{},
	)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := worker.Consume(ctx); err != nil {
		t.Fatalf("Consume failed to subscribe: %v", err)
	}

	return &workerFixture{
		store:     store,
		jobs:      jobs,
		llm:       llmFake,
		publisher: NewPublisherService(workerTestTopic, pubSub),
	}
}

func (f *workerFixture) enqueue(t *testing.T, job *entity.AnalysisJob) {
	t.Helper()
	if ok, _ := f.jobs.TryCreate(job); !ok {
		t.Fatal("TryCreate refused a fresh job")
	}
	payload, err := json.Marshal(dto.AnalysisJobMessage{JobId: job.Id})
	if err != nil {
		t.Fatalf("marshal job message: %v", err)
	}
	if err := f.publisher.Publish(context.Background(), payload); err != nil {
		t.Fatalf("publish job message: %v", err)
	}
}

func (f *workerFixture) awaitTerminal(t *testing.T, jobId uuid.UUID) *entity.AnalysisJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job := f.jobs.Get(jobId); job != nil && job.IsTerminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal status", jobId)
	return nil
}

func pendingJob(projectId, accountId uuid.UUID, kind string, documentIds []uuid.UUID) *entity.AnalysisJob {
	return &entity.AnalysisJob{
		Id:          uuid.New(),
		ProjectId:   projectId,
		AccountId:   accountId,
		Kind:        kind,
		DocumentIds: documentIds,
		Status:      entity.JobStatusPending,
		StartedAt:   time.Now(),
	}
}

func TestWorkerConflictSucceeds(t *testing.T) {
	reply := `[{"title":"Concrete strength mismatch","severity":"HIGH","description":"4000 vs 5000 psi","document_refs":["a.txt","b.txt"]}]`
	f := newWorkerFixture(t, &fakeLLM{replies: []string{reply}})

	accountId := uuid.New()
	project := seedProject(f.store, accountId)
	a := seedDocument(f.store, project.Id, "a.txt", "concrete 4000 psi", time.Now().Add(-time.Minute))
	b := seedDocument(f.store, project.Id, "b.txt", "concrete 5000 psi", time.Now())

	job := pendingJob(project.Id, accountId, entity.AnalysisKindConflict, []uuid.UUID{a.Id, b.Id})
	f.enqueue(t, job)

	done := f.awaitTerminal(t, job.Id)
	if done.Status != entity.JobStatusSucceeded {
		t.Fatalf("status = %q, want succeeded (error: %s)", done.Status, done.Error)
	}
	if done.Result == nil || len(done.Result.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %+v", done.Result)
	}
	finding := done.Result.Findings[0]
	if finding.Severity != entity.SeverityHigh {
		t.Errorf("severity should be normalized to lowercase, got %q", finding.Severity)
	}
	if finding.Title != "Concrete strength mismatch" {
		t.Errorf("unexpected title %q", finding.Title)
	}
}

func TestWorkerConflictUnparseableReplyFails(t *testing.T) {
	f := newWorkerFixture(t, &fakeLLM{replies: []string{"I found no structured conflicts, sorry."}})

	accountId := uuid.New()
	project := seedProject(f.store, accountId)
	a := seedDocument(f.store, project.Id, "a.txt", "alpha", time.Now())
	b := seedDocument(f.store, project.Id, "b.txt", "beta", time.Now())

	job := pendingJob(project.Id, accountId, entity.AnalysisKindConflict, []uuid.UUID{a.Id, b.Id})
	f.enqueue(t, job)

	done := f.awaitTerminal(t, job.Id)
	if done.Status != entity.JobStatusFailed {
		t.Fatalf("status = %q, want failed", done.Status)
	}
	if !strings.Contains(done.Error, "I found no structured conflicts") {
		t.Errorf("raw reply should be preserved in the job error, got %q", done.Error)
	}
	if done.Result != nil {
		t.Error("unparseable reply must not be coerced into a result")
	}
}

func TestWorkerCompareSummarizesPairs(t *testing.T) {
	f := newWorkerFixture(t, &fakeLLM{replies: []string{"both agree on scope"}})

	accountId := uuid.New()
	project := seedProject(f.store, accountId)
	a := seedDocument(f.store, project.Id, "a.txt", "alpha", time.Now().Add(-time.Minute))
	b := seedDocument(f.store, project.Id, "b.txt", "beta", time.Now())

	job := pendingJob(project.Id, accountId, entity.AnalysisKindCompare, []uuid.UUID{a.Id, b.Id})
	f.enqueue(t, job)

	done := f.awaitTerminal(t, job.Id)
	if done.Status != entity.JobStatusSucceeded {
		t.Fatalf("status = %q, want succeeded (error: %s)", done.Status, done.Error)
	}
	if done.Result == nil || !strings.Contains(done.Result.Summary, "a.txt vs b.txt") {
		t.Fatalf("summary should carry a pair heading, got %+v", done.Result)
	}
	if !strings.Contains(done.Result.Summary, "both agree on scope") {
		t.Errorf("summary should carry the collaborator reply")
	}
}

func TestWorkerRecheckErrorFailsJob(t *testing.T) {
	f := newWorkerFixture(t, &fakeLLM{replies: []string{"[]"}})

	accountId := uuid.New()
	project := seedProject(f.store, accountId)
	a := seedDocument(f.store, project.Id, "a.txt", "alpha", time.Now())
	b := seedDocument(f.store, project.Id, "b.txt", "beta", time.Now())

	// The first project lookup loads the documents; the second is the
	// existence re-check before persisting the result.
	f.store.mu.Lock()
	f.store.projectFindErrOn = 2
	f.store.projectFindErr = errors.New("connection reset by peer")
	f.store.mu.Unlock()

	job := pendingJob(project.Id, accountId, entity.AnalysisKindConflict, []uuid.UUID{a.Id, b.Id})
	f.enqueue(t, job)

	done := f.awaitTerminal(t, job.Id)
	if done.Status != entity.JobStatusFailed {
		t.Fatalf("status = %q, want failed: a transient lookup error is not a deletion", done.Status)
	}
	if !strings.Contains(done.Error, "connection reset by peer") {
		t.Errorf("lookup error should be preserved, got %q", done.Error)
	}
}

func TestWorkerCancelsWhenProjectGone(t *testing.T) {
	f := newWorkerFixture(t, &fakeLLM{replies: []string{"[]"}})

	accountId := uuid.New()
	project := seedProject(f.store, accountId)
	a := seedDocument(f.store, project.Id, "a.txt", "alpha", time.Now())
	b := seedDocument(f.store, project.Id, "b.txt", "beta", time.Now())

	job := pendingJob(project.Id, accountId, entity.AnalysisKindConflict, []uuid.UUID{a.Id, b.Id})

	// The project disappears before the worker picks the job up.
	f.store.mu.Lock()
	f.store.projects = nil
	f.store.mu.Unlock()

	f.enqueue(t, job)

	done := f.awaitTerminal(t, job.Id)
	if done.Status != entity.JobStatusCancelled {
		t.Fatalf("status = %q, want cancelled", done.Status)
	}
	if f.llm.callCount() != 0 {
		t.Errorf("collaborator must not be called for a cancelled job, got %d calls", f.llm.callCount())
	}
}
