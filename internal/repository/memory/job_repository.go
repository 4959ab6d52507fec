package memory

import (
	"sync"
	"time"

	"construction-docs-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type activeKey struct {
	ProjectId uuid.UUID
	Kind      string
}

// JobRepository keeps analysis jobs in memory. Finished jobs expire from the
// cache after 24h; active jobs are additionally tracked in an index guarded
// by a mutex so the one-active-job-per-(project, kind) invariant holds under
// concurrent triggers.
type JobRepository struct {
	cache *cache.Cache

	mu     sync.Mutex
	active map[activeKey]uuid.UUID
}

func NewJobRepository() *JobRepository {
	c := cache.New(24*time.Hour, 1*time.Hour)
	return &JobRepository{
		cache:  c,
		active: make(map[activeKey]uuid.UUID),
	}
}

// TryCreate stores the job unless another job of the same kind is still
// active for the project. The second return value is the active job when
// creation is refused.
func (r *JobRepository) TryCreate(job *entity.AnalysisJob) (bool, *entity.AnalysisJob) {
	key := activeKey{ProjectId: job.ProjectId, Kind: job.Kind}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existingId, ok := r.active[key]; ok {
		if existing := r.get(existingId); existing != nil && !existing.IsTerminal() {
			return false, existing
		}
		// Stale index entry (job expired or finished without cleanup).
		delete(r.active, key)
	}

	r.active[key] = job.Id
	r.cache.Set(job.Id.String(), job, cache.NoExpiration)
	return true, nil
}

func (r *JobRepository) Get(jobId uuid.UUID) *entity.AnalysisJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(jobId)
}

func (r *JobRepository) get(jobId uuid.UUID) *entity.AnalysisJob {
	if x, found := r.cache.Get(jobId.String()); found {
		return x.(*entity.AnalysisJob)
	}
	return nil
}

// MarkRunning transitions a pending job to running. Returns false if the
// job is gone or no longer pending (e.g. cancelled before the worker
// picked it up).
func (r *JobRepository) MarkRunning(jobId uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	job := r.get(jobId)
	if job == nil || job.Status != entity.JobStatusPending {
		return false
	}
	job.Status = entity.JobStatusRunning
	return true
}

// Finish moves a job to a terminal status and releases its active slot.
// Jobs already terminal are left untouched: terminal states are final.
func (r *JobRepository) Finish(jobId uuid.UUID, status string, result *entity.AnalysisResult, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job := r.get(jobId)
	if job == nil || job.IsTerminal() {
		return
	}

	now := time.Now()
	job.Status = status
	job.Result = result
	job.Error = errMsg
	job.FinishedAt = &now

	r.release(job)
}

// CancelByProject cancels every active job for a project. Used by project
// deletion so in-flight analyses are not silently abandoned.
func (r *JobRepository) CancelByProject(projectId uuid.UUID) []*entity.AnalysisJob {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cancelled []*entity.AnalysisJob
	for key, jobId := range r.active {
		if key.ProjectId != projectId {
			continue
		}
		if job := r.get(jobId); job != nil && !job.IsTerminal() {
			now := time.Now()
			job.Status = entity.JobStatusCancelled
			job.FinishedAt = &now
			// Re-set with the default TTL so the cancelled job is pruned
			// like any other terminal job.
			r.cache.Set(job.Id.String(), job, cache.DefaultExpiration)
			cancelled = append(cancelled, job)
		}
		delete(r.active, key)
	}
	return cancelled
}

func (r *JobRepository) release(job *entity.AnalysisJob) {
	key := activeKey{ProjectId: job.ProjectId, Kind: job.Kind}
	if id, ok := r.active[key]; ok && id == job.Id {
		delete(r.active, key)
	}
	// Terminal jobs stay pollable until the cache prunes them.
	r.cache.Set(job.Id.String(), job, cache.DefaultExpiration)
}
