package service

import (
	"context"
	"sort"
	"sync"

	"construction-docs-be/internal/entity"
	"construction-docs-be/internal/repository/contract"
	"construction-docs-be/internal/repository/specification"
	"construction-docs-be/internal/repository/unitofwork"
	"construction-docs-be/pkg/llm"

	"github.com/google/uuid"
)

// fakeStore backs the fake repositories with plain slices. Specifications
// are interpreted by type switch, mirroring what the SQL layer would do.
type fakeStore struct {
	mu        sync.Mutex
	projects  []*entity.Project
	documents []*entity.Document
	messages  []*entity.Message
	nextSeq   int64

	// rowMu stands in for FOR UPDATE row locks: held from a ForUpdate read
	// until the unit of work commits or rolls back.
	rowMu sync.Mutex

	// projectFindErr fires on the projectFindErrOn-th project lookup,
	// simulating a transient database failure.
	projectFindCalls int
	projectFindErrOn int
	projectFindErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextSeq: 1}
}

type querySpecs struct {
	orderField string
	orderDesc  bool
	limit      int
}

func splitSpecs(specs []specification.Specification) (filters []specification.Specification, q querySpecs) {
	q.limit = -1
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.OrderBy:
			q.orderField = sp.Field
			q.orderDesc = sp.Desc
		case specification.Pagination:
			q.limit = sp.Limit
		default:
			filters = append(filters, s)
		}
	}
	return filters, q
}

// --- Project repository ---

type fakeProjectRepo struct {
	store *fakeStore
	uow   *fakeUnitOfWork
}

func matchProject(p *entity.Project, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if p.Id != sp.ID {
				return false
			}
		case specification.AccountOwnedBy:
			if p.AccountId != sp.AccountID {
				return false
			}
		}
	}
	return true
}

func (r *fakeProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.projects = append(r.store.projects, project)
	return nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, project *entity.Project) error {
	return nil
}

func (r *fakeProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.projects[:0]
	for _, p := range r.store.projects {
		if p.Id != id {
			kept = append(kept, p)
		}
	}
	r.store.projects = kept
	return nil
}

func (r *fakeProjectRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeProjectRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Project, error) {
	for _, s := range specs {
		if _, ok := s.(specification.ForUpdate); ok && r.uow != nil && !r.uow.holdsRowLock {
			r.store.rowMu.Lock()
			r.uow.holdsRowLock = true
		}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.projectFindCalls++
	if r.store.projectFindErr != nil && r.store.projectFindCalls == r.store.projectFindErrOn {
		return nil, r.store.projectFindErr
	}

	filters, q := splitSpecs(specs)
	var result []*entity.Project
	for _, p := range r.store.projects {
		if matchProject(p, filters) {
			result = append(result, p)
		}
	}
	if q.orderField == "created_at" {
		sort.SliceStable(result, func(i, j int) bool {
			if q.orderDesc {
				return result[i].CreatedAt.After(result[j].CreatedAt)
			}
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		})
	}
	if q.limit >= 0 && len(result) > q.limit {
		result = result[:q.limit]
	}
	return result, nil
}

func (r *fakeProjectRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

// --- Document repository ---

type fakeDocumentRepo struct{ store *fakeStore }

func matchDocument(d *entity.Document, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if d.Id != sp.ID {
				return false
			}
		case specification.ByIDs:
			found := false
			for _, id := range sp.IDs {
				if d.Id == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case specification.ByProjectID:
			if d.ProjectId != sp.ProjectID {
				return false
			}
		}
	}
	return true
}

func (r *fakeDocumentRepo) Create(ctx context.Context, document *entity.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.documents = append(r.store.documents, document)
	return nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.documents[:0]
	for _, d := range r.store.documents {
		if d.Id != id {
			kept = append(kept, d)
		}
	}
	r.store.documents = kept
	return nil
}

func (r *fakeDocumentRepo) DeleteByProjectId(ctx context.Context, projectId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.documents[:0]
	for _, d := range r.store.documents {
		if d.ProjectId != projectId {
			kept = append(kept, d)
		}
	}
	r.store.documents = kept
	return nil
}

func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	filters, q := splitSpecs(specs)
	var result []*entity.Document
	for _, d := range r.store.documents {
		if matchDocument(d, filters) {
			result = append(result, d)
		}
	}
	if q.orderField == "created_at" {
		sort.SliceStable(result, func(i, j int) bool {
			if q.orderDesc {
				return result[i].CreatedAt.After(result[j].CreatedAt)
			}
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		})
	}
	if q.limit >= 0 && len(result) > q.limit {
		result = result[:q.limit]
	}
	return result, nil
}

func (r *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

// --- Message repository ---

type fakeMessageRepo struct{ store *fakeStore }

func matchMessage(m *entity.Message, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if m.Id != sp.ID {
				return false
			}
		case specification.ByProjectID:
			if m.ProjectId != sp.ProjectID {
				return false
			}
		}
	}
	return true
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	msg.Seq = r.store.nextSeq
	r.store.nextSeq++
	r.store.messages = append(r.store.messages, msg)
	return nil
}

func (r *fakeMessageRepo) DeleteByProjectId(ctx context.Context, projectId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.messages[:0]
	for _, m := range r.store.messages {
		if m.ProjectId != projectId {
			kept = append(kept, m)
		}
	}
	r.store.messages = kept
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	filters, q := splitSpecs(specs)
	var result []*entity.Message
	for _, m := range r.store.messages {
		if matchMessage(m, filters) {
			result = append(result, m)
		}
	}
	if q.orderField == "seq" {
		sort.SliceStable(result, func(i, j int) bool {
			if q.orderDesc {
				return result[i].Seq > result[j].Seq
			}
			return result[i].Seq < result[j].Seq
		})
	}
	if q.limit >= 0 && len(result) > q.limit {
		result = result[:q.limit]
	}
	return result, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

// --- Unit of work ---

type fakeUnitOfWork struct {
	store        *fakeStore
	holdsRowLock bool
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }

func (u *fakeUnitOfWork) Commit() error {
	u.releaseRowLock()
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	u.releaseRowLock()
	return nil
}

func (u *fakeUnitOfWork) releaseRowLock() {
	if u.holdsRowLock {
		u.holdsRowLock = false
		u.store.rowMu.Unlock()
	}
}

func (u *fakeUnitOfWork) ProjectRepository() contract.ProjectRepository {
	return &fakeProjectRepo{store: u.store, uow: u}
}

func (u *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return &fakeDocumentRepo{store: u.store}
}

func (u *fakeUnitOfWork) MessageRepository() contract.MessageRepository {
	return &fakeMessageRepo{store: u.store}
}

type fakeFactory struct{ store *fakeStore }

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

// --- LLM provider ---

type fakeLLM struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   int
	last    []llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.calls
	f.calls++
	f.last = history
	if idx < len(f.errs) && f.errs[idx] != nil {
		return "", f.errs[idx]
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	if idx >= len(f.replies) {
		return f.replies[len(f.replies)-1], nil
	}
	return f.replies[idx], nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// --- Logger ---

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
