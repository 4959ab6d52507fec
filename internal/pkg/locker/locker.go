package locker

import (
	"sync"

	"github.com/google/uuid"
)

// ProjectLocker serializes writes per project. Message-pair atomicity and
// ledger ordering rely on one writer per project; a global lock would stall
// unrelated projects during Collaborator round-trips, so each project gets
// its own mutex.
type ProjectLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewProjectLocker() *ProjectLocker {
	return &ProjectLocker{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (l *ProjectLocker) Lock(projectId uuid.UUID) {
	l.mutexFor(projectId).Lock()
}

func (l *ProjectLocker) Unlock(projectId uuid.UUID) {
	l.mutexFor(projectId).Unlock()
}

func (l *ProjectLocker) mutexFor(projectId uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[projectId]
	if !ok {
		m = &sync.Mutex{}
		l.locks[projectId] = m
	}
	return m
}

// Forget drops the mutex for a deleted project. Safe to call while no
// writer holds it.
func (l *ProjectLocker) Forget(projectId uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, projectId)
}
