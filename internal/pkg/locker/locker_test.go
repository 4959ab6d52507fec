package locker

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestProjectLockerSerializesSameProject(t *testing.T) {
	l := NewProjectLocker()
	projectId := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Lock(projectId)
			counter++
			l.Unlock(projectId)
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Errorf("counter = %d, want 100", counter)
	}
}

func TestProjectLockerIndependentProjects(t *testing.T) {
	l := NewProjectLocker()
	a := uuid.New()
	b := uuid.New()

	l.Lock(a)

	done := make(chan struct{})
	go func() {
		l.Lock(b)
		l.Unlock(b)
		close(done)
	}()

	// Holding project a must not block project b.
	<-done
	l.Unlock(a)
}

func TestProjectLockerForget(t *testing.T) {
	l := NewProjectLocker()
	projectId := uuid.New()

	l.Lock(projectId)
	l.Unlock(projectId)
	l.Forget(projectId)

	// Locking after Forget allocates a fresh mutex.
	l.Lock(projectId)
	l.Unlock(projectId)
}
