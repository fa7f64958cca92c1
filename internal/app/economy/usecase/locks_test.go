package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStripedLocks_SameStripeLockedOnce(t *testing.T) {
	var s stripedLocks
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000041") // 0x41 % 64 == 1
	assert.Equal(t, s.index(a), s.index(b))

	done := make(chan struct{})
	go func() {
		unlock := s.lock(a, b, a)
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a shared stripe deadlocked")
	}
}

func TestStripedLocks_OppositeOrderDoesNotDeadlock(t *testing.T) {
	var s stripedLocks
	a := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000003")

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.lock(a, b)()
		}()
		go func() {
			defer wg.Done()
			s.lock(b, a)()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("transfers in opposite directions deadlocked")
	}
}
