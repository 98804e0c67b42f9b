package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountLocker_SerializesSameKey(t *testing.T) {
	locker := newAccountLocker()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.lock("acct-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestAccountLocker_ReleasesEntries(t *testing.T) {
	locker := newAccountLocker()

	unlock := locker.lock("acct-1")
	unlock()

	locker.mu.Lock()
	defer locker.mu.Unlock()
	assert.Empty(t, locker.locks, "released locks are removed from the table")
}
