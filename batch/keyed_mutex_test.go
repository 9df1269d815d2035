package batch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := newKeyedMutex()

	var order []int
	var mu sync.Mutex
	record := func(n int) {
		mu.Lock()
		order = append(order, n)
		mu.Unlock()
	}

	km.Lock("npm:lodash")

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		close(started)
		km.Lock("npm:lodash")
		record(2)
		km.Unlock("npm:lodash")
		close(done)
	}()

	<-started
	record(1)
	km.Unlock("npm:lodash")
	<-done

	assert.Equal(t, []int{1, 2}, order)
}

func TestKeyedMutex_DistinctKeysIndependent(t *testing.T) {
	km := newKeyedMutex()

	km.Lock("npm:a")
	// A distinct key must not block.
	km.Lock("npm:b")
	km.Unlock("npm:b")
	km.Unlock("npm:a")

	// Entries are released once unused.
	km.mu.Lock()
	assert.Empty(t, km.locks)
	km.mu.Unlock()
}

func TestKeyedMutex_ConcurrentChurn(t *testing.T) {
	km := newKeyedMutex()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("shared")
			counter++
			km.Unlock("shared")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}
