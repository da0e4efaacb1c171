package resource

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	name    string
	dropped int
}

func TestManagerAddGet(t *testing.T) {
	m := NewManager[*item](nil, 0)

	a := m.Add(&item{name: "a"})
	b := m.Add(&item{name: "b"})
	assert.Equal(t, uint32(1), a)
	assert.Equal(t, uint32(2), b)
	assert.Equal(t, 2, m.Len())

	got, err := m.Get(b)
	require.NoError(t, err)
	assert.Equal(t, "b", got.name)

	_, err = m.Get(99)
	require.ErrorIs(t, err, ErrUnknownHandle)
}

func TestManagerRemoveRunsDestructorOnce(t *testing.T) {
	m := NewManager(func(it *item) { it.dropped++ }, 0)
	it := &item{name: "a"}
	h := m.Add(it)

	assert.True(t, m.Remove(h))
	assert.False(t, m.Remove(h))
	assert.Equal(t, 1, it.dropped)
	assert.Equal(t, 0, m.Len())

	_, err := m.Get(h)
	require.ErrorIs(t, err, ErrReleased)
}

func TestManagerTombstonesAreBounded(t *testing.T) {
	m := NewManager[*item](nil, 2)
	h1 := m.Add(&item{})
	h2 := m.Add(&item{})
	h3 := m.Add(&item{})
	m.Remove(h1)
	m.Remove(h2)
	m.Remove(h3)

	_, err := m.Get(h1)
	require.ErrorIs(t, err, ErrUnknownHandle, "oldest tombstone should be evicted")
	_, err = m.Get(h2)
	require.ErrorIs(t, err, ErrReleased)
	_, err = m.Get(h3)
	require.ErrorIs(t, err, ErrReleased)
}

func TestManagerCloseDestroysAll(t *testing.T) {
	var mu sync.Mutex
	dropped := map[string]bool{}
	m := NewManager(func(it *item) {
		mu.Lock()
		dropped[it.name] = true
		mu.Unlock()
	}, 0)
	h := m.Add(&item{name: "a"})
	m.Add(&item{name: "b"})

	m.Close()
	assert.Equal(t, map[string]bool{"a": true, "b": true}, dropped)
	assert.Equal(t, 0, m.Len())
	_, err := m.Get(h)
	require.ErrorIs(t, err, ErrReleased)

	// handles keep growing after Close
	assert.Equal(t, uint32(3), m.Add(&item{name: "c"}))
}

func TestManagerRange(t *testing.T) {
	m := NewManager[*item](nil, 0)
	m.Add(&item{name: "a"})
	m.Add(&item{name: "b"})
	m.Add(&item{name: "c"})

	visited := 0
	m.Range(func(uint32, *item) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
}

func TestManagerConcurrentAdd(t *testing.T) {
	m := NewManager[*item](nil, 0)
	var wg sync.WaitGroup
	handles := make(chan uint32, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handles <- m.Add(&item{})
		}()
	}
	wg.Wait()
	close(handles)

	seen := map[uint32]bool{}
	for h := range handles {
		assert.False(t, seen[h])
		seen[h] = true
	}
	assert.Len(t, seen, 100)
}
