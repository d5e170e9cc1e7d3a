package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/explorer"
	"github.com/matzehuels/deptree/pkg/tree"
)

func newExplorer(t *testing.T) *explorer.Explorer {
	t.Helper()
	tr, err := tree.New(&tree.Node{ID: "app", Children: []*tree.Node{{ID: "lib"}}})
	require.NoError(t, err)
	ex, err := explorer.New(tr)
	require.NoError(t, err)
	return ex
}

// counts records OnChange notifications.
type counts struct {
	mu sync.Mutex
	ns []int
}

func (c *counts) record(n int) {
	c.mu.Lock()
	c.ns = append(c.ns, n)
	c.mu.Unlock()
}

func (c *counts) all() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.ns...)
}

func (c *counts) last() int {
	ns := c.all()
	if len(ns) == 0 {
		return -1
	}
	return ns[len(ns)-1]
}

// within fails the test if fn does not return in time.
func within(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("store call did not return")
	}
}

func TestCreateGetDelete(t *testing.T) {
	store := NewStore(4, time.Minute)
	var c counts
	store.OnChange(c.record)

	sess := store.Create(newExplorer(t), "app.json")
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	require.NoError(t, got.Do(func(ex *explorer.Explorer) error {
		ex.Toggle("app")
		return nil
	}))
	_ = sess.Do(func(ex *explorer.Explorer) error {
		assert.True(t, ex.Expanded().Contains("app"))
		return nil
	})

	within(t, 2*time.Second, func() {
		store.Delete(sess.ID)
		store.Delete(sess.ID)
	})
	_, err = store.Get(sess.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeSessionNotFound))
	assert.Equal(t, []int{1, 0}, c.all())
}

func TestCapacityEvictionReportsCount(t *testing.T) {
	store := NewStore(1, time.Minute)
	var c counts
	store.OnChange(c.record)

	first := store.Create(newExplorer(t), "a")
	within(t, 2*time.Second, func() {
		store.Create(newExplorer(t), "b")
	})

	_, err := store.Get(first.ID)
	assert.Error(t, err)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, []int{1, 1}, c.all())
}

func TestExpiryReportsCount(t *testing.T) {
	store := NewStore(4, 20*time.Millisecond)
	var c counts
	store.OnChange(c.record)

	store.Create(newExplorer(t), "")
	assert.Eventually(t, func() bool {
		return store.Len() == 0 && c.last() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCloseReportsCount(t *testing.T) {
	store := NewStore(0, 0)
	var c counts
	store.OnChange(c.record)

	store.Create(newExplorer(t), "")
	store.Create(newExplorer(t), "")
	within(t, 2*time.Second, store.Close)

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, []int{1, 2, 0}, c.all())
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	store := NewStore(2, time.Minute)
	a := store.Create(newExplorer(t), "a")
	b := store.Create(newExplorer(t), "b")

	_, err := store.Get(a.ID)
	require.NoError(t, err)
	store.Create(newExplorer(t), "c")

	_, err = store.Get(b.ID)
	assert.Error(t, err, "b should have been evicted")
	_, err = store.Get(a.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, store.Len())
}

func TestExpires(t *testing.T) {
	store := NewStore(4, 20*time.Millisecond)
	sess := store.Create(newExplorer(t), "")

	assert.Eventually(t, func() bool {
		_, err := store.Get(sess.ID)
		return err != nil
	}, time.Second, 10*time.Millisecond)
}

func TestConcurrentAccess(t *testing.T) {
	store := NewStore(4, time.Minute)
	sess := store.Create(newExplorer(t), "")

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := store.Get(sess.ID)
			if err != nil {
				return
			}
			_ = s.Do(func(ex *explorer.Explorer) error {
				ex.Pan(1, 0)
				return nil
			})
		}()
	}
	wg.Wait()

	_ = sess.Do(func(ex *explorer.Explorer) error {
		assert.Equal(t, 16.0, ex.Viewport().PanX)
		return nil
	})
}

func TestClose(t *testing.T) {
	store := NewStore(0, 0)
	store.Create(newExplorer(t), "")
	store.Create(newExplorer(t), "")
	store.Close()
	assert.Equal(t, 0, store.Len())
}
