package layout

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/deptree/pkg/observability"
	"github.com/matzehuels/deptree/pkg/tree"
)

// DefaultMemoSize is the number of layouts a [Memo] retains.
const DefaultMemoSize = 64

// Memo caches layouts per (tree identity, expanded set, options).
// It is safe for concurrent use.
type Memo struct {
	cache *lru.Cache[string, Result]
}

// NewMemo creates a memo retaining up to size layouts.
func NewMemo(size int) (*Memo, error) {
	if size <= 0 {
		size = DefaultMemoSize
	}
	c, err := lru.New[string, Result](size)
	if err != nil {
		return nil, err
	}
	return &Memo{cache: c}, nil
}

// Layout returns the memoized layout of t, computing it on a miss.
func (m *Memo) Layout(t *tree.Tree, expanded tree.ExpandedSet, opts Options) Result {
	key := t.ID().String() + "|" + expanded.Fingerprint() + "|" + opts.Key()
	if res, ok := m.cache.Get(key); ok {
		observability.Engine().OnMemo(true)
		return res
	}
	observability.Engine().OnMemo(false)

	res := Compute(t.Root(), expanded, opts)
	m.cache.Add(key, res)
	return res
}

// Len returns the number of cached layouts.
func (m *Memo) Len() int { return m.cache.Len() }

// Purge drops every cached layout.
func (m *Memo) Purge() { m.cache.Purge() }
