package memory

import (
	"sync"

	"github.com/drfrankproulx-cmd/OProom/internal/repository"
)

// table is an insertion-ordered map guarded by a mutex. Values are cloned on
// the way in and out so callers never share memory with the store.
type table[T any] struct {
	mu    sync.RWMutex
	keys  []string
	rows  map[string]*T
	clone func(*T) *T
}

func newTable[T any](clone func(*T) *T) *table[T] {
	if clone == nil {
		clone = func(v *T) *T {
			c := *v
			return &c
		}
	}
	return &table[T]{rows: make(map[string]*T), clone: clone}
}

// insert adds v under key. conflict, when set, is checked against every row
// under the same lock to emulate a unique secondary index.
func (t *table[T]) insert(key string, v *T, conflict func(existing *T) bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[key]; ok {
		return repository.ErrDuplicate
	}
	if conflict != nil {
		for _, k := range t.keys {
			if conflict(t.rows[k]) {
				return repository.ErrDuplicate
			}
		}
	}
	t.rows[key] = t.clone(v)
	t.keys = append(t.keys, key)
	return nil
}

func (t *table[T]) get(key string) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.rows[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t.clone(v), nil
}

// update applies fn to the stored row under the write lock and returns a copy
// of the result. fn's error aborts without writing.
func (t *table[T]) update(key string, fn func(stored *T) error) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.rows[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	next := t.clone(v)
	if err := fn(next); err != nil {
		return nil, err
	}
	t.rows[key] = next
	return t.clone(next), nil
}

func (t *table[T]) updateWhere(match func(*T) bool, fn func(*T) bool) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var n int64
	for _, k := range t.keys {
		v := t.rows[k]
		if match(v) && fn(v) {
			n++
		}
	}
	return n
}

func (t *table[T]) delete(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[key]; !ok {
		return repository.ErrNotFound
	}
	delete(t.rows, key)
	for i, k := range t.keys {
		if k == key {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
	return nil
}

// filter returns copies of matching rows in insertion order.
func (t *table[T]) filter(match func(*T) bool) []*T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*T, 0)
	for _, k := range t.keys {
		v := t.rows[k]
		if match == nil || match(v) {
			out = append(out, t.clone(v))
		}
	}
	return out
}

func (t *table[T]) find(match func(*T) bool) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, k := range t.keys {
		if v := t.rows[k]; match(v) {
			return t.clone(v), nil
		}
	}
	return nil, repository.ErrNotFound
}
